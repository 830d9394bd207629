package relay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MixinNetwork/mixin/logger"
)

// Relay replays the transfer log to its workers in sequence order. Progress
// is checkpointed under the relay name after every batch, so a restarted
// relay resumes from the last checkpoint. Delivery is at least once: records
// of a batch interrupted before its checkpoint are delivered again, and
// workers dedupe on Transfer.TraceId.
type Relay struct {
	store   Store
	workers []Worker

	name     string
	batch    int
	interval time.Duration
}

func NewRelay(store Store, conf *Configuration) (*Relay, error) {
	name := strings.TrimSpace(conf.Name)
	if name == "" {
		return nil, fmt.Errorf("invalid relay name %q", conf.Name)
	}
	r := &Relay{
		store:    store,
		name:     name,
		batch:    conf.Batch,
		interval: conf.Interval,
	}
	if r.batch <= 0 {
		r.batch = 100
	}
	if r.interval <= 0 {
		r.interval = 3 * time.Second
	}
	return r, nil
}

func (r *Relay) AddWorker(wkr Worker) {
	r.workers = append(r.workers, wkr)
}

func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		n, err := r.Drain(ctx)
		if err != nil {
			logger.Printf("Relay(%s).Drain() => %v\n", r.name, err)
		} else if n > 0 {
			logger.Verbosef("Relay(%s).Drain() => %d\n", r.name, n)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
