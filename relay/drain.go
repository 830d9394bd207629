package relay

import (
	"context"
	"encoding/binary"
	"fmt"
)

const checkpointKeyPrefix = "RELAY:CHECKPOINT:"

// Drain delivers every record after the checkpoint and returns how many
// were delivered. The checkpoint advances after each batch.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		checkpoint, err := r.ReadCheckpoint()
		if err != nil {
			return total, err
		}
		evts, err := r.store.ListTransfers(checkpoint, r.batch)
		if err != nil {
			return total, err
		}
		if len(evts) == 0 {
			return total, nil
		}

		for _, evt := range evts {
			if evt.Sequence != checkpoint+1 {
				return total, fmt.Errorf("relay %s gap after %d at %d", r.name, checkpoint, evt.Sequence)
			}
			for _, wkr := range r.workers {
				wkr.ProcessTransfer(ctx, evt)
			}
			checkpoint = evt.Sequence
			total++
		}

		err = r.writeCheckpoint(checkpoint)
		if err != nil {
			return total, err
		}
		if ctx.Err() != nil || len(evts) < r.batch {
			return total, ctx.Err()
		}
	}
}

// ReadCheckpoint returns the last delivered sequence, 0 when none.
func (r *Relay) ReadCheckpoint() (uint64, error) {
	val, err := r.store.ReadProperty([]byte(checkpointKeyPrefix + r.name))
	if err != nil || len(val) == 0 {
		return 0, err
	}
	if len(val) != 8 {
		return 0, fmt.Errorf("malformed relay checkpoint %x", val)
	}
	return binary.BigEndian.Uint64(val), nil
}

func (r *Relay) writeCheckpoint(ckpt uint64) error {
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, ckpt)
	return r.store.WriteProperty([]byte(checkpointKeyPrefix+r.name), val)
}
