package nft

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/gofrs/uuid"
)

// Registry is the token ledger of one deployment. All state lives in the
// store; the registry serializes writers so that every mint commits its id,
// metadata, balance and log record together.
type Registry struct {
	store      Store
	deployment *Deployment

	mutex sync.Mutex
	next  atomic.Uint64

	sending sync.Mutex
	feed    event.Feed
	scope event.SubscriptionScope
}

// Deploy records owner and conf in an empty store and returns the registry.
// It fails with ErrAlreadyDeployed when the store already holds one.
func Deploy(store Store, owner common.Address, conf Config) (*Registry, error) {
	if owner == (common.Address{}) {
		return nil, fmt.Errorf("invalid registry owner %s", owner.Hex())
	}
	if conf.Name == "" {
		conf.Name = DefaultCollectionName
	}
	err := conf.validate()
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	d := &Deployment{
		Id:     id.String(),
		Owner:  owner,
		Config: conf,
	}
	err = store.WriteDeployment(d)
	if err != nil {
		return nil, err
	}
	logger.Printf("nft.Deploy(%s, %s, %s)\n", d.Id, owner.Hex(), conf.Name)
	return Open(store)
}

func Open(store Store) (*Registry, error) {
	d, err := store.ReadDeployment()
	if err != nil {
		return nil, err
	} else if d == nil {
		return nil, ErrNotDeployed
	}
	next, err := store.ReadNextTokenId()
	if err != nil {
		return nil, err
	}
	r := &Registry{
		store:      store,
		deployment: d,
	}
	r.next.Store(next)
	return r, nil
}

func (r *Registry) Id() string {
	return r.deployment.Id
}

func (r *Registry) Config() Config {
	return r.deployment.Config
}

// Name is the collection name, not the name of any token.
func (r *Registry) Name() string {
	return r.deployment.Config.Name
}

// SubscribeTransfers delivers every record appended after the call, in
// sequence order. A mint returns only after all subscribers received its
// record, and later mints wait for it, so ch should be buffered and drained.
// Queries never wait on subscribers.
func (r *Registry) SubscribeTransfers(ch chan<- *Transfer) event.Subscription {
	return r.scope.Track(r.feed.Subscribe(ch))
}

func (r *Registry) Close() {
	r.scope.Close()
}
