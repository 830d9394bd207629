package store

import (
	"encoding/binary"

	"github.com/MixinNetwork/muse/nft"
	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
)

func uint64ToBytes(n uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}

// readCounter reads a counter written at deployment, so a missing key means
// the store holds no registry.
func (bs *BadgerStore) readCounter(txn *badger.Txn, key string) (uint64, error) {
	item, err := txn.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return 0, errors.Wrap(nft.ErrNotDeployed, key)
	} else if err != nil {
		return 0, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	if len(val) != 8 {
		return 0, errors.Errorf("malformed counter %s %x", key, val)
	}
	return binary.BigEndian.Uint64(val), nil
}
