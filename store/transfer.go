package store

import (
	"math"

	"github.com/MixinNetwork/mixin/common"
	"github.com/MixinNetwork/muse/nft"
	"github.com/dgraph-io/badger/v3"
)

const prefixTransferPayload = "TRANSFER:PAYLOAD:"

// ListTransfers returns records with sequence > offset in sequence order,
// at most limit of them, or all when limit is 0.
func (bs *BadgerStore) ListTransfers(offset uint64, limit int) ([]*nft.Transfer, error) {
	if offset == math.MaxUint64 {
		return nil, nil
	}

	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixTransferPayload)
	it := txn.NewIterator(opts)
	defer it.Close()

	var evts []*nft.Transfer
	start := append([]byte(prefixTransferPayload), uint64ToBytes(offset+1)...)
	for it.Seek(start); it.Valid(); it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		var evt nft.Transfer
		err = common.MsgpackUnmarshal(val, &evt)
		if err != nil {
			return nil, err
		}
		evts = append(evts, &evt)
		if len(evts) == limit {
			break
		}
	}
	return evts, nil
}

func (bs *BadgerStore) writeTransfer(txn *badger.Txn, evt *nft.Transfer) error {
	key := append([]byte(prefixTransferPayload), uint64ToBytes(evt.Sequence)...)
	_, err := txn.Get(key)
	if err == nil {
		panic(evt.Sequence)
	} else if err != badger.ErrKeyNotFound {
		return err
	}
	return txn.Set(key, common.MsgpackMarshalPanic(evt))
}
