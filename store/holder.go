package store

import (
	"encoding/binary"

	"github.com/MixinNetwork/muse/nft"
	"github.com/dgraph-io/badger/v3"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

func (bs *BadgerStore) ListTokensForHolder(holder ethcommon.Address, from uint64, limit int) ([]*nft.Token, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = append([]byte(prefixTokenHolder), holder.Bytes()...)
	it := txn.NewIterator(opts)
	defer it.Close()

	var toks []*nft.Token
	for it.Seek(buildHolderKey(holder, from)); it.Valid(); it.Next() {
		key := it.Item().Key()
		id := binary.BigEndian.Uint64(key[len(opts.Prefix):])
		tok, err := bs.readToken(txn, id)
		if err != nil {
			return nil, err
		} else if tok == nil {
			return nil, errors.Errorf("dangling holder index %s %d", holder.Hex(), id)
		}
		toks = append(toks, tok)
		if len(toks) == limit {
			break
		}
	}
	return toks, nil
}

func buildHolderKey(holder ethcommon.Address, id uint64) []byte {
	key := append([]byte(prefixTokenHolder), holder.Bytes()...)
	return append(key, uint64ToBytes(id)...)
}
