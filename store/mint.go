package store

import (
	"encoding/binary"

	"github.com/MixinNetwork/mixin/common"
	"github.com/MixinNetwork/muse/nft"
	"github.com/dgraph-io/badger/v3"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

const (
	keyRegistryDeployment       = "REGISTRY:DEPLOYMENT"
	keyRegistryNextToken        = "REGISTRY:COUNTER:TOKEN"
	keyRegistryTransferSequence = "REGISTRY:COUNTER:TRANSFER"

	prefixTokenPayload = "TOKEN:PAYLOAD:"
	prefixTokenHolder  = "TOKEN:HOLDER:"
	prefixBalance      = "BALANCE:"
)

func (bs *BadgerStore) WriteDeployment(d *nft.Deployment) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		old, err := bs.readDeployment(txn)
		if err != nil {
			return err
		} else if old != nil {
			return errors.Wrap(nft.ErrAlreadyDeployed, old.Id)
		}

		err = txn.Set([]byte(keyRegistryDeployment), common.MsgpackMarshalPanic(d))
		if err != nil {
			return err
		}
		err = txn.Set([]byte(keyRegistryNextToken), uint64ToBytes(d.Config.FirstTokenId))
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyRegistryTransferSequence), uint64ToBytes(0))
	})
}

func (bs *BadgerStore) ReadDeployment() (*nft.Deployment, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readDeployment(txn)
}

func (bs *BadgerStore) ReadNextTokenId() (uint64, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readCounter(txn, keyRegistryNextToken)
}

// WriteMint commits a token, its holder balance and index, and its transfer
// record. The token id must be the persisted next id and the record must be
// the next log entry, otherwise nothing is written and nft.ErrConflict is
// returned.
func (bs *BadgerStore) WriteMint(tok *nft.Token, evt *nft.Transfer) error {
	if tok.Id != evt.Id || tok.Sequence != evt.Sequence || tok.Holder != evt.To {
		return errors.Wrapf(nft.ErrConflict, "token %d transfer %d", tok.Id, evt.Id)
	}
	return bs.db.Update(func(txn *badger.Txn) error {
		next, err := bs.readCounter(txn, keyRegistryNextToken)
		if err != nil {
			return err
		}
		if next != tok.Id {
			return errors.Wrapf(nft.ErrConflict, "next %d token %d", next, tok.Id)
		}
		old, err := bs.readToken(txn, tok.Id)
		if err != nil {
			return err
		} else if old != nil {
			return errors.Wrapf(nft.ErrConflict, "token %d exists", tok.Id)
		}
		seq, err := bs.readCounter(txn, keyRegistryTransferSequence)
		if err != nil {
			return err
		}
		if seq+1 != evt.Sequence {
			return errors.Wrapf(nft.ErrConflict, "sequence %d transfer %d", seq, evt.Sequence)
		}
		balance, err := bs.readBalance(txn, tok.Holder)
		if err != nil {
			return err
		}

		key := append([]byte(prefixTokenPayload), uint64ToBytes(tok.Id)...)
		err = txn.Set(key, common.MsgpackMarshalPanic(tok))
		if err != nil {
			return err
		}
		err = txn.Set(buildHolderKey(tok.Holder, tok.Id), []byte{1})
		if err != nil {
			return err
		}
		key = append([]byte(prefixBalance), tok.Holder.Bytes()...)
		err = txn.Set(key, uint64ToBytes(balance+1))
		if err != nil {
			return err
		}
		err = bs.writeTransfer(txn, evt)
		if err != nil {
			return err
		}
		err = txn.Set([]byte(keyRegistryTransferSequence), uint64ToBytes(evt.Sequence))
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyRegistryNextToken), uint64ToBytes(tok.Id+1))
	})
}

func (bs *BadgerStore) ReadToken(id uint64) (*nft.Token, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readToken(txn, id)
}

func (bs *BadgerStore) ReadBalance(account ethcommon.Address) (uint64, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readBalance(txn, account)
}

func (bs *BadgerStore) readDeployment(txn *badger.Txn) (*nft.Deployment, error) {
	item, err := txn.Get([]byte(keyRegistryDeployment))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var d nft.Deployment
	err = common.MsgpackUnmarshal(val, &d)
	return &d, err
}

func (bs *BadgerStore) readToken(txn *badger.Txn, id uint64) (*nft.Token, error) {
	key := append([]byte(prefixTokenPayload), uint64ToBytes(id)...)
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var tok nft.Token
	err = common.MsgpackUnmarshal(val, &tok)
	return &tok, err
}

func (bs *BadgerStore) readBalance(txn *badger.Txn, account ethcommon.Address) (uint64, error) {
	key := append([]byte(prefixBalance), account.Bytes()...)
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(val), nil
}
