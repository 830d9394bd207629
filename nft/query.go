package nft

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

func (r *Registry) Token(id uint64) (*Token, error) {
	tok, err := r.store.ReadToken(id)
	if err != nil {
		return nil, err
	} else if tok == nil {
		return nil, errors.Wrapf(ErrUnknownToken, "token %d", id)
	}
	return tok, nil
}

// TokenURI returns the URI exactly as given at mint time. An empty URI is a
// valid value, unminted ids fail with ErrUnknownToken.
func (r *Registry) TokenURI(id uint64) (string, error) {
	tok, err := r.Token(id)
	if err != nil {
		return "", err
	}
	return tok.URI, nil
}

func (r *Registry) URI(id uint64) (string, error) {
	return r.TokenURI(id)
}

func (r *Registry) TokenName(id uint64) (string, error) {
	tok, err := r.Token(id)
	if err != nil {
		return "", err
	}
	return tok.Name, nil
}

func (r *Registry) OwnerOf(id uint64) (common.Address, error) {
	tok, err := r.Token(id)
	if err != nil {
		return common.Address{}, err
	}
	return tok.Holder, nil
}

func (r *Registry) BalanceOf(account common.Address) (uint64, error) {
	return r.store.ReadBalance(account)
}

// BalanceOfToken is the per-id balance, 1 for the holder and 0 otherwise.
func (r *Registry) BalanceOfToken(account common.Address, id uint64) (uint64, error) {
	tok, err := r.Token(id)
	if err != nil {
		return 0, err
	}
	if tok.Holder == account {
		return 1, nil
	}
	return 0, nil
}

func (r *Registry) NextTokenId() uint64 {
	return r.next.Load()
}

func (r *Registry) TotalSupply() uint64 {
	return r.next.Load() - r.deployment.Config.FirstTokenId
}

// TokensOf lists tokens of holder with id >= from, in id order.
func (r *Registry) TokensOf(holder common.Address, from uint64, limit int) ([]*Token, error) {
	return r.store.ListTokensForHolder(holder, from, limit)
}

// Transfers replays issuance records with sequence > offset.
func (r *Registry) Transfers(offset uint64, limit int) ([]*Transfer, error) {
	return r.store.ListTransfers(offset, limit)
}
