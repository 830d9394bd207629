package nft

import (
	"fmt"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fox-one/mixin-sdk-go"
	"github.com/pkg/errors"
)

var TransferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

type MintParams struct {
	// To defaults to the caller when zero.
	To   common.Address
	Name string
	URI  string
}

func (r *Registry) MintOne(caller common.Address, uri string) (uint64, error) {
	tok, err := r.Mint(caller, MintParams{URI: uri})
	if err != nil {
		return 0, err
	}
	return tok.Id, nil
}

func (r *Registry) MintOneTo(caller, to common.Address, uri string) (uint64, error) {
	if to == (common.Address{}) {
		return 0, errors.Wrap(ErrUnsupported, "mint to zero address")
	}
	tok, err := r.Mint(caller, MintParams{To: to, URI: uri})
	if err != nil {
		return 0, err
	}
	return tok.Id, nil
}

func (r *Registry) MintNamed(caller common.Address, name, uri string) (uint64, error) {
	if !r.deployment.Config.Named {
		return 0, errors.Wrap(ErrUnsupported, "named mint")
	}
	tok, err := r.Mint(caller, MintParams{Name: name, URI: uri})
	if err != nil {
		return 0, err
	}
	return tok.Id, nil
}

// Mint allocates the next token id to p and appends its issuance record.
// Either every effect is committed or none is.
func (r *Registry) Mint(caller common.Address, p MintParams) (*Token, error) {
	to := p.To
	if to == (common.Address{}) {
		to = caller
	}
	err := r.authorizeMint(caller, to, p.Name != "")
	if err != nil {
		return nil, err
	}

	tok, evt, err := r.commitMint(caller, to, p)
	if err != nil {
		return nil, err
	}
	defer r.sending.Unlock()

	r.feed.Send(evt)
	return tok, nil
}

// commitMint writes the mint under the registry mutex. On success it returns
// holding r.sending, taken before the mutex is released so records reach
// subscribers in sequence order.
func (r *Registry) commitMint(caller, to common.Address, p MintParams) (*Token, *Transfer, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	conf := r.deployment.Config
	next := r.next.Load()
	minted := next - conf.FirstTokenId
	if conf.MaxSupply > 0 && minted >= conf.MaxSupply {
		return nil, nil, errors.Wrapf(ErrMaxSupply, "supply %d", minted)
	}
	if next+1 < next {
		return nil, nil, errors.Wrapf(ErrMaxSupply, "token id %d", next)
	}

	tok := &Token{
		Id:       next,
		Name:     p.Name,
		URI:      p.URI,
		Minter:   caller,
		Holder:   to,
		Sequence: minted + 1,
	}
	evt := &Transfer{
		Registry: r.deployment.Id,
		Sequence: tok.Sequence,
		TraceId:  TransferTraceId(r.deployment.Id, tok.Sequence),
		Topic:    TransferTopic,
		Operator: caller,
		To:       to,
		Id:       tok.Id,
		Value:    1,
	}
	err := r.store.WriteMint(tok, evt)
	if err != nil {
		return nil, nil, err
	}
	r.next.Store(next + 1)
	logger.Verbosef("nft.Mint(%s, %s, %d, %s)\n", caller.Hex(), to.Hex(), tok.Id, tok.URI)

	r.sending.Lock()
	return tok, evt, nil
}

// TransferTraceId is the deterministic trace id of the record at sequence in
// the registry.
func TransferTraceId(registry string, sequence uint64) string {
	return mixin.UniqueConversationID(registry, fmt.Sprintf("transfer:%d", sequence))
}
