package nft

import (
	"github.com/ethereum/go-ethereum/common"
)

type Store interface {
	WriteDeployment(d *Deployment) error
	ReadDeployment() (*Deployment, error)

	WriteMint(tok *Token, evt *Transfer) error
	ReadNextTokenId() (uint64, error)
	ReadToken(id uint64) (*Token, error)
	ReadBalance(account common.Address) (uint64, error)

	ListTokensForHolder(holder common.Address, offset uint64, limit int) ([]*Token, error)
	ListTransfers(offset uint64, limit int) ([]*Transfer, error)
}

type Deployment struct {
	Id     string
	Owner  common.Address
	Config Config
}

type Token struct {
	Id       uint64
	Name     string
	URI      string
	Minter   common.Address
	Holder   common.Address
	Sequence uint64
}

// Transfer is the issuance record appended for every mint. From is always
// the zero address, mirroring the ERC-721 mint notification. TraceId is
// derived from Registry and Sequence, so consumers can use it to drop
// replayed records.
type Transfer struct {
	Registry string
	Sequence uint64
	TraceId  string
	Topic    common.Hash
	Operator common.Address
	From     common.Address
	To       common.Address
	Id       uint64
	Value    uint64
}
