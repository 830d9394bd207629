package relay

import (
	"context"

	"github.com/MixinNetwork/muse/nft"
)

type Store interface {
	WriteProperty(key, val []byte) error
	ReadProperty(key []byte) ([]byte, error)

	ListTransfers(offset uint64, limit int) ([]*nft.Transfer, error)
}

type Worker interface {
	ProcessTransfer(context.Context, *nft.Transfer)
}
