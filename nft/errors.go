package nft

import "github.com/pkg/errors"

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUnknownToken    = errors.New("unknown token")
	ErrUnsupported     = errors.New("unsupported by registry variant")
	ErrMaxSupply       = errors.New("max supply reached")
	ErrAlreadyDeployed = errors.New("registry already deployed")
	ErrNotDeployed     = errors.New("registry not deployed")
	ErrConflict        = errors.New("token id conflict")
)
