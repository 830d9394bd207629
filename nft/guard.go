package nft

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

func (r *Registry) Owner() common.Address {
	return r.deployment.Owner
}

func (r *Registry) RequireOwner(caller common.Address) error {
	if caller != r.deployment.Owner {
		return errors.Wrapf(ErrUnauthorized, "caller %s", caller.Hex())
	}
	return nil
}

// authorizeMint applies the variant policy before any state is touched.
func (r *Registry) authorizeMint(caller, to common.Address, named bool) error {
	conf := r.deployment.Config
	if named && !conf.Named {
		return errors.Wrap(ErrUnsupported, "named mint")
	}
	if conf.Guarded {
		err := r.RequireOwner(caller)
		if err != nil {
			return err
		}
	}
	if to == caller {
		return nil
	}
	switch conf.Recipient {
	case RecipientAny:
		return nil
	case RecipientOwner:
		return r.RequireOwner(caller)
	}
	return errors.Wrapf(ErrUnsupported, "mint to %s", to.Hex())
}
