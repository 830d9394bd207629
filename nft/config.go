package nft

import (
	"fmt"
	"strings"
)

const DefaultCollectionName = "MuseToken"

const (
	VariantMusebotAi = "musebotai"
	VariantMuseMint  = "musemint"
)

type RecipientPolicy int

const (
	// RecipientSelf credits every mint to the caller.
	RecipientSelf RecipientPolicy = iota
	RecipientAny
	// RecipientOwner lets anyone mint to themselves, but minting to another
	// account requires the registry owner.
	RecipientOwner
)

// Config selects the capability set of a registry. It is fixed at
// deployment and persisted with it.
type Config struct {
	Name         string
	Named        bool
	Guarded      bool
	Recipient    RecipientPolicy
	FirstTokenId uint64
	MaxSupply    uint64
}

func MusebotAiConfig() Config {
	return Config{
		Name:         DefaultCollectionName,
		Recipient:    RecipientAny,
		FirstTokenId: 1,
	}
}

func MuseMintConfig() Config {
	return Config{
		Name:         DefaultCollectionName,
		Named:        true,
		Recipient:    RecipientOwner,
		FirstTokenId: 1,
	}
}

// ConfigForVariant returns the preset for a variant name, case insensitive.
func ConfigForVariant(variant string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(variant)) {
	case VariantMusebotAi, "":
		return MusebotAiConfig(), nil
	case VariantMuseMint:
		return MuseMintConfig(), nil
	}
	return Config{}, fmt.Errorf("unknown registry variant %q", variant)
}

func (c Config) validate() error {
	switch c.Recipient {
	case RecipientSelf, RecipientAny, RecipientOwner:
	default:
		return fmt.Errorf("invalid recipient policy %d", c.Recipient)
	}
	if c.FirstTokenId+c.MaxSupply < c.FirstTokenId {
		return fmt.Errorf("max supply %d overflows from %d", c.MaxSupply, c.FirstTokenId)
	}
	return nil
}
