package main

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/MixinNetwork/muse/nft"
	"github.com/MixinNetwork/muse/relay"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pelletier/go-toml"
)

const (
	defaultConfigPath = "~/.muse/config.toml"
	defaultDataDir    = "~/.muse/data"
)

type Configuration struct {
	Registry struct {
		Variant      string `toml:"variant"`
		Name         string `toml:"name"`
		Owner        string `toml:"owner"`
		FirstTokenId uint64 `toml:"first-token-id"`
		MaxSupply    uint64 `toml:"max-supply"`
	} `toml:"registry"`
	Store struct {
		Dir string `toml:"dir"`
	} `toml:"store"`
	Relay struct {
		Name     string `toml:"name"`
		Batch    int    `toml:"batch"`
		Interval int    `toml:"interval"`
	} `toml:"relay"`
	Logger struct {
		Level int `toml:"level"`
	} `toml:"logger"`

	firstTokenIdSet bool `toml:"-"`
}

// Setup loads the configuration at path. A missing file at the default path
// yields the defaults, any other missing file is an error.
func Setup(path string) (*Configuration, error) {
	conf := &Configuration{}
	data, err := os.ReadFile(expandHome(path))
	if os.IsNotExist(err) && path == defaultConfigPath {
		conf.applyDefaults()
		return conf, nil
	} else if err != nil {
		return nil, err
	}

	tree, err := toml.LoadBytes(data)
	if err != nil {
		return nil, err
	}
	err = tree.Unmarshal(conf)
	if err != nil {
		return nil, err
	}
	conf.firstTokenIdSet = tree.Has("registry.first-token-id")
	conf.applyDefaults()
	_, err = nft.ConfigForVariant(conf.Registry.Variant)
	return conf, err
}

func (conf *Configuration) applyDefaults() {
	if conf.Registry.Variant == "" {
		conf.Registry.Variant = nft.VariantMusebotAi
	}
	if conf.Store.Dir == "" {
		conf.Store.Dir = defaultDataDir
	}
	conf.Store.Dir = expandHome(conf.Store.Dir)
	if conf.Relay.Name == "" {
		conf.Relay.Name = "audit"
	}
	if conf.Relay.Batch <= 0 {
		conf.Relay.Batch = 100
	}
	if conf.Relay.Interval <= 0 {
		conf.Relay.Interval = 3
	}
	if conf.Logger.Level <= 0 {
		conf.Logger.Level = 2
	}
}

// RegistryConfig resolves the variant preset with the file overrides.
func (conf *Configuration) RegistryConfig() (nft.Config, error) {
	rc, err := nft.ConfigForVariant(conf.Registry.Variant)
	if err != nil {
		return rc, err
	}
	if conf.Registry.Name != "" {
		rc.Name = conf.Registry.Name
	}
	if conf.firstTokenIdSet {
		rc.FirstTokenId = conf.Registry.FirstTokenId
	}
	rc.MaxSupply = conf.Registry.MaxSupply
	return rc, nil
}

func (conf *Configuration) RegistryOwner() (common.Address, error) {
	return parseAddress(conf.Registry.Owner)
}

func (conf *Configuration) RelayConfig() *relay.Configuration {
	return &relay.Configuration{
		Name:     conf.Relay.Name,
		Batch:    conf.Relay.Batch,
		Interval: time.Duration(conf.Relay.Interval) * time.Second,
	}
}

func parseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// parseRecipient rejects the zero address, which Mint would otherwise
// replace with the caller.
func parseRecipient(s string) (common.Address, error) {
	addr, err := parseAddress(s)
	if err != nil {
		return addr, err
	}
	if addr == (common.Address{}) {
		return addr, fmt.Errorf("invalid recipient %s", addr.Hex())
	}
	return addr, nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	usr, err := user.Current()
	if err != nil {
		return p
	}
	return filepath.Join(usr.HomeDir, p[2:])
}
