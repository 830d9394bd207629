package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/muse/nft"
	"github.com/MixinNetwork/muse/relay"
	"github.com/MixinNetwork/muse/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "muse",
		Usage: "Muse token issuance registry",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   defaultConfigPath,
				Usage:   "configuration file path",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "database directory path, overrides the configuration",
			},
			&cli.IntFlag{
				Name:  "log",
				Usage: "log level, overrides the configuration",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "deploy",
				Usage: "Record the registry owner and variant",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "owner", Usage: "owner address"},
					&cli.StringFlag{Name: "variant", Usage: "musebotai or musemint"},
					&cli.StringFlag{Name: "name", Usage: "collection name"},
				},
				Action: deployCmd,
			},
			{
				Name:  "mint",
				Usage: "Mint one token",
				Flags: append(callerFlags(),
					&cli.StringFlag{Name: "uri", Required: true, Usage: "token metadata URI"},
					&cli.StringFlag{Name: "name", Usage: "token name, named registries only"},
					&cli.StringFlag{Name: "to", Usage: "recipient address, defaults to the caller"},
				),
				Action: mintCmd,
			},
			{
				Name:  "balance",
				Usage: "Print the token count of an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Required: true},
					&cli.Uint64Flag{Name: "id", Usage: "print the balance of a single token id"},
				},
				Action: balanceCmd,
			},
			{
				Name:   "uri",
				Usage:  "Print the URI of a token",
				Flags:  []cli.Flag{&cli.Uint64Flag{Name: "id", Required: true}},
				Action: uriCmd,
			},
			{
				Name:   "token",
				Usage:  "Print a token record",
				Flags:  []cli.Flag{&cli.Uint64Flag{Name: "id", Required: true}},
				Action: tokenCmd,
			},
			{
				Name:  "tokens",
				Usage: "List the tokens of an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Required: true},
					&cli.Uint64Flag{Name: "from"},
					&cli.IntFlag{Name: "limit", Value: 100},
				},
				Action: tokensCmd,
			},
			{
				Name:   "owner",
				Usage:  "Print the registry owner",
				Action: ownerCmd,
			},
			{
				Name:   "name",
				Usage:  "Print the collection name",
				Action: nameCmd,
			},
			{
				Name:   "supply",
				Usage:  "Print the number of minted tokens",
				Action: supplyCmd,
			},
			{
				Name:  "log",
				Usage: "Replay the issuance log",
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "offset", Usage: "print records after this sequence"},
					&cli.IntFlag{Name: "limit", Value: 100},
				},
				Action: logCmd,
			},
			{
				Name:   "relay",
				Usage:  "Follow the issuance log and print new records",
				Action: relayCmd,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func callerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "caller address"},
		&cli.StringFlag{Name: "key", Usage: "caller private key in hex, the address is derived from it"},
	}
}

func setup(c *cli.Context) (*Configuration, *store.BadgerStore, error) {
	conf, err := Setup(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if c.IsSet("dir") {
		conf.Store.Dir = expandHome(c.String("dir"))
	}
	if c.IsSet("log") {
		conf.Logger.Level = c.Int("log")
	}
	logger.SetLevel(conf.Logger.Level)

	db, err := store.OpenBadger(c.Context, conf.Store.Dir)
	if err != nil {
		return nil, nil, err
	}
	return conf, db, nil
}

func withRegistry(c *cli.Context, fn func(*nft.Registry) error) error {
	_, db, err := setup(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reg, err := nft.Open(db)
	if err != nil {
		return err
	}
	defer reg.Close()
	return fn(reg)
}

func callerAddress(c *cli.Context) (common.Address, error) {
	if key := c.String("key"); key != "" {
		priv, err := crypto.HexToECDSA(strings.TrimPrefix(key, "0x"))
		if err != nil {
			return common.Address{}, fmt.Errorf("invalid private key: %w", err)
		}
		return crypto.PubkeyToAddress(priv.PublicKey), nil
	}
	if from := c.String("from"); from != "" {
		return parseAddress(from)
	}
	return common.Address{}, fmt.Errorf("either --from or --key is required")
}

func deployCmd(c *cli.Context) error {
	conf, db, err := setup(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if c.IsSet("variant") {
		conf.Registry.Variant = c.String("variant")
	}
	if c.IsSet("name") {
		conf.Registry.Name = c.String("name")
	}
	if c.IsSet("owner") {
		conf.Registry.Owner = c.String("owner")
	}
	owner, err := conf.RegistryOwner()
	if err != nil {
		return err
	}
	rc, err := conf.RegistryConfig()
	if err != nil {
		return err
	}
	reg, err := nft.Deploy(db, owner, rc)
	if err != nil {
		return err
	}
	defer reg.Close()
	fmt.Println(reg.Id())
	return nil
}

func mintCmd(c *cli.Context) error {
	caller, err := callerAddress(c)
	if err != nil {
		return err
	}
	params := nft.MintParams{
		Name: c.String("name"),
		URI:  c.String("uri"),
	}
	if to := c.String("to"); to != "" {
		params.To, err = parseRecipient(to)
		if err != nil {
			return err
		}
	}
	return withRegistry(c, func(reg *nft.Registry) error {
		tok, err := reg.Mint(caller, params)
		if err != nil {
			return err
		}
		fmt.Println(tok.Id)
		return nil
	})
}

func balanceCmd(c *cli.Context) error {
	account, err := parseAddress(c.String("account"))
	if err != nil {
		return err
	}
	return withRegistry(c, func(reg *nft.Registry) error {
		var balance uint64
		if c.IsSet("id") {
			balance, err = reg.BalanceOfToken(account, c.Uint64("id"))
		} else {
			balance, err = reg.BalanceOf(account)
		}
		if err != nil {
			return err
		}
		fmt.Println(balance)
		return nil
	})
}

func uriCmd(c *cli.Context) error {
	return withRegistry(c, func(reg *nft.Registry) error {
		uri, err := reg.TokenURI(c.Uint64("id"))
		if err != nil {
			return err
		}
		fmt.Println(uri)
		return nil
	})
}

func tokenCmd(c *cli.Context) error {
	return withRegistry(c, func(reg *nft.Registry) error {
		tok, err := reg.Token(c.Uint64("id"))
		if err != nil {
			return err
		}
		return printJSON(tokenView(tok))
	})
}

func tokensCmd(c *cli.Context) error {
	account, err := parseAddress(c.String("account"))
	if err != nil {
		return err
	}
	return withRegistry(c, func(reg *nft.Registry) error {
		toks, err := reg.TokensOf(account, c.Uint64("from"), c.Int("limit"))
		if err != nil {
			return err
		}
		for _, tok := range toks {
			err = printJSON(tokenView(tok))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func ownerCmd(c *cli.Context) error {
	return withRegistry(c, func(reg *nft.Registry) error {
		fmt.Println(reg.Owner().Hex())
		return nil
	})
}

func nameCmd(c *cli.Context) error {
	return withRegistry(c, func(reg *nft.Registry) error {
		fmt.Println(reg.Name())
		return nil
	})
}

func supplyCmd(c *cli.Context) error {
	return withRegistry(c, func(reg *nft.Registry) error {
		fmt.Println(reg.TotalSupply())
		return nil
	})
}

func logCmd(c *cli.Context) error {
	return withRegistry(c, func(reg *nft.Registry) error {
		evts, err := reg.Transfers(c.Uint64("offset"), c.Int("limit"))
		if err != nil {
			return err
		}
		for _, evt := range evts {
			err = printJSON(transferView(evt))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func relayCmd(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	conf, db, err := setup(c)
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := relay.NewRelay(db, conf.RelayConfig())
	if err != nil {
		return err
	}
	r.AddWorker(&MintWorker{out: os.Stdout})
	err = r.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}

type tokenJSON struct {
	Id       uint64 `json:"id"`
	Name     string `json:"name,omitempty"`
	URI      string `json:"uri"`
	Minter   string `json:"minter"`
	Holder   string `json:"holder"`
	Sequence uint64 `json:"sequence"`
}

func tokenView(tok *nft.Token) *tokenJSON {
	return &tokenJSON{
		Id:       tok.Id,
		Name:     tok.Name,
		URI:      tok.URI,
		Minter:   tok.Minter.Hex(),
		Holder:   tok.Holder.Hex(),
		Sequence: tok.Sequence,
	}
}

func printJSON(v interface{}) error {
	return json.NewEncoder(os.Stdout).Encode(v)
}
