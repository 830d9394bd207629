// Package nft implements the token-issuance registry: an owner recorded at
// deployment, a ledger assigning strictly increasing token ids with immutable
// URI and name metadata, per-account balances, and an append-only log of
// mint notifications in the zero-address Transfer shape.
//
// Two variants share the ledger and differ only by Config:
//
//	reg, err := nft.Deploy(store, owner, nft.MuseMintConfig())
//	id, err := reg.MintNamed(caller, "first", "https://stacktrace.top/imags/1.json")
package nft
