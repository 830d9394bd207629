package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/muse/nft"
)

// MintWorker writes every replayed issuance record to out as one JSON line.
// A record may be written again after a restart, readers dedupe on trace_id.
type MintWorker struct {
	out io.Writer
}

func (mw *MintWorker) ProcessTransfer(ctx context.Context, evt *nft.Transfer) {
	logger.Verbosef("MintWorker.ProcessTransfer(%d, %s, %d)\n", evt.Sequence, evt.To.Hex(), evt.Id)
	err := json.NewEncoder(mw.out).Encode(transferView(evt))
	if err != nil {
		panic(err)
	}
}

type transferJSON struct {
	Registry string `json:"registry"`
	Sequence uint64 `json:"sequence"`
	TraceId  string `json:"trace_id"`
	Topic    string `json:"topic"`
	Operator string `json:"operator"`
	From     string `json:"from"`
	To       string `json:"to"`
	Id       uint64 `json:"id"`
	Value    uint64 `json:"value"`
}

func transferView(evt *nft.Transfer) *transferJSON {
	return &transferJSON{
		Registry: evt.Registry,
		Sequence: evt.Sequence,
		TraceId:  evt.TraceId,
		Topic:    evt.Topic.Hex(),
		Operator: evt.Operator.Hex(),
		From:     evt.From.Hex(),
		To:       evt.To.Hex(),
		Id:       evt.Id,
		Value:    evt.Value,
	}
}
