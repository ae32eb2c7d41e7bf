package anchor

import (
	"context"
	"strings"
)

// Request describes the dataset hash to anchor on chain.
type Request struct {
	FileSHA256  string
	DatasetName string
	TimeStart   string
	TimeEnd     string
	Metadata    map[string]any
}

// Receipt is the anchoring outcome.
type Receipt struct {
	TxHash string `json:"txHash"`
	Status string `json:"status"`
}

// Anchorer is the blockchain anchoring boundary.
type Anchorer interface {
	Anchor(ctx context.Context, req Request) (Receipt, error)
}

// StubAnchorer queues nothing and returns a zero transaction hash.
// The on-chain integration is not implemented yet.
type StubAnchorer struct{}

func (StubAnchorer) Anchor(_ context.Context, _ Request) (Receipt, error) {
	return Receipt{
		TxHash: "0x" + strings.Repeat("0", 64),
		Status: "queued",
	}, nil
}
