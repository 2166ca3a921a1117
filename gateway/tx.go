package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ReceiptClient is the subset of the Ethereum RPC needed to track a submitted
// transaction.
type ReceiptClient interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

const defaultPollInterval = 2 * time.Second

// TxHandle tracks one submitted transaction. Await decouples confirmation
// policy from the code that built the transaction: callers choose a depth and
// a context deadline, and cancellation stops the polling immediately.
type TxHandle struct {
	client       ReceiptClient
	hash         common.Hash
	pollInterval time.Duration
}

// NewTxHandle wraps a submitted transaction hash.
func NewTxHandle(client ReceiptClient, hash common.Hash) *TxHandle {
	return &TxHandle{client: client, hash: hash, pollInterval: defaultPollInterval}
}

// Hash returns the transaction hash.
func (h *TxHandle) Hash() common.Hash {
	if h == nil {
		return common.Hash{}
	}
	return h.hash
}

// SetPollInterval overrides the receipt polling cadence.
func (h *TxHandle) SetPollInterval(interval time.Duration) {
	if h == nil || interval <= 0 {
		return
	}
	h.pollInterval = interval
}

// Await blocks until the transaction is mined and buried under the requested
// confirmation depth, the transaction reverts, or the context ends. A depth
// of zero returns as soon as a receipt exists.
func (h *TxHandle) Await(ctx context.Context, confirmations uint64) (*types.Receipt, error) {
	if h == nil || h.client == nil {
		return nil, fmt.Errorf("tx handle not initialised")
	}
	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()
	for {
		receipt, err := h.client.TransactionReceipt(ctx, h.hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("transaction %s reverted", h.hash.Hex())
			}
			buried, err := h.buried(ctx, receipt, confirmations)
			if err != nil {
				return nil, err
			}
			if buried {
				return receipt, nil
			}
		case err != nil && !errors.Is(err, ethereum.NotFound):
			return nil, fmt.Errorf("fetch receipt: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (h *TxHandle) buried(ctx context.Context, receipt *types.Receipt, confirmations uint64) (bool, error) {
	if confirmations == 0 {
		return true, nil
	}
	header, err := h.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("fetch head: %w", err)
	}
	if header == nil || header.Number == nil || receipt.BlockNumber == nil {
		return false, fmt.Errorf("block metadata unavailable")
	}
	if header.Number.Cmp(receipt.BlockNumber) < 0 {
		return false, nil
	}
	depth := new(big.Int).Sub(header.Number, receipt.BlockNumber)
	depth.Add(depth, big.NewInt(1))
	return depth.Cmp(new(big.Int).SetUint64(confirmations)) >= 0, nil
}
