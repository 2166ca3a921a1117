package market

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"oraclemarket/gateway"
)

// Contract method and event names exposed by the oracle market contract.
const (
	EventNewAnswer = "NewAnswer"

	MethodBestAnswer        = "bestAnswer"
	MethodFinalizeTimestamp = "finalizeTimestamp"
	MethodHistoryHash       = "historyHash"
	MethodIsFinalized       = "isFinalized"
	MethodClaimWinnings     = "claimWinnings"
)

// LedgerReader abstracts the subset of the contract-call gateway needed for
// read paths. Implementations must return events in ledger order and must
// never omit, reorder, or deduplicate them.
type LedgerReader interface {
	ReadState(ctx context.Context, method string, args ...any) ([]any, error)
	QueryEvents(ctx context.Context, event string, topics [][]common.Hash, fromBlock, toBlock uint64) ([]types.Log, error)
	DecodeEvent(event string, lg types.Log, out any) error
	LatestBlock(ctx context.Context) (uint64, error)
}

// TransactionSubmitter abstracts claim submission. Signing, gas parameters,
// and retry policy belong to the implementation, not to this package.
type TransactionSubmitter interface {
	SubmitTransaction(ctx context.Context, method string, args ...any) (*gateway.TxHandle, error)
}

// Gateway combines the read and submit capabilities of the contract-call
// gateway.
type Gateway interface {
	LedgerReader
	TransactionSubmitter
}
