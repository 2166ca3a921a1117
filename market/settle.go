package market

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"oraclemarket/gateway"
)

// SettlementCoordinator drives one claim attempt end to end: resolve state,
// short-circuit when there is nothing to do, replay the event history into a
// claim chain, and hand the chain to the gateway. It holds no state across
// calls; every invocation is a fresh read-reconstruct-submit cycle.
type SettlementCoordinator struct {
	gw     Gateway
	source *EventSource
	log    *slog.Logger
}

// NewSettlementCoordinator wires a coordinator over the gateway. The event
// source shares the gateway's read capability.
func NewSettlementCoordinator(gw Gateway, window uint64, log *slog.Logger) *SettlementCoordinator {
	if log == nil {
		log = slog.Default()
	}
	return &SettlementCoordinator{
		gw:     gw,
		source: NewEventSource(gw, window, log),
		log:    log,
	}
}

// Claim attempts to settle the question's winnings. A question that is not
// yet finalized, or whose winnings were already claimed, returns (nil, nil):
// a deliberate no-op signal, not an error, so callers can branch without
// unwrapping. The gateway's handle is returned unmodified on submission.
//
// If a new answer lands between the state read and the event fetch the
// reconstructed chain may no longer match the ledger's history hash; that
// surfaces as a submission-time rejection from the remote verifier, never as
// a local consistency check.
func (c *SettlementCoordinator) Claim(ctx context.Context, questionID common.Hash) (*gateway.TxHandle, error) {
	attempt := uuid.NewString()
	log := c.log.With("question", questionID.Hex(), "attempt", attempt)

	resolver := NewQuestionStateResolver(c.gw, c.log)
	question, err := resolver.Resolve(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if !question.Finalized {
		log.Info("claim skipped", "reason", "not finalized")
		return nil, nil
	}
	if question.Claimed() {
		log.Info("claim skipped", "reason", "already claimed")
		return nil, nil
	}

	events, err := c.source.Fetch(ctx, questionID, nil)
	if err != nil {
		return nil, err
	}
	chain := ReconstructChain(events)
	if chain.Empty() {
		log.Info("claim skipped", "reason", "no answer history")
		return nil, nil
	}

	handle, err := c.gw.SubmitTransaction(ctx, MethodClaimWinnings,
		questionID,
		chain.HistoryHashes,
		chain.Claimants,
		chain.Bonds,
		chain.Answers,
	)
	if err != nil {
		return nil, err
	}
	log.Info("claim submitted", "tx", handle.Hash().Hex(), "steps", chain.Len())
	return handle, nil
}
