// Package market replays the append-only answer log of a bonded-answer oracle
// market into bond totals and the hash-chained argument tuple accepted by the
// on-ledger settlement verifier. All remote access goes through the narrow
// gateway capability in ledger.go; everything else is pure reshaping of ledger
// data.
package market

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"oraclemarket/gateway"
)

// Market is the high-level surface exposed to callers such as a CLI or UI
// layer. It composes the resolver, event source, and settlement coordinator
// over one gateway; every method reads the ledger fresh.
type Market struct {
	gw          Gateway
	resolver    *QuestionStateResolver
	source      *EventSource
	coordinator *SettlementCoordinator
	log         *slog.Logger
}

// New constructs a market accessor. A zero window uses DefaultLogWindow for
// event queries.
func New(gw Gateway, window uint64, log *slog.Logger) *Market {
	if log == nil {
		log = slog.Default()
	}
	return &Market{
		gw:          gw,
		resolver:    NewQuestionStateResolver(gw, log),
		source:      NewEventSource(gw, window, log),
		coordinator: NewSettlementCoordinator(gw, window, log),
		log:         log,
	}
}

// GetQuestion returns the question's current on-ledger snapshot. Check
// Question.Exists to distinguish an unknown question from a fresh one.
func (m *Market) GetQuestion(ctx context.Context, questionID common.Hash) (Question, error) {
	return m.resolver.Resolve(ctx, questionID)
}

// GetBondsByAnswer aggregates every bond posted to the question, per answer.
// With a non-nil user the totals cover only that poster's bonds and the
// ledger's Total is their grand total across all answers to the question.
func (m *Market) GetBondsByAnswer(ctx context.Context, questionID common.Hash, user *common.Address) (*BondLedger, error) {
	events, err := m.source.Fetch(ctx, questionID, user)
	if err != nil {
		return nil, err
	}
	return AggregateBonds(events), nil
}

// ClaimWinnings settles the question if it is finalized and unclaimed. The
// (nil, nil) return is the semantic no-op described on
// SettlementCoordinator.Claim.
func (m *Market) ClaimWinnings(ctx context.Context, questionID common.Hash) (*gateway.TxHandle, error) {
	return m.coordinator.Claim(ctx, questionID)
}
