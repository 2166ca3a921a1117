package market

import (
	"github.com/ethereum/go-ethereum/common"
)

// AggregateBonds folds an event sequence into per-answer bond totals. Every
// bond ever posted contributes, including bonds behind answers that did not
// win; nothing is weighted by recency or overwritten. Accumulation is
// commutative, so the result is independent of event order and re-running over
// the same set is idempotent.
func AggregateBonds(events []AnswerEvent) *BondLedger {
	ledger := NewBondLedger()
	for _, event := range events {
		ledger.add(event.Answer, event.Bond)
	}
	return ledger
}

// AggregateBondsByUser partitions the events by posting user and aggregates
// each partition separately. Summing the per-user ledgers for an answer yields
// the global total for that answer.
func AggregateBondsByUser(events []AnswerEvent) map[common.Address]*BondLedger {
	ledgers := make(map[common.Address]*BondLedger)
	for _, event := range events {
		ledger, ok := ledgers[event.User]
		if !ok {
			ledger = NewBondLedger()
			ledgers[event.User] = ledger
		}
		ledger.add(event.Answer, event.Bond)
	}
	return ledgers
}
