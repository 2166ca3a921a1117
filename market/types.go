package market

import (
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// NullHash is the sentinel history hash marking "no prior history". A question
// whose history hash has been reset to NullHash after finalization has had its
// winnings claimed.
var NullHash = common.Hash{}

// AnswerEvent is one accepted answer replayed from the ledger's append-only
// event log. Events are immutable; the ledger assigns their order.
type AnswerEvent struct {
	QuestionID  common.Hash
	User        common.Address
	Answer      common.Hash
	Bond        *big.Int
	HistoryHash common.Hash
	BlockNumber uint64
	LogIndex    uint
}

// Before reports whether the event precedes other in ledger order.
func (e AnswerEvent) Before(other AnswerEvent) bool {
	if e.BlockNumber != other.BlockNumber {
		return e.BlockNumber < other.BlockNumber
	}
	return e.LogIndex < other.LogIndex
}

// Question is a snapshot of a question's on-ledger state.
type Question struct {
	ID                common.Hash
	BestAnswer        common.Hash
	FinalizeTimestamp uint64
	HistoryHash       common.Hash
	Finalized         bool
}

// Claimed reports whether the winnings for the question have already been
// distributed. The ledger resets the history hash to the null sentinel on a
// successful claim, so the flag is derived rather than stored.
func (q Question) Claimed() bool {
	return q.Finalized && q.HistoryHash == NullHash
}

// Exists reports whether the snapshot describes a question present on the
// ledger. Unknown keys read back as zero-valued storage, so an all-default
// snapshot means "not found".
func (q Question) Exists() bool {
	return q.BestAnswer != (common.Hash{}) ||
		q.FinalizeTimestamp != 0 ||
		q.HistoryHash != (common.Hash{}) ||
		q.Finalized
}

// BondLedger accumulates bond totals per answer, in the ledger's native base
// units. A ledger built from a user-filtered event set doubles as that user's
// per-question view, with Total covering all of their answers.
type BondLedger struct {
	byAnswer map[common.Hash]*big.Int
	total    *big.Int
}

// NewBondLedger returns an empty ledger.
func NewBondLedger() *BondLedger {
	return &BondLedger{
		byAnswer: make(map[common.Hash]*big.Int),
		total:    big.NewInt(0),
	}
}

func (l *BondLedger) add(answer common.Hash, bond *big.Int) {
	if bond == nil {
		return
	}
	current, ok := l.byAnswer[answer]
	if !ok {
		current = big.NewInt(0)
		l.byAnswer[answer] = current
	}
	current.Add(current, bond)
	l.total.Add(l.total, bond)
}

// AnswerTotal returns the accumulated bond for the answer. The result is a
// copy; callers may mutate it freely.
func (l *BondLedger) AnswerTotal(answer common.Hash) *big.Int {
	if l == nil {
		return big.NewInt(0)
	}
	total, ok := l.byAnswer[answer]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(total)
}

// Total returns the sum across every answer in the ledger.
func (l *BondLedger) Total() *big.Int {
	if l == nil || l.total == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(l.total)
}

// Answers lists the answer identifiers present in the ledger in a stable
// order.
func (l *BondLedger) Answers() []common.Hash {
	if l == nil {
		return nil
	}
	answers := make([]common.Hash, 0, len(l.byAnswer))
	for answer := range l.byAnswer {
		answers = append(answers, answer)
	}
	sort.Slice(answers, func(i, j int) bool {
		return answers[i].Cmp(answers[j]) < 0
	})
	return answers
}

// Len reports how many distinct answers carry bonds.
func (l *BondLedger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.byAnswer)
}

// ClaimChain is the aligned argument tuple consumed by the on-ledger claim
// operation: four equal-length sequences in reverse-chronological order, with
// the hash sequence shifted by one step and terminated by the null sentinel.
// It is built once per settlement attempt and consumed by exactly one
// submission.
type ClaimChain struct {
	HistoryHashes []common.Hash
	Claimants     []common.Address
	Bonds         []*big.Int
	Answers       []common.Hash
}

// Len returns the shared length of the four sequences.
func (c ClaimChain) Len() int {
	return len(c.Claimants)
}

// Empty reports whether the chain carries no claimable steps.
func (c ClaimChain) Empty() bool {
	return c.Len() == 0
}
