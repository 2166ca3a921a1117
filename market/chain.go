package market

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ReconstructChain turns the ascending event history of a question into the
// argument tuple the on-ledger claim verifier expects. The verifier walks the
// history-hash chain backwards from the question's current hash down to the
// null sentinel, so:
//
//   - claimants, bonds, and answers are the full event sequence reversed
//     (newest first, oldest last);
//   - history hashes are the sequence with the newest event's resulting hash
//     dropped, reversed, and terminated with NullHash — each position carries
//     the hash describing the state *before* that step was applied.
//
// All four sequences share length n for n input events. Zero events yield an
// empty chain; callers must not submit one.
func ReconstructChain(events []AnswerEvent) ClaimChain {
	n := len(events)
	chain := ClaimChain{
		HistoryHashes: make([]common.Hash, 0, n),
		Claimants:     make([]common.Address, 0, n),
		Bonds:         make([]*big.Int, 0, n),
		Answers:       make([]common.Hash, 0, n),
	}
	if n == 0 {
		return chain
	}
	for i := n - 2; i >= 0; i-- {
		chain.HistoryHashes = append(chain.HistoryHashes, events[i].HistoryHash)
	}
	chain.HistoryHashes = append(chain.HistoryHashes, NullHash)
	for i := n - 1; i >= 0; i-- {
		event := events[i]
		chain.Claimants = append(chain.Claimants, event.User)
		bond := big.NewInt(0)
		if event.Bond != nil {
			bond = new(big.Int).Set(event.Bond)
		}
		chain.Bonds = append(chain.Bonds, bond)
		chain.Answers = append(chain.Answers, event.Answer)
	}
	return chain
}
