package gateway

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// marketABI describes the oracle market contract surface this client touches:
// the answer event stream, the question state getters, and the settlement
// entrypoint. Administrative and ownership methods are deliberately absent.
const marketABI = `[
  {
    "type": "event",
    "name": "NewAnswer",
    "inputs": [
      {"name": "questionId", "type": "bytes32", "indexed": true},
      {"name": "user", "type": "address", "indexed": true},
      {"name": "answer", "type": "bytes32", "indexed": false},
      {"name": "historyHash", "type": "bytes32", "indexed": false},
      {"name": "bond", "type": "uint256", "indexed": false},
      {"name": "ts", "type": "uint256", "indexed": false}
    ]
  },
  {
    "type": "function",
    "name": "bestAnswer",
    "stateMutability": "view",
    "inputs": [{"name": "questionId", "type": "bytes32"}],
    "outputs": [{"name": "", "type": "bytes32"}]
  },
  {
    "type": "function",
    "name": "finalizeTimestamp",
    "stateMutability": "view",
    "inputs": [{"name": "questionId", "type": "bytes32"}],
    "outputs": [{"name": "", "type": "uint256"}]
  },
  {
    "type": "function",
    "name": "historyHash",
    "stateMutability": "view",
    "inputs": [{"name": "questionId", "type": "bytes32"}],
    "outputs": [{"name": "", "type": "bytes32"}]
  },
  {
    "type": "function",
    "name": "isFinalized",
    "stateMutability": "view",
    "inputs": [{"name": "questionId", "type": "bytes32"}],
    "outputs": [{"name": "", "type": "bool"}]
  },
  {
    "type": "function",
    "name": "claimWinnings",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "questionId", "type": "bytes32"},
      {"name": "historyHashes", "type": "bytes32[]"},
      {"name": "claimants", "type": "address[]"},
      {"name": "bonds", "type": "uint256[]"},
      {"name": "answers", "type": "bytes32[]"}
    ],
    "outputs": []
  }
]`

// MarketABI parses the embedded contract ABI. The JSON is a compile-time
// constant, so a parse failure is a programming error and panics at init.
func MarketABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(marketABI))
	if err != nil {
		panic("gateway: invalid embedded market ABI: " + err.Error())
	}
	return parsed
}
