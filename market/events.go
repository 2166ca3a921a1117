package market

import (
	"context"
	"log/slog"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultLogWindow bounds a single log query. Public providers commonly cap
// the block range of eth_getLogs; chunking keeps the full history reachable.
const DefaultLogWindow = 50_000

// newAnswerEvent mirrors the NewAnswer event layout for ABI decoding.
type newAnswerEvent struct {
	QuestionID  [32]byte       `abi:"questionId"`
	User        common.Address `abi:"user"`
	Answer      [32]byte       `abi:"answer"`
	HistoryHash [32]byte       `abi:"historyHash"`
	Bond        *big.Int       `abi:"bond"`
	Ts          *big.Int       `abi:"ts"`
}

// EventSource replays the answer history of a question from the ledger's
// event log. It holds no state between calls; every Fetch reads the ledger
// fresh.
type EventSource struct {
	reader LedgerReader
	window uint64
	log    *slog.Logger
}

// NewEventSource constructs a source over the supplied reader. A zero window
// falls back to DefaultLogWindow.
func NewEventSource(reader LedgerReader, window uint64, log *slog.Logger) *EventSource {
	if window == 0 {
		window = DefaultLogWindow
	}
	if log == nil {
		log = slog.Default()
	}
	return &EventSource{reader: reader, window: window, log: log}
}

// Fetch returns every answer event for the question from ledger genesis to
// the latest observed block, ascending in ledger order. A question with no
// answers yields an empty slice, not an error. When user is non-nil the query
// is narrowed to that poster's events via the indexed topic.
func (s *EventSource) Fetch(ctx context.Context, questionID common.Hash, user *common.Address) ([]AnswerEvent, error) {
	head, err := s.reader.LatestBlock(ctx)
	if err != nil {
		return nil, sourceErr("fetch head", err)
	}
	topics := [][]common.Hash{{questionID}}
	if user != nil {
		topics = append(topics, []common.Hash{common.BytesToHash(user.Bytes())})
	}

	events := make([]AnswerEvent, 0)
	for from := uint64(0); ; {
		to := head
		if s.window > 0 && head-from >= s.window {
			to = from + s.window - 1
		}
		logs, err := s.reader.QueryEvents(ctx, EventNewAnswer, topics, from, to)
		if err != nil {
			return nil, sourceErr("query answer events", err)
		}
		for _, lg := range logs {
			var raw newAnswerEvent
			if err := s.reader.DecodeEvent(EventNewAnswer, lg, &raw); err != nil {
				return nil, sourceErr("decode answer event", err)
			}
			events = append(events, AnswerEvent{
				QuestionID:  common.Hash(raw.QuestionID),
				User:        raw.User,
				Answer:      common.Hash(raw.Answer),
				Bond:        raw.Bond,
				HistoryHash: common.Hash(raw.HistoryHash),
				BlockNumber: lg.BlockNumber,
				LogIndex:    lg.Index,
			})
		}
		if to >= head {
			break
		}
		from = to + 1
	}

	// Chunked queries concatenate in ascending order already; the stable sort
	// only restores ledger order if a provider returns a chunk out of order.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Before(events[j])
	})
	s.log.Debug("fetched answer history",
		"question", questionID.Hex(),
		"events", len(events),
		"head", head,
	)
	return events, nil
}
