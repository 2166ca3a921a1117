package market

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// QuestionStateResolver reads a question's current on-ledger state. It never
// mutates the ledger.
type QuestionStateResolver struct {
	reader LedgerReader
	log    *slog.Logger
}

// NewQuestionStateResolver constructs a resolver over the supplied reader.
func NewQuestionStateResolver(reader LedgerReader, log *slog.Logger) *QuestionStateResolver {
	if log == nil {
		log = slog.Default()
	}
	return &QuestionStateResolver{reader: reader, log: log}
}

// Resolve returns a snapshot of the question. An unknown question comes back
// as an all-zero snapshot rather than an error; the ledger stores zero values
// for unknown keys and callers check Exists explicitly.
func (r *QuestionStateResolver) Resolve(ctx context.Context, questionID common.Hash) (Question, error) {
	question := Question{ID: questionID}

	best, err := r.readHash(ctx, MethodBestAnswer, questionID)
	if err != nil {
		return Question{}, err
	}
	question.BestAnswer = best

	history, err := r.readHash(ctx, MethodHistoryHash, questionID)
	if err != nil {
		return Question{}, err
	}
	question.HistoryHash = history

	out, err := r.reader.ReadState(ctx, MethodFinalizeTimestamp, questionID)
	if err != nil {
		return Question{}, sourceErr("read finalize timestamp", err)
	}
	ts, err := asBigInt(out)
	if err != nil {
		return Question{}, fmt.Errorf("read finalize timestamp: %w", err)
	}
	question.FinalizeTimestamp = ts.Uint64()

	out, err = r.reader.ReadState(ctx, MethodIsFinalized, questionID)
	if err != nil {
		return Question{}, sourceErr("read finalized flag", err)
	}
	finalized, err := asBool(out)
	if err != nil {
		return Question{}, fmt.Errorf("read finalized flag: %w", err)
	}
	question.Finalized = finalized

	return question, nil
}

func (r *QuestionStateResolver) readHash(ctx context.Context, method string, questionID common.Hash) (common.Hash, error) {
	out, err := r.reader.ReadState(ctx, method, questionID)
	if err != nil {
		return common.Hash{}, sourceErr("read "+method, err)
	}
	hash, err := asHash(out)
	if err != nil {
		return common.Hash{}, fmt.Errorf("read %s: %w", method, err)
	}
	return hash, nil
}

func asHash(out []any) (common.Hash, error) {
	if len(out) != 1 {
		return common.Hash{}, fmt.Errorf("expected one return value, got %d", len(out))
	}
	switch v := out[0].(type) {
	case common.Hash:
		return v, nil
	case [32]byte:
		return common.Hash(v), nil
	default:
		return common.Hash{}, fmt.Errorf("unexpected return type %T", out[0])
	}
}

func asBigInt(out []any) (*big.Int, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("expected one return value, got %d", len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected return type %T", out[0])
	}
	return v, nil
}

func asBool(out []any) (bool, error) {
	if len(out) != 1 {
		return false, fmt.Errorf("expected one return value, got %d", len(out))
	}
	v, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected return type %T", out[0])
	}
	return v, nil
}
