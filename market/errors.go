package market

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable wraps every ledger read failure surfaced by this
// package. Callers match it with errors.Is; the underlying transport error
// stays attached for diagnostics. Reads are never retried here.
var ErrSourceUnavailable = errors.New("ledger source unavailable")

func sourceErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrSourceUnavailable, err)
}
