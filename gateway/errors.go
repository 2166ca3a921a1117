package gateway

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// SubmissionError reports a transaction the remote verifier refused. The
// revert reason is carried verbatim when the node exposes it; a rejected
// claim chain manifests exclusively as one of these, so the reason must never
// be swallowed.
type SubmissionError struct {
	Method string
	Reason string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("submission rejected: %s: %s", e.Method, e.Reason)
	}
	return fmt.Sprintf("submission rejected: %s: %v", e.Method, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func newSubmissionError(method string, err error) *SubmissionError {
	return &SubmissionError{Method: method, Reason: revertReason(err), Err: err}
}

// revertReason extracts the ABI-encoded revert string from an RPC error, when
// present. Nodes attach the raw return data via the rpc.DataError interface.
func revertReason(err error) string {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return ""
	}
	encoded, ok := dataErr.ErrorData().(string)
	if !ok {
		return ""
	}
	data, decodeErr := hexutil.Decode(encoded)
	if decodeErr != nil {
		return ""
	}
	reason, unpackErr := abi.UnpackRevert(data)
	if unpackErr != nil {
		return ""
	}
	return reason
}
