package ledger

import (
	"errors"
	"fmt"
)

// ErrUnsupportedKind is returned (wrapped with the offending kind) when
// dispatch hits a transaction kind with no effect rule. It aborts the unit of
// work.
var ErrUnsupportedKind = errors.New("unsupported transaction kind")

// ErrUnsupportedOperation is returned for update/delete of existing
// transactions. The ledger is append-only: rewriting history would require
// recomputing all downstream holdings and cash balances, which is a deliberate
// scope boundary rather than a missing feature.
var ErrUnsupportedOperation = errors.New("transaction updates and deletions are not supported: the ledger is append-only")

// ValidationError reports a malformed transaction request. It is raised before
// any I/O happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid transaction: %s %s", e.Field, e.Reason)
}
