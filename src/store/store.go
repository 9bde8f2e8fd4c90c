// backend/src/store/store.go
package store

import (
	"database/sql"
	"errors"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Every store method takes one explicitly so the caller owns the
// transaction boundary: recalculation passes a *sql.Tx and commits or
// rolls back the whole derived-row rebuild as a unit.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvariantViolation signals a lot consumption exceeding the
	// remaining quantity. It indicates a matching-engine bug, never a
	// user error, and must abort the surrounding transaction.
	ErrInvariantViolation = errors.New("invariant violation")
)

// CanonicalOrder is the single total order every ledger component agrees
// on: trade date ascending, insertion id as tiebreak. Trade listing, the
// FIFO lot queue, and recalculation replay all sort by this fragment so
// they can never disagree on processing order.
const CanonicalOrder = "trade_date ASC, id ASC"

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
