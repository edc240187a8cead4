package database

import (
	"context"
	"database/sql"
	"errors"
)

// MaxErrorCount is the consecutive-failure threshold after which a feed is
// deactivated until externally reactivated.
const MaxErrorCount = 5

var (
	ErrFeedNotFound  = errors.New("feed not found")
	ErrEntryNotFound = errors.New("entry not found")
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so the same repository
// code serves autocommit access and a feed worker's transaction scope.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
