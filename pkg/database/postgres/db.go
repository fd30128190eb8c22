package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/code-payments/counter-program/pkg/retry"
	"github.com/code-payments/counter-program/pkg/retry/backoff"
)

const (
	maxSerializationRetries = 5
)

// ExecuteRetryable retries fn while it fails with a serialization failure,
// which is expected under concurrent serializable transactions. Retries stop
// once ctx is done.
func ExecuteRetryable(ctx context.Context, fn func() error) error {
	_, err := retry.Retry(
		fn,
		func(_ uint, err error) bool { return IsSerializationFailure(err) },
		retry.Context(ctx),
		retry.Limit(maxSerializationRetries),
		retry.BackoffWithJitter(backoff.BinaryExponential(10*time.Millisecond), 250*time.Millisecond, 0.1),
	)
	return err
}

// ExecuteInTx runs fn within a new DB transaction at the provided isolation
// level. The transaction commits when fn succeeds and rolls back otherwise.
func ExecuteInTx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	if isolation == sql.LevelDefault {
		isolation = sql.LevelReadCommitted // Postgres default
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return errors.Wrap(err, "error starting db tx")
	}

	if err := fn(tx); err != nil {
		// Rollback releases the connection back to the pool
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Wrap(rollbackErr, "failed to rollback transaction")
		}
		return err
	}
	return tx.Commit()
}
