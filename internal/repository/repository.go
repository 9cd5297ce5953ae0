package repository

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/tripdiary/tripadmin/internal/apperror"
)

// storeErr logs a store failure and classifies it as unexpected.
// Errors that are already typed pass through untouched.
func storeErr(message string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	slog.Error(message, "error", err)
	return apperror.Unexpected(message, err)
}

// inTx runs fn inside a transaction on a dedicated connection.
// It commits when fn returns nil and rolls back otherwise.
func inTx(db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// No-op after a successful commit
		_ = tx.Rollback()
	}()

	err = fn(tx)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// isUniqueViolation works for both SQLite and PostgreSQL
func isUniqueViolation(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value")
}
