package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"qualisync/internal/errs"
	"qualisync/internal/ports"
)

// base resolves the working *gorm.DB: the transaction handle from context
// when a unit of work is open, the root connection otherwise.
type base struct {
	db *gorm.DB
}

func (b base) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return b.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// translateLookup maps storage errors on read paths.
func translateLookup(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.ErrNotFound
	}
	return errs.Wrap(err, msg)
}

// translateWrite maps storage errors on write paths. Unique and
// foreign-key violations become ports.ErrConflict so reconcilers can take
// the concurrent-writer fallback.
func translateWrite(err error, msg string) error {
	if isConstraintViolation(err) {
		return fmt.Errorf("%s: %w", msg, ports.ErrConflict)
	}
	return errs.Wrap(err, msg)
}

func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	// The no-cgo sqlite driver does not always translate constraint
	// failures into gorm sentinels.
	text := err.Error()
	return strings.Contains(text, "UNIQUE constraint failed") ||
		strings.Contains(text, "FOREIGN KEY constraint failed") ||
		strings.Contains(text, "constraint failed")
}
