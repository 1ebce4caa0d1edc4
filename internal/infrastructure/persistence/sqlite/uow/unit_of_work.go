package uow

import (
	"context"

	"gorm.io/gorm"

	"qualisync/internal/ports"
)

// UnitOfWork implements ports.UnitOfWork with gorm. One hierarchy unit
// (a repository and its children, or an analysis project and its
// children) runs inside one transaction.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.WithTxContext(ctx, tx))
	})
}
