package persistence

import (
	"context"

	"github.com/dyehouse/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactor opens a transaction and carries it in the context so every
// repository built on the same *gorm.DB writes through it
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor creates a transactor over db
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// InTransaction commits when fn returns nil and rolls back otherwise
func (t *GormTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx, or db
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

var _ shared.Transactor = (*GormTransactor)(nil)
