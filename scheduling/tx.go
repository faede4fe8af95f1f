package scheduling

import (
	"context"

	"gorm.io/gorm"
)

// TxRunner runs fn with a ledger and a store whose writes commit or roll
// back together.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ledger Ledger, store AppointmentStore) error) error
}

// GormTx binds the postgres ledger and the gorm store to one database
// transaction. It only applies when both live in the same database.
type GormTx struct {
	db *gorm.DB
}

func NewGormTx(db *gorm.DB) *GormTx {
	if db == nil {
		panic("scheduling: gorm db required")
	}
	return &GormTx{db: db}
}

func (t *GormTx) InTx(ctx context.Context, fn func(ledger Ledger, store AppointmentStore) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewPostgresLedger(tx), NewGormStore(tx))
	})
}
