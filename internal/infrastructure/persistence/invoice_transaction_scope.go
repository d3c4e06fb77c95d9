package persistence

import (
	"context"

	appinvoicing "github.com/gridbase/backend/internal/application/invoicing"
	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/schema"
	"gorm.io/gorm"
)

// GormInvoiceTransactionScope implements TransactionScope using GORM
// transactions. Invoice creation allocates its number and writes its
// rows through repositories bound to one transaction, so a failure in
// any step rolls back the allocated number along with the rows.
type GormInvoiceTransactionScope struct {
	db *gorm.DB
}

// NewGormInvoiceTransactionScope creates a new GormInvoiceTransactionScope
func NewGormInvoiceTransactionScope(db *gorm.DB) *GormInvoiceTransactionScope {
	return &GormInvoiceTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormInvoiceTransactionScope) Execute(ctx context.Context, fn func(repos appinvoicing.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormInvoiceRepositories{tx: tx}
		return fn(repos)
	})
}

// gormInvoiceRepositories provides transaction-scoped repositories.
type gormInvoiceRepositories struct {
	tx *gorm.DB
}

// SequenceRepo returns the numbering repository scoped to the transaction.
func (r *gormInvoiceRepositories) SequenceRepo() invoicing.SequenceRepository {
	return NewGormSequenceRepository(r.tx)
}

// RowRepo returns the row repository scoped to the transaction.
func (r *gormInvoiceRepositories) RowRepo() schema.RowRepository {
	return NewGormRowRepository(r.tx)
}

// TableRepo returns the table repository scoped to the transaction.
func (r *gormInvoiceRepositories) TableRepo() schema.TableRepository {
	return NewGormTableRepository(r.tx)
}

// Ensure GormInvoiceTransactionScope implements TransactionScope
var _ appinvoicing.TransactionScope = (*GormInvoiceTransactionScope)(nil)

// Ensure gormInvoiceRepositories implements TransactionalRepositories
var _ appinvoicing.TransactionalRepositories = (*gormInvoiceRepositories)(nil)
