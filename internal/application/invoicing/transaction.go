package invoicing

import (
	"context"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/schema"
)

// TransactionalRepositories exposes the repositories bound to one
// transaction. Invoice creation performs all its writes through these,
// so the allocated number and every row land or roll back together.
type TransactionalRepositories interface {
	SequenceRepo() invoicing.SequenceRepository
	RowRepo() schema.RowRepository
	TableRepo() schema.TableRepository
}

// TransactionScope runs a function within a database transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
