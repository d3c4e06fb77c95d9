package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SequenceScope identifies one numbering counter. Year is 0 for
// year-less series.
type SequenceScope struct {
	TenantID   uuid.UUID
	DatabaseID uuid.UUID
	Series     string
	Year       int
}

// Sequence is the persistent counter backing invoice numbering for one
// scope. LastValue is the most recently issued counter value; the next
// number is LastValue+1. The row is locked for the duration of the
// creation transaction, so concurrent allocations serialize on it and
// the issued numbers stay unique and gap-free.
type Sequence struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	DatabaseID uuid.UUID
	Series     string
	Year       int
	LastValue  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Next advances the counter and returns the issued value
func (s *Sequence) Next() int64 {
	s.LastValue++
	s.UpdatedAt = time.Now()
	return s.LastValue
}

// NewSequence creates a fresh counter positioned just before startNumber
func NewSequence(scope SequenceScope, startNumber int64) *Sequence {
	now := time.Now()
	return &Sequence{
		ID:         uuid.New(),
		TenantID:   scope.TenantID,
		DatabaseID: scope.DatabaseID,
		Series:     scope.Series,
		Year:       scope.Year,
		LastValue:  startNumber - 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SequenceRepository allocates counter values. NextValue must hold a
// lock on the scope's row until the surrounding transaction ends, so
// two concurrent callers never receive the same value and a rolled-back
// creation releases its number for reuse.
type SequenceRepository interface {
	NextValue(ctx context.Context, scope SequenceScope, startNumber int64) (int64, error)
	FindAllForDatabase(ctx context.Context, tenantID, databaseID uuid.UUID) ([]Sequence, error)
}
