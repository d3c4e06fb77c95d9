package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/infrastructure/persistence/models"
)

// GormSequenceRepository implements invoicing.SequenceRepository using
// GORM. NextValue must run on a transaction-scoped handle: the counter
// row stays locked until that transaction commits or rolls back, which
// is what keeps issued numbers unique and gap-free under concurrency.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// NextValue locks the counter row for the scope, creates it at
// startNumber-1 on first use, then increments and returns the value.
func (r *GormSequenceRepository) NextValue(ctx context.Context, scope invoicing.SequenceScope, startNumber int64) (int64, error) {
	query := r.db.WithContext(ctx)
	// SQLite rejects FOR UPDATE and serializes writers on its own.
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	inScope := func(tx *gorm.DB) *gorm.DB {
		return tx.Where("tenant_id = ? AND database_id = ? AND series = ? AND year = ?",
			scope.TenantID, scope.DatabaseID, scope.Series, scope.Year)
	}

	var model models.SequenceModel
	err := inScope(query).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq := invoicing.NewSequence(scope, startNumber)
		model.FromDomain(seq)
		// Concurrent first allocations race on the unique scope index.
		// DO NOTHING keeps the loser's transaction alive; it then reads
		// the winner's row, blocking on the row lock until their commit.
		res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			model = models.SequenceModel{}
			if err := inScope(query).First(&model).Error; err != nil {
				return 0, err
			}
		}
	} else if err != nil {
		return 0, err
	}

	seq := model.ToDomain()
	value := seq.Next()
	model.FromDomain(seq)
	if err := r.db.WithContext(ctx).
		Model(&models.SequenceModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"last_value": model.LastValue,
			"updated_at": model.UpdatedAt,
		}).Error; err != nil {
		return 0, err
	}
	return value, nil
}

// FindAllForDatabase returns every counter for a logical database
func (r *GormSequenceRepository) FindAllForDatabase(ctx context.Context, tenantID, databaseID uuid.UUID) ([]invoicing.Sequence, error) {
	var sequenceModels []models.SequenceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND database_id = ?", tenantID, databaseID).
		Order("series ASC, year ASC").
		Find(&sequenceModels).Error; err != nil {
		return nil, err
	}
	sequences := make([]invoicing.Sequence, len(sequenceModels))
	for i := range sequenceModels {
		sequences[i] = *sequenceModels[i].ToDomain()
	}
	return sequences, nil
}

// FindByScope returns the counter for one scope, if it exists
func (r *GormSequenceRepository) FindByScope(ctx context.Context, scope invoicing.SequenceScope) (*invoicing.Sequence, error) {
	var model models.SequenceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND database_id = ? AND series = ? AND year = ?",
			scope.TenantID, scope.DatabaseID, scope.Series, scope.Year).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormSequenceRepository implements invoicing.SequenceRepository
var _ invoicing.SequenceRepository = (*GormSequenceRepository)(nil)
