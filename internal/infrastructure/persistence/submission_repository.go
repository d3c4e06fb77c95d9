package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/infrastructure/persistence/models"
)

// GormSubmissionRepository implements invoicing.SubmissionRepository
// using GORM
type GormSubmissionRepository struct {
	db *gorm.DB
}

// NewGormSubmissionRepository creates a new GormSubmissionRepository
func NewGormSubmissionRepository(db *gorm.DB) *GormSubmissionRepository {
	return &GormSubmissionRepository{db: db}
}

// Save creates or updates an e-invoice submission
func (r *GormSubmissionRepository) Save(ctx context.Context, submission *invoicing.Submission) error {
	var model models.SubmissionModel
	model.FromDomain(submission)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindByInvoice finds the latest submission for an invoice row
func (r *GormSubmissionRepository) FindByInvoice(ctx context.Context, tenantID, invoiceRowID uuid.UUID) (*invoicing.Submission, error) {
	var model models.SubmissionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_row_id = ?", tenantID, invoiceRowID).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormSubmissionRepository implements invoicing.SubmissionRepository
var _ invoicing.SubmissionRepository = (*GormSubmissionRepository)(nil)
