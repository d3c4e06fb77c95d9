package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/invoicing"
)

// SequenceModel is the persistence model for an invoice numbering
// counter. The unique index is the backstop against double allocation;
// the row lock taken by the repository is the primary guarantee.
type SequenceModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sequence_scope,priority:1"`
	DatabaseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sequence_scope,priority:2"`
	Series     string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_sequence_scope,priority:3"`
	Year       int       `gorm:"not null;uniqueIndex:idx_sequence_scope,priority:4"`
	LastValue  int64     `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "invoice_sequences"
}

// ToDomain converts the persistence model to a domain Sequence
func (m *SequenceModel) ToDomain() *invoicing.Sequence {
	return &invoicing.Sequence{
		ID:         m.ID,
		TenantID:   m.TenantID,
		DatabaseID: m.DatabaseID,
		Series:     m.Series,
		Year:       m.Year,
		LastValue:  m.LastValue,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Sequence
func (m *SequenceModel) FromDomain(s *invoicing.Sequence) {
	m.ID = s.ID
	m.TenantID = s.TenantID
	m.DatabaseID = s.DatabaseID
	m.Series = s.Series
	m.Year = s.Year
	m.LastValue = s.LastValue
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}

// SubmissionModel is the persistence model for an e-invoice submission
type SubmissionModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index:idx_submission_invoice"`
	DatabaseID   uuid.UUID `gorm:"type:uuid;not null"`
	InvoiceRowID uuid.UUID `gorm:"type:uuid;not null;index:idx_submission_invoice"`
	UploadIndex  string    `gorm:"type:varchar(64);not null"`
	Status       string    `gorm:"type:varchar(20);not null"`
	Message      string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SubmissionModel) TableName() string {
	return "invoice_submissions"
}

// ToDomain converts the persistence model to a domain Submission
func (m *SubmissionModel) ToDomain() *invoicing.Submission {
	return &invoicing.Submission{
		ID:           m.ID,
		TenantID:     m.TenantID,
		DatabaseID:   m.DatabaseID,
		InvoiceRowID: m.InvoiceRowID,
		UploadIndex:  m.UploadIndex,
		Status:       invoicing.SubmissionStatus(m.Status),
		Message:      m.Message,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Submission
func (m *SubmissionModel) FromDomain(s *invoicing.Submission) {
	m.ID = s.ID
	m.TenantID = s.TenantID
	m.DatabaseID = s.DatabaseID
	m.InvoiceRowID = s.InvoiceRowID
	m.UploadIndex = s.UploadIndex
	m.Status = string(s.Status)
	m.Message = s.Message
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}
