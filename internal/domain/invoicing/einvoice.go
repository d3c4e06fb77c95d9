package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus tracks an e-invoice upload through its lifecycle
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionAccepted SubmissionStatus = "accepted"
	SubmissionRejected SubmissionStatus = "rejected"
	SubmissionFailed   SubmissionStatus = "failed"
)

// Submission records one upload of an invoice to the e-invoicing API.
// UploadIndex is the remote identifier returned on upload and used for
// status polling.
type Submission struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	DatabaseID   uuid.UUID
	InvoiceRowID uuid.UUID
	UploadIndex  string
	Status       SubmissionStatus
	Message      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSubmission records a freshly-uploaded invoice
func NewSubmission(tenantID, databaseID, invoiceRowID uuid.UUID, uploadIndex string) *Submission {
	now := time.Now()
	return &Submission{
		ID:           uuid.New(),
		TenantID:     tenantID,
		DatabaseID:   databaseID,
		InvoiceRowID: invoiceRowID,
		UploadIndex:  uploadIndex,
		Status:       SubmissionPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MarkStatus updates the submission after a status poll
func (s *Submission) MarkStatus(status SubmissionStatus, message string) {
	s.Status = status
	s.Message = message
	s.UpdatedAt = time.Now()
}

// SubmissionRepository persists e-invoice submissions
type SubmissionRepository interface {
	Save(ctx context.Context, submission *Submission) error
	FindByInvoice(ctx context.Context, tenantID, invoiceRowID uuid.UUID) (*Submission, error)
}
