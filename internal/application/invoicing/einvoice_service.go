package invoicing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/domain/tenant"
	"github.com/gridbase/backend/internal/infrastructure/telemetry"
)

// EInvoiceClient talks to the national e-invoicing API. Implemented by
// the ANAF HTTP client in infrastructure.
type EInvoiceClient interface {
	Upload(ctx context.Context, token string, invoiceXML []byte) (uploadIndex string, err error)
	CheckStatus(ctx context.Context, token, uploadIndex string) (invoicing.SubmissionStatus, string, error)
}

// EInvoiceService submits invoices to the e-invoicing API and tracks
// their acceptance state. Submission is explicit per invoice, never
// automatic on creation.
type EInvoiceService struct {
	settingsRepo   tenant.SettingsRepository
	submissionRepo invoicing.SubmissionRepository
	queries        *QueryService
	client         EInvoiceClient
	metrics        *telemetry.BusinessMetrics
	logger         *zap.Logger
}

// SetBusinessMetrics sets the business metrics collector
func (s *EInvoiceService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// NewEInvoiceService creates a new EInvoiceService
func NewEInvoiceService(
	settingsRepo tenant.SettingsRepository,
	submissionRepo invoicing.SubmissionRepository,
	queries *QueryService,
	client EInvoiceClient,
	logger *zap.Logger,
) *EInvoiceService {
	return &EInvoiceService{
		settingsRepo:   settingsRepo,
		submissionRepo: submissionRepo,
		queries:        queries,
		client:         client,
		logger:         logger,
	}
}

// Submit uploads one invoice. The tenant must have an access token
// configured; invoices without a number cannot be submitted.
func (s *EInvoiceService) Submit(ctx context.Context, tenantID, databaseID, invoiceRowID uuid.UUID) (*SubmissionResponse, error) {
	if s.client == nil {
		return nil, shared.NewDomainError("EINVOICE_DISABLED", "E-invoicing is not configured")
	}
	settings := loadTenantSettings(ctx, s.settingsRepo, tenantID)
	if !settings.EInvoiceEnabled() {
		return nil, shared.NewDomainError("EINVOICE_DISABLED", "Tenant has no e-invoicing access token")
	}

	invoice, err := s.queries.GetInvoice(ctx, tenantID, databaseID, invoiceRowID)
	if err != nil {
		return nil, err
	}
	if invoice.Number == "" {
		return nil, shared.NewDomainError("INVALID_STATE", "Invoice has no number")
	}

	// An accepted invoice is final at the tax authority; a second upload
	// would register a duplicate document there.
	if existing, err := s.submissionRepo.FindByInvoice(ctx, tenantID, invoiceRowID); err == nil &&
		existing.Status == invoicing.SubmissionAccepted {
		return nil, shared.NewDomainError("INVALID_STATE", "Invoice has already been accepted by the e-invoicing API")
	}

	invoiceXML, err := BuildInvoiceXML(invoice, settings)
	if err != nil {
		return nil, fmt.Errorf("build invoice xml: %w", err)
	}

	uploadIndex, err := s.client.Upload(ctx, settings.EInvoiceToken, invoiceXML)
	if err != nil {
		// A failed upload is still recorded so operators can see the
		// attempt and its error.
		failed := invoicing.NewSubmission(tenantID, databaseID, invoiceRowID, "")
		failed.MarkStatus(invoicing.SubmissionFailed, err.Error())
		if saveErr := s.submissionRepo.Save(ctx, failed); saveErr != nil {
			s.logger.Error("record failed submission", zap.Error(saveErr))
		}
		s.recordSubmission(ctx, tenantID, invoicing.SubmissionFailed)
		return nil, fmt.Errorf("upload e-invoice: %w", err)
	}

	submission := invoicing.NewSubmission(tenantID, databaseID, invoiceRowID, uploadIndex)
	if err := s.submissionRepo.Save(ctx, submission); err != nil {
		return nil, err
	}
	s.recordSubmission(ctx, tenantID, submission.Status)
	s.logger.Info("e-invoice submitted",
		zap.String("invoice_number", invoice.Number),
		zap.String("upload_index", uploadIndex))
	return toSubmissionResponse(submission), nil
}

// Status returns the latest submission state for an invoice, polling
// the remote API while the submission is still pending
func (s *EInvoiceService) Status(ctx context.Context, tenantID, invoiceRowID uuid.UUID) (*SubmissionResponse, error) {
	submission, err := s.submissionRepo.FindByInvoice(ctx, tenantID, invoiceRowID)
	if err != nil {
		return nil, err
	}
	if submission.Status != invoicing.SubmissionPending || s.client == nil {
		return toSubmissionResponse(submission), nil
	}

	settings := loadTenantSettings(ctx, s.settingsRepo, tenantID)
	if !settings.EInvoiceEnabled() {
		return toSubmissionResponse(submission), nil
	}

	status, message, err := s.client.CheckStatus(ctx, settings.EInvoiceToken, submission.UploadIndex)
	if err != nil {
		// Poll failures leave the submission pending; the next status
		// request retries.
		s.logger.Warn("e-invoice status poll failed",
			zap.String("upload_index", submission.UploadIndex),
			zap.Error(err))
		return toSubmissionResponse(submission), nil
	}
	if status != submission.Status {
		submission.MarkStatus(status, message)
		if err := s.submissionRepo.Save(ctx, submission); err != nil {
			return nil, err
		}
		s.recordSubmission(ctx, tenantID, status)
	}
	return toSubmissionResponse(submission), nil
}

// recordSubmission counts one submission state change. Polls that leave
// the state unchanged are not counted.
func (s *EInvoiceService) recordSubmission(ctx context.Context, tenantID uuid.UUID, status invoicing.SubmissionStatus) {
	if s.metrics != nil {
		s.metrics.RecordEInvoiceSubmission(ctx, tenantID, string(status))
	}
}
