package invoicing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/domain/tenant"
	"github.com/gridbase/backend/internal/infrastructure/telemetry"
)

// InvoiceDocument bundles everything the PDF renderer needs: the
// invoice read model and the issuing company's identity
type InvoiceDocument struct {
	Invoice *invoicing.Invoice
	Company *tenant.Settings
}

// InvoiceRenderer renders an invoice document to PDF bytes.
// Implemented by the headless-browser renderer in infrastructure.
type InvoiceRenderer interface {
	RenderPDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}

// PDFService produces invoice PDFs on demand. Documents are rendered
// per request and streamed, never stored.
type PDFService struct {
	queries      *QueryService
	settingsRepo tenant.SettingsRepository
	renderer     InvoiceRenderer
	metrics      *telemetry.BusinessMetrics
}

// SetBusinessMetrics sets the business metrics collector
func (s *PDFService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// NewPDFService creates a new PDFService. Renderer may be nil when PDF
// generation is disabled.
func NewPDFService(queries *QueryService, settingsRepo tenant.SettingsRepository, renderer InvoiceRenderer) *PDFService {
	return &PDFService{
		queries:      queries,
		settingsRepo: settingsRepo,
		renderer:     renderer,
	}
}

// Render returns the PDF bytes and a download filename for one invoice
func (s *PDFService) Render(ctx context.Context, tenantID, databaseID, rowID uuid.UUID) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", shared.NewDomainError("PDF_DISABLED", "PDF rendering is not configured")
	}
	invoice, err := s.queries.GetInvoice(ctx, tenantID, databaseID, rowID)
	if err != nil {
		return nil, "", err
	}
	company := loadTenantSettings(ctx, s.settingsRepo, tenantID)

	pdf, err := s.renderer.RenderPDF(ctx, InvoiceDocument{Invoice: invoice, Company: company})
	if err != nil {
		return nil, "", fmt.Errorf("render invoice pdf: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordPDFRender(ctx, tenantID)
	}

	filename := "invoice.pdf"
	if invoice.Number != "" {
		filename = invoice.Number + ".pdf"
	}
	return pdf, filename, nil
}
