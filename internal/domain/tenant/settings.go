package tenant

import (
	"context"

	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/domain/shared/valueobject"
)

// Settings holds per-tenant configuration: the company identity used
// to enrich invoices, the default numbering series, the base currency
// and the opaque e-invoicing access token. One row per tenant.
type Settings struct {
	shared.TenantEntity
	CompanyName    string
	CompanyAddress string
	CompanyTaxID   string
	CompanyRegNo   string
	CompanyEmail   string
	CompanyPhone   string
	LogoKey        string
	BaseCurrency   valueobject.Currency
	Series         invoicing.SeriesConfig

	// EInvoiceToken is the ANAF access token obtained out of band.
	// Empty means e-invoicing is disabled for the tenant.
	EInvoiceToken string
}

// NewSettings creates default settings for a tenant
func NewSettings(tenantID uuid.UUID) *Settings {
	return &Settings{
		TenantEntity: shared.NewTenantEntity(tenantID),
		BaseCurrency: valueobject.DefaultCurrency,
		Series:       invoicing.DefaultSeriesConfig(),
	}
}

// EInvoiceEnabled reports whether the tenant can submit e-invoices
func (s *Settings) EInvoiceEnabled() bool {
	return s.EInvoiceToken != ""
}

// SettingsRepository persists tenant settings
type SettingsRepository interface {
	Save(ctx context.Context, settings *Settings) error
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*Settings, error)
}
