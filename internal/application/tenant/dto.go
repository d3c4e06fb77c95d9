package tenant

import (
	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/tenant"
)

// UpdateSettingsRequest carries a partial settings update. Nil fields
// are left unchanged.
type UpdateSettingsRequest struct {
	CompanyName    *string `json:"company_name" binding:"omitempty,max=255"`
	CompanyAddress *string `json:"company_address" binding:"omitempty,max=500"`
	CompanyTaxID   *string `json:"company_tax_id" binding:"omitempty,max=32"`
	CompanyRegNo   *string `json:"company_reg_no" binding:"omitempty,max=32"`
	CompanyEmail   *string `json:"company_email" binding:"omitempty,email"`
	CompanyPhone   *string `json:"company_phone" binding:"omitempty,max=32"`
	BaseCurrency   *string `json:"base_currency" binding:"omitempty,currency_code"`
	EInvoiceToken  *string `json:"einvoice_token"`

	Series *SeriesConfigRequest `json:"series"`
}

// SeriesConfigRequest replaces the tenant's numbering series as a whole
type SeriesConfigRequest struct {
	Prefix      string `json:"prefix" binding:"required,max=16"`
	Separator   string `json:"separator" binding:"omitempty,max=4"`
	IncludeYear bool   `json:"include_year"`
	StartNumber int64  `json:"start_number" binding:"omitempty,min=1"`
	PadWidth    int    `json:"pad_width" binding:"omitempty,min=1,max=12"`
}

// SettingsResponse is the settings representation returned to clients.
// The e-invoice token is never echoed back, only its presence.
type SettingsResponse struct {
	TenantID        string                 `json:"tenant_id"`
	CompanyName     string                 `json:"company_name"`
	CompanyAddress  string                 `json:"company_address"`
	CompanyTaxID    string                 `json:"company_tax_id"`
	CompanyRegNo    string                 `json:"company_reg_no"`
	CompanyEmail    string                 `json:"company_email"`
	CompanyPhone    string                 `json:"company_phone"`
	HasLogo         bool                   `json:"has_logo"`
	BaseCurrency    string                 `json:"base_currency"`
	Series          invoicing.SeriesConfig `json:"series"`
	EInvoiceEnabled bool                   `json:"einvoice_enabled"`
}

// PresignedURLResponse carries a presigned object storage URL
type PresignedURLResponse struct {
	URL        string `json:"url"`
	StorageKey string `json:"storage_key"`
	ExpiresAt  string `json:"expires_at"`
}

func toSettingsResponse(s *tenant.Settings) *SettingsResponse {
	return &SettingsResponse{
		TenantID:        s.TenantID.String(),
		CompanyName:     s.CompanyName,
		CompanyAddress:  s.CompanyAddress,
		CompanyTaxID:    s.CompanyTaxID,
		CompanyRegNo:    s.CompanyRegNo,
		CompanyEmail:    s.CompanyEmail,
		CompanyPhone:    s.CompanyPhone,
		HasLogo:         s.LogoKey != "",
		BaseCurrency:    string(s.BaseCurrency),
		Series:          s.Series.Normalize(),
		EInvoiceEnabled: s.EInvoiceEnabled(),
	}
}
