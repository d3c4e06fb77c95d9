package models

import (
	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/shared/valueobject"
	"github.com/gridbase/backend/internal/domain/tenant"
)

// SettingsModel is the persistence model for tenant settings. The
// numbering series is flattened into series_* columns.
type SettingsModel struct {
	TenantModel
	CompanyName       string `gorm:"type:varchar(200)"`
	CompanyAddress    string `gorm:"type:text"`
	CompanyTaxID      string `gorm:"type:varchar(40)"`
	CompanyRegNo      string `gorm:"type:varchar(40)"`
	CompanyEmail      string `gorm:"type:varchar(200)"`
	CompanyPhone      string `gorm:"type:varchar(40)"`
	LogoKey           string `gorm:"type:varchar(500)"`
	BaseCurrency      string `gorm:"type:varchar(3);not null;default:'RON'"`
	SeriesPrefix      string `gorm:"type:varchar(20)"`
	SeriesSeparator   string `gorm:"type:varchar(5)"`
	SeriesIncludeYear bool   `gorm:"not null;default:true"`
	SeriesStartNumber int64  `gorm:"not null;default:1"`
	SeriesPadWidth    int    `gorm:"not null;default:4"`
	EInvoiceToken     string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SettingsModel) TableName() string {
	return "tenant_settings"
}

// ToDomain converts the persistence model to domain Settings
func (m *SettingsModel) ToDomain() *tenant.Settings {
	return &tenant.Settings{
		TenantEntity:   m.TenantModel.ToDomain(),
		CompanyName:    m.CompanyName,
		CompanyAddress: m.CompanyAddress,
		CompanyTaxID:   m.CompanyTaxID,
		CompanyRegNo:   m.CompanyRegNo,
		CompanyEmail:   m.CompanyEmail,
		CompanyPhone:   m.CompanyPhone,
		LogoKey:        m.LogoKey,
		BaseCurrency:   valueobject.Currency(m.BaseCurrency),
		Series: invoicing.SeriesConfig{
			Prefix:      m.SeriesPrefix,
			Separator:   m.SeriesSeparator,
			IncludeYear: m.SeriesIncludeYear,
			StartNumber: m.SeriesStartNumber,
			PadWidth:    m.SeriesPadWidth,
		}.Normalize(),
		EInvoiceToken: m.EInvoiceToken,
	}
}

// FromDomain populates the persistence model from domain Settings
func (m *SettingsModel) FromDomain(s *tenant.Settings) {
	m.FromDomainTenantEntity(s.TenantEntity)
	m.CompanyName = s.CompanyName
	m.CompanyAddress = s.CompanyAddress
	m.CompanyTaxID = s.CompanyTaxID
	m.CompanyRegNo = s.CompanyRegNo
	m.CompanyEmail = s.CompanyEmail
	m.CompanyPhone = s.CompanyPhone
	m.LogoKey = s.LogoKey
	m.BaseCurrency = string(s.BaseCurrency)
	m.SeriesPrefix = s.Series.Prefix
	m.SeriesSeparator = s.Series.Separator
	m.SeriesIncludeYear = s.Series.IncludeYear
	m.SeriesStartNumber = s.Series.StartNumber
	m.SeriesPadWidth = s.Series.PadWidth
	m.EInvoiceToken = s.EInvoiceToken
}
