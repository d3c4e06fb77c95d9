package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/domain/shared/valueobject"
	"github.com/gridbase/backend/internal/domain/tenant"
)

func setupSettingsTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE tenant_settings (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL UNIQUE,
			version INTEGER NOT NULL DEFAULT 1,
			company_name TEXT,
			company_address TEXT,
			company_tax_id TEXT,
			company_reg_no TEXT,
			company_email TEXT,
			company_phone TEXT,
			logo_key TEXT,
			base_currency TEXT NOT NULL DEFAULT 'RON',
			series_prefix TEXT,
			series_separator TEXT,
			series_include_year INTEGER NOT NULL DEFAULT 1,
			series_start_number INTEGER NOT NULL DEFAULT 1,
			series_pad_width INTEGER NOT NULL DEFAULT 4,
			e_invoice_token TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}

func TestGormSettingsRepository_SaveAndFind(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewGormSettingsRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	settings := tenant.NewSettings(tenantID)
	settings.CompanyName = "Acme SRL"
	settings.CompanyTaxID = "RO12345678"
	settings.Series.Prefix = "FACT"

	require.NoError(t, repo.Save(ctx, settings))

	retrieved, err := repo.FindByTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "Acme SRL", retrieved.CompanyName)
	assert.Equal(t, valueobject.RON, retrieved.BaseCurrency)
	assert.Equal(t, "FACT", retrieved.Series.Prefix)
	assert.Equal(t, int64(1), retrieved.Series.StartNumber)
	assert.False(t, retrieved.EInvoiceEnabled())
}

func TestGormSettingsRepository_FindMissing(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewGormSettingsRepository(db)

	_, err := repo.FindByTenant(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
