package invoicing

import (
	"context"

	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/tenant"
)

// loadTenantSettings fetches the tenant's settings, falling back to
// defaults for tenants that never saved any. Read errors also fall
// back so invoicing keeps working with the default series.
func loadTenantSettings(ctx context.Context, repo tenant.SettingsRepository, tenantID uuid.UUID) *tenant.Settings {
	settings, err := repo.FindByTenant(ctx, tenantID)
	if err != nil || settings == nil {
		return tenant.NewSettings(tenantID)
	}
	return settings
}
