package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/domain/shared/valueobject"
	"github.com/gridbase/backend/internal/domain/tenant"
)

const logoURLExpiration = 15 * time.Minute

// SettingsService manages per-tenant settings and the company logo
type SettingsService struct {
	settingsRepo tenant.SettingsRepository
	storage      ObjectStorageService
}

// NewSettingsService creates a new SettingsService. Storage may be nil
// when object storage is disabled; logo operations then fail cleanly.
func NewSettingsService(settingsRepo tenant.SettingsRepository, storage ObjectStorageService) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		storage:      storage,
	}
}

// Get returns the tenant's settings, falling back to defaults when the
// tenant has never saved any. The defaults are not persisted on read.
func (s *SettingsService) Get(ctx context.Context, tenantID uuid.UUID) (*SettingsResponse, error) {
	settings, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(settings), nil
}

// Update applies a partial settings update and persists the result
func (s *SettingsService) Update(ctx context.Context, tenantID uuid.UUID, req UpdateSettingsRequest) (*SettingsResponse, error) {
	settings, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if req.CompanyName != nil {
		settings.CompanyName = *req.CompanyName
	}
	if req.CompanyAddress != nil {
		settings.CompanyAddress = *req.CompanyAddress
	}
	if req.CompanyTaxID != nil {
		settings.CompanyTaxID = *req.CompanyTaxID
	}
	if req.CompanyRegNo != nil {
		settings.CompanyRegNo = *req.CompanyRegNo
	}
	if req.CompanyEmail != nil {
		settings.CompanyEmail = *req.CompanyEmail
	}
	if req.CompanyPhone != nil {
		settings.CompanyPhone = *req.CompanyPhone
	}
	if req.EInvoiceToken != nil {
		settings.EInvoiceToken = *req.EInvoiceToken
	}
	if req.BaseCurrency != nil {
		if !valueobject.IsValidCurrencyCode(*req.BaseCurrency) {
			return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Invalid currency code %q", *req.BaseCurrency))
		}
		settings.BaseCurrency = valueobject.Currency(*req.BaseCurrency)
	}
	if req.Series != nil {
		settings.Series = invoicing.SeriesConfig{
			Prefix:      req.Series.Prefix,
			Separator:   req.Series.Separator,
			IncludeYear: req.Series.IncludeYear,
			StartNumber: req.Series.StartNumber,
			PadWidth:    req.Series.PadWidth,
		}.Normalize()
	}

	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return toSettingsResponse(settings), nil
}

// GenerateLogoUploadURL returns a presigned PUT URL for the tenant's
// logo. The key is stored only after ConfirmLogoUpload verifies the
// object exists.
func (s *SettingsService) GenerateLogoUploadURL(ctx context.Context, tenantID uuid.UUID, contentType string) (*PresignedURLResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Object storage is not configured")
	}
	key := logoStorageKey(tenantID)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, logoURLExpiration)
	if err != nil {
		return nil, fmt.Errorf("generate logo upload url: %w", err)
	}
	return &PresignedURLResponse{
		URL:        url,
		StorageKey: key,
		ExpiresAt:  expiresAt.Format(time.RFC3339),
	}, nil
}

// ConfirmLogoUpload records the logo key after the client finished the
// presigned upload
func (s *SettingsService) ConfirmLogoUpload(ctx context.Context, tenantID uuid.UUID) (*SettingsResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Object storage is not configured")
	}
	key := logoStorageKey(tenantID)
	exists, err := s.storage.ObjectExists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check logo object: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "No uploaded logo found for this tenant")
	}

	settings, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	settings.LogoKey = key
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return toSettingsResponse(settings), nil
}

// GenerateLogoDownloadURL returns a presigned GET URL for the stored logo
func (s *SettingsService) GenerateLogoDownloadURL(ctx context.Context, tenantID uuid.UUID) (*PresignedURLResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Object storage is not configured")
	}
	settings, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if settings.LogoKey == "" {
		return nil, shared.NewDomainError("NOT_FOUND", "Tenant has no logo")
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, settings.LogoKey, logoURLExpiration)
	if err != nil {
		return nil, fmt.Errorf("generate logo download url: %w", err)
	}
	return &PresignedURLResponse{
		URL:        url,
		StorageKey: settings.LogoKey,
		ExpiresAt:  expiresAt.Format(time.RFC3339),
	}, nil
}

// DeleteLogo removes the stored logo object and clears the key
func (s *SettingsService) DeleteLogo(ctx context.Context, tenantID uuid.UUID) error {
	settings, err := s.load(ctx, tenantID)
	if err != nil {
		return err
	}
	if settings.LogoKey == "" {
		return nil
	}
	if s.storage != nil {
		if err := s.storage.DeleteObject(ctx, settings.LogoKey); err != nil {
			return fmt.Errorf("delete logo object: %w", err)
		}
	}
	settings.LogoKey = ""
	return s.settingsRepo.Save(ctx, settings)
}

// load fetches the tenant's settings or builds fresh defaults
func (s *SettingsService) load(ctx context.Context, tenantID uuid.UUID) (*tenant.Settings, error) {
	settings, err := s.settingsRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return tenant.NewSettings(tenantID), nil
		}
		return nil, err
	}
	return settings, nil
}

func logoStorageKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("logos/%s/logo", tenantID)
}
