package handler

import (
	tenantapp "github.com/gridbase/backend/internal/application/tenant"
	"github.com/gin-gonic/gin"
)

// SettingsHandler handles tenant settings API endpoints
type SettingsHandler struct {
	BaseHandler
	settingsService *tenantapp.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *tenantapp.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// LogoUploadRequest represents a request for a presigned logo upload URL
// @Description	Request body for generating a presigned logo upload URL
// @Name HandlerLogoUploadRequest
type LogoUploadRequest struct {
	ContentType string `json:"content_type" binding:"required,oneof=image/png image/jpeg image/svg+xml image/webp" example:"image/png"`
}

// Get godoc
// @ID           getTenantSettings
//
//	@Summary		Get tenant settings
//	@Description	Get the tenant's company, currency and invoice numbering settings. Defaults are returned when nothing has been saved yet.
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	APIResponse[tenantapp.SettingsResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	resp, err := h.settingsService.Get(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Update godoc
// @ID           updateTenantSettings
//
//	@Summary		Update tenant settings
//	@Description	Apply a partial settings update. Omitted fields are left unchanged; the numbering series is replaced as a whole when present.
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenantapp.UpdateSettingsRequest	true	"Settings update request"
//	@Success		200		{object}	APIResponse[tenantapp.SettingsResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req tenantapp.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.settingsService.Update(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GenerateLogoUploadURL godoc
// @ID           generateLogoUploadURL
//
//	@Summary		Generate a logo upload URL
//	@Description	Generate a presigned object storage URL for uploading the company logo. The upload must be confirmed afterwards.
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LogoUploadRequest	true	"Upload URL request"
//	@Success		200		{object}	APIResponse[tenantapp.PresignedURLResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/settings/logo/upload-url [post]
func (h *SettingsHandler) GenerateLogoUploadURL(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req LogoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.settingsService.GenerateLogoUploadURL(c.Request.Context(), tenantID, req.ContentType)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ConfirmLogoUpload godoc
// @ID           confirmLogoUpload
//
//	@Summary		Confirm a logo upload
//	@Description	Confirm that the logo object referenced by the pending upload has been stored, making it the tenant's active logo
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	APIResponse[tenantapp.SettingsResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/settings/logo/confirm [post]
func (h *SettingsHandler) ConfirmLogoUpload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	resp, err := h.settingsService.ConfirmLogoUpload(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GenerateLogoDownloadURL godoc
// @ID           generateLogoDownloadURL
//
//	@Summary		Generate a logo download URL
//	@Description	Generate a presigned object storage URL for downloading the tenant's logo
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	APIResponse[tenantapp.PresignedURLResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/settings/logo/download-url [get]
func (h *SettingsHandler) GenerateLogoDownloadURL(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	resp, err := h.settingsService.GenerateLogoDownloadURL(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// DeleteLogo godoc
// @ID           deleteLogo
//
//	@Summary		Delete the logo
//	@Description	Delete the tenant's logo from object storage and clear the stored key
//	@Tags			settings
//	@Produce		json
//	@Success		204
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/settings/logo [delete]
func (h *SettingsHandler) DeleteLogo(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	if err := h.settingsService.DeleteLogo(c.Request.Context(), tenantID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
