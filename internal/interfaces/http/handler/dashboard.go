package handler

import (
	dashboardapp "github.com/gridbase/backend/internal/application/dashboard"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DashboardHandler handles dashboard and widget API endpoints
type DashboardHandler struct {
	BaseHandler
	dashboardService *dashboardapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *dashboardapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Create godoc
// @ID           createDashboard
//
//	@Summary		Create a dashboard
//	@Description	Create a dashboard bound to a logical database
//	@Tags			dashboards
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dashboardapp.CreateDashboardRequest	true	"Dashboard creation request"
//	@Success		201		{object}	APIResponse[dashboardapp.DashboardResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/dashboards [post]
func (h *DashboardHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req dashboardapp.CreateDashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.dashboardService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// List godoc
// @ID           listDashboards
//
//	@Summary		List dashboards
//	@Description	List the tenant's dashboards with pagination, optionally narrowed by database or a name search
//	@Tags			dashboards
//	@Produce		json
//	@Param			page		query		int		false	"Page number (default 1)"
//	@Param			page_size	query		int		false	"Page size (default 20, max 200)"
//	@Param			search		query		string	false	"Name substring to search for"
//	@Param			database_id	query		string	false	"Filter by database ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]dashboardapp.DashboardResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/dashboards [get]
func (h *DashboardHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req dashboardapp.ListDashboardsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.dashboardService.List(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @ID           getDashboardByID
//
//	@Summary		Get a dashboard
//	@Description	Get a dashboard with its widgets by ID
//	@Tags			dashboards
//	@Produce		json
//	@Param			dashboard_id	path		string	true	"Dashboard ID"	format(uuid)
//	@Success		200				{object}	APIResponse[dashboardapp.DashboardResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		401				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		500				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/dashboards/{dashboard_id} [get]
func (h *DashboardHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	dashboardID, err := uuid.Parse(c.Param("dashboard_id"))
	if err != nil {
		h.BadRequest(c, "Invalid dashboard ID format")
		return
	}

	resp, err := h.dashboardService.Get(c.Request.Context(), tenantID, dashboardID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Update godoc
// @ID           updateDashboard
//
//	@Summary		Update a dashboard
//	@Description	Rename a dashboard or replace its layout. Omitted fields are left unchanged.
//	@Tags			dashboards
//	@Accept			json
//	@Produce		json
//	@Param			dashboard_id	path		string								true	"Dashboard ID"	format(uuid)
//	@Param			request			body		dashboardapp.UpdateDashboardRequest	true	"Dashboard update request"
//	@Success		200				{object}	APIResponse[dashboardapp.DashboardResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		401				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		500				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/dashboards/{dashboard_id} [put]
func (h *DashboardHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	dashboardID, err := uuid.Parse(c.Param("dashboard_id"))
	if err != nil {
		h.BadRequest(c, "Invalid dashboard ID format")
		return
	}

	var req dashboardapp.UpdateDashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.dashboardService.Update(c.Request.Context(), tenantID, dashboardID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete godoc
// @ID           deleteDashboard
//
//	@Summary		Delete a dashboard
//	@Description	Delete a dashboard with all its widgets
//	@Tags			dashboards
//	@Produce		json
//	@Param			dashboard_id	path	string	true	"Dashboard ID"	format(uuid)
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/dashboards/{dashboard_id} [delete]
func (h *DashboardHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	dashboardID, err := uuid.Parse(c.Param("dashboard_id"))
	if err != nil {
		h.BadRequest(c, "Invalid dashboard ID format")
		return
	}

	if err := h.dashboardService.Delete(c.Request.Context(), tenantID, dashboardID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// AddWidget godoc
// @ID           addDashboardWidget
//
//	@Summary		Add a widget
//	@Description	Add a widget to a dashboard. The widget is appended after the current last position.
//	@Tags			dashboards
//	@Accept			json
//	@Produce		json
//	@Param			dashboard_id	path		string								true	"Dashboard ID"	format(uuid)
//	@Param			request			body		dashboardapp.CreateWidgetRequest	true	"Widget creation request"
//	@Success		201				{object}	APIResponse[dashboardapp.DashboardResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		401				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		500				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/dashboards/{dashboard_id}/widgets [post]
func (h *DashboardHandler) AddWidget(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	dashboardID, err := uuid.Parse(c.Param("dashboard_id"))
	if err != nil {
		h.BadRequest(c, "Invalid dashboard ID format")
		return
	}

	var req dashboardapp.CreateWidgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.dashboardService.AddWidget(c.Request.Context(), tenantID, dashboardID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// UpdateWidget godoc
// @ID           updateDashboardWidget
//
//	@Summary		Update a widget
//	@Description	Change a widget's title, configuration or position. Omitted fields are left unchanged.
//	@Tags			dashboards
//	@Accept			json
//	@Produce		json
//	@Param			dashboard_id	path		string								true	"Dashboard ID"	format(uuid)
//	@Param			widget_id		path		string								true	"Widget ID"		format(uuid)
//	@Param			request			body		dashboardapp.UpdateWidgetRequest	true	"Widget update request"
//	@Success		200				{object}	APIResponse[dashboardapp.DashboardResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		401				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		500				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/dashboards/{dashboard_id}/widgets/{widget_id} [put]
func (h *DashboardHandler) UpdateWidget(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	dashboardID, err := uuid.Parse(c.Param("dashboard_id"))
	if err != nil {
		h.BadRequest(c, "Invalid dashboard ID format")
		return
	}

	widgetID, err := uuid.Parse(c.Param("widget_id"))
	if err != nil {
		h.BadRequest(c, "Invalid widget ID format")
		return
	}

	var req dashboardapp.UpdateWidgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.dashboardService.UpdateWidget(c.Request.Context(), tenantID, dashboardID, widgetID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// DeleteWidget godoc
// @ID           deleteDashboardWidget
//
//	@Summary		Delete a widget
//	@Description	Remove a widget from a dashboard
//	@Tags			dashboards
//	@Produce		json
//	@Param			dashboard_id	path	string	true	"Dashboard ID"	format(uuid)
//	@Param			widget_id		path	string	true	"Widget ID"		format(uuid)
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/dashboards/{dashboard_id}/widgets/{widget_id} [delete]
func (h *DashboardHandler) DeleteWidget(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	dashboardID, err := uuid.Parse(c.Param("dashboard_id"))
	if err != nil {
		h.BadRequest(c, "Invalid dashboard ID format")
		return
	}

	widgetID, err := uuid.Parse(c.Param("widget_id"))
	if err != nil {
		h.BadRequest(c, "Invalid widget ID format")
		return
	}

	if err := h.dashboardService.DeleteWidget(c.Request.Context(), tenantID, dashboardID, widgetID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
