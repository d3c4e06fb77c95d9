package handler

import (
	schemaapp "github.com/gridbase/backend/internal/application/schema"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DatabaseHandler handles logical database API endpoints
type DatabaseHandler struct {
	BaseHandler
	databaseService *schemaapp.DatabaseService
}

// NewDatabaseHandler creates a new DatabaseHandler
func NewDatabaseHandler(databaseService *schemaapp.DatabaseService) *DatabaseHandler {
	return &DatabaseHandler{
		databaseService: databaseService,
	}
}

// CreateDatabaseRequest represents a request to create a logical database
// @Description	Request body for creating a logical database
// @Name HandlerCreateDatabaseRequest
type CreateDatabaseRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255" example:"Accounting"`
}

// Create godoc
// @ID           createDatabase
//
//	@Summary		Create a logical database
//	@Description	Create a new logical database for the tenant
//	@Tags			databases
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateDatabaseRequest	true	"Database creation request"
//	@Success		201		{object}	APIResponse[schemaapp.DatabaseResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases [post]
func (h *DatabaseHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req CreateDatabaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.databaseService.Create(c.Request.Context(), tenantID, schemaapp.CreateDatabaseRequest{
		Name: req.Name,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// List godoc
// @ID           listDatabases
//
//	@Summary		List logical databases
//	@Description	List all logical databases belonging to the tenant
//	@Tags			databases
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]schemaapp.DatabaseResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases [get]
func (h *DatabaseHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	resp, err := h.databaseService.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByID godoc
// @ID           getDatabaseByID
//
//	@Summary		Get a logical database
//	@Description	Get a logical database by its ID
//	@Tags			databases
//	@Produce		json
//	@Param			database_id	path		string	true	"Database ID"	format(uuid)
//	@Success		200			{object}	APIResponse[schemaapp.DatabaseResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id} [get]
func (h *DatabaseHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	databaseID, err := uuid.Parse(c.Param("database_id"))
	if err != nil {
		h.BadRequest(c, "Invalid database ID format")
		return
	}

	resp, err := h.databaseService.Get(c.Request.Context(), tenantID, databaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete godoc
// @ID           deleteDatabase
//
//	@Summary		Delete a logical database
//	@Description	Delete an empty logical database. Databases that still contain tables cannot be deleted.
//	@Tags			databases
//	@Produce		json
//	@Param			database_id	path	string	true	"Database ID"	format(uuid)
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id} [delete]
func (h *DatabaseHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	databaseID, err := uuid.Parse(c.Param("database_id"))
	if err != nil {
		h.BadRequest(c, "Invalid database ID format")
		return
	}

	if err := h.databaseService.Delete(c.Request.Context(), tenantID, databaseID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
