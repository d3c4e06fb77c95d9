package handler

import (
	schemaapp "github.com/gridbase/backend/internal/application/schema"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TableHandler handles table and column API endpoints
type TableHandler struct {
	BaseHandler
	tableService *schemaapp.TableService
}

// NewTableHandler creates a new TableHandler
func NewTableHandler(tableService *schemaapp.TableService) *TableHandler {
	return &TableHandler{
		tableService: tableService,
	}
}

// CreateTableRequest represents a request to create a table
// @Description	Request body for creating a table with an optional initial column set
// @Name HandlerCreateTableRequest
type CreateTableRequest struct {
	Name        string                `json:"name" binding:"required,min=1,max=63" example:"customers"`
	DisplayName string                `json:"display_name" binding:"omitempty,max=255" example:"Customers"`
	Columns     []CreateColumnRequest `json:"columns" binding:"omitempty,dive"`
}

// CreateColumnRequest represents a request to add a column to a table
// @Description	Request body for adding a column
// @Name HandlerCreateColumnRequest
type CreateColumnRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=63" example:"email"`
	DisplayName  string `json:"display_name" binding:"omitempty,max=255" example:"Email"`
	DataType     string `json:"data_type" binding:"required,oneof=text number date boolean reference" example:"text"`
	SemanticType string `json:"semantic_type" binding:"omitempty,max=40" example:"customer.email"`
	Required     bool   `json:"required" example:"false"`
}

// Create godoc
// @ID           createTable
//
//	@Summary		Create a table
//	@Description	Create a table inside a logical database, optionally with an initial column set
//	@Tags			tables
//	@Accept			json
//	@Produce		json
//	@Param			database_id	path		string				true	"Database ID"	format(uuid)
//	@Param			request		body		CreateTableRequest	true	"Table creation request"
//	@Success		201			{object}	APIResponse[schemaapp.TableResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/tables [post]
func (h *TableHandler) Create(c *gin.Context) {
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

	var req CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	columns := make([]schemaapp.CreateColumnRequest, 0, len(req.Columns))
	for _, col := range req.Columns {
		columns = append(columns, schemaapp.CreateColumnRequest{
			Name:         col.Name,
			DisplayName:  col.DisplayName,
			DataType:     col.DataType,
			SemanticType: col.SemanticType,
			Required:     col.Required,
		})
	}

	resp, err := h.tableService.Create(c.Request.Context(), tenantID, databaseID, schemaapp.CreateTableRequest{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Columns:     columns,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// List godoc
// @ID           listTables
//
//	@Summary		List tables
//	@Description	List all tables in a logical database, system tables included
//	@Tags			tables
//	@Produce		json
//	@Param			database_id	path		string	true	"Database ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]schemaapp.TableResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/tables [get]
func (h *TableHandler) List(c *gin.Context) {
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

	resp, err := h.tableService.List(c.Request.Context(), tenantID, databaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByID godoc
// @ID           getTableByID
//
//	@Summary		Get a table
//	@Description	Get a table and its column definitions by ID
//	@Tags			tables
//	@Produce		json
//	@Param			database_id	path		string	true	"Database ID"	format(uuid)
//	@Param			table_id	path		string	true	"Table ID"		format(uuid)
//	@Success		200			{object}	APIResponse[schemaapp.TableResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/tables/{table_id} [get]
func (h *TableHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	tableID, err := uuid.Parse(c.Param("table_id"))
	if err != nil {
		h.BadRequest(c, "Invalid table ID format")
		return
	}

	resp, err := h.tableService.Get(c.Request.Context(), tenantID, tableID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByName godoc
// @ID           getTableByName
//
//	@Summary		Get a table by name
//	@Description	Get a table and its column definitions by its name within a database
//	@Tags			tables
//	@Produce		json
//	@Param			database_id	path		string	true	"Database ID"	format(uuid)
//	@Param			name		path		string	true	"Table name"
//	@Success		200			{object}	APIResponse[schemaapp.TableResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/tables/by-name/{name} [get]
func (h *TableHandler) GetByName(c *gin.Context) {
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

	name := c.Param("name")
	if name == "" {
		h.BadRequest(c, "Table name is required")
		return
	}

	resp, err := h.tableService.GetByName(c.Request.Context(), tenantID, databaseID, name)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete godoc
// @ID           deleteTable
//
//	@Summary		Delete a table
//	@Description	Delete a table with all its rows. System tables cannot be deleted.
//	@Tags			tables
//	@Produce		json
//	@Param			database_id	path	string	true	"Database ID"	format(uuid)
//	@Param			table_id	path	string	true	"Table ID"		format(uuid)
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/tables/{table_id} [delete]
func (h *TableHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	tableID, err := uuid.Parse(c.Param("table_id"))
	if err != nil {
		h.BadRequest(c, "Invalid table ID format")
		return
	}

	if err := h.tableService.Delete(c.Request.Context(), tenantID, tableID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// AddColumn godoc
// @ID           addTableColumn
//
//	@Summary		Add a column
//	@Description	Add a column to an existing table. The column is appended after the current last position.
//	@Tags			tables
//	@Accept			json
//	@Produce		json
//	@Param			database_id	path		string				true	"Database ID"	format(uuid)
//	@Param			table_id	path		string				true	"Table ID"		format(uuid)
//	@Param			request		body		CreateColumnRequest	true	"Column creation request"
//	@Success		201			{object}	APIResponse[schemaapp.TableResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/tables/{table_id}/columns [post]
func (h *TableHandler) AddColumn(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	tableID, err := uuid.Parse(c.Param("table_id"))
	if err != nil {
		h.BadRequest(c, "Invalid table ID format")
		return
	}

	var req CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.tableService.AddColumn(c.Request.Context(), tenantID, tableID, schemaapp.CreateColumnRequest{
		Name:         req.Name,
		DisplayName:  req.DisplayName,
		DataType:     req.DataType,
		SemanticType: req.SemanticType,
		Required:     req.Required,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// DeleteColumn godoc
// @ID           deleteTableColumn
//
//	@Summary		Delete a column
//	@Description	Delete a column and all its cell values. Columns of system tables cannot be deleted.
//	@Tags			tables
//	@Produce		json
//	@Param			database_id	path	string	true	"Database ID"	format(uuid)
//	@Param			table_id	path	string	true	"Table ID"		format(uuid)
//	@Param			column_id	path	string	true	"Column ID"		format(uuid)
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/tables/{table_id}/columns/{column_id} [delete]
func (h *TableHandler) DeleteColumn(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	tableID, err := uuid.Parse(c.Param("table_id"))
	if err != nil {
		h.BadRequest(c, "Invalid table ID format")
		return
	}

	columnID, err := uuid.Parse(c.Param("column_id"))
	if err != nil {
		h.BadRequest(c, "Invalid column ID format")
		return
	}

	if err := h.tableService.DeleteColumn(c.Request.Context(), tenantID, tableID, columnID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// RowCount godoc
// @ID           getTableRowCount
//
//	@Summary		Count rows in a table
//	@Description	Return the number of rows currently stored in a table
//	@Tags			tables
//	@Produce		json
//	@Param			database_id	path		string	true	"Database ID"	format(uuid)
//	@Param			table_id	path		string	true	"Table ID"		format(uuid)
//	@Success		200			{object}	APIResponse[CountData]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/tables/{table_id}/rows/count [get]
func (h *TableHandler) RowCount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	tableID, err := uuid.Parse(c.Param("table_id"))
	if err != nil {
		h.BadRequest(c, "Invalid table ID format")
		return
	}

	count, err := h.tableService.RowCount(c.Request.Context(), tenantID, tableID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CountData{Count: count})
}
