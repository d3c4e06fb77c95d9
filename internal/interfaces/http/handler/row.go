package handler

import (
	schemaapp "github.com/gridbase/backend/internal/application/schema"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RowHandler handles row API endpoints
type RowHandler struct {
	BaseHandler
	rowService *schemaapp.RowService
}

// NewRowHandler creates a new RowHandler
func NewRowHandler(rowService *schemaapp.RowService) *RowHandler {
	return &RowHandler{
		rowService: rowService,
	}
}

// CellsRequest represents a request carrying cell values keyed by column name
// @Description	Cell values keyed by column name
// @Name HandlerCellsRequest
type CellsRequest struct {
	Cells map[string]string `json:"cells" binding:"required"`
}

// reservedRowQueryParams are the listing controls that are never
// interpreted as cell filters.
var reservedRowQueryParams = map[string]struct{}{
	"page":      {},
	"page_size": {},
	"sort_by":   {},
	"sort_dir":  {},
}

// parseRowFilters turns the remaining query parameters into exact cell
// match filters keyed by column name.
func parseRowFilters(c *gin.Context) map[string]string {
	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if _, reserved := reservedRowQueryParams[key]; reserved {
			continue
		}
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}
	return filters
}

// Create godoc
// @ID           createRow
//
//	@Summary		Create a row
//	@Description	Insert a row into a table. Cells are keyed by column name; required columns must be present.
//	@Tags			rows
//	@Accept			json
//	@Produce		json
//	@Param			database_id	path		string			true	"Database ID"	format(uuid)
//	@Param			table_id	path		string			true	"Table ID"		format(uuid)
//	@Param			request		body		CellsRequest	true	"Row creation request"
//	@Success		201			{object}	APIResponse[schemaapp.RowResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/tables/{table_id}/rows [post]
func (h *RowHandler) Create(c *gin.Context) {
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

	var req CellsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.rowService.Create(c.Request.Context(), tenantID, tableID, schemaapp.CreateRowRequest{
		Cells: req.Cells,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// List godoc
// @ID           listRows
//
//	@Summary		List rows
//	@Description	List rows of a table with pagination. Query parameters other than the paging and sorting controls are treated as exact cell match filters keyed by column name.
//	@Tags			rows
//	@Produce		json
//	@Param			database_id	path		string	true	"Database ID"	format(uuid)
//	@Param			table_id	path		string	true	"Table ID"		format(uuid)
//	@Param			page		query		int		false	"Page number (default 1)"
//	@Param			page_size	query		int		false	"Page size (default 20, max 200)"
//	@Param			sort_by		query		string	false	"Column name to sort by"
//	@Param			sort_dir	query		string	false	"Sort direction"	Enums(asc, desc)
//	@Success		200			{object}	APIResponse[[]schemaapp.RowResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/tables/{table_id}/rows [get]
func (h *RowHandler) List(c *gin.Context) {
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

	var req schemaapp.ListRowsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Filters = parseRowFilters(c)

	page, err := h.rowService.List(c.Request.Context(), tenantID, tableID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @ID           getRowByID
//
//	@Summary		Get a row
//	@Description	Get a row and its cell values by ID
//	@Tags			rows
//	@Produce		json
//	@Param			database_id	path		string	true	"Database ID"	format(uuid)
//	@Param			table_id	path		string	true	"Table ID"		format(uuid)
//	@Param			row_id		path		string	true	"Row ID"		format(uuid)
//	@Success		200			{object}	APIResponse[schemaapp.RowResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/tables/{table_id}/rows/{row_id} [get]
func (h *RowHandler) GetByID(c *gin.Context) {
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

	rowID, err := uuid.Parse(c.Param("row_id"))
	if err != nil {
		h.BadRequest(c, "Invalid row ID format")
		return
	}

	resp, err := h.rowService.Get(c.Request.Context(), tenantID, tableID, rowID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Update godoc
// @ID           updateRow
//
//	@Summary		Update a row
//	@Description	Update cell values on an existing row. Only the named columns change; required columns cannot be cleared.
//	@Tags			rows
//	@Accept			json
//	@Produce		json
//	@Param			database_id	path		string			true	"Database ID"	format(uuid)
//	@Param			table_id	path		string			true	"Table ID"		format(uuid)
//	@Param			row_id		path		string			true	"Row ID"		format(uuid)
//	@Param			request		body		CellsRequest	true	"Row update request"
//	@Success		200			{object}	APIResponse[schemaapp.RowResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/tables/{table_id}/rows/{row_id} [put]
func (h *RowHandler) Update(c *gin.Context) {
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

	rowID, err := uuid.Parse(c.Param("row_id"))
	if err != nil {
		h.BadRequest(c, "Invalid row ID format")
		return
	}

	var req CellsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.rowService.Update(c.Request.Context(), tenantID, tableID, rowID, schemaapp.UpdateRowRequest{
		Cells: req.Cells,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete godoc
// @ID           deleteRow
//
//	@Summary		Delete a row
//	@Description	Delete a row with all its cell values
//	@Tags			rows
//	@Produce		json
//	@Param			database_id	path	string	true	"Database ID"	format(uuid)
//	@Param			table_id	path	string	true	"Table ID"		format(uuid)
//	@Param			row_id		path	string	true	"Row ID"		format(uuid)
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/tables/{table_id}/rows/{row_id} [delete]
func (h *RowHandler) Delete(c *gin.Context) {
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

	rowID, err := uuid.Parse(c.Param("row_id"))
	if err != nil {
		h.BadRequest(c, "Invalid row ID format")
		return
	}

	if err := h.rowService.Delete(c.Request.Context(), tenantID, tableID, rowID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
