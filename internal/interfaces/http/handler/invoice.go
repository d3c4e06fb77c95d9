package handler

import (
	"fmt"
	"net/http"

	invoicingapp "github.com/gridbase/backend/internal/application/invoicing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	creationService *invoicingapp.CreationService
	queryService    *invoicingapp.QueryService
	pdfService      *invoicingapp.PDFService
	einvoiceService *invoicingapp.EInvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(
	creationService *invoicingapp.CreationService,
	queryService *invoicingapp.QueryService,
	pdfService *invoicingapp.PDFService,
	einvoiceService *invoicingapp.EInvoiceService,
) *InvoiceHandler {
	return &InvoiceHandler{
		creationService: creationService,
		queryService:    queryService,
		pdfService:      pdfService,
		einvoiceService: einvoiceService,
	}
}

// Create godoc
// @ID           createInvoice
//
//	@Summary		Create an invoice
//	@Description	Create an invoice in one transaction: the next gap-free number is assigned, totals are computed in the tenant's base currency and the invoice rows are stored. Replaying the same Idempotency-Key returns the originally created invoice.
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			database_id		path		string								true	"Database ID"	format(uuid)
//	@Param			Idempotency-Key	header		string								false	"Idempotency key; retries with the same key replay the first result"
//	@Param			request			body		invoicingapp.CreateInvoiceRequest	true	"Invoice creation request"
//	@Success		201				{object}	APIResponse[invoicingapp.InvoiceResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		401				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		422				{object}	ErrorResponse
//	@Failure		500				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
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

	var req invoicingapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")

	resp, err := h.creationService.Create(c.Request.Context(), tenantID, databaseID, idempotencyKey, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// List godoc
// @ID           listInvoices
//
//	@Summary		List invoices
//	@Description	List invoices of a database with pagination, joined with numbering statistics for the invoices screen
//	@Tags			invoices
//	@Produce		json
//	@Param			database_id	path		string	true	"Database ID"	format(uuid)
//	@Param			page		query		int		false	"Page number (default 1)"
//	@Param			page_size	query		int		false	"Page size (default 20, max 200)"
//	@Param			status		query		string	false	"Filter by invoice status"
//	@Success		200			{object}	APIResponse[invoicingapp.ListInvoicesResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
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

	var req invoicingapp.ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.queryService.List(c.Request.Context(), tenantID, databaseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByID godoc
// @ID           getInvoiceByID
//
//	@Summary		Get an invoice
//	@Description	Get an invoice with its line items by its row ID
//	@Tags			invoices
//	@Produce		json
//	@Param			database_id	path		string	true	"Database ID"	format(uuid)
//	@Param			row_id		path		string	true	"Invoice row ID"	format(uuid)
//	@Success		200			{object}	APIResponse[invoicingapp.InvoiceResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/invoices/{row_id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
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

	rowID, err := uuid.Parse(c.Param("row_id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice row ID format")
		return
	}

	resp, err := h.queryService.Get(c.Request.Context(), tenantID, databaseID, rowID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// NumberingStats godoc
// @ID           getInvoiceNumberingStats
//
//	@Summary		Get numbering statistics
//	@Description	Return the numbering statistics for the database: counters per series and year plus a per-month issue histogram
//	@Tags			invoices
//	@Produce		json
//	@Param			database_id	path		string	true	"Database ID"	format(uuid)
//	@Success		200			{object}	APIResponse[any]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/invoices/stats [get]
func (h *InvoiceHandler) NumberingStats(c *gin.Context) {
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

	stats, err := h.queryService.NumberingStats(c.Request.Context(), tenantID, databaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}

// DownloadPDF godoc
// @ID           downloadInvoicePDF
//
//	@Summary		Download an invoice PDF
//	@Description	Render the invoice into a PDF document using the tenant's company settings and stream it back
//	@Tags			invoices
//	@Produce		application/pdf
//	@Param			database_id	path	string	true	"Database ID"	format(uuid)
//	@Param			row_id		path	string	true	"Invoice row ID"	format(uuid)
//	@Success		200	{file}		file
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/invoices/{row_id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
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

	rowID, err := uuid.Parse(c.Param("row_id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice row ID format")
		return
	}

	pdf, filename, err := h.pdfService.Render(c.Request.Context(), tenantID, databaseID, rowID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// SubmitEInvoice godoc
// @ID           submitEInvoice
//
//	@Summary		Submit an invoice for e-invoicing
//	@Description	Convert the invoice to UBL XML and submit it to the national e-invoicing system. Resubmitting an already accepted invoice is rejected.
//	@Tags			invoices
//	@Produce		json
//	@Param			database_id	path		string	true	"Database ID"	format(uuid)
//	@Param			row_id		path		string	true	"Invoice row ID"	format(uuid)
//	@Success		201			{object}	APIResponse[invoicingapp.SubmissionResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/invoices/{row_id}/einvoice [post]
func (h *InvoiceHandler) SubmitEInvoice(c *gin.Context) {
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

	rowID, err := uuid.Parse(c.Param("row_id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice row ID format")
		return
	}

	resp, err := h.einvoiceService.Submit(c.Request.Context(), tenantID, databaseID, rowID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// EInvoiceStatus godoc
// @ID           getEInvoiceStatus
//
//	@Summary		Get e-invoice submission status
//	@Description	Return the latest e-invoice submission state for the invoice, refreshing it from the e-invoicing system when the submission is still pending
//	@Tags			invoices
//	@Produce		json
//	@Param			database_id	path		string	true	"Database ID"	format(uuid)
//	@Param			row_id		path		string	true	"Invoice row ID"	format(uuid)
//	@Success		200			{object}	APIResponse[invoicingapp.SubmissionResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/databases/{database_id}/invoices/{row_id}/einvoice [get]
func (h *InvoiceHandler) EInvoiceStatus(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	rowID, err := uuid.Parse(c.Param("row_id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice row ID format")
		return
	}

	resp, err := h.einvoiceService.Status(c.Request.Context(), tenantID, rowID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
