package printing

import (
	"bytes"
	"context"

	"golang.org/x/text/message"

	appinvoicing "github.com/gridbase/backend/internal/application/invoicing"
)

// InvoicePDFRenderer turns invoice documents into PDFs: template first,
// then the HTML engine. It is the infrastructure side of the
// application's renderer port.
type InvoicePDFRenderer struct {
	engine  HTMLRenderer
	printer *message.Printer
}

// NewInvoicePDFRenderer wires an HTML engine to the invoice template.
// Locale controls digit grouping in amounts; empty or invalid values
// fall back to Romanian.
func NewInvoicePDFRenderer(engine HTMLRenderer, locale string) *InvoicePDFRenderer {
	return &InvoicePDFRenderer{
		engine:  engine,
		printer: newAmountPrinter(locale),
	}
}

// RenderPDF renders one invoice document to PDF bytes
func (r *InvoicePDFRenderer) RenderPDF(ctx context.Context, doc appinvoicing.InvoiceDocument) ([]byte, error) {
	if doc.Invoice == nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "invoice document has no invoice", nil)
	}

	page := buildInvoicePage(doc.Invoice, doc.Company, r.printer)

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, page); err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "invoice template execution failed", err)
	}

	return r.engine.Render(ctx, buf.String(), doc.Invoice.Number)
}

// Close releases the underlying engine
func (r *InvoicePDFRenderer) Close() error {
	return r.engine.Close()
}

var _ appinvoicing.InvoiceRenderer = (*InvoicePDFRenderer)(nil)
