// Package printing renders invoices to PDF.
//
// The pipeline has two halves: an HTML template that turns an invoice
// projection plus the tenant's company settings into a self-contained
// document, and a headless-Chrome engine that prints that document to
// A4 PDF over the DevTools protocol. The engine keeps a single Chrome
// allocator alive for the process; each render gets its own browser
// context and timeout.
//
// When no Chrome endpoint is configured the server runs without a
// renderer and the application layer reports PDF generation as
// disabled.
package printing
