package printing

import (
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/shared/valueobject"
	"github.com/gridbase/backend/internal/domain/tenant"
)

const invoiceDateLayout = "02.01.2006"

// invoicePage is the view model the invoice template renders. All
// amounts arrive pre-formatted so the template stays free of logic.
type invoicePage struct {
	Number      string
	IssueDate   string
	DueDate     string
	Status      string
	Currency    string
	Company     companyBlock
	Customer    customerBlock
	Items       []lineRow
	Subtotal    string
	VATTotal    string
	Discount    string
	LateFee     string
	GrandTotal  string
	HasDiscount bool
	HasLateFee  bool

	Notes         string
	PaymentTerms  string
	PaymentMethod string
}

type companyBlock struct {
	Name    string
	Address string
	TaxID   string
	RegNo   string
	Email   string
	Phone   string
}

type customerBlock struct {
	Name  string
	Email string
	TaxID string
}

type lineRow struct {
	Index     int
	Name      string
	Desc      string
	Quantity  string
	Unit      string
	UnitPrice string
	VATRate   string
	LineNet   string
	LineTax   string
	LineGross string
}

// buildInvoicePage projects the invoice read model into the template's
// view model, formatting dates and amounts for the given locale.
func buildInvoicePage(inv *invoicing.Invoice, company *tenant.Settings, p *message.Printer) invoicePage {
	pg := invoicePage{
		Number:        inv.Number,
		Status:        string(inv.Status),
		Currency:      string(inv.BaseCurrency),
		Subtotal:      formatAmount(p, inv.Subtotal),
		VATTotal:      formatAmount(p, inv.VATTotal),
		Discount:      formatAmount(p, inv.Discount),
		LateFee:       formatAmount(p, inv.LateFee),
		GrandTotal:    formatAmount(p, inv.GrandTotal),
		HasDiscount:   inv.Discount.IsPositive(),
		HasLateFee:    inv.LateFee.IsPositive(),
		Notes:         inv.Notes,
		PaymentTerms:  inv.PaymentTerms,
		PaymentMethod: inv.PaymentMethod,
		Customer: customerBlock{
			Name:  inv.CustomerName,
			Email: inv.CustomerEmail,
			TaxID: inv.CustomerTaxID,
		},
	}
	if !inv.IssueDate.IsZero() {
		pg.IssueDate = inv.IssueDate.Format(invoiceDateLayout)
	}
	if !inv.DueDate.IsZero() {
		pg.DueDate = inv.DueDate.Format(invoiceDateLayout)
	}
	if company != nil {
		pg.Company = companyBlock{
			Name:    company.CompanyName,
			Address: company.CompanyAddress,
			TaxID:   company.CompanyTaxID,
			RegNo:   company.CompanyRegNo,
			Email:   company.CompanyEmail,
			Phone:   company.CompanyPhone,
		}
	}

	for i, item := range inv.Items {
		row := lineRow{
			Index:     i + 1,
			Name:      item.Name,
			Desc:      item.Description,
			Quantity:  item.Quantity.Amount().String(),
			Unit:      item.Unit,
			UnitPrice: formatAmount(p, item.UnitPrice),
			VATRate:   item.VATRate,
			LineNet:   formatAmount(p, item.LineNet),
			LineTax:   formatAmount(p, item.LineTax),
			LineGross: formatAmount(p, item.LineGross),
		}
		pg.Items = append(pg.Items, row)
	}
	return pg
}

// formatAmount renders a money value with locale-aware digit grouping
// and two decimals
func formatAmount(p *message.Printer, m valueobject.Money) string {
	return p.Sprintf("%.2f", m.Amount().InexactFloat64())
}

// newAmountPrinter builds the locale printer used for amounts. Unknown
// locale tags fall back to Romanian, the default invoicing locale.
func newAmountPrinter(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Romanian
	}
	return message.NewPrinter(tag)
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Number}}</title>
<style>
  body { font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; font-size: 11px; color: #1a1a2e; margin: 0; }
  .header { display: flex; justify-content: space-between; border-bottom: 2px solid #1a1a2e; padding-bottom: 12px; }
  .header h1 { font-size: 22px; margin: 0 0 4px 0; letter-spacing: 1px; }
  .meta { text-align: right; }
  .meta .number { font-size: 16px; font-weight: bold; }
  .status { display: inline-block; padding: 2px 8px; border: 1px solid #1a1a2e; border-radius: 3px; text-transform: uppercase; font-size: 9px; letter-spacing: 1px; }
  .parties { display: flex; justify-content: space-between; margin: 18px 0; }
  .party h3 { font-size: 10px; text-transform: uppercase; color: #6b7280; margin: 0 0 6px 0; letter-spacing: 1px; }
  .party p { margin: 2px 0; }
  table.items { width: 100%; border-collapse: collapse; margin-top: 8px; }
  table.items th { background: #1a1a2e; color: #fff; font-size: 9px; text-transform: uppercase; letter-spacing: 1px; padding: 6px 8px; text-align: left; }
  table.items th.num, table.items td.num { text-align: right; }
  table.items td { padding: 6px 8px; border-bottom: 1px solid #e5e7eb; vertical-align: top; }
  table.items td .desc { color: #6b7280; font-size: 10px; }
  .totals { width: 260px; margin-left: auto; margin-top: 12px; }
  .totals td { padding: 4px 8px; }
  .totals td.num { text-align: right; }
  .totals tr.grand td { border-top: 2px solid #1a1a2e; font-weight: bold; font-size: 13px; }
  .footer { margin-top: 24px; border-top: 1px solid #e5e7eb; padding-top: 10px; color: #6b7280; font-size: 10px; }
  .footer p { margin: 2px 0; }
</style>
</head>
<body>
<div class="header">
  <div>
    <h1>{{.Company.Name}}</h1>
    {{if .Company.Address}}<div>{{.Company.Address}}</div>{{end}}
    {{if .Company.TaxID}}<div>Tax ID: {{.Company.TaxID}}</div>{{end}}
    {{if .Company.RegNo}}<div>Reg. No: {{.Company.RegNo}}</div>{{end}}
  </div>
  <div class="meta">
    <div class="number">Invoice {{.Number}}</div>
    {{if .IssueDate}}<div>Issued: {{.IssueDate}}</div>{{end}}
    {{if .DueDate}}<div>Due: {{.DueDate}}</div>{{end}}
    {{if .Status}}<div class="status">{{.Status}}</div>{{end}}
  </div>
</div>

<div class="parties">
  <div class="party">
    <h3>Bill To</h3>
    <p><strong>{{.Customer.Name}}</strong></p>
    {{if .Customer.TaxID}}<p>Tax ID: {{.Customer.TaxID}}</p>{{end}}
    {{if .Customer.Email}}<p>{{.Customer.Email}}</p>{{end}}
  </div>
  <div class="party">
    <h3>Payment</h3>
    {{if .PaymentTerms}}<p>Terms: {{.PaymentTerms}}</p>{{end}}
    {{if .PaymentMethod}}<p>Method: {{.PaymentMethod}}</p>{{end}}
    <p>Currency: {{.Currency}}</p>
  </div>
</div>

<table class="items">
  <thead>
    <tr>
      <th>#</th>
      <th>Item</th>
      <th class="num">Qty</th>
      <th class="num">Unit Price</th>
      <th class="num">VAT %</th>
      <th class="num">Net</th>
      <th class="num">VAT</th>
      <th class="num">Total</th>
    </tr>
  </thead>
  <tbody>
    {{range .Items}}
    <tr>
      <td>{{.Index}}</td>
      <td>{{.Name}}{{if .Desc}}<div class="desc">{{.Desc}}</div>{{end}}</td>
      <td class="num">{{.Quantity}}{{if .Unit}} {{.Unit}}{{end}}</td>
      <td class="num">{{.UnitPrice}}</td>
      <td class="num">{{.VATRate}}</td>
      <td class="num">{{.LineNet}}</td>
      <td class="num">{{.LineTax}}</td>
      <td class="num">{{.LineGross}}</td>
    </tr>
    {{end}}
  </tbody>
</table>

<table class="totals">
  <tr><td>Subtotal</td><td class="num">{{.Subtotal}} {{.Currency}}</td></tr>
  <tr><td>VAT</td><td class="num">{{.VATTotal}} {{.Currency}}</td></tr>
  {{if .HasDiscount}}<tr><td>Discount</td><td class="num">-{{.Discount}} {{.Currency}}</td></tr>{{end}}
  {{if .HasLateFee}}<tr><td>Late Fee</td><td class="num">{{.LateFee}} {{.Currency}}</td></tr>{{end}}
  <tr class="grand"><td>Total Due</td><td class="num">{{.GrandTotal}} {{.Currency}}</td></tr>
</table>

{{if .Notes}}
<div class="footer">
  <p><strong>Notes</strong></p>
  <p>{{.Notes}}</p>
</div>
{{end}}
<div class="footer">
  {{if .Company.Email}}<p>{{.Company.Email}}{{if .Company.Phone}} &middot; {{.Company.Phone}}{{end}}</p>{{else if .Company.Phone}}<p>{{.Company.Phone}}</p>{{end}}
</div>
</body>
</html>
`))
