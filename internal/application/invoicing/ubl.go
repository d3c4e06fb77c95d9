package invoicing

import (
	"encoding/xml"
	"fmt"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/tenant"
)

// ublInvoice is the UBL 2.1 subset the e-invoicing API accepts
type ublInvoice struct {
	XMLName      xml.Name `xml:"Invoice"`
	Xmlns        string   `xml:"xmlns,attr"`
	ID           string   `xml:"ID"`
	IssueDate    string   `xml:"IssueDate"`
	DueDate      string   `xml:"DueDate,omitempty"`
	CurrencyCode string   `xml:"DocumentCurrencyCode"`
	Note         string   `xml:"Note,omitempty"`

	Supplier ublParty `xml:"AccountingSupplierParty>Party"`
	Customer ublParty `xml:"AccountingCustomerParty>Party"`

	TaxTotal ublAmount `xml:"TaxTotal>TaxAmount"`
	Totals   ublTotals `xml:"LegalMonetaryTotal"`

	Lines []ublLine `xml:"InvoiceLine"`
}

type ublParty struct {
	Name    string `xml:"PartyName>Name"`
	TaxID   string `xml:"PartyTaxScheme>CompanyID,omitempty"`
	Address string `xml:"PostalAddress>StreetName,omitempty"`
}

type ublAmount struct {
	Currency string `xml:"currencyID,attr"`
	Value    string `xml:",chardata"`
}

type ublTotals struct {
	LineExtension ublAmount `xml:"LineExtensionAmount"`
	TaxExclusive  ublAmount `xml:"TaxExclusiveAmount"`
	TaxInclusive  ublAmount `xml:"TaxInclusiveAmount"`
	Payable       ublAmount `xml:"PayableAmount"`
}

type ublLine struct {
	ID          string    `xml:"ID"`
	Quantity    string    `xml:"InvoicedQuantity"`
	LineAmount  ublAmount `xml:"LineExtensionAmount"`
	Description string    `xml:"Item>Description,omitempty"`
	Name        string    `xml:"Item>Name"`
	Price       ublAmount `xml:"Price>PriceAmount"`
}

const ublNamespace = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"

// BuildInvoiceXML renders the invoice as the UBL document the
// e-invoicing API expects. Amounts carry two decimals, per the API's
// validation rules.
func BuildInvoiceXML(inv *invoicing.Invoice, company *tenant.Settings) ([]byte, error) {
	currency := string(inv.BaseCurrency)
	amount := func(s string) ublAmount {
		return ublAmount{Currency: currency, Value: s}
	}

	doc := ublInvoice{
		Xmlns:        ublNamespace,
		ID:           inv.Number,
		CurrencyCode: currency,
		Note:         inv.Notes,
		Supplier: ublParty{
			Name:    company.CompanyName,
			TaxID:   company.CompanyTaxID,
			Address: company.CompanyAddress,
		},
		Customer: ublParty{
			Name:  inv.CustomerName,
			TaxID: inv.CustomerTaxID,
		},
		TaxTotal: amount(inv.VATTotal.StringFixed(2)),
		Totals: ublTotals{
			LineExtension: amount(inv.Subtotal.StringFixed(2)),
			TaxExclusive:  amount(inv.Subtotal.StringFixed(2)),
			TaxInclusive:  amount(inv.Subtotal.MustAdd(inv.VATTotal).StringFixed(2)),
			Payable:       amount(inv.GrandTotal.StringFixed(2)),
		},
	}
	if !inv.IssueDate.IsZero() {
		doc.IssueDate = inv.IssueDate.Format(DateLayout)
	}
	if !inv.DueDate.IsZero() {
		doc.DueDate = inv.DueDate.Format(DateLayout)
	}

	for i := range inv.Items {
		item := &inv.Items[i]
		doc.Lines = append(doc.Lines, ublLine{
			ID:          fmt.Sprintf("%d", i+1),
			Quantity:    item.Quantity.Amount().String(),
			LineAmount:  ublAmount{Currency: string(item.LineNet.Currency()), Value: item.LineNet.StringFixed(2)},
			Name:        item.Name,
			Description: item.Description,
			Price:       ublAmount{Currency: string(item.UnitPrice.Currency()), Value: item.UnitPrice.StringFixed(2)},
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
