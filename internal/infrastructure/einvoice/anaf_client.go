package einvoice

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	appinvoicing "github.com/gridbase/backend/internal/application/invoicing"
	"github.com/gridbase/backend/internal/domain/invoicing"
)

const (
	// maxANAFResponseSize limits the response body size to prevent memory exhaustion
	maxANAFResponseSize = 1 * 1024 * 1024 // 1MB max response
)

// Errors for the ANAF client
var (
	ErrANAFMissingToken = errors.New("anaf: access token is required")
	ErrANAFMissingCIF   = errors.New("anaf: supplier tax ID missing from invoice document")
)

// ANAFClient implements the e-invoicing client against the ANAF
// e-Factura REST API. The supplier CIF required by the upload endpoint
// is read from the UBL document itself.
type ANAFClient struct {
	config     *ANAFConfig
	httpClient *http.Client
}

// NewANAFClient creates a new ANAF e-Factura client
func NewANAFClient(config *ANAFConfig) (*ANAFClient, error) {
	if config == nil {
		config = NewANAFConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ANAFClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Upload sends one UBL invoice document and returns the upload index
// assigned by ANAF
func (c *ANAFClient) Upload(ctx context.Context, token string, invoiceXML []byte) (string, error) {
	if token == "" {
		return "", ErrANAFMissingToken
	}

	cif, err := supplierCIF(invoiceXML)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("standard", "UBL")
	query.Set("cif", cif)
	uploadURL := c.config.APIBaseURL + "/upload?" + query.Encode()

	body, err := c.doRequest(ctx, http.MethodPost, uploadURL, token, invoiceXML)
	if err != nil {
		return "", err
	}

	var resp anafUploadResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("anaf: failed to parse upload response: %w", err)
	}
	if resp.ExecutionStatus != "0" {
		return "", fmt.Errorf("anaf: upload rejected: %s", joinErrors(resp.Errors))
	}
	if resp.UploadIndex == "" {
		return "", errors.New("anaf: upload response has no index")
	}
	return resp.UploadIndex, nil
}

// CheckStatus polls the processing state of an uploaded invoice
func (c *ANAFClient) CheckStatus(ctx context.Context, token, uploadIndex string) (invoicing.SubmissionStatus, string, error) {
	if token == "" {
		return invoicing.SubmissionPending, "", ErrANAFMissingToken
	}

	query := url.Values{}
	query.Set("id_incarcare", uploadIndex)
	statusURL := c.config.APIBaseURL + "/stareMesaj?" + query.Encode()

	body, err := c.doRequest(ctx, http.MethodGet, statusURL, token, nil)
	if err != nil {
		return invoicing.SubmissionPending, "", err
	}

	var resp anafStatusResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return invoicing.SubmissionPending, "", fmt.Errorf("anaf: failed to parse status response: %w", err)
	}

	switch resp.State {
	case anafStateAccepted:
		return invoicing.SubmissionAccepted, "download id " + resp.DownloadID, nil
	case anafStateRejected:
		message := joinErrors(resp.Errors)
		if message == "" {
			message = "rejected by ANAF validation"
		}
		return invoicing.SubmissionRejected, message, nil
	case anafStateProcessing, "":
		return invoicing.SubmissionPending, "", nil
	default:
		// Unknown states stay pending so the next poll retries
		return invoicing.SubmissionPending, "unknown state: " + resp.State, nil
	}
}

// doRequest performs an HTTP request to the ANAF API
func (c *ANAFClient) doRequest(ctx context.Context, method, requestURL, token string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("anaf: failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/xml")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anaf: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxANAFResponseSize))
	if err != nil {
		return nil, fmt.Errorf("anaf: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anaf: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

// ublSupplierDoc is the minimal UBL subset needed to locate the
// supplier tax ID
type ublSupplierDoc struct {
	XMLName xml.Name `xml:"Invoice"`
	TaxID   string   `xml:"AccountingSupplierParty>Party>PartyTaxScheme>CompanyID"`
}

// supplierCIF extracts the numeric CIF for the upload query parameter.
// ANAF wants the bare number, without the RO VAT prefix.
func supplierCIF(invoiceXML []byte) (string, error) {
	var doc ublSupplierDoc
	if err := xml.Unmarshal(invoiceXML, &doc); err != nil {
		return "", fmt.Errorf("anaf: failed to parse invoice document: %w", err)
	}
	cif := strings.TrimSpace(doc.TaxID)
	cif = strings.TrimPrefix(strings.ToUpper(cif), "RO")
	if cif == "" {
		return "", ErrANAFMissingCIF
	}
	return cif, nil
}

func joinErrors(errs []anafError) string {
	var messages []string
	for _, e := range errs {
		if e.Message != "" {
			messages = append(messages, e.Message)
		}
	}
	return strings.Join(messages, "; ")
}

var _ appinvoicing.EInvoiceClient = (*ANAFClient)(nil)
