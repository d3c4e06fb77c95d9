// Package einvoice implements the ANAF e-Factura HTTP client. Access
// tokens are per tenant and passed on each call; the config only
// carries the endpoint and transport settings.
package einvoice

// ANAFConfig holds configuration for the ANAF e-Factura API
type ANAFConfig struct {
	// APIBaseURL is the base URL for the e-Factura REST API
	APIBaseURL string
	// IsSandbox selects the ANAF test environment
	IsSandbox bool
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// ANAFProductionAPIURL is the production e-Factura endpoint
	ANAFProductionAPIURL = "https://api.anaf.ro/prod/FCTEL/rest"
	// ANAFTestAPIURL is the ANAF test environment endpoint
	ANAFTestAPIURL = "https://api.anaf.ro/test/FCTEL/rest"
)

// NewANAFConfig creates a production configuration with defaults
func NewANAFConfig() *ANAFConfig {
	return &ANAFConfig{
		APIBaseURL:     ANAFProductionAPIURL,
		TimeoutSeconds: 30,
	}
}

// NewSandboxANAFConfig creates a configuration for the test environment
func NewSandboxANAFConfig() *ANAFConfig {
	return &ANAFConfig{
		APIBaseURL:     ANAFTestAPIURL,
		IsSandbox:      true,
		TimeoutSeconds: 30,
	}
}

// Validate fills defaults for unset fields
func (c *ANAFConfig) Validate() error {
	if c.APIBaseURL == "" {
		if c.IsSandbox {
			c.APIBaseURL = ANAFTestAPIURL
		} else {
			c.APIBaseURL = ANAFProductionAPIURL
		}
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
