// internal/clients/vies.go
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	xerrors "mobility-service/internal/pkg/errors"
)

var vatNumberPattern = regexp.MustCompile(`^[0-9A-Za-z+*.]{2,12}$`)

// VATCheckResult is the normalized answer from the EU VIES service.
type VATCheckResult struct {
	CountryCode string `json:"countryCode"`
	VatNumber   string `json:"vatNumber"`
	Valid       bool   `json:"valid"`
	Name        string `json:"name,omitempty"`
	Address     string `json:"address,omitempty"`
}

type viesResponse struct {
	IsValid   bool   `json:"isValid"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	UserError string `json:"userError"`
}

// VIESClient validates company VAT numbers against the EU VIES REST API.
type VIESClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewVIESClient(baseURL string, timeout time.Duration) *VIESClient {
	if baseURL == "" {
		baseURL = "https://ec.europa.eu/taxation_customs/vies/rest-api"
	}
	return &VIESClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CheckVAT validates one VAT number. Format errors are rejected locally so
// obviously bad input never reaches the upstream service.
func (c *VIESClient) CheckVAT(ctx context.Context, countryCode, vatNumber string) (*VATCheckResult, error) {
	countryCode = strings.ToUpper(strings.TrimSpace(countryCode))
	vatNumber = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(vatNumber), " ", ""))
	vatNumber = strings.TrimPrefix(vatNumber, countryCode)

	if len(countryCode) != 2 {
		return nil, fmt.Errorf("%w: country code must be two letters", xerrors.ErrInvalidInput)
	}
	if !vatNumberPattern.MatchString(vatNumber) {
		return nil, fmt.Errorf("%w: malformed vat number", xerrors.ErrInvalidInput)
	}

	url := fmt.Sprintf("%s/ms/%s/vat/%s", c.baseURL, countryCode, vatNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build vies request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vies request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: vies returned status %d", xerrors.ErrInternal, resp.StatusCode)
	}

	var body viesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode vies response: %w", err)
	}

	result := &VATCheckResult{
		CountryCode: countryCode,
		VatNumber:   vatNumber,
		Valid:       body.IsValid,
	}
	if body.Name != "---" {
		result.Name = strings.TrimSpace(body.Name)
	}
	if body.Address != "---" {
		result.Address = strings.TrimSpace(body.Address)
	}

	return result, nil
}
