// internal/wizard/client.go
package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mobility-service/internal/clients"
	"mobility-service/internal/domain/session"
	"mobility-service/internal/domain/signup"
	"mobility-service/internal/domain/vehicle"
	xerrors "mobility-service/internal/pkg/errors"
)

// ErrReauthRequired is surfaced only when the backend rejects the call for
// authentication reasons. Other failures keep their own kinds so callers do
// not force a pointless re-login on, say, a 404.
var ErrReauthRequired = errors.New("re-authentication required")

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Client is the typed API client the wizard runs against.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return fmt.Errorf("%w: status %d", kindForStatus(resp.StatusCode), resp.StatusCode)
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return fmt.Errorf("%w: %s", kindForStatus(resp.StatusCode), msg)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrReauthRequired
	case http.StatusNotFound:
		return xerrors.ErrNotFound
	case http.StatusConflict:
		return xerrors.ErrConflict
	case http.StatusUnprocessableEntity:
		return xerrors.ErrDocumentGate
	case http.StatusTooManyRequests:
		return xerrors.ErrRateLimited
	case http.StatusBadRequest:
		return xerrors.ErrInvalidInput
	default:
		return xerrors.ErrInternal
	}
}

// ========== Signup ==========

func (c *Client) CreateSignup(ctx context.Context, req *signup.CreateSignupRequest) (*signup.Signup, error) {
	var sg signup.Signup
	if err := c.do(ctx, http.MethodPost, "/api/signup", req, &sg); err != nil {
		return nil, err
	}
	return &sg, nil
}

// ========== VAT validation ==========

func (c *Client) CheckVat(ctx context.Context, countryCode, vatNumber string) (*clients.VATCheckResult, error) {
	var result clients.VATCheckResult
	path := "/api/vies/check/" + url.PathEscape(countryCode) + "/" + url.PathEscape(vatNumber)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ========== Sessions ==========

func (c *Client) CreateSession(ctx context.Context, req *session.CreateSessionRequest) (*session.UserSession, error) {
	var us session.UserSession
	if err := c.do(ctx, http.MethodPost, "/api/user-sessions", req, &us); err != nil {
		return nil, err
	}
	return &us, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*session.UserSession, error) {
	var us session.UserSession
	if err := c.do(ctx, http.MethodGet, "/api/user-sessions/"+id, nil, &us); err != nil {
		return nil, err
	}
	return &us, nil
}

func (c *Client) GetSessionsByEmail(ctx context.Context, email string) ([]session.UserSession, error) {
	var sessions []session.UserSession
	path := "/api/user-sessions?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *Client) UpdateSession(ctx context.Context, id string, req *session.UpdateSessionRequest) (*session.UserSession, error) {
	var us session.UserSession
	if err := c.do(ctx, http.MethodPut, "/api/user-sessions/"+id, req, &us); err != nil {
		return nil, err
	}
	return &us, nil
}

func (c *Client) UpdateStep(ctx context.Context, id string, step int) (*session.UserSession, error) {
	var us session.UserSession
	req := session.UpdateStepRequest{Step: step}
	if err := c.do(ctx, http.MethodPut, "/api/user-sessions/"+id+"/step", req, &us); err != nil {
		return nil, err
	}
	return &us, nil
}

func (c *Client) SubmitSession(ctx context.Context, id string) (*session.UserSession, error) {
	var us session.UserSession
	if err := c.do(ctx, http.MethodPost, "/api/user-sessions/"+id+"/submit", nil, &us); err != nil {
		return nil, err
	}
	return &us, nil
}

// ========== Categories ==========

func (c *Client) AddCategory(ctx context.Context, sessionID string, req *session.CategoryRequest) (*session.UserSession, error) {
	var us session.UserSession
	if err := c.do(ctx, http.MethodPost, "/api/user-sessions/"+sessionID+"/car-categories", req, &us); err != nil {
		return nil, err
	}
	return &us, nil
}

func (c *Client) UpdateCategory(ctx context.Context, sessionID, categoryID string, req *session.CategoryRequest) (*session.UserSession, error) {
	var us session.UserSession
	path := "/api/user-sessions/" + sessionID + "/car-categories/" + categoryID
	if err := c.do(ctx, http.MethodPut, path, req, &us); err != nil {
		return nil, err
	}
	return &us, nil
}

func (c *Client) DeleteCategory(ctx context.Context, sessionID, categoryID string) (*session.UserSession, error) {
	var us session.UserSession
	path := "/api/user-sessions/" + sessionID + "/car-categories/" + categoryID
	if err := c.do(ctx, http.MethodDelete, path, nil, &us); err != nil {
		return nil, err
	}
	return &us, nil
}

// ========== Documents ==========

func (c *Client) SaveDocument(ctx context.Context, sessionID string, req *session.SaveDocumentRequest) (*session.SaveDocumentResponse, error) {
	var resp session.SaveDocumentResponse
	if err := c.do(ctx, http.MethodPost, "/api/user-sessions/"+sessionID+"/save-document", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetDocumentContent(ctx context.Context, sessionID, language string) (*session.DocumentContentResponse, error) {
	var resp session.DocumentContentResponse
	path := "/api/user-sessions/" + sessionID + "/document-content?language=" + url.QueryEscape(language)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateDocumentContent(ctx context.Context, sessionID string, req *session.UpdateDocumentContentRequest) error {
	return c.do(ctx, http.MethodPut, "/api/user-sessions/"+sessionID+"/document-content", req, nil)
}

// ========== Vehicle catalog ==========

func carQuery(f *vehicle.Filters) url.Values {
	q := url.Values{}
	if f == nil {
		return q
	}
	if f.YearlyKm > 0 {
		q.Set("yearlyKm", strconv.Itoa(f.YearlyKm))
	}
	if f.Duration > 0 {
		q.Set("duration", strconv.Itoa(f.Duration))
	}
	if len(f.Brands) > 0 {
		q.Set("brands", strings.Join(f.Brands, ","))
	}
	if len(f.FuelTypes) > 0 {
		q.Set("fuelTypes", strings.Join(f.FuelTypes, ","))
	}
	if f.MinTco > 0 {
		q.Set("minTco", strconv.FormatFloat(f.MinTco, 'f', 2, 64))
	}
	if f.MaxTco > 0 {
		q.Set("maxTco", strconv.FormatFloat(f.MaxTco, 'f', 2, 64))
	}
	return q
}

func (c *Client) ListCars(ctx context.Context, f *vehicle.Filters, page, limit int) (*vehicle.ListResponse, error) {
	q := carQuery(f)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var resp vehicle.ListResponse
	if err := c.do(ctx, http.MethodGet, "/api/cars?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TcoRange returns the slider's global bounds for the given filters. The
// min/max TCO values in f are not sent; the bounds must not depend on them.
func (c *Client) TcoRange(ctx context.Context, f *vehicle.Filters) (float64, float64, error) {
	trimmed := *f
	trimmed.MinTco, trimmed.MaxTco = 0, 0

	var resp struct {
		MinTco float64 `json:"minTco"`
		MaxTco float64 `json:"maxTco"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/cars/tco-range?"+carQuery(&trimmed).Encode(), nil, &resp); err != nil {
		return 0, 0, err
	}
	return resp.MinTco, resp.MaxTco, nil
}

func (c *Client) Distribution(ctx context.Context, f *vehicle.Filters) ([]vehicle.DistributionBucket, error) {
	trimmed := *f
	trimmed.MinTco, trimmed.MaxTco = 0, 0

	var resp []vehicle.DistributionBucket
	if err := c.do(ctx, http.MethodGet, "/api/cars/distribution?"+carQuery(&trimmed).Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Facets(ctx context.Context, f *vehicle.Filters) (*vehicle.Facets, error) {
	var resp vehicle.Facets
	if err := c.do(ctx, http.MethodGet, "/api/cars/facets?"+carQuery(f).Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CalculateTco(ctx context.Context, req *vehicle.CalculateTcoRequest) (*vehicle.TcoResult, error) {
	var resp vehicle.TcoResult
	if err := c.do(ctx, http.MethodPost, "/api/cars/calculate-tco", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
