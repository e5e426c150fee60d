package bonzo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://app.getbonzo.com"

// APIError is the single error kind every remote call can fail with: any
// status >= 400 or transport fault. StatusCode is 0 for transport failures.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api request failed: %s", e.Message)
}

/* Prospect is the downstream record created by a processed webhook.
 * Read-only view fetched from the API; the toolkit never constructs one
 * outside tests.
 */
type Prospect struct {
	ID               int            `json:"id"`
	BusinessEntityID int            `json:"business_entity_id"`
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name"`
	FullName         string         `json:"full_name"`
	Source           string         `json:"source"`
	Email            string         `json:"email,omitempty"`
	Phone            string         `json:"phone,omitempty"`
	AssignedTo       int            `json:"assigned_to"`
	AssignedUser     AssignedUser   `json:"assigned_user"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at"`
	Business         map[string]any `json:"business"`
}

// AssignedUser is the user a prospect is assigned to.
type AssignedUser struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

// requiredProspectFields must be present for a prospect to be usable in
// validation; records missing any of them are dropped with a warning.
var requiredProspectFields = []string{
	"id", "business_entity_id", "first_name", "last_name", "full_name",
	"source", "assigned_to", "assigned_user", "created_at", "updated_at", "business",
}

/* Client talks to the Bonzo API with a superuser credential.
 * Every call may impersonate a downstream user via the On-Behalf-Of header.
 */
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Tests point it at local servers.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient builds an API client authenticating with the superuser key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.With("module", "bonzo"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest performs one API call. A userID greater than zero adds the
// On-Behalf-Of header. Any non-2xx status or transport fault becomes an
// *APIError.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, userID int, params url.Values, body any) ([]byte, error) {
	requestURL := c.baseURL + endpoint
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &APIError{Message: fmt.Sprintf("encoding request body: %v", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("creating request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if userID > 0 {
		req.Header.Set("On-Behalf-Of", strconv.Itoa(userID))
	}

	c.logger.Debug("api request", "method", method, "url", requestURL, "on_behalf_of", userID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("reading response body: %v", err)}
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: parseErrorMessage(data)}
	}
	return data, nil
}

// parseErrorMessage pulls a human-readable message out of an error body.
func parseErrorMessage(data []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return strings.TrimSpace(string(data))
}

// GetUserProspects fetches prospects visible to the given user. Prospects
// missing required fields are dropped with a logged warning: partial success
// beats all-or-nothing on this read path.
func (c *Client) GetUserProspects(ctx context.Context, userID, limit int, createdAfter string) ([]Prospect, error) {
	if limit <= 0 {
		limit = 100
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if createdAfter != "" {
		params.Set("created_after", createdAfter)
	}

	data, err := c.doRequest(ctx, http.MethodGet, "/api/v3/prospects", userID, params, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &APIError{Message: fmt.Sprintf("decoding prospects response: %v", err)}
	}

	prospects := make([]Prospect, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			c.logger.Warn("skipping malformed prospect", "error", err)
			continue
		}
		if missing := missingField(fields); missing != "" {
			c.logger.Warn("skipping prospect with missing field", "field", missing, "user_id", userID)
			continue
		}
		var p Prospect
		if err := json.Unmarshal(raw, &p); err != nil {
			c.logger.Warn("skipping undecodable prospect", "error", err)
			continue
		}
		prospects = append(prospects, p)
	}

	c.logger.Info("retrieved prospects", "count", len(prospects), "user_id", userID)
	return prospects, nil
}

func missingField(fields map[string]json.RawMessage) string {
	for _, field := range requiredProspectFields {
		if _, ok := fields[field]; !ok {
			return field
		}
	}
	return ""
}

// FindTestProspects returns the user's prospects whose first, last or full
// name contains the pattern, case-insensitively.
func (c *Client) FindTestProspects(ctx context.Context, userID int, pattern, createdAfter string) ([]Prospect, error) {
	all, err := c.GetUserProspects(ctx, userID, 0, createdAfter)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(pattern)
	matches := make([]Prospect, 0, len(all))
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.FirstName), needle) ||
			strings.Contains(strings.ToLower(p.LastName), needle) ||
			strings.Contains(strings.ToLower(p.FullName), needle) {
			matches = append(matches, p)
		}
	}

	c.logger.Info("matched test prospects", "count", len(matches), "pattern", pattern, "user_id", userID)
	return matches, nil
}
