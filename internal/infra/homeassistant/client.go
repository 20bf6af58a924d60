package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hactl/internal/domain"
	"hactl/internal/infra"
)

// Client talks to the Home Assistant REST API. It implements
// application.EntitySource and application.ServiceInvoker.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retry      infra.RetryConfig
}

func NewClient(baseURL, token string, timeout time.Duration, retry infra.RetryConfig) *Client {
	// Remove trailing slash if present
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry,
	}
}

// State is one element of GET /api/states.
type State struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged string         `json:"last_changed"`
}

func (s State) toEntity() domain.Entity {
	name := s.EntityID
	if friendlyName, ok := s.Attributes["friendly_name"].(string); ok && strings.TrimSpace(friendlyName) != "" {
		name = friendlyName
	}
	return domain.Entity{
		ID:         s.EntityID,
		Name:       name,
		State:      s.State,
		Attributes: s.Attributes,
	}
}

// FetchEntities returns every entity in the order Home Assistant reports them.
func (c *Client) FetchEntities(ctx context.Context) ([]domain.Entity, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/states", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching states: %w", err)
	}

	var states []State
	if err := json.Unmarshal(resp, &states); err != nil {
		return nil, fmt.Errorf("parsing states: %w", err)
	}

	entities := make([]domain.Entity, 0, len(states))
	for _, s := range states {
		if domain.DomainOf(s.EntityID) == "" {
			continue
		}
		entities = append(entities, s.toEntity())
	}
	return entities, nil
}

// InvokeService posts payload to /api/services/<domain>/<service> and returns the
// list of changed states Home Assistant answers with.
func (c *Client) InvokeService(ctx context.Context, entityDomain, service string, payload map[string]any) (json.RawMessage, error) {
	if entityDomain == "" || service == "" {
		return nil, fmt.Errorf("invalid service %q.%q", entityDomain, service)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	path := fmt.Sprintf("/api/services/%s/%s", url.PathEscape(entityDomain), url.PathEscape(service))
	resp, err := c.doRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, fmt.Errorf("calling %s.%s: %w", entityDomain, service, err)
	}
	return json.RawMessage(resp), nil
}

// APIError is a non-2xx answer from Home Assistant.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode == http.StatusUnauthorized {
		return "unauthorized: check your Home Assistant token"
	}
	return fmt.Sprintf("home assistant API error %d: %s", e.StatusCode, e.Body)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var respBody []byte

	retryErr := infra.WithRetry(ctx, c.retry, func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err = io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode >= 400 {
			apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return apiErr
			}
			return infra.Permanent(apiErr)
		}

		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return respBody, nil
}
