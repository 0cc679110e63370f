package evidence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client fetches evidence-based intervention guidelines for an ICD-11 code
// from an external advisory service. Results only refine wording; the
// built-in intervention table remains authoritative, so every failure here is
// recoverable by the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new guidelines client. A blank baseURL is an error;
// deployments without an advisory source leave the provider unset.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("evidence: base URL is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type guidelinesResponse struct {
	Interventions []string `json:"interventions"`
}

// Interventions returns guideline texts for a code, possibly empty.
func (c *Client) Interventions(ctx context.Context, code string) ([]string, error) {
	if code == "" {
		return nil, errors.New("evidence: code is required")
	}

	endpoint := fmt.Sprintf("%s/guidelines?code=%s", c.baseURL, url.QueryEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("evidence: request failed with status %d", resp.StatusCode)
	}

	var out guidelinesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Interventions, nil
}
