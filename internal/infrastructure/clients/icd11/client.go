package icd11

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kalusugan-health/condition-screening/pkg/config"
)

// ErrUnauthorized is returned when the service rejects the bearer token even
// after a refresh.
var ErrUnauthorized = errors.New("icd11: unauthorized")

// Client talks to the WHO ICD-11 entity API using the OAuth2
// client-credentials flow. It owns token caching, request pacing, and the
// single refresh-and-retry on an expired token. It never panics; every error
// path returns an error for the caller's Gate to count.
type Client struct {
	cfg        config.ICD11Config
	httpClient *http.Client

	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time

	paceMu      sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

// NewClient creates a new ICD-11 API client
func NewClient(cfg *config.ICD11Config) *Client {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:         *cfg,
		httpClient:  &http.Client{Timeout: timeout},
		minInterval: time.Minute / time.Duration(rpm),
	}
}

// HasCredentials reports whether the client can authenticate at all
func (c *Client) HasCredentials() bool {
	return c.cfg.HasCredentials()
}

// FetchEntity retrieves a single entity payload by id. Transient failures are
// retried with exponential backoff up to MaxRetries; an expired token is
// refreshed once per attempt.
func (c *Client) FetchEntity(ctx context.Context, entityID string) (json.RawMessage, error) {
	if !c.HasCredentials() {
		return nil, errors.New("icd11: credentials not configured")
	}
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return nil, errors.New("icd11: entity id is required")
	}

	policy := backoff.WithContext(c.retryPolicy(), ctx)

	var payload json.RawMessage
	operation := func() error {
		body, err := c.fetchOnce(ctx, entityID)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				return backoff.Permanent(err)
			}
			return err
		}
		payload = body
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		recordRemoteMetric(ctx, "entity", err)
		return nil, err
	}
	recordRemoteMetric(ctx, "entity", nil)
	return payload, nil
}

func (c *Client) retryPolicy() backoff.BackOff {
	delay := time.Duration(c.cfg.RetryDelaySeconds * float64(time.Second))
	if delay <= 0 {
		delay = time.Second
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = delay
	retries := c.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithMaxRetries(exp, uint64(retries))
}

func (c *Client) fetchOnce(ctx context.Context, entityID string) (json.RawMessage, error) {
	token, err := c.bearerToken(ctx, false)
	if err != nil {
		return nil, err
	}

	body, status, err := c.getEntity(ctx, entityID, token)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		// Expired token: refresh once and retry a single time.
		token, err = c.bearerToken(ctx, true)
		if err != nil {
			return nil, err
		}
		body, status, err = c.getEntity(ctx, entityID, token)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("icd11: entity request failed with status %d", status)
	}
	return body, nil
}

func (c *Client) getEntity(ctx context.Context, entityID, token string) (json.RawMessage, int, error) {
	if err := c.pace(ctx); err != nil {
		return nil, 0, err
	}

	endpoint := fmt.Sprintf("%s/entity/%s", strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(entityID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en")
	req.Header.Set("API-Version", "v2")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// pace enforces the minimum interval between outgoing requests.
func (c *Client) pace(ctx context.Context) error {
	c.paceMu.Lock()
	now := time.Now()
	wait := c.minInterval - now.Sub(c.lastRequest)
	if wait < 0 {
		wait = 0
	}
	c.lastRequest = now.Add(wait)
	c.paceMu.Unlock()

	if wait == 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// bearerToken returns the cached token, acquiring a fresh one when it is
// missing, within a second of expiry, or when force is set.
func (c *Client) bearerToken(ctx context.Context, force bool) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if !force && c.token != "" && time.Now().Before(c.tokenExpiry.Add(-time.Second)) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("icd11: token request failed with status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("icd11: failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("icd11: token response missing access_token")
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.token, nil
}
