// Package inference provides an HTTP client for the fine-tuned condition
// classifier served as a sidecar. The sidecar returns raw class
// probabilities; the index-to-code mapping produced during training is
// loaded from a local artifact so that the service and the model stay in
// lockstep.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kalusugan-health/condition-screening/internal/domain/providers"
)

// Client calls the classifier sidecar and maps class indices to ICD-11
// codes. It implements providers.ClassifierProvider.
type Client struct {
	serviceURL  string
	indexToCode map[int]string
	httpClient  *http.Client
	ready       bool
}

// NewClient builds a classifier client. It returns a client with
// Ready() == false when the service URL is empty or the label artifact
// cannot be loaded, so callers can degrade to the other detectors.
func NewClient(serviceURL, artifactPath string, timeout time.Duration) *Client {
	c := &Client{
		serviceURL: strings.TrimRight(strings.TrimSpace(serviceURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	if c.serviceURL == "" {
		return c
	}

	mapping, err := loadIndexToCode(artifactPath)
	if err != nil {
		log.Warn().Err(err).Str("path", artifactPath).
			Msg("Classifier label artifact unavailable, classifier head disabled")
		return c
	}

	c.indexToCode = mapping
	c.ready = true
	return c
}

// Ready reports whether the classifier head can serve predictions.
func (c *Client) Ready() bool {
	return c != nil && c.ready
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

// Classify returns per-code probabilities for the given text, sorted by
// probability descending.
func (c *Client) Classify(ctx context.Context, text string) ([]providers.ClassPrediction, error) {
	if !c.Ready() {
		return nil, errors.New("inference: classifier head is not available")
	}

	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference: request failed with status %d", resp.StatusCode)
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	predictions := make([]providers.ClassPrediction, 0, len(out.Probabilities))
	for i, p := range out.Probabilities {
		code, ok := c.indexToCode[i]
		if !ok {
			continue
		}
		predictions = append(predictions, providers.ClassPrediction{Code: code, Probability: p})
	}
	sort.Slice(predictions, func(i, j int) bool {
		if predictions[i].Probability != predictions[j].Probability {
			return predictions[i].Probability > predictions[j].Probability
		}
		return predictions[i].Code < predictions[j].Code
	})
	return predictions, nil
}

// loadIndexToCode reads the training artifact mapping class indices to
// ICD-11 codes. JSON object keys are strings, so indices are parsed.
func loadIndexToCode(path string) (map[int]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("inference: artifact path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("inference: invalid label artifact: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("inference: label artifact is empty")
	}

	mapping := make(map[int]string, len(raw))
	for key, code := range raw {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("inference: invalid class index %q in label artifact", key)
		}
		mapping[idx] = code
	}
	return mapping, nil
}
