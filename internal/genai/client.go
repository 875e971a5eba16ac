// Package genai wraps the remote Gemini text generation API.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "models/gemini-1.5-pro-002"

// ErrEmptyCandidates is returned when the remote response carries no
// generated text.
var ErrEmptyCandidates = errors.New("no candidates in generation response")

// Client calls the Gemini generateContent endpoint. Retry policy lives with
// the caller; this client performs exactly one attempt per call.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a generation client. baseURL is overridable for tests;
// pass "" for the public endpoint.
func NewClient(apiKey, model, baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Model returns the configured generation model id.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// GenerateContent sends the prompt and returns the generated text. Remote
// failures surface the upstream message verbatim so the caller's quota
// detection can inspect it.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read generation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var wrapper struct {
			Error *apiError `json:"error"`
		}
		if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Error != nil {
			return "", fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, wrapper.Error.Message)
		}
		return "", fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("generation API error: %s", genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCandidates
	}

	var text strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	c.logger.Debug("generated content",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Int("response_len", text.Len()))

	return text.String(), nil
}
