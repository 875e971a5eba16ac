// Package embedding wraps the remote Gemini embedding API.
package embedding

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

// TaskType tells the embedding model how the text will be used. Documents to
// be searched and the queries searching them are embedded differently.
type TaskType string

const (
	TaskRetrievalDocument  TaskType = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery     TaskType = "RETRIEVAL_QUERY"
	TaskSemanticSimilarity TaskType = "SEMANTIC_SIMILARITY"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "models/text-embedding-004"

// acceptedModelPrefixes are the model name families this client knows how to
// call. Anything else is rejected before a remote call is made.
var acceptedModelPrefixes = []string{
	"models/text-embedding-",
	"models/embedding-",
	"models/gemini-embedding-",
}

var (
	// ErrInvalidModel is returned when the configured model id does not match
	// a recognized embedding model family.
	ErrInvalidModel = errors.New("not a recognized embedding model")

	// ErrMalformedResponse is returned when the remote response lacks the
	// embedding payload.
	ErrMalformedResponse = errors.New("embedding not found in response")
)

// Client calls the Gemini batchEmbedContents endpoint. The API key and model
// are fixed at construction and read-only afterwards.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates an embedding client. baseURL is overridable for tests;
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

// Model returns the configured embedding model id.
func (c *Client) Model() string {
	return c.model
}

type embedContentRequest struct {
	Model    string   `json:"model"`
	Content  content  `json:"content"`
	TaskType TaskType `json:"taskType,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type batchEmbedRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Embed converts texts into embedding vectors, one per input, in input order.
// An empty input returns an empty result without touching the network. The
// model id is validated first; remote and transport failures are returned to
// the caller unchanged. Retry policy belongs to the caller, not this layer.
func (c *Client) Embed(ctx context.Context, texts []string, taskType TaskType) ([][]float32, error) {
	if err := validateModel(c.model); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	reqBody := batchEmbedRequest{Requests: make([]embedContentRequest, len(texts))}
	for i, text := range texts {
		reqBody.Requests[i] = embedContentRequest{
			Model:    c.model,
			Content:  content{Parts: []part{{Text: text}}},
			TaskType: taskType,
		}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:batchEmbedContents?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp.StatusCode, body)
	}

	var embResp batchEmbedResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if embResp.Error != nil {
		return nil, fmt.Errorf("embedding API error: %s", embResp.Error.Message)
	}
	if len(embResp.Embeddings) == 0 {
		return nil, ErrMalformedResponse
	}

	vectors := make([][]float32, len(embResp.Embeddings))
	for i, e := range embResp.Embeddings {
		if len(e.Values) == 0 {
			return nil, ErrMalformedResponse
		}
		vectors[i] = e.Values
	}

	c.logger.Debug("generated embeddings",
		zap.Int("count", len(vectors)),
		zap.String("task_type", string(taskType)))

	return vectors, nil
}

func validateModel(model string) error {
	for _, prefix := range acceptedModelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return nil
		}
	}
	return fmt.Errorf("model %s: %w", model, ErrInvalidModel)
}

// remoteError surfaces the upstream error text verbatim so callers can
// inspect it (quota detection happens on the message).
func remoteError(status int, body []byte) error {
	var wrapper struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Error != nil {
		return fmt.Errorf("embedding API returned status %d: %s", status, wrapper.Error.Message)
	}
	return fmt.Errorf("embedding API returned status %d: %s", status, string(body))
}
