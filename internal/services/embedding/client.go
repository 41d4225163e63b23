// Package embedding scores text similarity for subheading deduplication.
// With a base URL configured it calls an OpenAI-compatible embeddings
// endpoint and compares vectors; without one it falls back to the local
// term-frequency fingerprint, which needs no network at the cost of missing
// paraphrase-level matches.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"storyreel/internal/textutil"
)

const defaultHTTPTimeout = 30 * time.Second

// Config captures the embeddings endpoint settings. An empty BaseURL selects
// the local fallback.
type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// Comparer scores how similar two texts are, in [0, 1].
type Comparer interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// NewComparer selects the remote client or the local fallback based on the
// configuration.
func NewComparer(cfg Config, opts ...Option) Comparer {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return Local{}
	}
	return NewClient(cfg, opts...)
}

// Client calls an OpenAI-compatible embeddings endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an embeddings client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			APIKey:         strings.TrimSpace(cfg.APIKey),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Embed returns the embedding vectors for the supplied inputs, in order.
func (c *Client) Embed(ctx context.Context, inputs ...string) ([][]float64, error) {
	if len(inputs) == 0 {
		return nil, errors.New("embed: no inputs")
	}
	payload, err := json.Marshal(embeddingRequest{Model: c.cfg.Model, Input: inputs})
	if err != nil {
		return nil, fmt.Errorf("embed: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("embed: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embed: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded embeddingResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("embed: decode response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("embed: api error: %s", decoded.Error.Message)
	}
	if len(decoded.Data) != len(inputs) {
		return nil, fmt.Errorf("embed: got %d vectors for %d inputs", len(decoded.Data), len(inputs))
	}

	vectors := make([][]float64, len(inputs))
	for _, item := range decoded.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embed: vector index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// Similarity embeds both texts in one request and returns their cosine
// similarity.
func (c *Client) Similarity(ctx context.Context, a, b string) (float64, error) {
	vectors, err := c.Embed(ctx, a, b)
	if err != nil {
		return 0, err
	}
	return Cosine(vectors[0], vectors[1]), nil
}

// Cosine computes the cosine similarity of two vectors; mismatched or empty
// vectors score 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Local scores similarity with term-frequency fingerprints. Always available.
type Local struct{}

// Similarity implements Comparer.
func (Local) Similarity(_ context.Context, a, b string) (float64, error) {
	return textutil.CosineSimilarity(textutil.NewFingerprint(a), textutil.NewFingerprint(b)), nil
}
