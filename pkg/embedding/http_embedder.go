package embedding

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/pkg/retry"
)

// HTTPEmbedder calls an external OpenAI-compatible embedding service
// (Text Embeddings Inference, LocalAI, OpenAI).
//
// Requests are paced by a token-bucket limiter and retried on transient
// failures (timeouts, 429 and 5xx responses).
type HTTPEmbedder struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	retry   retry.Config
	logger  *slog.Logger

	mu         sync.RWMutex
	dimensions int
}

// HTTPConfig configures the HTTP embedder.
type HTTPConfig struct {
	// BaseURL of the embedding service, e.g. "http://localhost:8082".
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// Model is the embedding model to request, e.g. "all-MiniLM-L6-v2".
	Model string `json:"model" mapstructure:"model"`

	// APIKey for authentication (optional for local services).
	APIKey string `json:"api_key" mapstructure:"api_key"`

	// Timeout for each HTTP request (default: 30s).
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// RequestsPerSecond limits request rate; zero disables limiting.
	RequestsPerSecond float64 `json:"requests_per_second" mapstructure:"requests_per_second"`

	// Burst is the limiter burst size (default: 1).
	Burst int `json:"burst" mapstructure:"burst"`

	// Retry configures retries of transient failures.
	Retry errors.RetryConfig `json:"retry" mapstructure:"retry"`

	// Logger for diagnostics (defaults to slog.Default()).
	Logger *slog.Logger `json:"-" mapstructure:"-"`
}

// NewHTTPEmbedder creates a new HTTP-based embedder.
func NewHTTPEmbedder(cfg HTTPConfig) (*HTTPEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "HTTPEmbedder", "New", "base_url is required")
	}
	if cfg.Model == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "HTTPEmbedder", "New", "model is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "unused" // local services ignore the key
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = cfg.BaseURL
	config.HTTPClient = &http.Client{Timeout: timeout}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	retryCfg := cfg.Retry
	if retryCfg.MaxRetries == 0 && retryCfg.InitialDelay == 0 {
		retryCfg = errors.DefaultRetryConfig()
	}
	rc := retryCfg.ToRetryConfig()
	rc.Retryable = isRetryableAPIError

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPEmbedder{
		client:  openai.NewClientWithConfig(config),
		model:   cfg.Model,
		limiter: limiter,
		retry:   rc,
		logger:  logger.With("component", "http-embedder", "model", cfg.Model),
	}, nil
}

// Generate calls the embedding service for all texts in one request.
func (h *HTTPEmbedder) Generate(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := retry.DoWithResult(ctx, h.retry, func() (openai.EmbeddingResponse, error) {
		if err := h.limiter.Wait(ctx); err != nil {
			return openai.EmbeddingResponse{}, retry.NonRetryable(err)
		}
		return h.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(h.model),
		})
	})
	if err != nil {
		h.logger.Warn("Embedding request failed", "texts", len(texts), "error", err)
		if isRetryableAPIError(err) {
			return nil, errors.WrapTransient(err, "HTTPEmbedder", "Generate", "create embeddings")
		}
		return nil, errors.WrapInvalid(err, "HTTPEmbedder", "Generate", "create embeddings")
	}

	if len(resp.Data) != len(texts) {
		return nil, errors.WrapInvalid(
			fmt.Errorf("service returned %d embeddings for %d texts", len(resp.Data), len(texts)),
			"HTTPEmbedder", "Generate", "validate response")
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, errors.WrapInvalid(errors.ErrInvalidData, "HTTPEmbedder", "Generate", "validate response index")
		}
		embeddings[data.Index] = data.Embedding
	}

	if len(embeddings[0]) > 0 {
		h.mu.Lock()
		h.dimensions = len(embeddings[0])
		h.mu.Unlock()
	}
	return embeddings, nil
}

// Dimensions returns the dimensionality observed on the last response, or 0
// before the first call.
func (h *HTTPEmbedder) Dimensions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dimensions
}

// Model returns the model identifier.
func (h *HTTPEmbedder) Model() string {
	return h.model
}

// Close releases resources (no-op for HTTP client).
func (h *HTTPEmbedder) Close() error {
	return nil
}

func isRetryableAPIError(err error) bool {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return errors.IsTransient(err)
}
