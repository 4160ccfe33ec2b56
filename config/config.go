package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rxcthefirst/RdfMapper-sub000/alignment"
	"github.com/Rxcthefirst/RdfMapper-sub000/construct"
	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/matcher"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
	"github.com/Rxcthefirst/RdfMapper-sub000/pkg/embedding"
)

// Embedding providers
const (
	ProviderNone = "none" // semantic matcher disabled
	ProviderBM25 = "bm25" // local lexical embeddings
	ProviderHTTP = "http" // OpenAI-compatible embedding service
)

// Config is the complete engine configuration. Every calibration constant
// of the matchers, the generator and the construction engine lives here as
// a default, never as a hard-coded value.
type Config struct {
	Logging      LoggingConfig          `json:"logging" mapstructure:"logging"`
	Reasoner     ontology.Config        `json:"reasoner" mapstructure:"reasoner"`
	Matchers     matcher.Config         `json:"matchers" mapstructure:"matchers"`
	Pipeline     matcher.PipelineConfig `json:"pipeline" mapstructure:"pipeline"`
	Generator    alignment.Config       `json:"generator" mapstructure:"generator"`
	Construction construct.Config       `json:"construction" mapstructure:"construction"`
	Embedding    EmbeddingConfig        `json:"embedding" mapstructure:"embedding"`
	Metrics      MetricsConfig          `json:"metrics" mapstructure:"metrics"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`     // debug, info, warn, error
	Format  string `json:"format" mapstructure:"format"`   // json, text
	Output  string `json:"output" mapstructure:"output"`   // stdout, stderr
	Service string `json:"service" mapstructure:"service"` // value of the "service" attribute
}

// EmbeddingConfig selects the similarity scorer behind the semantic matcher.
type EmbeddingConfig struct {
	Provider string               `json:"provider" mapstructure:"provider"`
	BM25     embedding.BM25Config `json:"bm25" mapstructure:"bm25"`
	HTTP     embedding.HTTPConfig `json:"http" mapstructure:"http"`
	Cache    EmbeddingCacheConfig `json:"cache" mapstructure:"cache"`
}

// EmbeddingCacheConfig controls the in-process embedding cache.
type EmbeddingCacheConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// MetricsConfig toggles Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "json",
			Output:  "stderr",
			Service: "rdfmapper",
		},
		Reasoner:     ontology.DefaultConfig(),
		Matchers:     matcher.DefaultConfig(),
		Pipeline:     matcher.DefaultPipelineConfig(),
		Generator:    alignment.DefaultConfig(),
		Construction: construct.DefaultConfig(),
		Embedding: EmbeddingConfig{
			Provider: ProviderBM25,
			BM25:     embedding.BM25Config{Dimensions: 384, K1: 1.5, B: 0.75},
			Cache:    EmbeddingCacheConfig{Enabled: true},
		},
		Metrics: MetricsConfig{Enabled: false},
	}
}

// Validate checks every section. The first problem is returned wrapped in
// ErrConfigValidation.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrConfigValidation, err), "Config", "Validate", "validate configuration")
	}
	return nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format %q is not one of json, text", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Output) {
	case "stdout", "stderr":
	default:
		return fmt.Errorf("logging.output %q is not one of stdout, stderr", c.Logging.Output)
	}

	r := c.Reasoner
	if r.UniquenessThreshold < 0 || r.UniquenessThreshold > 1 {
		return fmt.Errorf("reasoner.uniqueness_threshold must be in [0, 1]")
	}
	if r.UniquenessBonus < 0 || r.ViolationPenaltyScale < 0 || r.FunctionalViolationPenalty < 0 {
		return fmt.Errorf("reasoner bonuses and penalties cannot be negative")
	}

	if err := c.Matchers.Validate(); err != nil {
		return fmt.Errorf("matchers: %w", err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	if err := c.Construction.Validate(); err != nil {
		return fmt.Errorf("construction: %w", err)
	}

	switch c.Embedding.Provider {
	case ProviderNone, ProviderBM25:
	case ProviderHTTP:
		if c.Embedding.HTTP.BaseURL == "" || c.Embedding.HTTP.Model == "" {
			return fmt.Errorf("embedding.http.base_url and embedding.http.model are required for the http provider")
		}
	default:
		return fmt.Errorf("embedding.provider %q is not one of none, bm25, http", c.Embedding.Provider)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	if c == nil {
		cfg := DefaultConfig()
		return &cfg
	}
	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}
	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	clone.Embedding.HTTP.Logger = c.Embedding.HTTP.Logger
	return &clone
}
