package rdfmapper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Rxcthefirst/RdfMapper-sub000/alignment"
	"github.com/Rxcthefirst/RdfMapper-sub000/config"
	"github.com/Rxcthefirst/RdfMapper-sub000/construct"
	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/mapping"
	"github.com/Rxcthefirst/RdfMapper-sub000/matcher"
	"github.com/Rxcthefirst/RdfMapper-sub000/metric"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
	"github.com/Rxcthefirst/RdfMapper-sub000/output"
	"github.com/Rxcthefirst/RdfMapper-sub000/pkg/cache"
	"github.com/Rxcthefirst/RdfMapper-sub000/pkg/embedding"
)

// Mapper ties one ontology to a matcher pipeline, an alignment generator and
// the construction engine. It is safe for concurrent use once New returns.
type Mapper struct {
	cfg       config.Config
	reasoner  *ontology.Reasoner
	pipeline  *matcher.Pipeline
	generator *alignment.Generator
	embedder  embedding.Embedder
	registry  *metric.MetricsRegistry
	logger    *slog.Logger

	backingCache embedding.Cache
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mapper) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetricsRegistry uses registry instead of creating one. Metrics are
// recorded whenever a registry is present, regardless of Metrics.Enabled.
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(m *Mapper) {
		m.registry = registry
	}
}

// WithEmbeddingCache adds a shared embedding cache, such as embedding.KVCache,
// behind the in-process one.
func WithEmbeddingCache(c embedding.Cache) Option {
	return func(m *Mapper) {
		m.backingCache = c
	}
}

// Open loads the ontology at path and calls New.
func Open(ctx context.Context, path string, cfg config.Config, opts ...Option) (*Mapper, error) {
	ont, err := ontology.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return New(ont, cfg, opts...)
}

// New validates cfg and wires the engine around ont.
func New(ont *ontology.Ontology, cfg config.Config, opts ...Option) (*Mapper, error) {
	if ont == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Mapper", "New", "ontology is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Mapper{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil && cfg.Metrics.Enabled {
		m.registry = metric.NewMetricsRegistry()
	}
	metrics := m.registry.CoreMetrics()

	m.reasoner = ontology.NewReasoner(ont,
		ontology.WithConfig(cfg.Reasoner),
		ontology.WithLogger(m.logger),
	)

	scorer, err := m.newScorer(ont)
	if err != nil {
		return nil, err
	}
	var similarity matcher.SimilarityScorer
	if scorer != nil {
		similarity = scorer
	}

	var pipelineOpts []matcher.Option
	if m.registry != nil {
		pipelineOpts = append(pipelineOpts, matcher.WithMetricsRegistry(m.registry))
	}
	m.pipeline = matcher.NewDefaultPipeline(m.reasoner, similarity, cfg.Matchers, cfg.Pipeline,
		m.logger, metrics, pipelineOpts...)

	m.generator, err = alignment.NewGenerator(m.reasoner, m.pipeline, cfg.Generator,
		alignment.WithLogger(m.logger),
		alignment.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}

	m.logger.Info("Mapper ready",
		"classes", ont.ClassCount(),
		"properties", ont.PropertyCount(),
		"matchers", len(m.pipeline.Matchers()),
		"embedding_provider", cfg.Embedding.Provider)
	return m, nil
}

// newScorer builds the similarity scorer for the configured provider. It
// returns nil for ProviderNone, which leaves the semantic matcher out.
func (m *Mapper) newScorer(ont *ontology.Ontology) (*embedding.Scorer, error) {
	ec := m.cfg.Embedding
	switch ec.Provider {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderBM25:
		bm25 := embedding.NewBM25Embedder(ec.BM25)
		bm25.Fit(ontologyCorpus(ont))
		m.embedder = bm25
	case config.ProviderHTTP:
		hc := ec.HTTP
		if hc.Logger == nil {
			hc.Logger = m.logger
		}
		h, err := embedding.NewHTTPEmbedder(hc)
		if err != nil {
			return nil, err
		}
		m.embedder = h
	default:
		return nil, errors.WrapInvalid(errors.ErrConfigValidation, "Mapper", "newScorer",
			fmt.Sprintf("unknown embedding provider %q", ec.Provider))
	}

	var c embedding.Cache
	if ec.Cache.Enabled {
		var cacheOpts []cache.Option[[]float32]
		if m.registry != nil {
			cacheOpts = append(cacheOpts, cache.WithMetrics[[]float32](m.registry, "embedding_cache"))
		}
		mem, err := embedding.NewMemoryCache(cacheOpts...)
		if err != nil {
			return nil, err
		}
		c = mem
	}
	switch {
	case c != nil && m.backingCache != nil:
		c = embedding.NewTieredCache(c, m.backingCache)
	case m.backingCache != nil:
		c = m.backingCache
	}

	opts := []embedding.ScorerOption{embedding.WithLogger(m.logger.With("component", "embedding-scorer"))}
	if c != nil {
		opts = append(opts, embedding.WithCache(c))
	}
	return embedding.NewScorer(m.embedder, opts...), nil
}

// ontologyCorpus collects the texts the BM25 statistics are fitted on.
func ontologyCorpus(ont *ontology.Ontology) []string {
	var corpus []string
	for _, p := range ont.Properties() {
		corpus = append(corpus, p.Labels.All()...)
		if p.Comment != "" {
			corpus = append(corpus, p.Comment)
		}
	}
	for _, c := range ont.Classes() {
		corpus = append(corpus, c.Labels.All()...)
	}
	return corpus
}

// Reasoner returns the ontology reasoner.
func (m *Mapper) Reasoner() *ontology.Reasoner { return m.reasoner }

// Pipeline returns the matcher pipeline.
func (m *Mapper) Pipeline() *matcher.Pipeline { return m.pipeline }

// MetricsRegistry returns the registry, or nil when metrics are off.
func (m *Mapper) MetricsRegistry() *metric.MetricsRegistry { return m.registry }

// Align generates a mapping for in.Dataset and the report explaining it.
func (m *Mapper) Align(ctx context.Context, in alignment.Input) (*alignment.Result, error) {
	return m.generator.Generate(ctx, in)
}

// Build resolves def and streams source through a construction engine into
// sink. A run that aborts returns its report together with the error.
func (m *Mapper) Build(ctx context.Context, def *mapping.Definition, source dataset.ChunkSource, sink output.Sink) (*construct.ProcessingReport, error) {
	if def == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Mapper", "Build", "mapping is required")
	}
	resolved, err := def.Resolve()
	if err != nil {
		return nil, err
	}
	engine, err := construct.NewEngine(resolved, m.reasoner, m.cfg.Construction,
		construct.WithLogger(m.logger),
		construct.WithMetrics(m.registry.CoreMetrics()),
	)
	if err != nil {
		return nil, err
	}
	return engine.Run(ctx, source, sink)
}

// Close releases the embedder.
func (m *Mapper) Close() error {
	if m.embedder == nil {
		return nil
	}
	if err := m.embedder.Close(); err != nil {
		return errors.Wrap(err, "Mapper", "Close", "close embedder")
	}
	return nil
}
