package embedding

import (
	"context"
	stderrors "errors"
	"log/slog"
)

// Scorer computes text similarity from embeddings, consulting a shared cache
// keyed by model and text before calling the embedder.
//
// A Scorer holds no mutable state of its own; the cache is the only state
// shared between concurrent callers and it is append-only.
type Scorer struct {
	embedder Embedder
	cache    Cache
	logger   *slog.Logger
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithCache attaches an embedding cache.
func WithCache(c Cache) ScorerOption {
	return func(s *Scorer) {
		s.cache = c
	}
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger *slog.Logger) ScorerOption {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScorer creates a scorer over the given embedder.
func NewScorer(embedder Embedder, opts ...ScorerOption) *Scorer {
	s := &Scorer{embedder: embedder, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Model returns the embedder model identifier.
func (s *Scorer) Model() string {
	return s.embedder.Model()
}

// Similarity returns the cosine similarity of a and b, clamped to [0, 1].
func (s *Scorer) Similarity(ctx context.Context, a, b string) (float64, error) {
	scores, err := s.SimilarityMany(ctx, a, []string{b})
	if err != nil {
		return 0, err
	}
	return scores[0], nil
}

// SimilarityMany scores query against each candidate, embedding all uncached
// texts in a single batch. Scores are clamped to [0, 1].
func (s *Scorer) SimilarityMany(ctx context.Context, query string, candidates []string) ([]float64, error) {
	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, query)
	texts = append(texts, candidates...)

	vectors, err := s.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(candidates))
	for i := range candidates {
		sim := CosineSimilarity(vectors[0], vectors[i+1])
		if sim < 0 {
			sim = 0
		}
		if sim > 1 {
			sim = 1
		}
		scores[i] = sim
	}
	return scores, nil
}

// Embed returns one vector per text, using the cache where possible.
func (s *Scorer) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	model := s.embedder.Model()

	var missIdx []int
	var missTexts []string
	// Duplicate texts within one call are embedded once.
	pending := make(map[string]int)

	for i, text := range texts {
		if s.cache != nil {
			v, err := s.cache.Get(ctx, ContentHash(model, text))
			if err == nil {
				vectors[i] = v
				continue
			}
			if !stderrors.Is(err, ErrCacheMiss) {
				s.logger.Debug("Embedding cache get failed", "error", err)
			}
		}
		if _, ok := pending[text]; !ok {
			pending[text] = len(missTexts)
			missTexts = append(missTexts, text)
		}
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	generated, err := s.embedder.Generate(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		for i, text := range missTexts {
			if err := s.cache.Put(ctx, ContentHash(model, text), generated[i]); err != nil {
				s.logger.Debug("Embedding cache put failed", "error", err)
			}
		}
	}

	for _, i := range missIdx {
		vectors[i] = generated[pending[texts[i]]]
	}
	return vectors, nil
}
