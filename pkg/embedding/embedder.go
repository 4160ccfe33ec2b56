// Package embedding provides the similarity-scorer capability consumed by
// semantic matchers: embedders that turn text into vectors, an injectable
// append-only embedding cache, and a Scorer combining the two.
package embedding

import (
	"context"
	stderrors "errors"
)

// ErrCacheMiss is returned by Cache.Get when no embedding is stored for a key.
var ErrCacheMiss = stderrors.New("embedding cache miss")

// Embedder generates vector embeddings for text.
//
// Implementations must be safe for concurrent use: the matcher pipeline calls
// Generate from several goroutines at once.
type Embedder interface {
	// Generate creates embeddings for the given texts, one vector per text.
	Generate(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of produced embeddings.
	Dimensions() int

	// Model returns the model identifier. It is part of every cache key.
	Model() string

	// Close releases any resources held by the embedder.
	Close() error
}

// Cache provides content-addressed storage for embeddings. Keys come from
// ContentHash and therefore include the model identifier.
type Cache interface {
	// Get returns ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key string) ([]float32, error)

	// Put stores an embedding. Implementations never replace an existing entry.
	Put(ctx context.Context, key string, embedding []float32) error
}
