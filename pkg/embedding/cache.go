package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/pkg/cache"
)

// ContentHash returns the cache key for text embedded by model.
func ContentHash(model, text string) string {
	hash := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(hash[:])
}

// MemoryCache is an in-process, append-only embedding cache. It is constructed
// once and passed to every scorer that needs it.
type MemoryCache struct {
	entries cache.Cache[[]float32]
}

// NewMemoryCache creates a memory cache. Options are forwarded to the
// underlying append-only cache.
func NewMemoryCache(opts ...cache.Option[[]float32]) (*MemoryCache, error) {
	entries, err := cache.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "MemoryCache", "NewMemoryCache", "create cache")
	}
	return &MemoryCache{entries: entries}, nil
}

// Get retrieves a cached embedding.
func (c *MemoryCache) Get(_ context.Context, key string) ([]float32, error) {
	if v, ok := c.entries.Get(key); ok {
		return v, nil
	}
	return nil, ErrCacheMiss
}

// Put stores an embedding unless one is already present. A full cache is not
// an error for callers; the embedding is simply not retained.
func (c *MemoryCache) Put(_ context.Context, key string, embedding []float32) error {
	_, _, err := c.entries.Add(key, embedding)
	if stderrors.Is(err, cache.ErrCacheFull) {
		return nil
	}
	return err
}

// Stats exposes the underlying cache statistics.
func (c *MemoryCache) Stats() cache.StatsSummary {
	return c.entries.Stats().Summary()
}

// KVCache implements Cache on a NATS JetStream key-value bucket so embeddings
// survive across processes.
type KVCache struct {
	bucket jetstream.KeyValue
}

// NewKVCache creates a KV-backed embedding cache.
func NewKVCache(bucket jetstream.KeyValue) *KVCache {
	return &KVCache{bucket: bucket}
}

// Get retrieves a cached embedding by key.
func (c *KVCache) Get(ctx context.Context, key string) ([]float32, error) {
	entry, err := c.bucket.Get(ctx, key)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrCacheMiss
		}
		return nil, errors.WrapTransient(err, "KVCache", "Get", "read embedding")
	}

	var embedding []float32
	if err := json.Unmarshal(entry.Value(), &embedding); err != nil {
		return nil, errors.WrapInvalid(err, "KVCache", "Get", "decode embedding")
	}
	return embedding, nil
}

// Put stores an embedding. Create keeps the bucket append-only: an existing
// key is left untouched.
func (c *KVCache) Put(ctx context.Context, key string, embedding []float32) error {
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}

	if _, err := c.bucket.Create(ctx, key, data); err != nil {
		if stderrors.Is(err, jetstream.ErrKeyExists) {
			return nil
		}
		return errors.WrapTransient(err, "KVCache", "Put", "write embedding")
	}
	return nil
}

// TieredCache consults a fast cache first and a slower backing cache second,
// promoting backing hits into the fast tier.
type TieredCache struct {
	fast    Cache
	backing Cache
}

// NewTieredCache combines two caches.
func NewTieredCache(fast, backing Cache) *TieredCache {
	return &TieredCache{fast: fast, backing: backing}
}

// Get checks the fast tier, then the backing tier.
func (c *TieredCache) Get(ctx context.Context, key string) ([]float32, error) {
	if v, err := c.fast.Get(ctx, key); err == nil {
		return v, nil
	}
	v, err := c.backing.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = c.fast.Put(ctx, key, v)
	return v, nil
}

// Put writes to both tiers. Backing failures are returned after the fast
// tier has been updated.
func (c *TieredCache) Put(ctx context.Context, key string, embedding []float32) error {
	if err := c.fast.Put(ctx, key, embedding); err != nil {
		return err
	}
	return c.backing.Put(ctx, key, embedding)
}
