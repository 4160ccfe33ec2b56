package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"
)

// BM25Embedder produces lexical embeddings using BM25 term weighting and
// feature hashing into a fixed number of dimensions.
//
// Document statistics (document count, average length, document frequency) are
// learned only through Fit. Generate reads them and never changes them, so the
// same text always yields the same vector and concurrent calls are safe.
// Before Fit is called every term gets an IDF of 1.
//
// Tokenization splits on non-alphanumeric runes and on camelCase boundaries,
// so "loanNumber", "loan_number" and "Loan Number" share tokens.
type BM25Embedder struct {
	dimensions int
	k1         float64
	b          float64

	mu             sync.RWMutex
	docCount       int
	avgDocLength   float64
	termDocCount   map[string]int
	totalDocLength int
}

// BM25Config configures the BM25 embedder.
type BM25Config struct {
	// Dimensions is the output embedding dimension (default: 384)
	Dimensions int `json:"dimensions" mapstructure:"dimensions"`

	// K1 controls term frequency saturation (default: 1.5)
	K1 float64 `json:"k1" mapstructure:"k1"`

	// B controls length normalization (default: 0.75)
	B float64 `json:"b" mapstructure:"b"`
}

// NewBM25Embedder creates a new BM25-based embedder.
func NewBM25Embedder(cfg BM25Config) *BM25Embedder {
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 384
	}
	if cfg.K1 == 0 {
		cfg.K1 = 1.5
	}
	if cfg.B == 0 {
		cfg.B = 0.75
	}

	return &BM25Embedder{
		dimensions:   cfg.Dimensions,
		k1:           cfg.K1,
		b:            cfg.B,
		termDocCount: make(map[string]int),
	}
}

// Fit adds documents to the corpus statistics. Call it with the vocabulary the
// embedder will compare against (ontology labels and comments) before scoring.
func (b *BM25Embedder) Fit(corpus []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, text := range corpus {
		tokens := Tokenize(text)
		if len(tokens) == 0 {
			continue
		}
		b.docCount++
		b.totalDocLength += len(tokens)

		seen := make(map[string]bool, len(tokens))
		for _, token := range tokens {
			if !seen[token] {
				b.termDocCount[token]++
				seen[token] = true
			}
		}
	}
	if b.docCount > 0 {
		b.avgDocLength = float64(b.totalDocLength) / float64(b.docCount)
	}
}

// Generate creates BM25-based embeddings for the given texts.
func (b *BM25Embedder) Generate(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if i%100 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		tokens := Tokenize(text)
		if len(tokens) == 0 {
			embeddings[i] = make([]float32, b.dimensions)
			continue
		}
		termFreq := make(map[string]int, len(tokens))
		for _, token := range tokens {
			termFreq[token]++
		}
		embeddings[i] = b.computeBM25Vector(termFreq, len(tokens))
	}

	return embeddings, nil
}

// Dimensions returns the dimensionality of embeddings.
func (b *BM25Embedder) Dimensions() int {
	return b.dimensions
}

// Model returns the model identifier.
func (b *BM25Embedder) Model() string {
	return fmt.Sprintf("bm25-go-k%.1f-b%.2f-d%d", b.k1, b.b, b.dimensions)
}

// Close releases resources (no-op for BM25).
func (b *BM25Embedder) Close() error {
	return nil
}

// Tokenize lowercases text and splits it on non-alphanumeric runes and
// lower-to-upper camelCase boundaries. Single-rune tokens are dropped.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder
	var prev rune

	flush := func() {
		if current.Len() > 1 {
			tokens = append(tokens, current.String())
		}
		current.Reset()
	}

	for _, r := range text {
		switch {
		case unicode.IsUpper(r):
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				flush()
			}
			current.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(r)
		default:
			flush()
		}
		prev = r
	}
	flush()

	return tokens
}

func (b *BM25Embedder) computeBM25Vector(termFreq map[string]int, docLength int) []float32 {
	vector := make([]float32, b.dimensions)

	b.mu.RLock()
	defer b.mu.RUnlock()

	avgDocLen := b.avgDocLength
	if avgDocLen == 0 {
		avgDocLen = float64(docLength)
	}

	for term, tf := range termFreq {
		idf := 1.0
		if b.docCount > 0 {
			df := b.termDocCount[term]
			// Robertson-Sparck Jones IDF, floored so common terms still contribute.
			idf = math.Log(1 + (float64(b.docCount-df)+0.5)/(float64(df)+0.5))
			if idf < 0.01 {
				idf = 0.01
			}
		}

		numerator := float64(tf) * (b.k1 + 1)
		denominator := float64(tf) + b.k1*(1-b.b+b.b*(float64(docLength)/avgDocLen))
		vector[b.hashTerm(term)] += float32(idf * (numerator / denominator))
	}

	l2Normalize(vector)
	return vector
}

// hashTerm maps a term to a dimension using FNV-1a.
func (b *BM25Embedder) hashTerm(term string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(term))
	return int(h.Sum32() % uint32(b.dimensions))
}
