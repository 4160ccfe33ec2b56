package embedding

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"loanNumber", []string{"loan", "number"}},
		{"loan_number", []string{"loan", "number"}},
		{"Loan Number", []string{"loan", "number"}},
		{"principalAmount2024", []string{"principal", "amount2024"}},
		{"a b cd", []string{"cd"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestBM25Embedder_GenerateShapes(t *testing.T) {
	embedder := NewBM25Embedder(BM25Config{Dimensions: 64})

	vectors, err := embedder.Generate(context.Background(), []string{"hello world", "", "loan amount"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	for _, v := range vectors {
		assert.Len(t, v, 64)
	}
	assert.Equal(t, make([]float32, 64), vectors[1])
}

func TestBM25Embedder_Deterministic(t *testing.T) {
	embedder := NewBM25Embedder(BM25Config{})
	embedder.Fit([]string{"loan number", "principal amount", "interest rate", "borrower name"})

	first, err := embedder.Generate(context.Background(), []string{"loan amount"})
	require.NoError(t, err)
	_, err = embedder.Generate(context.Background(), []string{"something else entirely", "more text"})
	require.NoError(t, err)
	second, err := embedder.Generate(context.Background(), []string{"loan amount"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBM25Embedder_SimilarityOrdering(t *testing.T) {
	embedder := NewBM25Embedder(BM25Config{})
	embedder.Fit([]string{"loan number", "principal amount", "interest rate", "borrower name"})

	vectors, err := embedder.Generate(context.Background(), []string{
		"loan_amount", "principal amount", "borrower name",
	})
	require.NoError(t, err)

	related := CosineSimilarity(vectors[0], vectors[1])
	unrelated := CosineSimilarity(vectors[0], vectors[2])
	assert.Greater(t, related, unrelated)
	assert.InDelta(t, 0.0, unrelated, 1e-6)
}

func TestBM25Embedder_ConcurrentGenerate(t *testing.T) {
	embedder := NewBM25Embedder(BM25Config{})
	embedder.Fit([]string{"alpha beta", "gamma delta"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := embedder.Generate(context.Background(), []string{"alpha gamma"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestBM25Embedder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBM25Embedder(BM25Config{}).Generate(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
