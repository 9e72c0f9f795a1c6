// Package embed implements the embedder (C4): turns chunk text into
// fixed-dimension, L2-normalized vectors.
package embed

import (
	"context"
	"math"
)

// Embedder is satisfied by anything that can turn text into vectors of a
// fixed dimension. Implementations must return an all-zero vector (not an
// error) for empty input, matching the original model wrapper's behavior.
type Embedder interface {
	Dimensions() int
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// normalize returns the L2-normalized copy of v, or an all-zero vector of
// the same length if v's norm is zero (including for an empty string's
// embedding).
func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	norm := float32(math.Sqrt(sumSq))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// batches splits items into chunks of at most size n, preserving order.
func batches(items []string, n int) [][]string {
	if n <= 0 {
		n = len(items)
	}
	var out [][]string
	for start := 0; start < len(items); start += n {
		end := start + n
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}
