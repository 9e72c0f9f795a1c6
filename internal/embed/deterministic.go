package embed

import (
	"context"
	"hash/fnv"
)

// DeterministicEmbedder is an offline test double: same text always
// produces the same vector, and textually similar inputs (sharing
// trigrams) land closer together than unrelated ones, which is enough
// to exercise MMR/CRAG/rerank logic without a running inference server.
type DeterministicEmbedder struct {
	dims int
}

func NewDeterministicEmbedder(dims int) *DeterministicEmbedder {
	return &DeterministicEmbedder{dims: dims}
}

func (e *DeterministicEmbedder) Dimensions() int { return e.dims }

func (e *DeterministicEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e *DeterministicEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.embed(t)
	}
	return out, nil
}

func (e *DeterministicEmbedder) embed(text string) []float32 {
	v := make([]float32, e.dims)
	if text == "" {
		return v
	}
	trigrams := trigramsOf(text)
	if len(trigrams) == 0 {
		trigrams = []string{text}
	}
	for _, g := range trigrams {
		h := fnv.New32a()
		h.Write([]byte(g))
		idx := int(h.Sum32()) % e.dims
		if idx < 0 {
			idx += e.dims
		}
		v[idx]++
	}
	return normalize(v)
}

func trigramsOf(s string) []string {
	runes := []rune(s)
	if len(runes) < 3 {
		return nil
	}
	var out []string
	for i := 0; i+3 <= len(runes); i++ {
		out = append(out, string(runes[i:i+3]))
	}
	return out
}
