package retrieve

import (
	"context"

	"github.com/codekshitij/toshi/internal/filing"
)

// MockReranker is a deterministic test double: it scores chunks by
// keyword overlap with the query instead of calling a cross-encoder,
// so retrieval-pipeline tests don't need a running rerank server.
type MockReranker struct{}

func (MockReranker) Rerank(_ context.Context, query string, chunks []filing.Chunk) ([]filing.Chunk, error) {
	if len(chunks) <= 1 {
		return chunks, nil
	}
	keywords := ExtractKeywords(query)

	type pair struct {
		chunk filing.Chunk
		score float64
	}
	pairs := make([]pair, len(chunks))
	for i, c := range chunks {
		pairs[i] = pair{chunk: c, score: scoreChunk(c.Text, nil, nil, keywords)}
	}
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j].score > pairs[j-1].score; j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}

	n := TopK
	if n > len(pairs) {
		n = len(pairs)
	}
	out := make([]filing.Chunk, n)
	for i := 0; i < n; i++ {
		c := pairs[i].chunk
		c.RerankScore = roundTo4(pairs[i].score)
		out[i] = c
	}
	return out, nil
}
