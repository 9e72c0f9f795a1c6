package retrieve

import (
	"context"
	"testing"

	"github.com/codekshitij/toshi/internal/filing"
)

func TestMockRerankerBypassesSingleChunk(t *testing.T) {
	r := MockReranker{}
	chunks := []filing.Chunk{{ChunkID: "only", Text: "irrelevant"}}
	out, err := r.Rerank(context.Background(), "query", chunks)
	if err != nil {
		t.Fatalf("rerank: %v", err)
	}
	if len(out) != 1 || out[0].ChunkID != "only" {
		t.Fatalf("expected single chunk passed through unchanged, got %+v", out)
	}
}

func TestMockRerankerCapsAtTopK(t *testing.T) {
	r := MockReranker{}
	var chunks []filing.Chunk
	for i := 0; i < TopK+5; i++ {
		chunks = append(chunks, filing.Chunk{ChunkID: string(rune('a' + i)), Text: "risk factor discussion"})
	}
	out, err := r.Rerank(context.Background(), "risk factor", chunks)
	if err != nil {
		t.Fatalf("rerank: %v", err)
	}
	if len(out) != TopK {
		t.Fatalf("expected exactly %d results, got %d", TopK, len(out))
	}
}

func TestRoundTo4(t *testing.T) {
	if got := roundTo4(0.123456); got != 0.1235 {
		t.Fatalf("expected 0.1235, got %v", got)
	}
}
