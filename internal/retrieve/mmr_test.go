package retrieve

import (
	"testing"

	"github.com/codekshitij/toshi/internal/vectorindex"
)

func match(id string, score float64, embedding []float32) vectorindex.Match {
	return vectorindex.Match{
		Record: vectorindex.Record{ChunkID: id, Embedding: embedding},
		Score:  score,
	}
}

func TestSelectMMRPrefersMostRelevantFirst(t *testing.T) {
	pool := []vectorindex.Match{
		match("a", 0.95, []float32{1, 0, 0}),
		match("b", 0.40, []float32{0, 1, 0}),
		match("c", 0.30, []float32{0, 0, 1}),
	}
	selected := SelectMMR(pool, 3, 0.7)
	if len(selected) != 3 {
		t.Fatalf("expected all 3 selected, got %d", len(selected))
	}
	if selected[0].ChunkID != "a" {
		t.Fatalf("expected highest-relevance candidate first, got %s", selected[0].ChunkID)
	}
}

func TestSelectMMRPenalizesNearDuplicates(t *testing.T) {
	pool := []vectorindex.Match{
		match("a", 0.95, []float32{1, 0, 0}),
		match("dup", 0.94, []float32{1, 0, 0}), // near-identical to a
		match("diverse", 0.50, []float32{0, 1, 0}),
	}
	selected := SelectMMR(pool, 2, 0.5)
	if len(selected) != 2 {
		t.Fatalf("expected 2 selected, got %d", len(selected))
	}
	ids := map[string]bool{}
	for _, s := range selected {
		ids[s.ChunkID] = true
	}
	if !ids["diverse"] {
		t.Fatalf("expected the diverse candidate to beat the near-duplicate, got %+v", selected)
	}
}

func TestSelectMMRLambdaOneIgnoresDiversity(t *testing.T) {
	pool := []vectorindex.Match{
		match("a", 0.9, []float32{1, 0, 0}),
		match("b", 0.8, []float32{1, 0, 0}),
		match("c", 0.1, []float32{0, 1, 0}),
	}
	selected := SelectMMR(pool, 2, 1.0)
	if selected[0].ChunkID != "a" || selected[1].ChunkID != "b" {
		t.Fatalf("expected pure relevance order a,b at lambda=1, got %+v", selected)
	}
}

func TestSelectMMRCapsAtPoolSize(t *testing.T) {
	pool := []vectorindex.Match{match("a", 0.9, []float32{1, 0, 0})}
	selected := SelectMMR(pool, 10, 0.7)
	if len(selected) != 1 {
		t.Fatalf("expected selection capped at pool size, got %d", len(selected))
	}
}

func TestSelectMMREmptyPool(t *testing.T) {
	if got := SelectMMR(nil, 5, 0.7); got != nil {
		t.Fatalf("expected nil for empty pool, got %+v", got)
	}
}
