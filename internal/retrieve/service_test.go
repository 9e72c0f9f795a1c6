package retrieve

import (
	"context"
	"testing"

	"github.com/codekshitij/toshi/internal/embed"
	"github.com/codekshitij/toshi/internal/vectorindex"
)

func seedStore(t *testing.T, store vectorindex.Store, embedder embed.Embedder, companyID, year, section string, texts []string) {
	t.Helper()
	ctx := context.Background()
	var records []vectorindex.Record
	for i, text := range texts {
		vec, err := embedder.EmbedText(ctx, text)
		if err != nil {
			t.Fatalf("embed seed text: %v", err)
		}
		records = append(records, vectorindex.Record{
			ChunkID:   companyID + "_" + year + "_" + section + "_" + string(rune('0'+i)),
			Embedding: vec,
			Text:      text,
			CompanyID: companyID,
			Year:      year,
			Section:   section,
		})
	}
	if err := store.Add(ctx, records); err != nil {
		t.Fatalf("seed add: %v", err)
	}
}

func TestServiceRetrieveEndToEnd(t *testing.T) {
	store := vectorindex.NewMemoryStore()
	embedder := embed.NewDeterministicEmbedder(64)
	seedStore(t, store, embedder, "0000320193", "2023", "risk_factors", []string{
		"The company faces material adverse risk from supply chain disruption and component shortages across its manufacturing base.",
		"Competitive pressure in the smartphone market continues to intensify with new entrants.",
		"Office lease renewals were completed on schedule during the fiscal year.",
	})

	svc := New(store, embedder, MockReranker{})
	result, err := svc.Retrieve(context.Background(), "what supply chain risks does the company disclose", "0000320193", []string{"2023"})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(result.Chunks) == 0 {
		t.Fatalf("expected at least one chunk returned")
	}
	if len(result.Chunks) > TopK {
		t.Fatalf("expected at most %d chunks, got %d", TopK, len(result.Chunks))
	}
	if len(result.Stages) != 3 {
		t.Fatalf("expected 3 pipeline stages recorded, got %d: %+v", len(result.Stages), result.Stages)
	}
}

func TestServiceRetrieveNoCandidatesReturnsEmptyNotError(t *testing.T) {
	store := vectorindex.NewMemoryStore()
	embedder := embed.NewDeterministicEmbedder(64)
	svc := New(store, embedder, MockReranker{})

	result, err := svc.Retrieve(context.Background(), "anything at all", "unknown-company", []string{"2023"})
	if err != nil {
		t.Fatalf("expected no error for empty index, got: %v", err)
	}
	if len(result.Chunks) != 0 {
		t.Fatalf("expected no chunks, got %+v", result.Chunks)
	}
}

func TestServiceRetrieveFallsBackToUnscopedSearchWhenYearsMiss(t *testing.T) {
	store := vectorindex.NewMemoryStore()
	embedder := embed.NewDeterministicEmbedder(64)
	seedStore(t, store, embedder, "0000320193", "2022", "risk_factors", []string{
		"The company faces material adverse risk from supply chain disruption across its manufacturing base.",
	})

	svc := New(store, embedder, MockReranker{})
	result, err := svc.Retrieve(context.Background(), "supply chain risk", "0000320193", []string{"2023"})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(result.Chunks) == 0 {
		t.Fatalf("expected fallback to surface the 2022 chunk when 2023 has none")
	}
}
