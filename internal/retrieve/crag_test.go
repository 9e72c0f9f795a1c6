package retrieve

import (
	"context"
	"testing"

	"github.com/codekshitij/toshi/internal/embed"
	"github.com/codekshitij/toshi/internal/filing"
)

func TestFilterCRAGKeepsOnlyKeywordBearingChunk(t *testing.T) {
	embedder := embed.NewDeterministicEmbedder(64)
	chunks := []filing.Chunk{
		{ChunkID: "a", Text: "The company faces material risk from supply chain disruption and component shortages."},
		{ChunkID: "b", Text: "Unrelated discussion of office furniture procurement policy for administrative staff."},
		{ChunkID: "c", Text: "Risk factors include competitive pressure and regulatory compliance costs across jurisdictions."},
	}
	result, err := FilterCRAG(context.Background(), embedder, "what supply chain risks does the company face", chunks)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	// Only "a" contains query keywords; "b" and "c" score below even the
	// relaxed correct threshold and have no keyword sentence to trim to.
	if len(result) != 1 || result[0].ChunkID != "a" {
		t.Fatalf("expected only chunk a to survive, got %+v", result)
	}
}

func TestFilterCRAGEmptyInput(t *testing.T) {
	embedder := embed.NewDeterministicEmbedder(64)
	result, err := FilterCRAG(context.Background(), embedder, "anything", nil)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result for empty input, got %+v", result)
	}
}

func TestExtractRelevantSentencesKeepsOnlyMatchingSentences(t *testing.T) {
	text := "The weather was mild. Supply chain risk increased sharply. Office renovations concluded in March."
	trimmed := extractRelevantSentences(text, []string{"supply", "risk"})
	if trimmed != "Supply chain risk increased sharply." {
		t.Fatalf("unexpected trimmed text: %q", trimmed)
	}
}

func TestSplitSentencesHandlesMultiplePunctuationMarks(t *testing.T) {
	sentences := splitSentences("Is this a risk? Yes it is! The company stated so.")
	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %+v", len(sentences), sentences)
	}
	if sentences[0] != "Is this a risk?" {
		t.Fatalf("expected punctuation retained on first sentence, got %q", sentences[0])
	}
}

func TestTopScoredFallbackSortsDescending(t *testing.T) {
	scored := []scoredChunk{
		{chunk: filing.Chunk{ChunkID: "low"}, score: 0.1},
		{chunk: filing.Chunk{ChunkID: "high"}, score: 0.9},
		{chunk: filing.Chunk{ChunkID: "mid"}, score: 0.5},
	}
	top := topScored(scored, 3)
	if top[0].ChunkID != "high" || top[1].ChunkID != "mid" || top[2].ChunkID != "low" {
		t.Fatalf("expected descending order, got %+v", top)
	}
}
