package retrieve

import (
	"context"
	"regexp"
	"strings"

	"github.com/codekshitij/toshi/internal/embed"
	"github.com/codekshitij/toshi/internal/filing"
)

// CRAG thresholds and their relaxed fallback, and the minimum survivor
// count that triggers relaxation.
const (
	CorrectThreshold        = 0.7
	AmbiguousThreshold      = 0.3
	RelaxedCorrectThreshold = 0.4
	RelaxedAmbiguousThreshold = 0.15
	MinSurvivors            = 2
)

type scoredChunk struct {
	chunk filing.Chunk
	score float64
}

// FilterCRAG scores each chunk for relevance to query (keyword overlap
// plus embedding similarity), keeps chunks scoring at or above the
// correct threshold whole, trims ambiguous ones to their keyword-bearing
// sentences, and discards the rest. If fewer than MinSurvivors chunks
// make it through, thresholds relax once. If even that yields nothing,
// the top 3 scored chunks are returned untrimmed rather than an empty
// result — self-critique should narrow results, never silently empty
// them.
func FilterCRAG(ctx context.Context, embedder embed.Embedder, query string, chunks []filing.Chunk) ([]filing.Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	queryEmbedding, err := embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}
	keywords := ExtractKeywords(query)

	scored := make([]scoredChunk, len(chunks))
	for i, c := range chunks {
		chunkEmbedding, err := embedder.EmbedText(ctx, c.Text)
		if err != nil {
			return nil, err
		}
		scored[i] = scoredChunk{chunk: c, score: scoreChunk(c.Text, chunkEmbedding, queryEmbedding, keywords)}
	}

	result := applyThresholds(scored, keywords, CorrectThreshold, AmbiguousThreshold)
	if len(result) < MinSurvivors {
		result = applyThresholds(scored, keywords, RelaxedCorrectThreshold, RelaxedAmbiguousThreshold)
	}
	if len(result) == 0 {
		result = topScored(scored, 3)
	}
	return result, nil
}

func scoreChunk(text string, chunkEmbedding, queryEmbedding []float32, keywords []string) float64 {
	lower := strings.ToLower(text)
	keywordScore := 0.5
	if len(keywords) > 0 {
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		keywordScore = float64(hits) / float64(len(keywords))
	}

	similarity := cosineSim(chunkEmbedding, queryEmbedding)
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}

	return 0.4*keywordScore + 0.6*similarity
}

func applyThresholds(scored []scoredChunk, keywords []string, correct, ambiguous float64) []filing.Chunk {
	var result []filing.Chunk
	for _, sc := range scored {
		switch {
		case sc.score >= correct:
			result = append(result, sc.chunk)
		case sc.score >= ambiguous:
			trimmed := extractRelevantSentences(sc.chunk.Text, keywords)
			if trimmed == "" {
				continue
			}
			c := sc.chunk
			c.Text = trimmed
			c.CRAGTrimmed = true
			result = append(result, c)
		}
	}
	return result
}

// topScored returns the n highest-scoring chunks, sorted by descending
// score, as the final fallback when even relaxed thresholds keep
// nothing.
func topScored(scored []scoredChunk, n int) []filing.Chunk {
	sorted := append([]scoredChunk(nil), scored...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].score > sorted[j-1].score; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]filing.Chunk, n)
	for i := 0; i < n; i++ {
		out[i] = sorted[i].chunk
	}
	return out
}

// sentenceBoundary matches a sentence-ending punctuation mark followed
// by whitespace. Go's regexp has no lookbehind, so the split keeps the
// punctuation attached to the preceding sentence manually instead of
// relying on (?<=[.!?])\s+ as the original does.
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[last:loc[0]+1])
		last = loc[1]
	}
	if last < len(text) {
		sentences = append(sentences, text[last:])
	}
	return sentences
}

// extractRelevantSentences keeps only sentences containing at least one
// query keyword.
func extractRelevantSentences(text string, keywords []string) string {
	var relevant []string
	for _, s := range splitSentences(text) {
		lower := strings.ToLower(s)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				relevant = append(relevant, strings.TrimSpace(s))
				break
			}
		}
	}
	return strings.Join(relevant, " ")
}
