package retrieve

import (
	"math"

	"github.com/codekshitij/toshi/internal/vectorindex"
)

// DefaultLambda balances relevance against diversity in MMR selection;
// 0.7 favors relevance while still penalizing near-duplicate chunks.
const DefaultLambda = 0.7

// SelectMMR greedily selects up to k candidates from pool, maximizing
// score(c) = lambda*rel(c) - (1-lambda)*maxSim(c, selected) at each
// step. rel(c) is the candidate's similarity to the query (pool is
// assumed pre-scored by the ANN search that produced it); maxSim is the
// candidate's highest embedding similarity to anything already chosen.
// Ties break toward higher relevance, then toward pool order.
func SelectMMR(pool []vectorindex.Match, k int, lambda float64) []vectorindex.Match {
	if len(pool) == 0 || k <= 0 {
		return nil
	}
	if k >= len(pool) {
		k = len(pool)
	}

	remaining := append([]vectorindex.Match(nil), pool...)
	var selected []vectorindex.Match

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		var bestScore float64
		for i, c := range remaining {
			maxSim := 0.0
			for _, s := range selected {
				if sim := cosineSim(c.Embedding, s.Embedding); sim > maxSim {
					maxSim = sim
				}
			}
			score := lambda*c.Score - (1-lambda)*maxSim
			if bestIdx == -1 || score > bestScore ||
				(score == bestScore && c.Score > remaining[bestIdx].Score) {
				bestIdx = i
				bestScore = score
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

func cosineSim(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
