package retrieve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/codekshitij/toshi/internal/config"
	"github.com/codekshitij/toshi/internal/filing"
)

// TopK is the final number of chunks the pipeline returns.
const TopK = 5

// Reranker jointly scores a query against each candidate's text, more
// precise than the bi-encoder similarity used earlier in the pipeline.
type Reranker interface {
	Rerank(ctx context.Context, query string, chunks []filing.Chunk) ([]filing.Chunk, error)
}

// ClientReranker calls a local cross-encoder scoring endpoint.
type ClientReranker struct {
	cfg  config.RerankerConfig
	http *http.Client
}

func NewClientReranker(cfg config.RerankerConfig) *ClientReranker {
	return &ClientReranker{cfg: cfg, http: &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second}}
}

type rerankRequestBody struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponseBody struct {
	Scores []float64 `json:"scores"`
}

// Rerank returns chunks unchanged for 0 or 1 inputs (a single candidate
// has nothing to be ranked against); otherwise it scores every
// (query, chunk.Text) pair, sorts descending, and keeps the top TopK
// with a 4-decimal rounded RerankScore attached.
func (r *ClientReranker) Rerank(ctx context.Context, query string, chunks []filing.Chunk) ([]filing.Chunk, error) {
	if len(chunks) <= 1 {
		return chunks, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	scores, err := r.scoreRequest(ctx, query, texts)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(chunks) {
		return nil, fmt.Errorf("rerank: expected %d scores, got %d", len(chunks), len(scores))
	}

	type pair struct {
		chunk filing.Chunk
		score float64
	}
	pairs := make([]pair, len(chunks))
	for i, c := range chunks {
		pairs[i] = pair{chunk: c, score: scores[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })

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

func roundTo4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func (r *ClientReranker) scoreRequest(ctx context.Context, query string, texts []string) ([]float64, error) {
	payload, err := json.Marshal(rerankRequestBody{Query: query, Documents: texts})
	if err != nil {
		return nil, fmt.Errorf("rerank: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+r.cfg.Path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("rerank: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank: server returned status %d", resp.StatusCode)
	}

	var body rerankResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("rerank: decode response: %w", err)
	}
	return body.Scores, nil
}
