// Package retrieve implements the retriever (C6): HyDE query expansion,
// MMR diversified candidate recall, CRAG self-critique filtering, and
// cross-encoder reranking, in that order.
package retrieve

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/codekshitij/toshi/internal/embed"
	"github.com/codekshitij/toshi/internal/filing"
	"github.com/codekshitij/toshi/internal/obs"
	"github.com/codekshitij/toshi/internal/vectorindex"
)

// candidatePoolPerYear is how many raw ANN matches MMR selects from, per
// year searched.
const candidatePoolPerYear = 50

// candidatesPerYear is how many diverse chunks MMR keeps per year.
const candidatesPerYear = 10

// maxCandidates caps the combined candidate set handed to CRAG.
const maxCandidates = 20

// Service wires the four retrieval substages together.
type Service struct {
	store    vectorindex.Store
	embedder embed.Embedder
	reranker Reranker
	log      zerolog.Logger
	clock    obs.Clock
	metrics  obs.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }
func WithClock(c obs.Clock) Option       { return func(s *Service) { s.clock = c } }
func WithMetrics(m obs.Metrics) Option   { return func(s *Service) { s.metrics = m } }

func New(store vectorindex.Store, embedder embed.Embedder, reranker Reranker, opts ...Option) *Service {
	s := &Service{
		store:    store,
		embedder: embedder,
		reranker: reranker,
		log:      zerolog.Nop(),
		clock:    obs.SystemClock{},
		metrics:  obs.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stage records a single substage's candidate count, for debugging and
// metrics — not returned to callers beyond logging.
type Stage struct {
	Name  string
	Count int
}

// Result is the retriever's output: the final ranked chunks plus a
// per-stage trace useful for debugging relevance issues.
type Result struct {
	Chunks []filing.Chunk
	Stages []Stage
}

// Retrieve runs the full HyDE -> MMR -> CRAG -> rerank pipeline for
// query against companyID, searching each of years independently before
// combining for cross-year diversity. Returns an empty result (not an
// error) if nothing in the vector index matches.
func (s *Service) Retrieve(ctx context.Context, query, companyID string, years []string) (Result, error) {
	expanded := ExpandQuery(query)

	queryEmbedding, err := s.embedder.EmbedText(ctx, expanded)
	if err != nil {
		return Result{}, fmt.Errorf("retrieve: embed query: %w", err)
	}

	candidates, err := s.recallCandidates(ctx, queryEmbedding, companyID, years)
	if err != nil {
		return Result{}, err
	}
	result := Result{Stages: []Stage{{Name: "mmr", Count: len(candidates)}}}
	if len(candidates) == 0 {
		return result, nil
	}

	chunks := toChunks(candidates)
	filtered, err := FilterCRAG(ctx, s.embedder, query, chunks)
	if err != nil {
		return Result{}, fmt.Errorf("retrieve: crag filter: %w", err)
	}
	result.Stages = append(result.Stages, Stage{Name: "crag", Count: len(filtered)})

	final, err := s.reranker.Rerank(ctx, query, filtered)
	if err != nil {
		return Result{}, fmt.Errorf("retrieve: rerank: %w", err)
	}
	result.Stages = append(result.Stages, Stage{Name: "rerank", Count: len(final)})
	result.Chunks = final

	s.log.Debug().
		Str("company_id", companyID).
		Int("mmr", len(candidates)).
		Int("crag", len(filtered)).
		Int("rerank", len(final)).
		Msg("retrieval pipeline complete")

	return result, nil
}

// recallCandidates searches each year separately (so no single year's
// dense result set can crowd out the others), applies MMR within each
// year, and falls back to an unscoped search if no year produced any
// candidates at all — e.g. when the caller didn't know which years to
// target.
func (s *Service) recallCandidates(ctx context.Context, queryEmbedding []float32, companyID string, years []string) ([]vectorindex.Match, error) {
	var all []vectorindex.Match
	for _, year := range years {
		pool, err := s.store.Query(ctx, queryEmbedding, vectorindex.Filter{CompanyID: companyID, Year: year}, candidatePoolPerYear)
		if err != nil {
			return nil, fmt.Errorf("retrieve: query year %s: %w", year, err)
		}
		all = append(all, SelectMMR(pool, candidatesPerYear, DefaultLambda)...)
	}

	if len(all) == 0 {
		pool, err := s.store.Query(ctx, queryEmbedding, vectorindex.Filter{CompanyID: companyID}, candidatePoolPerYear)
		if err != nil {
			return nil, fmt.Errorf("retrieve: unscoped query: %w", err)
		}
		all = SelectMMR(pool, maxCandidates, DefaultLambda)
	}

	if len(all) > maxCandidates {
		all = all[:maxCandidates]
	}
	return all, nil
}

func toChunks(matches []vectorindex.Match) []filing.Chunk {
	chunks := make([]filing.Chunk, len(matches))
	for i, m := range matches {
		chunks[i] = filing.Chunk{
			ChunkID:       m.ChunkID,
			Text:          m.Text,
			Company:       m.Company,
			CompanyID:     m.CompanyID,
			Year:          m.Year,
			Quarter:       m.Quarter,
			FilingType:    m.FilingType,
			Section:       m.Section,
			ParentSection: m.ParentSection,
		}
	}
	return chunks
}
