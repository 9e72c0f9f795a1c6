// Package pipeline implements the orchestrator (C7): the single entry
// point that turns a company + query into ranked, citable chunks,
// ingesting on demand whenever the vector index doesn't yet have a
// requested year's filings.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/codekshitij/toshi/internal/cache"
	"github.com/codekshitij/toshi/internal/chunk"
	"github.com/codekshitij/toshi/internal/embed"
	"github.com/codekshitij/toshi/internal/extract"
	"github.com/codekshitij/toshi/internal/filing"
	"github.com/codekshitij/toshi/internal/obs"
	"github.com/codekshitij/toshi/internal/retrieve"
	"github.com/codekshitij/toshi/internal/vectorindex"
)

// Cache TTLs per §4.1: raw filing bodies change essentially never once
// filed; submission indexes move at most quarterly.
const (
	submissionsTTL = 48 * time.Hour
	filingBodyTTL  = 720 * time.Hour
)

// DefaultFilingTypes and DefaultYears mirror the original tool's
// defaults: recent annual and quarterly reports, three years back.
var DefaultFilingTypes = []string{"10-K", "10-Q"}

const DefaultYears = 3

var DefaultQuarters = []string{"QTR1", "QTR2", "QTR3", "QTR4"}

// ErrIndexUnavailable marks a vector-index write failure, which aborts
// ingestion instead of being skipped like a per-filing failure.
var ErrIndexUnavailable = errors.New("vector index unavailable")

// EdgarClient is the subset of internal/edgar.Client the pipeline needs.
type EdgarClient interface {
	GetCompanySubmissions(ctx context.Context, cikPadded string) (filing.Submissions, error)
	GetFilingDocument(ctx context.Context, cikPadded, accessionNumber, filename string) (string, error)
}

// Retriever is the subset of internal/retrieve.Service the pipeline needs.
type Retriever interface {
	Retrieve(ctx context.Context, query, companyID string, years []string) (retrieve.Result, error)
}

// Pipeline wires EDGAR fetch, section extraction, chunking, embedding,
// vector storage, and retrieval behind one entry point.
type Pipeline struct {
	edgar     EdgarClient
	cache     *cache.Cache
	store     vectorindex.Store
	embedder  embed.Embedder
	retriever Retriever
	log       zerolog.Logger
	clock     obs.Clock
	metrics   obs.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithLogger(l zerolog.Logger) Option { return func(p *Pipeline) { p.log = l } }
func WithClock(c obs.Clock) Option       { return func(p *Pipeline) { p.clock = c } }
func WithMetrics(m obs.Metrics) Option   { return func(p *Pipeline) { p.metrics = m } }

func New(edgarClient EdgarClient, c *cache.Cache, store vectorindex.Store, embedder embed.Embedder, retriever Retriever, opts ...Option) *Pipeline {
	p := &Pipeline{
		edgar:     edgarClient,
		cache:     c,
		store:     store,
		embedder:  embedder,
		retriever: retriever,
		log:       zerolog.Nop(),
		clock:     obs.SystemClock{},
		metrics:   obs.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SearchFiling is the pipeline's single entry point: determine target
// years, ingest whatever isn't already in the vector index, then
// retrieve and return citation-ready chunks (no raw embeddings).
func (p *Pipeline) SearchFiling(ctx context.Context, companyID, query string, filingTypes []string, years int, quarters []string) ([]filing.Citation, error) {
	if len(filingTypes) == 0 {
		filingTypes = DefaultFilingTypes
	}
	if years <= 0 {
		years = DefaultYears
	}
	if len(quarters) == 0 {
		quarters = DefaultQuarters
	}

	targetYears := p.targetYears(years)
	missing, err := p.findMissingYears(ctx, companyID, targetYears)
	if err != nil {
		return nil, fmt.Errorf("pipeline: check missing years: %w", err)
	}

	if len(missing) > 0 {
		p.log.Info().Str("company_id", companyID).Strs("years", missing).Msg("ingesting missing years")
		if err := p.ingestAndStore(ctx, companyID, filingTypes, missing, quarters); err != nil {
			return nil, fmt.Errorf("pipeline: ingest: %w", err)
		}
	}

	result, err := p.retriever.Retrieve(ctx, query, companyID, targetYears)
	if err != nil {
		return nil, fmt.Errorf("pipeline: retrieve: %w", err)
	}

	citations := make([]filing.Citation, len(result.Chunks))
	for i, c := range result.Chunks {
		citations[i] = filing.ToCitation(c)
	}
	return citations, nil
}

// targetYears returns the last n years as strings, most recent first.
func (p *Pipeline) targetYears(n int) []string {
	current := p.clock.Now().Year()
	years := make([]string, n)
	for i := 0; i < n; i++ {
		years[i] = fmt.Sprintf("%d", current-i)
	}
	return years
}

// findMissingYears probes the vector index with each year's sentinel
// chunk id. A year whose risk_factors section was never chunked (chunk
// index 0 never assigned) is treated as entirely missing — this
// under-detects a year that was ingested but happened to have no
// risk_factors section, which would then be re-ingested every call. A
// known limitation, not a bug: the original tool carries the same
// sentinel-probe design.
func (p *Pipeline) findMissingYears(ctx context.Context, companyID string, years []string) ([]string, error) {
	var missing []string
	for _, year := range years {
		exists, err := p.store.Exists(ctx, filing.SentinelID(companyID, year))
		if err != nil {
			return nil, err
		}
		if !exists {
			missing = append(missing, year)
		}
	}
	return missing, nil
}

// ingestAndStore fetches, extracts, chunks, embeds, and indexes one
// filing per (missing year, filing type). A failure on any single filing
// is logged and skipped — per §7, only index I/O failure is fatal to the
// pipeline, never an individual document's fetch or parse failure.
func (p *Pipeline) ingestAndStore(ctx context.Context, companyID string, filingTypes, years, quarters []string) error {
	submissions, err := p.loadSubmissions(ctx, companyID)
	if err != nil {
		return fmt.Errorf("load submissions: %w", err)
	}

	for _, filingType := range filingTypes {
		yearSet := make(map[string]bool, len(years))
		for _, y := range years {
			yearSet[y] = true
		}
		listings := filing.ListFilings(submissions, filingType, len(submissions.Filings.Recent.Form))
		for _, listing := range listings {
			if len(listing.Date) < 4 {
				continue
			}
			year := listing.Date[:4]
			if !yearSet[year] {
				continue
			}
			if filingType != "10-K" && !quarterWanted(listing.Date, quarters) {
				continue
			}
			if err := p.ingestOne(ctx, companyID, submissions.Name, filingType, year, listing); err != nil {
				if errors.Is(err, ErrIndexUnavailable) {
					return err
				}
				p.log.Warn().Err(err).Str("company_id", companyID).Str("year", year).Str("accession", listing.AccessionNumber).Msg("ingest skipped")
				continue
			}
			delete(yearSet, year)
		}
	}
	return nil
}

// loadSubmissions returns the cached submissions index for companyID if
// fresh, otherwise fetches and caches it.
func (p *Pipeline) loadSubmissions(ctx context.Context, companyID string) (filing.Submissions, error) {
	if raw, ok := p.cache.Get(cache.NamespaceCompanySubmissions, companyID, submissionsTTL); ok {
		var cached filing.Submissions
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	submissions, err := p.edgar.GetCompanySubmissions(ctx, companyID)
	if err != nil {
		return filing.Submissions{}, err
	}
	if raw, err := json.Marshal(submissions); err == nil {
		_ = p.cache.Put(cache.NamespaceCompanySubmissions, companyID, raw)
	}
	return submissions, nil
}

// ingestOne fetches a single filing document (via cache when possible),
// extracts its canonical sections, chunks them, embeds the chunks, and
// adds them to the vector index. A document that can't be located (404
// or empty body) is treated as "nothing to ingest", not an error.
func (p *Pipeline) ingestOne(ctx context.Context, companyID, companyName, filingType, year string, listing filing.FilingListing) error {
	cacheKey := companyID + "_" + listing.AccessionNumber
	var body string
	if raw, ok := p.cache.Get(cache.NamespaceFilingText, cacheKey, filingBodyTTL); ok {
		body = string(raw)
	} else {
		fetched, err := p.edgar.GetFilingDocument(ctx, companyID, listing.AccessionNumber, listing.PrimaryDocument)
		if err != nil {
			return fmt.Errorf("fetch document: %w", err)
		}
		if fetched == "" {
			return nil
		}
		body = fetched
		_ = p.cache.Put(cache.NamespaceFilingText, cacheKey, []byte(body))
	}

	f := filing.Filing{
		Company:     companyName,
		CompanyID:   companyID,
		AccessionID: listing.AccessionNumber,
		Year:        year,
		FilingType:  filingType,
		Quarter:     quarterTag(listing.Date, filingType),
		Sections:    extract.Extract(body),
	}

	chunks := chunk.ChunkFiling(f)
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	records := make([]vectorindex.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vectorindex.Record{
			ChunkID:       c.ChunkID,
			Embedding:     vectors[i],
			Text:          c.Text,
			Company:       c.Company,
			CompanyID:     c.CompanyID,
			Year:          c.Year,
			Quarter:       c.Quarter,
			FilingType:    c.FilingType,
			Section:       c.Section,
			ParentSection: c.ParentSection,
		}
	}
	if err := p.store.Add(ctx, records); err != nil {
		return fmt.Errorf("%w: index add: %w", ErrIndexUnavailable, err)
	}

	p.metrics.IncCounter("pipeline_filings_ingested", map[string]string{"filing_type": filingType})
	p.log.Info().Str("company_id", companyID).Str("year", year).Str("filing_type", filingType).Int("chunks", len(chunks)).Msg("filing ingested")
	return nil
}

// quarterTag derives the QTRn tag a quarterly filing's date falls into.
// Annual filings carry no quarter tag.
func quarterTag(date, filingType string) string {
	if filingType == "10-K" || len(date) < 7 {
		return ""
	}
	month := date[5:7]
	switch month {
	case "01", "02", "03":
		return "QTR1"
	case "04", "05", "06":
		return "QTR2"
	case "07", "08", "09":
		return "QTR3"
	default:
		return "QTR4"
	}
}

// quarterWanted reports whether date's quarter is among the requested
// quarter tags.
func quarterWanted(date string, quarters []string) bool {
	q := quarterTag(date, "10-Q")
	for _, want := range quarters {
		if q == want {
			return true
		}
	}
	return false
}
