// Package vectorindex implements the vector index (C5): durable storage
// and approximate nearest-neighbor search over chunk embeddings, scoped
// by company/year filters.
package vectorindex

import "context"

// AddBatchSize bounds how many records a single Add call inserts in one
// transaction/request, matching the original store wrapper's batching.
const AddBatchSize = 100

// Record is one chunk plus its embedding, as stored in the index.
type Record struct {
	ChunkID       string
	Embedding     []float32
	Text          string
	Company       string
	CompanyID     string
	Year          string
	Quarter       string
	FilingType    string
	Section       string
	ParentSection string
}

// Filter scopes a query to a company and, optionally, a specific year.
// An empty Year means "all years for this company".
type Filter struct {
	CompanyID string
	Year      string
}

func (f Filter) matches(r Record) bool {
	if f.CompanyID != "" && r.CompanyID != f.CompanyID {
		return false
	}
	if f.Year != "" && r.Year != f.Year {
		return false
	}
	return true
}

// Match is a query result: a stored record plus its similarity score.
type Match struct {
	Record
	Score float64
}

// Store is the vector index contract every backend implements.
type Store interface {
	// Exists reports whether chunkID is already present, used by the
	// ingestion pipeline's idempotent-skip check.
	Exists(ctx context.Context, chunkID string) (bool, error)
	// Add inserts records not already present, batched at AddBatchSize.
	Add(ctx context.Context, records []Record) error
	// Query returns the k nearest records to embedding, restricted to
	// filter, ordered by descending similarity.
	Query(ctx context.Context, embedding []float32, filter Filter, k int) ([]Match, error)
	// ClearCompany deletes every record for a single company, used when
	// re-ingestion needs to start clean.
	ClearCompany(ctx context.Context, companyID string) error
	Close() error
}
