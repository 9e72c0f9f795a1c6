// Package filing holds the shared data-model types that flow between the
// ingestion and retrieval stages of the core.
package filing

import "fmt"

// Canonical section names. A filing that lacks one of these keeps the
// corresponding entry as an empty string rather than omitting the key.
const (
	SectionBusiness    = "business"
	SectionRiskFactors = "risk_factors"
	SectionMDA         = "mda"
	SectionFinancials  = "financials"
)

// CanonicalSections lists the section names in the fixed order section
// extraction scans for them.
var CanonicalSections = []string{SectionBusiness, SectionRiskFactors, SectionMDA, SectionFinancials}

// Filing is a single regulatory submission, uniquely identified by
// (CompanyID, AccessionID). Immutable once produced by ingestion.
type Filing struct {
	Company     string
	CompanyID   string // 10-digit zero-padded CIK
	AccessionID string
	Year        string // four digits
	FilingType  string // "10-K", "10-Q", ...
	Quarter     string // "QTR1".."QTR4", empty for annual filings
	Sections    map[string]string
}

// EmptySections returns a fresh map with every canonical section present
// and empty — the shape ingestion always returns, error or not.
func EmptySections() map[string]string {
	m := make(map[string]string, len(CanonicalSections))
	for _, s := range CanonicalSections {
		m[s] = ""
	}
	return m
}

// Chunk is the atomic retrieval unit.
type Chunk struct {
	ChunkID       string
	Text          string
	Company       string
	CompanyID     string
	Year          string
	Quarter       string
	FilingType    string
	Section       string
	ParentSection string // bounded to ParentSectionCap

	// Query-time fields, never persisted — attached by the retriever.
	RerankScore float64
	CRAGTrimmed bool
}

// ParentSectionCap bounds how much of the parent section text is carried
// on every chunk for expansion at display time.
const ParentSectionCap = 2000

// ChunkID builds the deterministic chunk identifier described in the data
// model: company_id _ year _ section _ index. Re-ingestion of identical
// input therefore always produces identical ids.
func ChunkID(companyID, year, section string, index int) string {
	return fmt.Sprintf("%s_%s_%s_%d", companyID, year, section, index)
}

// SentinelID returns the single id the orchestrator probes to decide
// whether a given year's filings are already indexed for a company. Only
// the risk_factors section's first chunk is checked — see the orchestrator
// package for the known re-ingestion-forever limitation this implies.
func SentinelID(companyID, year string) string {
	return ChunkID(companyID, year, SectionRiskFactors, 0)
}

// Citation is the downstream-facing shape returned by search_filing. No
// raw embeddings or internal scoring intermediates are ever included.
type Citation struct {
	Text        string  `json:"text"`
	Company     string  `json:"company"`
	CompanyID   string  `json:"company_id"`
	Year        string  `json:"year"`
	Quarter     string  `json:"quarter"`
	FilingType  string  `json:"filing_type"`
	Section     string  `json:"section"`
	RerankScore float64 `json:"rerank_score"`
	CRAGTrimmed bool    `json:"crag_trimmed"`
}

// ToCitation strips every internal field before a chunk crosses the
// downstream interface boundary.
func ToCitation(c Chunk) Citation {
	return Citation{
		Text:        c.Text,
		Company:     c.Company,
		CompanyID:   c.CompanyID,
		Year:        c.Year,
		Quarter:     c.Quarter,
		FilingType:  c.FilingType,
		Section:     c.Section,
		RerankScore: c.RerankScore,
		CRAGTrimmed: c.CRAGTrimmed,
	}
}
