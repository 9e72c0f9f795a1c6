package vectorindex

import (
	"context"
	"testing"
)

func rec(chunkID, companyID, year string, embedding []float32) Record {
	return Record{
		ChunkID:   chunkID,
		Embedding: embedding,
		Text:      "chunk text for " + chunkID,
		CompanyID: companyID,
		Year:      year,
	}
}

func TestAddIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	r := rec("c1_2023_risk_factors_0", "c1", "2023", []float32{1, 0, 0})

	if err := s.Add(ctx, []Record{r}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(ctx, []Record{r}); err != nil {
		t.Fatalf("add again: %v", err)
	}

	exists, err := s.Exists(ctx, r.ChunkID)
	if err != nil || !exists {
		t.Fatalf("expected chunk to exist, err=%v exists=%v", err, exists)
	}

	matches, err := s.Query(ctx, []float32{1, 0, 0}, Filter{CompanyID: "c1"}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one stored record despite double add, got %d", len(matches))
	}
}

func TestQueryFilterIsolatesCompanyAndYear(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Add(ctx, []Record{
		rec("a_2022_risk_factors_0", "a", "2022", []float32{1, 0, 0}),
		rec("a_2023_risk_factors_0", "a", "2023", []float32{1, 0, 0}),
		rec("b_2023_risk_factors_0", "b", "2023", []float32{1, 0, 0}),
	})

	matches, err := s.Query(ctx, []float32{1, 0, 0}, Filter{CompanyID: "a", Year: "2023"}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 || matches[0].ChunkID != "a_2023_risk_factors_0" {
		t.Fatalf("expected only a_2023 match, got %+v", matches)
	}

	allYears, err := s.Query(ctx, []float32{1, 0, 0}, Filter{CompanyID: "a"}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(allYears) != 2 {
		t.Fatalf("expected both years for company a, got %d", len(allYears))
	}
}

func TestQueryOrdersByDescendingSimilarity(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Add(ctx, []Record{
		rec("a_2023_risk_factors_0", "a", "2023", []float32{1, 0, 0}),
		rec("a_2023_risk_factors_1", "a", "2023", []float32{0, 1, 0}),
	})

	matches, err := s.Query(ctx, []float32{1, 0, 0}, Filter{CompanyID: "a"}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ChunkID != "a_2023_risk_factors_0" {
		t.Fatalf("expected exact match ranked first, got %+v", matches[0])
	}
	if matches[0].Score < matches[1].Score {
		t.Fatalf("expected descending score order, got %+v", matches)
	}
}

func TestClearCompanyOnlyRemovesThatCompany(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Add(ctx, []Record{
		rec("a_2023_risk_factors_0", "a", "2023", []float32{1, 0, 0}),
		rec("b_2023_risk_factors_0", "b", "2023", []float32{1, 0, 0}),
	})

	if err := s.ClearCompany(ctx, "a"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	aMatches, _ := s.Query(ctx, []float32{1, 0, 0}, Filter{CompanyID: "a"}, 10)
	if len(aMatches) != 0 {
		t.Fatalf("expected company a cleared, got %+v", aMatches)
	}
	bMatches, _ := s.Query(ctx, []float32{1, 0, 0}, Filter{CompanyID: "b"}, 10)
	if len(bMatches) != 1 {
		t.Fatalf("expected company b untouched, got %+v", bMatches)
	}
}
