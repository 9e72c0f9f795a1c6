package edgar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codekshitij/toshi/internal/config"
)

func testConfig(host string) config.EdgarConfig {
	return config.EdgarConfig{
		UserAgent:       "toshi-test test@example.com",
		RequestDelayMS:  0,
		SubmissionsHost: host,
		ArchiveHost:     host,
	}
}

func TestGetCompanySubmissionsSetsUserAgentAndParsesBody(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{
			"name": "Apple Inc.",
			"cik": "320193",
			"filings": {"recent": {"form": ["10-K"], "filingDate": ["2023-11-03"], "accessionNumber": ["0000320193-23-000106"], "primaryDocument": ["aapl-20230930.htm"]}},
			"tickers": ["AAPL"]
		}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	subs, err := c.GetCompanySubmissions(context.Background(), "0000320193")
	if err != nil {
		t.Fatalf("get submissions: %v", err)
	}
	if subs.Name != "Apple Inc." {
		t.Fatalf("expected parsed name, got %q", subs.Name)
	}
	if gotUA == "" {
		t.Fatalf("expected User-Agent header to be set")
	}
}

func TestGetFilingDocumentReturnsEmptyOnNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	text, err := c.GetFilingDocument(context.Background(), "0000320193", "0000320193-23-000106", "aapl-20230930.htm")
	if err != nil {
		t.Fatalf("expected no error on 404, got: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text for missing document, got %q", text)
	}
}

func TestGetFilingDocumentReturnsBodyOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>filing body</html>"))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	text, err := c.GetFilingDocument(context.Background(), "0000320193", "0000320193-23-000106", "aapl-20230930.htm")
	if err != nil {
		t.Fatalf("get filing document: %v", err)
	}
	if text != "<html>filing body</html>" {
		t.Fatalf("unexpected body: %q", text)
	}
}

func TestFindCIKMatchesTickerExactly(t *testing.T) {
	entries := map[string]TickerEntry{
		"0": {CIK: 320193, Ticker: "AAPL", Title: "Apple Inc."},
		"1": {CIK: 789019, Ticker: "MSFT", Title: "MICROSOFT CORP"},
	}
	cik, title, ok := FindCIK(entries, "aapl")
	if !ok || cik != "0000320193" || title != "Apple Inc." {
		t.Fatalf("expected ticker match, got cik=%s title=%s ok=%v", cik, title, ok)
	}
}

func TestFindCIKFallsBackToTitleSubstring(t *testing.T) {
	entries := map[string]TickerEntry{
		"0": {CIK: 320193, Ticker: "AAPL", Title: "Apple Inc."},
	}
	cik, _, ok := FindCIK(entries, "apple")
	if !ok || cik != "0000320193" {
		t.Fatalf("expected substring match, got cik=%s ok=%v", cik, ok)
	}
}

func TestFindCIKNoMatch(t *testing.T) {
	entries := map[string]TickerEntry{
		"0": {CIK: 320193, Ticker: "AAPL", Title: "Apple Inc."},
	}
	if _, _, ok := FindCIK(entries, "nonexistent corp"); ok {
		t.Fatalf("expected no match")
	}
}
