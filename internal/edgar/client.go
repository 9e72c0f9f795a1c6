// Package edgar is a thin client for SEC's public EDGAR REST API: company
// ticker/CIK lookup, filing submission indexes, XBRL facts, and raw
// filing document bytes. No API key — EDGAR is public, but it requires
// an identifying User-Agent and rate-limits politely-behaved clients.
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/codekshitij/toshi/internal/config"
	"github.com/codekshitij/toshi/internal/filing"
)

// Client talks to data.sec.gov and www.sec.gov.
type Client struct {
	cfg     config.EdgarConfig
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg config.EdgarConfig) *Client {
	interval := time.Duration(cfg.RequestDelayMS) * time.Millisecond
	if interval <= 0 {
		interval = 150 * time.Millisecond
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// TickerEntry is one row of SEC's company_tickers.json lookup file.
type TickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// SearchCompany fetches the full company/ticker/CIK lookup table. The
// caller filters by name — SEC's full-text search endpoint searches
// document contents, not company names, so the lookup file is the
// correct source for this.
func (c *Client) SearchCompany(ctx context.Context) (map[string]TickerEntry, error) {
	var out map[string]TickerEntry
	if err := c.getJSON(ctx, c.cfg.ArchiveHost+"/files/company_tickers.json", &out); err != nil {
		return nil, fmt.Errorf("edgar: search company: %w", err)
	}
	return out, nil
}

// GetCompanySubmissions fetches the filing index for a 10-digit,
// zero-padded CIK.
func (c *Client) GetCompanySubmissions(ctx context.Context, cikPadded string) (filing.Submissions, error) {
	var out filing.Submissions
	url := fmt.Sprintf("%s/submissions/CIK%s.json", c.cfg.SubmissionsHost, cikPadded)
	if err := c.getJSON(ctx, url, &out); err != nil {
		return filing.Submissions{}, fmt.Errorf("edgar: get submissions: %w", err)
	}
	return out, nil
}

// GetCompanyFacts fetches structured XBRL financial facts, returned as
// raw JSON since the facts schema is outside this component's scope.
func (c *Client) GetCompanyFacts(ctx context.Context, cikPadded string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", c.cfg.SubmissionsHost, cikPadded)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("edgar: get company facts: %w", err)
	}
	return body, nil
}

// GetFilingDocument downloads the raw bytes of one document within a
// filing's archive directory. Returns ("", nil) if the document is
// absent (HTTP 404) rather than an error — a missing document is a
// normal outcome the caller decides how to handle.
func (c *Client) GetFilingDocument(ctx context.Context, cikPadded, accessionNumber, filename string) (string, error) {
	accNoClean := strings.ReplaceAll(accessionNumber, "-", "")
	cikInt, err := strconv.Atoi(cikPadded)
	if err != nil {
		return "", fmt.Errorf("edgar: invalid cik %q: %w", cikPadded, err)
	}
	url := fmt.Sprintf("%s/Archives/edgar/data/%d/%s/%s", c.cfg.ArchiveHost, cikInt, accNoClean, filename)

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("edgar: build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("edgar: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("edgar: server returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("edgar: read body: %w", err)
	}
	return string(body), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
