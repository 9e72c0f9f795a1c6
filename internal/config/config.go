// Package config loads the process configuration from the environment,
// an optional .env overlay, and built-in defaults. It never reads a
// config file by path — the env-first pattern this tree already uses,
// not the older file-only yaml loader.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// EmbeddingConfig points at a local OpenAI-compatible embeddings server.
type EmbeddingConfig struct {
	BaseURL    string
	Path       string
	APIHeader  string // "Authorization" (Bearer scheme) or a raw header name
	APIKey     string
	Model      string
	Dimensions int
	TimeoutSec int
}

// RerankerConfig points at a local cross-encoder reranking server.
type RerankerConfig struct {
	BaseURL    string
	Path       string
	TimeoutSec int
}

// CacheConfig configures the fetch cache's durable backend.
type CacheConfig struct {
	Path               string // bbolt file path
	InMemoryCapacity   int
	SubmissionsTTLHours int
	FactsTTLHours       int
	SearchTTLHours      int
	FilingTTLHours      int
}

// VectorConfig selects and configures the vector index backend.
type VectorConfig struct {
	Backend   string // "sqlite" (default) or "qdrant"
	SQLitePath string
	QdrantDSN  string
	Collection string
	Dimensions int
}

// EdgarConfig configures the thin upstream filing-source client.
type EdgarConfig struct {
	UserAgent        string
	RequestDelayMS   int
	SubmissionsHost  string
	ArchiveHost      string
}

// TelemetryConfig toggles observability wiring.
type TelemetryConfig struct {
	LogLevel string
}

// Config is the fully resolved process configuration.
type Config struct {
	Embedding EmbeddingConfig
	Reranker  RerankerConfig
	Cache     CacheConfig
	Vector    VectorConfig
	Edgar     EdgarConfig
	Telemetry TelemetryConfig
}

// Load reads .env (if present), then the environment, into a Config with
// sensible defaults applied afterward. Mirrors this tree's existing
// internal/config loader: godotenv.Overload, then direct os.Getenv reads,
// then defaults. SEC_USER_AGENT is the only required value and its
// absence is an error; every other setting falls back to a default.
func Load() (Config, error) {
	_ = godotenv.Overload()

	cfg := Config{
		Embedding: EmbeddingConfig{
			BaseURL:    firstNonEmpty(os.Getenv("EMBED_BASE_URL"), "http://127.0.0.1:8081"),
			Path:       firstNonEmpty(os.Getenv("EMBED_PATH"), "/v1/embeddings"),
			APIHeader:  firstNonEmpty(os.Getenv("EMBED_API_HEADER"), "Authorization"),
			APIKey:     os.Getenv("EMBED_API_KEY"),
			Model:      firstNonEmpty(os.Getenv("EMBED_MODEL"), "all-MiniLM-L6-v2"),
			Dimensions: parseIntDefault(os.Getenv("EMBED_DIMENSIONS"), 384),
			TimeoutSec: parseIntDefault(os.Getenv("EMBED_TIMEOUT_SECONDS"), 30),
		},
		Reranker: RerankerConfig{
			BaseURL:    firstNonEmpty(os.Getenv("RERANK_BASE_URL"), "http://127.0.0.1:8082"),
			Path:       firstNonEmpty(os.Getenv("RERANK_PATH"), "/v1/rerank"),
			TimeoutSec: parseIntDefault(os.Getenv("RERANK_TIMEOUT_SECONDS"), 30),
		},
		Cache: CacheConfig{
			Path:                firstNonEmpty(os.Getenv("CACHE_PATH"), "./toshi_cache.db"),
			InMemoryCapacity:    parseIntDefault(os.Getenv("CACHE_MEMORY_CAPACITY"), 512),
			SubmissionsTTLHours: parseIntDefault(os.Getenv("CACHE_SUBMISSIONS_TTL_HOURS"), 48),
			FactsTTLHours:       parseIntDefault(os.Getenv("CACHE_FACTS_TTL_HOURS"), 48),
			SearchTTLHours:      parseIntDefault(os.Getenv("CACHE_SEARCH_TTL_HOURS"), 24),
			FilingTTLHours:      parseIntDefault(os.Getenv("CACHE_FILING_TTL_HOURS"), 720),
		},
		Vector: VectorConfig{
			Backend:    firstNonEmpty(os.Getenv("VECTOR_BACKEND"), "sqlite"),
			SQLitePath: firstNonEmpty(os.Getenv("VECTOR_SQLITE_PATH"), "./chroma_db/toshi_filings.db"),
			QdrantDSN:  os.Getenv("VECTOR_QDRANT_DSN"),
			Collection: firstNonEmpty(os.Getenv("VECTOR_COLLECTION"), "toshi_filings"),
			Dimensions: parseIntDefault(os.Getenv("EMBED_DIMENSIONS"), 384),
		},
		Edgar: EdgarConfig{
			UserAgent:       os.Getenv("SEC_USER_AGENT"),
			RequestDelayMS:  parseIntDefault(os.Getenv("EDGAR_REQUEST_DELAY_MS"), 150),
			SubmissionsHost: firstNonEmpty(os.Getenv("EDGAR_DATA_HOST"), "https://data.sec.gov"),
			ArchiveHost:     firstNonEmpty(os.Getenv("EDGAR_ARCHIVE_HOST"), "https://www.sec.gov"),
		},
		Telemetry: TelemetryConfig{
			LogLevel: firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
		},
	}

	if cfg.Edgar.UserAgent == "" {
		return cfg, fmt.Errorf("config: SEC_USER_AGENT is required (SEC rejects unidentified callers)")
	}
	return cfg, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
