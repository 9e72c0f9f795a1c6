package vectorindex

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// SQLiteStore is the default Store backend: an embedded sqlite-vec vec0
// virtual table for the KNN index, joined against a plain table carrying
// chunk text and filter metadata (vec0 has no native multi-column filter
// pushdown, so filtering happens in the join).
type SQLiteStore struct {
	db   *sql.DB
	dims int
}

// NewSQLiteStore opens (creating if absent) a sqlite-vec database at
// path, sized for the given embedding dimension.
func NewSQLiteStore(path string, dims int) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("vectorindex: creating directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("vectorindex: opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("vectorindex: pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL(dims)); err != nil {
		db.Close()
		return nil, fmt.Errorf("vectorindex: creating schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &SQLiteStore{db: db, dims: dims}, nil
}

func schemaSQL(dims int) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS chunks (
	rowid INTEGER PRIMARY KEY,
	chunk_id TEXT UNIQUE NOT NULL,
	text TEXT NOT NULL,
	company TEXT NOT NULL,
	company_id TEXT NOT NULL,
	year TEXT NOT NULL,
	quarter TEXT NOT NULL,
	filing_type TEXT NOT NULL,
	section TEXT NOT NULL,
	parent_section TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_company_year ON chunks (company_id, year);

CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(
	chunk_id INTEGER PRIMARY KEY,
	embedding float[%d] distance_metric=cosine
);
`, dims)
}

func (s *SQLiteStore) Exists(ctx context.Context, chunkID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM chunks WHERE chunk_id = ?`, chunkID).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("vectorindex: exists: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) Add(ctx context.Context, records []Record) error {
	for start := 0; start < len(records); start += AddBatchSize {
		end := start + AddBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.addBatch(ctx, records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) addBatch(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("vectorindex: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		exists, err := s.Exists(ctx, r.ChunkID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (chunk_id, text, company, company_id, year, quarter, filing_type, section, parent_section)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ChunkID, r.Text, r.Company, r.CompanyID, r.Year, r.Quarter, r.FilingType, r.Section, r.ParentSection)
		if err != nil {
			return fmt.Errorf("vectorindex: insert chunk: %w", err)
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("vectorindex: last insert id: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vec_chunks (chunk_id, embedding) VALUES (?, ?)`,
			rowID, serializeFloat32(r.Embedding)); err != nil {
			return fmt.Errorf("vectorindex: insert embedding: %w", err)
		}
	}

	return tx.Commit()
}

// candidatePool is how many nearest neighbors vec0 is asked for before
// the company/year filter narrows them down to k. sqlite-vec filters
// post-hoc here, so we over-fetch.
const candidatePool = 200

func (s *SQLiteStore) Query(ctx context.Context, embedding []float32, filter Filter, k int) ([]Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.chunk_id, v.distance, c.text, c.company, c.company_id, c.year, c.quarter, c.filing_type, c.section, c.parent_section
		FROM (
			SELECT chunk_id, distance FROM vec_chunks WHERE embedding MATCH ? AND k = ?
		) v
		JOIN chunks c ON c.rowid = v.chunk_id
		WHERE c.company_id = ? AND (? = '' OR c.year = ?)
		ORDER BY v.distance
		LIMIT ?
	`, serializeFloat32(embedding), candidatePool, filter.CompanyID, filter.Year, filter.Year, k)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: query: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var distance float64
		if err := rows.Scan(&m.ChunkID, &distance, &m.Text, &m.Company, &m.CompanyID,
			&m.Year, &m.Quarter, &m.FilingType, &m.Section, &m.ParentSection); err != nil {
			return nil, fmt.Errorf("vectorindex: scan: %w", err)
		}
		m.Score = 1.0 - distance
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *SQLiteStore) ClearCompany(ctx context.Context, companyID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("vectorindex: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM vec_chunks WHERE chunk_id IN (SELECT rowid FROM chunks WHERE company_id = ?)
	`, companyID); err != nil {
		return fmt.Errorf("vectorindex: clear embeddings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE company_id = ?`, companyID); err != nil {
		return fmt.Errorf("vectorindex: clear chunks: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// serializeFloat32 converts a float32 slice to little-endian bytes, the
// wire format sqlite-vec expects for a float[N] column.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
