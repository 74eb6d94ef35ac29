// Package index provides the document retrieval index: a SQLite-backed
// chunk store queried with lexical relevance scoring.
//
// Scores are distances in [0, 1] where lower is better. That polarity is
// fixed for this index and relied on by the document retrieval adapter.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/synthesize-ai/assistant-platform/pkg/metrics"
)

// CollectionName identifies the single chunk collection.
const CollectionName = "documents"

// Chunk is one indexed piece of an uploaded document.
type Chunk struct {
	ID         string
	Origin     string
	ChunkIndex int
	Content    string
	FileType   string
}

// Match is one scored retrieval hit.
type Match struct {
	Chunk Chunk
	Score float64
}

// SQLiteIndex persists chunks in SQLite and serves scored retrieval from an
// in-memory copy. Reads proceed concurrently; writes are eventually visible
// to in-flight queries rather than blocking them.
type SQLiteIndex struct {
	mu     sync.RWMutex
	db     *sql.DB
	chunks []Chunk
}

// Open creates or opens the index under dataPath.
func Open(dataPath string) (*SQLiteIndex, error) {
	if dataPath == "" {
		dataPath = "./data"
	}

	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataPath, "documents.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	idx := &SQLiteIndex{db: db}
	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	if err := idx.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading chunks: %w", err)
	}

	return idx, nil
}

func (s *SQLiteIndex) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		origin TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		content TEXT NOT NULL,
		file_type TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_origin ON chunks(origin);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteIndex) load() error {
	rows, err := s.db.Query(`SELECT id, origin, chunk_index, content, file_type FROM chunks ORDER BY origin, chunk_index`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.Origin, &c.ChunkIndex, &c.Content, &c.FileType); err != nil {
			return err
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.chunks = chunks
	metrics.DocumentChunksIndexed.Set(float64(len(chunks)))
	return nil
}

// Add stores chunks durably and makes them visible to subsequent searches.
func (s *SQLiteIndex) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (id, origin, chunk_index, content, file_type)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Origin, c.ChunkIndex, c.Content, c.FileType); err != nil {
			return fmt.Errorf("inserting chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	s.mu.Lock()
	s.chunks = append(s.chunks, chunks...)
	total := len(s.chunks)
	s.mu.Unlock()

	metrics.DocumentChunksIndexed.Set(float64(total))
	return nil
}

// Search returns up to topK matches ordered by ascending score. An empty
// index yields an empty result, not an error.
func (s *SQLiteIndex) Search(ctx context.Context, query string, topK int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}

	queryTerms := tokenize(query)

	s.mu.RLock()
	matches := make([]Match, 0, len(s.chunks))
	for _, c := range s.chunks {
		matches = append(matches, Match{Chunk: c, Score: distance(queryTerms, c.Content)})
	}
	s.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score < matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Count returns the number of indexed chunks.
func (s *SQLiteIndex) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Clear removes every chunk from the index.
func (s *SQLiteIndex) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	s.mu.Lock()
	s.chunks = nil
	s.mu.Unlock()

	metrics.DocumentChunksIndexed.Set(0)
	return nil
}

// Close closes the underlying database.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// distance scores content against the query terms: the fraction of query
// terms absent from the content. Identical vocabulary scores 0, no shared
// terms scores 1.
func distance(queryTerms []string, content string) float64 {
	if len(queryTerms) == 0 {
		return 1.0
	}

	contentTerms := make(map[string]struct{})
	for _, t := range tokenize(content) {
		contentTerms[t] = struct{}{}
	}

	hits := 0
	for _, t := range queryTerms {
		if _, ok := contentTerms[t]; ok {
			hits++
		}
	}
	return 1.0 - float64(hits)/float64(len(queryTerms))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
