// Package sqlite opens the pre-built vector index shipped as a single SQLite
// database file and serves top-k cosine similarity lookups over it. The index
// is an opaque artifact built elsewhere; this package only reads it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver

	"cordchat/internal/domain"
)

// DBFile is the database file expected inside the index directory.
const DBFile = "index.db"

// Index is a read-only similarity index over chunk rows.
type Index struct {
	db *sql.DB
}

// Open opens the index database inside dir read-only. It fails if the
// directory or database file is missing, or if the chunks table is absent.
func Open(dir string) (*Index, error) {
	path := filepath.Join(dir, DBFile)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("index database %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	ix := &Index{db: db}
	if _, err := ix.Count(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("index database %s is not readable: %w", path, err)
	}
	return ix, nil
}

// Count returns the number of chunks in the index.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Search scans all chunk embeddings and returns the topK most similar by
// cosine similarity, descending. Ties keep insertion (rowid) order.
func (ix *Index) Search(ctx context.Context, vector []float32, topK int) ([]domain.ScoredChunk, error) {
	if topK <= 0 {
		topK = 5
	}
	rows, err := ix.db.QueryContext(ctx,
		`SELECT content, title, publish_time, embedding FROM chunks ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scored []domain.ScoredChunk
	for rows.Next() {
		var (
			chunk domain.Chunk
			blob  []byte
		)
		if err := rows.Scan(&chunk.Content, &chunk.Title, &chunk.PublishTime, &blob); err != nil {
			return nil, err
		}
		emb, err := DecodeEmbedding(blob)
		if err != nil {
			return nil, err
		}
		score, err := cosine(vector, emb)
		if err != nil {
			return nil, err
		}
		scored = append(scored, domain.ScoredChunk{Chunk: chunk, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// Close releases the underlying database handle.
func (ix *Index) Close() error { return ix.db.Close() }

func cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimension mismatch: query %d vs chunk %d", len(a), len(b))
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2)), nil
}
