package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cordchat/internal/domain"
)

func writeFixture(t *testing.T, dir string, rows []domain.Chunk, vectors [][]float32) {
	t.Helper()
	require.Equal(t, len(rows), len(vectors))

	db, err := sql.Open("sqlite", filepath.Join(dir, DBFile))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE chunks (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		publish_time TEXT NOT NULL DEFAULT '',
		embedding BLOB NOT NULL
	)`)
	require.NoError(t, err)

	for i, c := range rows {
		_, err = db.Exec(`INSERT INTO chunks (id, content, title, publish_time, embedding) VALUES (?, ?, ?, ?, ?)`,
			i, c.Content, c.Title, c.PublishTime, EncodeEmbedding(vectors[i]))
		require.NoError(t, err)
	}
}

func TestOpen_MissingDatabase(t *testing.T) {
	_, err := Open(t.TempDir())
	require.Error(t, err)
}

func TestSearch_RanksByCosineDescending(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir,
		[]domain.Chunk{
			{Content: "orthogonal", Title: "A", PublishTime: "2020"},
			{Content: "aligned", Title: "B", PublishTime: "2021"},
			{Content: "opposite", Title: "C", PublishTime: "2022"},
		},
		[][]float32{
			{0, 1, 0},
			{1, 0, 0},
			{-1, 0, 0},
		})

	ix, err := Open(dir)
	require.NoError(t, err)
	defer ix.Close()

	got, err := ix.Search(context.Background(), []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "aligned", got[0].Chunk.Content)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
	assert.Equal(t, "orthogonal", got[1].Chunk.Content)
	assert.Equal(t, "opposite", got[2].Chunk.Content)
}

func TestSearch_TopKLimitsAndTiesKeepInsertionOrder(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir,
		[]domain.Chunk{
			{Content: "first tie"},
			{Content: "second tie"},
			{Content: "worse"},
		},
		[][]float32{
			{1, 0},
			{2, 0}, // same direction, same cosine as first
			{0, 1},
		})

	ix, err := Open(dir)
	require.NoError(t, err)
	defer ix.Close()

	got, err := ix.Search(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first tie", got[0].Chunk.Content)
	assert.Equal(t, "second tie", got[1].Chunk.Content)
}

func TestSearch_DimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, []domain.Chunk{{Content: "x"}}, [][]float32{{1, 0, 0}})

	ix, err := Open(dir)
	require.NoError(t, err)
	defer ix.Close()

	_, err = ix.Search(context.Background(), []float32{1, 0}, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestCount(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir,
		[]domain.Chunk{{Content: "a"}, {Content: "b"}},
		[][]float32{{1}, {1}})

	ix, err := Open(dir)
	require.NoError(t, err)
	defer ix.Close()

	n, err := ix.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDecodeEmbedding_InvalidLength(t *testing.T) {
	_, err := DecodeEmbedding([]byte{1, 2, 3})
	require.Error(t, err)
}
