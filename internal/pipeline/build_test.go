package pipeline

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"cordchat/internal/config"
	"cordchat/internal/index/sqlite"
)

func testConfig(t *testing.T, indexDir string) *config.AppConfig {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	cfg.Index.Dir = indexDir
	cfg.Embedder.APIKeyEnv = "PIPELINE_TEST_KEY"
	cfg.Generator.APIKeyEnv = "PIPELINE_TEST_KEY"
	return cfg
}

func writeIndex(t *testing.T, dir string) {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(dir, sqlite.DBFile))
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE chunks (
		id TEXT PRIMARY KEY, content TEXT, title TEXT, publish_time TEXT, embedding BLOB
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO chunks VALUES ('c1', 'text', 'T', '2021', ?)`,
		sqlite.EncodeEmbedding([]float32{1, 0}))
	require.NoError(t, err)
}

func TestBuild_MissingIndexIsConstructionError(t *testing.T) {
	t.Setenv("PIPELINE_TEST_KEY", "sk-test")
	cfg := testConfig(t, filepath.Join(t.TempDir(), "absent"))

	p, err := Build(context.Background(), cfg)
	assert.Nil(t, p)
	var cerr *ConstructionError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Error(), "pipeline construction failed")
}

func TestBuild_MissingCredentialIsConstructionError(t *testing.T) {
	t.Setenv("PIPELINE_TEST_KEY", "")
	dir := t.TempDir()
	writeIndex(t, dir)
	cfg := testConfig(t, dir)

	p, err := Build(context.Background(), cfg)
	assert.Nil(t, p)
	var cerr *ConstructionError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "PIPELINE_TEST_KEY")
}

func TestBuild_Succeeds(t *testing.T) {
	t.Setenv("PIPELINE_TEST_KEY", "sk-test")
	dir := t.TempDir()
	writeIndex(t, dir)
	cfg := testConfig(t, dir)

	p, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 5, p.topK)
}

func TestBuild_EmptyIndexDirWithoutRepo(t *testing.T) {
	t.Setenv("PIPELINE_TEST_KEY", "sk-test")
	dir := t.TempDir() // exists but empty
	require.NoError(t, os.MkdirAll(dir, 0o755))
	cfg := testConfig(t, dir)

	_, err := Build(context.Background(), cfg)
	var cerr *ConstructionError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "empty")
}
