package provision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cordchat/internal/config"
)

func TestEnsureIndexPresent_ShortCircuitsWhenDirNonEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.db"), []byte("not empty"), 0o644))

	// No repo configured: the only way this succeeds is the local check.
	ok, err := EnsureIndexPresent(context.Background(), config.ArtifactConfig{}, dir)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnsureIndexPresent_MissingRepoFails(t *testing.T) {
	ok, err := EnsureIndexPresent(context.Background(), config.ArtifactConfig{}, filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.False(t, ok)
}

func TestPull_DownloadsArtifactFiles(t *testing.T) {
	const content = "sqlite bytes"
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/datasets/user/cord19/tree/main/vectorstore", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]treeEntry{
			{Type: "file", Path: "vectorstore/index.db"},
			{Type: "directory", Path: "vectorstore/sub"},
		})
	})
	mux.HandleFunc("GET /datasets/user/cord19/resolve/main/vectorstore/index.db", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(content))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "cord19_index")
	artifact := config.ArtifactConfig{
		Repo:    "user/cord19",
		BaseURL: srv.URL,
		Prefix:  "vectorstore",
	}

	ok, err := EnsureIndexPresent(context.Background(), artifact, dir)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := os.ReadFile(filepath.Join(dir, "index.db"))
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestPull_ArtifactNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	err := Pull(context.Background(), config.ArtifactConfig{
		Repo:    "user/missing",
		BaseURL: srv.URL,
		Prefix:  "vectorstore",
	}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDoctor_ReportsMissingCredential(t *testing.T) {
	t.Setenv("CORDCHAT_TEST_KEY", "")
	cfg := &config.AppConfig{}
	cfg.Embedder.APIKeyEnv = "CORDCHAT_TEST_KEY"
	cfg.Index.Dir = filepath.Join(t.TempDir(), "absent")
	cfg.Artifact.TokenEnv = "CORDCHAT_TEST_TOKEN"

	checks := Doctor(cfg)
	byName := map[string]Check{}
	for _, c := range checks {
		byName[c.Name] = c
	}
	assert.False(t, byName["api key"].OK)
	assert.False(t, byName["index"].OK)
	assert.False(t, byName["artifact repo"].OK)
}

func TestDoctor_HealthyEnvironment(t *testing.T) {
	t.Setenv("CORDCHAT_TEST_KEY", "sk-test")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.db"), []byte("x"), 0o644))

	cfg := &config.AppConfig{}
	cfg.Embedder.APIKeyEnv = "CORDCHAT_TEST_KEY"
	cfg.Index.Dir = dir
	cfg.Artifact.Repo = "user/cord19"
	cfg.Artifact.TokenEnv = "CORDCHAT_TEST_TOKEN"

	for _, c := range Doctor(cfg) {
		assert.True(t, c.OK, c.Name)
	}
}
