// Package provision makes sure the pre-built index artifact exists locally
// before the pipeline opens it, pulling it from the remote dataset host when
// absent. It also carries the push and doctor utilities for maintaining the
// artifact. The index contents are opaque here; only "directory exists and is
// non-empty" counts as ready.
package provision

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phuslu/log"

	"cordchat/internal/config"
)

var httpClient = &http.Client{Timeout: 5 * time.Minute}

// EnsureIndexPresent returns true if a non-empty index directory exists
// locally after the call. A missing directory triggers a pull from the
// configured dataset repo; a missing repo id or a failed pull yields false.
func EnsureIndexPresent(ctx context.Context, artifact config.ArtifactConfig, dir string) (bool, error) {
	if dirNonEmpty(dir) {
		return true, nil
	}
	if artifact.Repo == "" {
		return false, fmt.Errorf("index directory %s is empty and no artifact repo is configured", dir)
	}
	log.Info().Str("repo", artifact.Repo).Str("dir", dir).Msg("pulling index artifact")
	if err := Pull(ctx, artifact, dir); err != nil {
		return false, err
	}
	return dirNonEmpty(dir), nil
}

// Pull downloads every file of the artifact into dir. Files are laid out
// relative to the configured prefix inside the dataset repo.
func Pull(ctx context.Context, artifact config.ArtifactConfig, dir string) error {
	files, err := listFiles(ctx, artifact)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("artifact %s has no files under %s", artifact.Repo, artifact.Prefix)
	}
	for _, remote := range files {
		local := filepath.Join(dir, strings.TrimPrefix(remote, artifact.Prefix+"/"))
		if err := downloadFile(ctx, artifact, remote, local); err != nil {
			return err
		}
	}
	log.Info().Int("files", len(files)).Str("dir", dir).Msg("index artifact pulled")
	return nil
}

type treeEntry struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

func listFiles(ctx context.Context, artifact config.ArtifactConfig) ([]string, error) {
	url := fmt.Sprintf("%s/api/datasets/%s/tree/main/%s?recursive=true",
		artifact.BaseURL, artifact.Repo, artifact.Prefix)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	authorize(req, artifact)
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("artifact %s not found on %s", artifact.Repo, artifact.BaseURL)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("listing artifact %s failed: %s", artifact.Repo, resp.Status)
	}
	var entries []treeEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type == "file" {
			files = append(files, e.Path)
		}
	}
	return files, nil
}

func downloadFile(ctx context.Context, artifact config.ArtifactConfig, remote, local string) error {
	url := fmt.Sprintf("%s/datasets/%s/resolve/main/%s", artifact.BaseURL, artifact.Repo, remote)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	authorize(req, artifact)
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("downloading %s failed: %s", remote, resp.Status)
	}
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return err
	}
	f, err := os.Create(local)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("writing %s: %w", local, err)
	}
	return nil
}

func authorize(req *http.Request, artifact config.ArtifactConfig) {
	if token := os.Getenv(artifact.TokenEnv); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func dirNonEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}
