package provision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/phuslu/log"

	"cordchat/internal/config"
)

// Push uploads every file under dir to the artifact repo as one commit on
// main, placed under the configured prefix. A write token is required.
func Push(ctx context.Context, artifact config.ArtifactConfig, dir string) error {
	if artifact.Repo == "" {
		return fmt.Errorf("no artifact repo configured")
	}
	if os.Getenv(artifact.TokenEnv) == "" {
		return fmt.Errorf("missing write token in env %s", artifact.TokenEnv)
	}
	if !dirNonEmpty(dir) {
		return fmt.Errorf("index directory %s is missing or empty", dir)
	}

	// The commit endpoint takes newline-delimited JSON: a header record
	// followed by one record per file with base64 content.
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	header := map[string]any{
		"key":   "header",
		"value": map[string]string{"summary": "Upload index artifact"},
	}
	if err := enc.Encode(header); err != nil {
		return err
	}

	count := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		record := map[string]any{
			"key": "file",
			"value": map[string]string{
				"path":     path.Join(artifact.Prefix, filepath.ToSlash(rel)),
				"content":  base64.StdEncoding.EncodeToString(data),
				"encoding": "base64",
			},
		}
		count++
		return enc.Encode(record)
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/datasets/%s/commit/main", artifact.BaseURL, artifact.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	authorize(req, artifact)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("pushing artifact %s failed: %s", artifact.Repo, resp.Status)
	}
	log.Info().Str("repo", artifact.Repo).Int("files", count).Msg("index artifact pushed")
	return nil
}
