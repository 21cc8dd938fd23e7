package provision

import (
	"fmt"
	"os"
	"path/filepath"

	"cordchat/internal/config"
	"cordchat/internal/index/sqlite"
)

// Check is one readiness probe result reported by Doctor.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Doctor reports whether the local environment is ready: API credential,
// index artifact, and remote artifact settings. It performs no network calls.
func Doctor(cfg *config.AppConfig) []Check {
	var checks []Check

	if os.Getenv(cfg.Embedder.APIKeyEnv) != "" {
		checks = append(checks, Check{"api key", true,
			fmt.Sprintf("%s is set", cfg.Embedder.APIKeyEnv)})
	} else {
		checks = append(checks, Check{"api key", false,
			fmt.Sprintf("%s is not set; add it to .env or the environment", cfg.Embedder.APIKeyEnv)})
	}

	dbPath := filepath.Join(cfg.Index.Dir, sqlite.DBFile)
	switch {
	case dirNonEmpty(cfg.Index.Dir):
		if _, err := os.Stat(dbPath); err == nil {
			checks = append(checks, Check{"index", true, dbPath})
		} else {
			checks = append(checks, Check{"index", false,
				fmt.Sprintf("%s exists but %s is missing", cfg.Index.Dir, sqlite.DBFile)})
		}
	case cfg.Artifact.Repo != "":
		checks = append(checks, Check{"index", true,
			fmt.Sprintf("not present locally; will pull from %s on first run", cfg.Artifact.Repo)})
	default:
		checks = append(checks, Check{"index", false,
			fmt.Sprintf("%s is empty and no artifact repo is configured", cfg.Index.Dir)})
	}

	if cfg.Artifact.Repo == "" {
		checks = append(checks, Check{"artifact repo", false, "artifact.repo is not configured"})
	} else {
		checks = append(checks, Check{"artifact repo", true, cfg.Artifact.Repo})
	}

	if os.Getenv(cfg.Artifact.TokenEnv) != "" {
		checks = append(checks, Check{"artifact token", true,
			fmt.Sprintf("%s is set (push enabled)", cfg.Artifact.TokenEnv)})
	} else {
		checks = append(checks, Check{"artifact token", true,
			fmt.Sprintf("%s is not set; pull of public artifacts still works", cfg.Artifact.TokenEnv)})
	}

	return checks
}
