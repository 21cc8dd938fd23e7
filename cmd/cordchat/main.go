package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/phuslu/log"

	"cordchat/internal/chat"
	"cordchat/internal/config"
	"cordchat/internal/pipeline"
	"cordchat/internal/session"
	"cordchat/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/cordchat/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	// The TUI owns stdout, so structured logs go to a file.
	log.DefaultLogger = log.Logger{
		Level:  log.ParseLevel(cfg.Logging.Level),
		Writer: &log.FileWriter{Filename: cfg.Logging.File, MaxBackups: 2, EnsureFolder: true},
	}

	loader := pipeline.NewLoader(func() (*pipeline.Pipeline, error) {
		return pipeline.Build(context.Background(), cfg)
	})
	buildPort := func() (tui.ChatPort, error) {
		p, err := loader.Get()
		if err != nil {
			return nil, err
		}
		return chat.NewHandler(p, session.New()), nil
	}

	keyLoaded := os.Getenv(cfg.Embedder.APIKeyEnv) != ""
	m := tui.New(buildPort, keyLoaded)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		stdlog.Fatal(err)
	}
}
