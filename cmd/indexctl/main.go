// indexctl maintains the pre-built index artifact: pull it from the dataset
// host, push a local build back, or check the local environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"cordchat/internal/config"
	"cordchat/internal/provision"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional)")
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: indexctl [--config=config.yaml] pull|push|doctor")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	switch args[0] {
	case "pull":
		if err := provision.Pull(ctx, cfg.Artifact, cfg.Index.Dir); err != nil {
			log.Fatalf("pull failed: %v", err)
		}
		fmt.Printf("Pulled index artifact into %s\n", cfg.Index.Dir)
	case "push":
		if err := provision.Push(ctx, cfg.Artifact, cfg.Index.Dir); err != nil {
			log.Fatalf("push failed: %v", err)
		}
		fmt.Printf("Pushed %s to %s\n", cfg.Index.Dir, cfg.Artifact.Repo)
	case "doctor":
		failed := 0
		for _, c := range provision.Doctor(cfg) {
			mark := "ok"
			if !c.OK {
				mark = "FAIL"
				failed++
			}
			fmt.Printf("%-16s %-4s %s\n", c.Name, mark, c.Detail)
		}
		if failed > 0 {
			fmt.Printf("%d issue(s) found\n", failed)
			os.Exit(1)
		}
		fmt.Println("Everything looks good.")
	default:
		fmt.Printf("unknown command %q\n", args[0])
		os.Exit(1)
	}
}
