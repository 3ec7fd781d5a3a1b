// Command migrate runs schema operations for the site database.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"yatube/internal/config"
	"yatube/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <up|status|reset>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Connect applies the schema itself.
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "up":
		log.Println("schema is up to date")
	case "status":
		status, err := database.Status(db)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		log.Printf("driver=%s env=%s tables=%d", cfg.DBDriver, cfg.Env, len(status))
		for _, st := range status {
			if !st.Exists {
				log.Printf("missing: %s", st.Table)
				continue
			}
			log.Printf("%s: %s", st.Table, strings.Join(st.Columns, ", "))
		}
	case "reset":
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to reset the database in %s", cfg.Env)
		}
		if err := database.Reset(db); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		log.Println("all tables dropped and recreated")
	default:
		return usage()
	}

	return nil
}
