// Command deckimport loads YAML or XLSX deck files into the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/gelos/backend/internal/importer"
	"github.com/gelos/backend/internal/store"
)

func main() {
	_ = godotenv.Load()

	var dbPath, name string
	var dryRun bool
	flag.StringVar(&dbPath, "db", envOr("DATABASE_PATH", "gelos.db"), "SQLite database file")
	flag.StringVar(&name, "name", "", "deck name for spreadsheets (defaults to the file name)")
	flag.BoolVar(&dryRun, "dry-run", false, "parse the files without writing them")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: deckimport [-db gelos.db] [-name NAME] [-dry-run] FILE...")
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := store.NewSQLite(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	failed := 0
	for _, path := range flag.Args() {
		if err := importFile(ctx, db, path, name, dryRun, logger); err != nil {
			logger.Error("import failed", "file", path, "error", err)
			failed++
		}
	}
	if failed > 0 {
		db.Close()
		os.Exit(1)
	}
}

func importFile(ctx context.Context, db store.Store, path, name string, dryRun bool, logger *slog.Logger) error {
	format, err := importer.DetectFormat(path)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	res, err := importer.Read(f, format, name)
	if err != nil {
		return err
	}
	for _, s := range res.Skipped {
		logger.Warn("skipped entry", "file", path, "reason", s)
	}

	if !dryRun {
		if err := db.SaveDeck(ctx, res.Deck); err != nil {
			return fmt.Errorf("save deck: %w", err)
		}
	}

	logger.Info("deck imported",
		"file", path,
		"deck_id", res.Deck.ID,
		"name", res.Deck.Name,
		"cards", len(res.Deck.Cards),
		"skipped", len(res.Skipped),
		"dry_run", dryRun,
	)
	return nil
}

func envOr(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}
