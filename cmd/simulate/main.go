// Command simulate forecasts how many reviews a deck will ask for per day.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gelos/backend/internal/domain/deck"
	"github.com/gelos/backend/internal/simulation"
	"github.com/gelos/backend/internal/store"
)

func main() {
	_ = godotenv.Load()

	var (
		dbPath string
		deckID string
		cards  int
		cfg    simulation.Config
	)
	flag.StringVar(&dbPath, "db", envOr("DATABASE_PATH", "gelos.db"), "SQLite database file")
	flag.StringVar(&deckID, "deck", "", "deck to simulate; empty uses synthetic cards")
	flag.IntVar(&cards, "cards", 50, "number of synthetic cards when no deck is given")
	flag.IntVar(&cfg.Days, "days", 30, "days to simulate")
	flag.IntVar(&cfg.Learners, "learners", 10, "simulated learners")
	flag.Float64Var(&cfg.Recall, "recall", 0.85, "probability of remembering a card")
	flag.Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	ctx := context.Background()

	var deckCards []deck.Card
	if deckID != "" {
		db, err := store.NewSQLite(dbPath)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		d, err := db.GetDeck(ctx, deckID)
		db.Close()
		if err != nil {
			logger.Error("failed to load deck", "deck_id", deckID, "error", err)
			os.Exit(1)
		}
		deckCards = d.Cards
	} else {
		d, _ := deck.New("synthetic")
		for i := 0; i < cards; i++ {
			d.AddCard(fmt.Sprintf("card %d", i+1), "")
		}
		deckCards = d.Cards
	}

	cfg.Start = time.Now()
	days, err := simulation.Run(ctx, deckCards, cfg)
	if err != nil {
		logger.Error("simulation failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%-4s %-10s %9s %9s %8s\n", "day", "date", "sessions", "reviews", "correct")
	for _, d := range days {
		fmt.Printf("%-4d %-10s %9d %9d %8d\n", d.Day, d.Date.Format("2006-01-02"), d.Sessions, d.Reviewed, d.Correct)
	}
}

func envOr(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}
