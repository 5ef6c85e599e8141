// Package jobs runs the periodic housekeeping of the study backend.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/gelos/backend/internal/store"
)

// SessionPruner drops study sessions nobody touched for a while.
type SessionPruner interface {
	PruneIdle(maxAge time.Duration) int
}

// DigestSource reports how many reviews are due per deck.
type DigestSource interface {
	DueDigest(ctx context.Context, today time.Time) ([]store.DeckDigest, error)
}

type Config struct {
	SweepInterval time.Duration
	IdleTimeout   time.Duration
	DigestAt      string // "15:04" in the scheduler's location
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	sessions  SessionPruner
	digest    DigestSource
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

func New(sessions SessionPruner, digest DigestSource, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.DigestAt == "" {
		cfg.DigestAt = "07:00"
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		sessions:  sessions,
		digest:    digest,
		cfg:       cfg,
		logger:    logger.With("component", "jobs"),
		now:       time.Now,
	}
}

// Start registers the jobs and runs them in the background.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.cfg.SweepInterval).Do(s.PruneSessions); err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}
	if _, err := s.scheduler.Every(1).Day().At(s.cfg.DigestAt).Do(s.LogDueDigest); err != nil {
		return fmt.Errorf("schedule due digest: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("jobs started",
		"sweep_interval", s.cfg.SweepInterval.String(),
		"digest_at", s.cfg.DigestAt,
	)
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) PruneSessions() {
	n := s.sessions.PruneIdle(s.cfg.IdleTimeout)
	s.logger.Debug("session sweep done", "pruned", n)
}

// LogDueDigest logs one line per deck that has reviews due today.
func (s *Scheduler) LogDueDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	digest, err := s.digest.DueDigest(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to build due digest", "error", err)
		return
	}

	total := 0
	for _, d := range digest {
		total += d.DueReviews
		s.logger.Info("reviews due", "deck_id", d.DeckID, "deck", d.Name, "due", d.DueReviews)
	}
	s.logger.Info("due digest", "decks", len(digest), "due", total)
}
