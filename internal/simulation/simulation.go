// Package simulation forecasts the review workload of a deck by running
// scripted learners through real study sessions, one session per day.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gelos/backend/internal/domain/deck"
	"github.com/gelos/backend/internal/domain/review"
	"github.com/gelos/backend/internal/domain/studysession"
	"github.com/gelos/backend/internal/worker"
)

type Config struct {
	Days     int
	Learners int
	// Recall is the chance that a learner remembers a card. Remembered cards
	// are rated Good, or Easy one time in four; forgotten ones Forgot.
	Recall  float64
	Start   time.Time
	Seed    int64
	Workers int
}

// DayReport aggregates one simulated day over all learners.
type DayReport struct {
	Day      int
	Date     time.Time
	Sessions int
	Reviewed int
	Correct  int
}

type learnerRun struct {
	days []DayReport
	err  error
}

// Run simulates cfg.Days of study for every learner and returns one report
// per day. Learners run concurrently; each is deterministic for a given seed.
func Run(ctx context.Context, cards []deck.Card, cfg Config) ([]DayReport, error) {
	if cfg.Days <= 0 || cfg.Learners <= 0 {
		return nil, errors.New("simulation: days and learners must be positive")
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	pool := worker.NewPool[learnerRun](cfg.Workers, cfg.Learners)
	for l := 0; l < cfg.Learners; l++ {
		learnerID := fmt.Sprintf("learner-%d", l+1)
		seed := cfg.Seed + int64(l)
		pool.Submit(learnerID, learnerID, func() learnerRun {
			days, err := simulateLearner(ctx, learnerID, cards, cfg, seed)
			return learnerRun{days: days, err: err}
		})
	}
	go pool.Close()

	totals := make([]DayReport, cfg.Days)
	for d := range totals {
		totals[d] = DayReport{Day: d, Date: review.StartOfDay(cfg.Start).AddDate(0, 0, d)}
	}

	var errs []error
	for res := range pool.Results() {
		if res.Output.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Key, res.Output.err))
			continue
		}
		for d, day := range res.Output.days {
			totals[d].Sessions += day.Sessions
			totals[d].Reviewed += day.Reviewed
			totals[d].Correct += day.Correct
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return totals, nil
}

func simulateLearner(ctx context.Context, learnerID string, cards []deck.Card, cfg Config, seed int64) ([]DayReport, error) {
	repo := newMemoryRepo(cards)
	rng := rand.New(rand.NewSource(seed))
	scope := studysession.Scope{DeckID: "simulated", LearnerID: learnerID}

	days := make([]DayReport, cfg.Days)
	for d := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// mid-morning so that day boundaries are unambiguous
		now := review.StartOfDay(cfg.Start).AddDate(0, 0, d).Add(10 * time.Hour)

		ctrl := studysession.New(scope, repo, studysession.Options{
			Now:  func() time.Time { return now },
			Rand: rng,
		})
		if err := ctrl.Load(ctx); err != nil {
			return nil, err
		}

		for ctrl.State().Reviewing() {
			if err := ctrl.Reveal(); err != nil {
				return nil, err
			}
			if _, err := ctrl.Rate(ctx, int(pickRating(rng, cfg.Recall))); err != nil {
				return nil, err
			}
		}

		stats := ctrl.Stats()
		days[d] = DayReport{Day: d, Reviewed: stats.Reviewed, Correct: stats.Correct}
		if stats.Reviewed > 0 {
			days[d].Sessions = 1
		}
	}
	return days, nil
}

func pickRating(rng *rand.Rand, recall float64) review.Rating {
	if rng.Float64() >= recall {
		return review.Forgot
	}
	if rng.Intn(4) == 0 {
		return review.Easy
	}
	return review.Good
}

// memoryRepo keeps one learner's progress for the duration of a run.
type memoryRepo struct {
	mu       sync.Mutex
	cards    []deck.Card
	progress map[string]review.Result
}

func newMemoryRepo(cards []deck.Card) *memoryRepo {
	return &memoryRepo{cards: cards, progress: make(map[string]review.Result)}
}

func (m *memoryRepo) FetchDueCards(ctx context.Context, scope studysession.Scope, today time.Time) ([]studysession.DueCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []studysession.DueCard
	for _, c := range m.cards {
		dc := studysession.DueCard{CardID: c.ID, Front: c.Front, Back: c.Back}
		if res, ok := m.progress[c.ID]; ok {
			if !review.IsDue(&res.NextReviewAt, today) {
				continue
			}
			p, next := res.Progress, res.NextReviewAt
			dc.Progress, dc.NextReviewAt = &p, &next
		}
		due = append(due, dc)
	}
	return due, nil
}

func (m *memoryRepo) FetchDeckStats(ctx context.Context, scope studysession.Scope, today time.Time) (studysession.DeckStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return studysession.DeckStats{TotalCards: len(m.cards), NewCards: len(m.cards) - len(m.progress)}, nil
}

func (m *memoryRepo) PersistReview(ctx context.Context, rec studysession.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[rec.CardID] = rec.Result
	return nil
}
