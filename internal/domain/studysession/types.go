package studysession

import (
	"context"
	"time"

	"github.com/gelos/backend/internal/domain/review"
)

// Scope names the deck being studied and the learner studying it.
type Scope struct {
	DeckID    string
	LearnerID string
}

// DueCard is a card returned by the due-card query. Progress is nil when the
// learner has never reviewed the card.
type DueCard struct {
	CardID       string
	Front        string
	Back         string
	Progress     *review.Progress
	NextReviewAt *time.Time
}

// DeckStats are aggregate counters computed by the repository.
type DeckStats struct {
	TotalCards    int `json:"total_cards"`
	DueCards      int `json:"due_cards"`
	NewCards      int `json:"new_cards"`
	ReviewedToday int `json:"reviewed_today"`
	Accuracy      int `json:"accuracy"` // percent of reviews rated Good or Easy
}

// Record is a single rating event and the progress it produced. ReviewID
// identifies the event so that persisting it twice has no further effect.
type Record struct {
	ReviewID   string
	CardID     string
	LearnerID  string
	Rating     review.Rating
	Result     review.Result
	ReviewedAt time.Time
}

// Repository is the persistence collaborator of a study session.
type Repository interface {
	// FetchDueCards returns the cards of the deck that are due on today's
	// date, or that the learner never reviewed. Order is irrelevant.
	FetchDueCards(ctx context.Context, scope Scope, today time.Time) ([]DueCard, error)
	FetchDeckStats(ctx context.Context, scope Scope, today time.Time) (DeckStats, error)
	// PersistReview stores the new progress of one card. It must be
	// idempotent per Record.ReviewID.
	PersistReview(ctx context.Context, rec Record) error
}

// Writer applies review writes in the background. Writes submitted for the
// same card must be applied in submission order. done is called exactly once
// with the outcome of the write.
type Writer interface {
	Submit(rec Record, done func(error))
}

// Stats are the running counters of one session.
type Stats struct {
	Reviewed int `json:"reviewed"`
	Correct  int `json:"correct"`
}

// Summary is what a finished session reports.
type Summary struct {
	Stats
	Deck DeckStats `json:"deck"`
}

// SaveFailure describes a rating whose write did not go through.
type SaveFailure struct {
	Record Record
	Err    error
}
