// Package review implements the SM-2 derived scheduler used by flashcard study.
//
// Everything here is pure: the current date is always passed in, so results
// depend only on the arguments.
package review

import (
	"math"
	"time"
)

const (
	InitialEaseFactor = 2.5
	MinEaseFactor     = 1.3
	// MaxInterval caps the gap between two reviews at about a century.
	MaxInterval = 36500

	firstInterval  = 1
	secondInterval = 6
	lapseInterval  = 1
)

// Progress is the per-(card, learner) scheduling state.
type Progress struct {
	EaseFactor  float64 `json:"ease_factor"`
	Interval    int     `json:"interval"`    // days until the next review; 0 = never reviewed
	Repetitions int     `json:"repetitions"` // consecutive successes since the last lapse
}

// InitialProgress is the seed state of a card that was never reviewed.
func InitialProgress() Progress {
	return Progress{
		EaseFactor:  InitialEaseFactor,
		Interval:    0,
		Repetitions: 0,
	}
}

// Valid reports whether p can be fed to the scheduler as is.
// The zero value is not valid and stands for "no progress yet".
func (p Progress) Valid() bool {
	if math.IsNaN(p.EaseFactor) || math.IsInf(p.EaseFactor, 0) {
		return false
	}
	return p.EaseFactor >= MinEaseFactor && p.Interval >= 0 && p.Repetitions >= 0
}

// Result is the outcome of scheduling one review.
type Result struct {
	Progress
	NextReviewAt time.Time `json:"next_review_at"`
}

// CalculateNextReview applies one rating to p. today supplies both the date
// and the location used to normalise NextReviewAt to midnight.
func CalculateNextReview(p Progress, rating int, today time.Time) Result {
	if !p.Valid() {
		p = InitialProgress()
	}

	r := ClampRating(rating)
	q := float64(r.Quality())

	if !r.Correct() {
		p.Repetitions = 0
		p.Interval = lapseInterval
	} else {
		p.Repetitions++
		switch p.Repetitions {
		case 1:
			p.Interval = firstInterval
		case 2:
			p.Interval = secondInterval
		default:
			// grows off the previous interval and the ease factor before this review
			grown := math.Round(float64(p.Interval) * p.EaseFactor)
			p.Interval = int(math.Min(grown, MaxInterval))
		}
	}

	ef := p.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	p.EaseFactor = math.Max(MinEaseFactor, ef)

	return Result{
		Progress:     p,
		NextReviewAt: StartOfDay(today).AddDate(0, 0, p.Interval),
	}
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsDue reports whether a card scheduled for next should be studied on now's
// day. A card without a schedule is always due.
func IsDue(next *time.Time, now time.Time) bool {
	if next == nil {
		return true
	}
	return !StartOfDay(next.In(now.Location())).After(StartOfDay(now))
}
