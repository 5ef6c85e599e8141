// Package studysession drives one flashcard study session: it loads the due
// cards of a deck, presents them in random order, schedules every rating and
// hands the new progress to the repository.
package studysession

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gelos/backend/internal/domain/review"
	"github.com/gelos/backend/internal/id"
)

var (
	ErrInvalidAction = errors.New("studysession: action not allowed in current state")
	ErrLoadFailed    = errors.New("studysession: load failed")
	ErrNoSaveFailure = errors.New("studysession: no failed save for card")
)

// Options configures a Controller. Zero values produce defaults.
type Options struct {
	Config Config
	// Writer applies writes in the background. nil writes synchronously
	// through the repository inside Rate.
	Writer Writer
	// Now supplies the current time. nil uses time.Now.
	Now func() time.Time
	// Rand shuffles the queue. nil seeds a new source from the clock.
	Rand *rand.Rand
	// OnSaveError is called, possibly from another goroutine, when a write
	// fails. It never runs while the controller is locked.
	OnSaveError func(SaveFailure)
}

// Outcome is what a single rating produced.
type Outcome struct {
	CardID string        `json:"card_id"`
	Rating review.Rating `json:"rating"`
	Result review.Result `json:"result"`
	State  State         `json:"-"`
}

// Snapshot is a read-only view of the session.
type Snapshot struct {
	State    State
	Position int // index of the current card, 0-based
	Total    int
	Card     *DueCard
	Stats    Stats
	Deck     DeckStats
}

// Controller is the state machine of one study session. It is safe for
// concurrent use, but actions are applied one at a time.
type Controller struct {
	scope       Scope
	cfg         Config
	repo        Repository
	writer      Writer
	now         func() time.Time
	rng         *rand.Rand
	onSaveError func(SaveFailure)

	mu     sync.Mutex
	state  State
	queue  []DueCard
	cursor int
	stats  Stats
	deck   DeckStats
	// summaries counts Summary calls waiting on pending; no write may be
	// added meanwhile.
	summaries int

	pending  sync.WaitGroup
	failMu   sync.Mutex
	failures map[string]SaveFailure // cardID → latest failed write
}

// New creates a controller in the Loading state. Call Load to start it.
func New(scope Scope, repo Repository, opts Options) *Controller {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Controller{
		scope:       scope,
		cfg:         opts.Config,
		repo:        repo,
		writer:      opts.Writer,
		now:         now,
		rng:         rng,
		onSaveError: opts.OnSaveError,
		state:       Loading,
		failures:    make(map[string]SaveFailure),
	}
}

func (c *Controller) Scope() Scope {
	return c.scope
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Load fetches the due cards and the deck stats. On failure nothing changes
// and Load may be called again.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Loading {
		return c.invalid("load")
	}

	today := c.now()

	var (
		cards []DueCard
		stats DeckStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cards, err = c.repo.FetchDueCards(gctx, c.scope, today)
		if err != nil {
			return fmt.Errorf("fetch due cards: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stats, err = c.repo.FetchDeckStats(gctx, c.scope, today)
		if err != nil {
			return fmt.Errorf("fetch deck stats: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	queue := shuffleCards(dueOnly(cards, today), c.rng)
	if c.cfg.MaxCards != nil && *c.cfg.MaxCards > 0 && *c.cfg.MaxCards < len(queue) {
		queue = queue[:*c.cfg.MaxCards]
	}

	c.queue = queue
	c.cursor = 0
	c.deck = stats
	if len(queue) == 0 {
		c.state = Empty
	} else {
		c.state = Presenting
	}
	return nil
}

// Snapshot returns the current view of the session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:    c.state,
		Position: c.cursor,
		Total:    len(c.queue),
		Stats:    c.stats,
		Deck:     c.deck,
	}
	if c.state.Reviewing() {
		card := c.queue[c.cursor]
		s.Card = &card
	}
	return s
}

// Reveal turns the current card to its answer face.
func (c *Controller) Reveal() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Presenting {
		return c.invalid("reveal")
	}
	c.state = Revealed
	return nil
}

// Rate scores the revealed card, hands the new progress to the writer and
// moves on. A failed write does not fail Rate: it is recorded in
// SaveFailures and reported to OnSaveError.
func (c *Controller) Rate(ctx context.Context, rating int) (Outcome, error) {
	out, failure, err := c.rate(ctx, rating)
	if failure != nil {
		c.reportSaveError(*failure)
	}
	return out, err
}

func (c *Controller) rate(ctx context.Context, rating int) (Outcome, *SaveFailure, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Revealed {
		return Outcome{}, nil, c.invalid("rate")
	}

	card := c.queue[c.cursor]
	progress := review.InitialProgress()
	if card.Progress != nil {
		progress = *card.Progress
	}

	now := c.now()
	r := review.ClampRating(rating)
	res := review.CalculateNextReview(progress, int(r), now)

	failure := c.submit(ctx, Record{
		ReviewID:   id.NewReviewID(),
		CardID:     card.CardID,
		LearnerID:  c.scope.LearnerID,
		Rating:     r,
		Result:     res,
		ReviewedAt: now,
	})

	c.stats.Reviewed++
	if r.Correct() {
		c.stats.Correct++
	}

	c.cursor++
	if c.cursor >= len(c.queue) {
		c.state = Complete
	} else {
		c.state = Presenting
	}

	return Outcome{
		CardID: card.CardID,
		Rating: r,
		Result: res,
		State:  c.state,
	}, failure, nil
}

// Wait blocks until every submitted write has finished.
func (c *Controller) Wait() {
	c.pending.Wait()
}

// Summary waits for outstanding writes and reports the session counters with
// freshly fetched deck stats. If the refresh fails, the stats from Load are
// returned along with the error.
func (c *Controller) Summary(ctx context.Context) (Summary, error) {
	c.mu.Lock()
	if !c.state.Done() {
		defer c.mu.Unlock()
		return Summary{}, c.invalid("summarize")
	}
	sum := Summary{Stats: c.stats, Deck: c.deck}
	c.summaries++
	c.mu.Unlock()

	c.Wait()

	c.mu.Lock()
	c.summaries--
	c.mu.Unlock()

	fresh, err := c.repo.FetchDeckStats(ctx, c.scope, c.now())
	if err != nil {
		return sum, fmt.Errorf("refresh deck stats: %w", err)
	}

	c.mu.Lock()
	c.deck = fresh
	c.mu.Unlock()

	sum.Deck = fresh
	return sum, nil
}

// SaveFailures lists the cards whose latest write failed, oldest first.
func (c *Controller) SaveFailures() []SaveFailure {
	c.failMu.Lock()
	defer c.failMu.Unlock()

	out := make([]SaveFailure, 0, len(c.failures))
	for _, f := range c.failures {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Record.ReviewedAt.Before(out[j].Record.ReviewedAt)
	})
	return out
}

// RetrySave resubmits the failed write of a card and waits for its outcome.
// It is rejected while a Summary is waiting for outstanding writes.
func (c *Controller) RetrySave(ctx context.Context, cardID string) error {
	c.failMu.Lock()
	f, ok := c.failures[cardID]
	c.failMu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSaveFailure, cardID)
	}

	c.mu.Lock()
	if c.summaries > 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot retry a save while summarizing", ErrInvalidAction)
	}
	c.pending.Add(1)
	c.mu.Unlock()

	errc := make(chan error, 1)
	write := func(err error) {
		defer c.pending.Done()
		if failure := c.settle(f.Record, err); failure != nil {
			c.reportSaveError(*failure)
		}
		errc <- err
	}
	if c.writer == nil {
		write(c.repo.PersistReview(ctx, f.Record))
	} else {
		c.writer.Submit(f.Record, write)
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// submit hands rec to the writer. A failure settled before submit returns,
// always the case without a writer, is returned for the caller to report
// once it has released c.mu. Callers hold c.mu.
func (c *Controller) submit(ctx context.Context, rec Record) *SaveFailure {
	c.pending.Add(1)
	if c.writer == nil {
		defer c.pending.Done()
		return c.settle(rec, c.repo.PersistReview(ctx, rec))
	}

	var (
		mu       sync.Mutex
		returned bool
		inline   *SaveFailure
	)
	c.writer.Submit(rec, func(err error) {
		defer c.pending.Done()
		failure := c.settle(rec, err)
		if failure == nil {
			return
		}
		mu.Lock()
		if !returned {
			inline = failure
			mu.Unlock()
			return
		}
		mu.Unlock()
		c.reportSaveError(*failure)
	})

	mu.Lock()
	defer mu.Unlock()
	returned = true
	return inline
}

// settle records the outcome of a write and returns the failure to report.
// A result never replaces the entry of a newer rating of the same card.
func (c *Controller) settle(rec Record, err error) *SaveFailure {
	c.failMu.Lock()
	defer c.failMu.Unlock()

	prev, failed := c.failures[rec.CardID]
	newer := failed && prev.Record.ReviewedAt.After(rec.ReviewedAt)
	if err == nil {
		if failed && !newer {
			delete(c.failures, rec.CardID)
		}
		return nil
	}
	f := SaveFailure{Record: rec, Err: err}
	if !newer {
		c.failures[rec.CardID] = f
	}
	return &f
}

func (c *Controller) reportSaveError(f SaveFailure) {
	if c.onSaveError != nil {
		c.onSaveError(f)
	}
}

func (c *Controller) invalid(action string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidAction, action, c.state)
}

// dueOnly drops cards the repository returned although they are not due.
func dueOnly(cards []DueCard, today time.Time) []DueCard {
	out := make([]DueCard, 0, len(cards))
	for _, card := range cards {
		if review.IsDue(card.NextReviewAt, today) {
			out = append(out, card)
		}
	}
	return out
}

// shuffleCards returns a new slice with cards in random order.
func shuffleCards(cards []DueCard, rng *rand.Rand) []DueCard {
	shuffled := make([]DueCard, len(cards))
	copy(shuffled, cards)

	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled
}
