package studysession_test

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gelos/backend/internal/domain/review"
	"github.com/gelos/backend/internal/domain/studysession"
)

var now = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

var errBoom = errors.New("boom")

// fakeRepo is an in-memory Repository.
type fakeRepo struct {
	mu        sync.Mutex
	cards     []studysession.DueCard
	stats     studysession.DeckStats
	dueErr    error
	statsErr  error
	failCards map[string]bool
	persisted []studysession.Record
	dueCalls  int
}

func (f *fakeRepo) FetchDueCards(ctx context.Context, scope studysession.Scope, today time.Time) ([]studysession.DueCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dueCalls++
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	out := make([]studysession.DueCard, len(f.cards))
	copy(out, f.cards)
	return out, nil
}

func (f *fakeRepo) FetchDeckStats(ctx context.Context, scope studysession.Scope, today time.Time) (studysession.DeckStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statsErr != nil {
		return studysession.DeckStats{}, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeRepo) PersistReview(ctx context.Context, rec studysession.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCards[rec.CardID] {
		return errBoom
	}
	f.persisted = append(f.persisted, rec)
	return nil
}

func (f *fakeRepo) records() []studysession.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]studysession.Record, len(f.persisted))
	copy(out, f.persisted)
	return out
}

func newCards(ids ...string) []studysession.DueCard {
	cards := make([]studysession.DueCard, len(ids))
	for i, cid := range ids {
		cards[i] = studysession.DueCard{CardID: cid, Front: "Q " + cid, Back: "A " + cid}
	}
	return cards
}

func newController(repo *fakeRepo, opts studysession.Options) *studysession.Controller {
	if opts.Now == nil {
		opts.Now = func() time.Time { return now }
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	return studysession.New(studysession.Scope{DeckID: "deck", LearnerID: "ana"}, repo, opts)
}

func mustLoad(t *testing.T, c *studysession.Controller) {
	t.Helper()
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func revealAndRate(t *testing.T, c *studysession.Controller, rating int) studysession.Outcome {
	t.Helper()
	if err := c.Reveal(); err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	out, err := c.Rate(context.Background(), rating)
	if err != nil {
		t.Fatalf("Rate(%d): %v", rating, err)
	}
	return out
}

func TestSessionCompletion(t *testing.T) {
	repo := &fakeRepo{
		cards: newCards("a", "b", "c"),
		stats: studysession.DeckStats{TotalCards: 10, Accuracy: 80},
	}
	c := newController(repo, studysession.Options{})
	mustLoad(t, c)

	if got := c.State(); got != studysession.Presenting {
		t.Fatalf("state = %v, want presenting", got)
	}

	for i, rating := range []int{3, 0, 2} {
		out := revealAndRate(t, c, rating)
		wantState := studysession.Presenting
		if i == 2 {
			wantState = studysession.Complete
		}
		if out.State != wantState {
			t.Errorf("after rating %d: state = %v, want %v", i, out.State, wantState)
		}
	}

	stats := c.Stats()
	if stats.Reviewed != 3 || stats.Correct != 2 {
		t.Errorf("stats = %+v, want reviewed=3 correct=2", stats)
	}

	sum, err := c.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Reviewed != 3 || sum.Correct != 2 || sum.Deck.TotalCards != 10 {
		t.Errorf("summary = %+v", sum)
	}

	if got := len(repo.records()); got != 3 {
		t.Errorf("persisted %d records, want 3", got)
	}
}

func TestEmptyDeck(t *testing.T) {
	repo := &fakeRepo{}
	c := newController(repo, studysession.Options{})
	mustLoad(t, c)

	if got := c.State(); got != studysession.Empty {
		t.Fatalf("state = %v, want empty", got)
	}
	if snap := c.Snapshot(); snap.Card != nil {
		t.Errorf("expected no card, got %+v", snap.Card)
	}
	if err := c.Reveal(); !errors.Is(err, studysession.ErrInvalidAction) {
		t.Errorf("Reveal on empty session: got %v, want ErrInvalidAction", err)
	}

	sum, err := c.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Reviewed != 0 || sum.Correct != 0 {
		t.Errorf("summary = %+v, want zero", sum)
	}
}

func TestLoadFailureAllowsRetry(t *testing.T) {
	repo := &fakeRepo{cards: newCards("a"), dueErr: errBoom}
	c := newController(repo, studysession.Options{})

	err := c.Load(context.Background())
	if !errors.Is(err, studysession.ErrLoadFailed) || !errors.Is(err, errBoom) {
		t.Fatalf("Load error = %v, want ErrLoadFailed wrapping errBoom", err)
	}
	if got := c.State(); got != studysession.Loading {
		t.Fatalf("state after failed load = %v, want loading", got)
	}

	repo.mu.Lock()
	repo.dueErr = nil
	repo.mu.Unlock()

	mustLoad(t, c)
	if got := c.State(); got != studysession.Presenting {
		t.Errorf("state after retry = %v, want presenting", got)
	}

	if err := c.Load(context.Background()); !errors.Is(err, studysession.ErrInvalidAction) {
		t.Errorf("second Load: got %v, want ErrInvalidAction", err)
	}
}

func TestStatsFailureFailsLoad(t *testing.T) {
	repo := &fakeRepo{cards: newCards("a"), statsErr: errBoom}
	c := newController(repo, studysession.Options{})

	if err := c.Load(context.Background()); !errors.Is(err, studysession.ErrLoadFailed) {
		t.Fatalf("Load error = %v, want ErrLoadFailed", err)
	}
	if got := c.State(); got != studysession.Loading {
		t.Errorf("state = %v, want loading", got)
	}
}

func TestActionsRejectedOutOfOrder(t *testing.T) {
	repo := &fakeRepo{cards: newCards("a", "b")}
	c := newController(repo, studysession.Options{})

	if err := c.Reveal(); !errors.Is(err, studysession.ErrInvalidAction) {
		t.Errorf("Reveal before Load: got %v", err)
	}
	mustLoad(t, c)

	if _, err := c.Rate(context.Background(), 2); !errors.Is(err, studysession.ErrInvalidAction) {
		t.Errorf("Rate while presenting: got %v", err)
	}
	if err := c.Reveal(); err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if err := c.Reveal(); !errors.Is(err, studysession.ErrInvalidAction) {
		t.Errorf("Reveal twice: got %v", err)
	}
	if _, err := c.Summary(context.Background()); !errors.Is(err, studysession.ErrInvalidAction) {
		t.Errorf("Summary mid-session: got %v", err)
	}
	if got := c.Stats().Reviewed; got != 0 {
		t.Errorf("reviewed = %d, want 0", got)
	}
}

func TestQueueIsPermutation(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	repo := &fakeRepo{cards: newCards(ids...)}
	c := newController(repo, studysession.Options{})
	mustLoad(t, c)

	var seen []string
	for c.State().Reviewing() {
		seen = append(seen, c.Snapshot().Card.CardID)
		revealAndRate(t, c, 2)
	}

	sort.Strings(seen)
	if len(seen) != len(ids) {
		t.Fatalf("saw %d cards, want %d", len(seen), len(ids))
	}
	for i := range ids {
		if seen[i] != ids[i] {
			t.Fatalf("cards seen = %v, want each of %v once", seen, ids)
		}
	}
}

func TestQueueIsShuffled(t *testing.T) {
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}

	foundDifferentOrder := false
	for seed := int64(1); seed <= 10 && !foundDifferentOrder; seed++ {
		repo := &fakeRepo{cards: newCards(ids...)}
		c := newController(repo, studysession.Options{Rand: rand.New(rand.NewSource(seed))})
		mustLoad(t, c)
		if c.Snapshot().Card.CardID != "a" {
			foundDifferentOrder = true
		}
	}

	if !foundDifferentOrder {
		t.Error("expected due cards to be shuffled")
	}
}

func TestMaxCards(t *testing.T) {
	repo := &fakeRepo{cards: newCards("a", "b", "c", "d", "e")}
	maxCards := 2
	c := newController(repo, studysession.Options{Config: studysession.Config{MaxCards: &maxCards}})
	mustLoad(t, c)

	if got := c.Snapshot().Total; got != 2 {
		t.Errorf("total = %d, want 2", got)
	}
}

func TestNotDueCardsAreDropped(t *testing.T) {
	tomorrow := review.StartOfDay(now).AddDate(0, 0, 1)
	today := review.StartOfDay(now)
	repo := &fakeRepo{cards: []studysession.DueCard{
		{CardID: "later", NextReviewAt: &tomorrow},
		{CardID: "due", NextReviewAt: &today},
	}}
	c := newController(repo, studysession.Options{})
	mustLoad(t, c)

	snap := c.Snapshot()
	if snap.Total != 1 || snap.Card.CardID != "due" {
		t.Errorf("queue = %d cards starting at %+v, want only the due card", snap.Total, snap.Card)
	}
}

func TestRateUsesStoredProgress(t *testing.T) {
	cards := newCards("a")
	cards[0].Progress = &review.Progress{EaseFactor: 2.5, Interval: 6, Repetitions: 2}
	repo := &fakeRepo{cards: cards}
	c := newController(repo, studysession.Options{})
	mustLoad(t, c)

	out := revealAndRate(t, c, 3)

	if out.Result.Interval != 15 || out.Result.Repetitions != 3 {
		t.Errorf("result = %+v, want interval 15 repetitions 3", out.Result)
	}
	want := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	if !out.Result.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", out.Result.NextReviewAt, want)
	}

	recs := repo.records()
	if len(recs) != 1 || recs[0].Result != out.Result || recs[0].LearnerID != "ana" || recs[0].ReviewID == "" {
		t.Errorf("persisted %+v", recs)
	}
}

func TestRateClampsRating(t *testing.T) {
	repo := &fakeRepo{cards: newCards("a", "b")}
	c := newController(repo, studysession.Options{})
	mustLoad(t, c)

	if out := revealAndRate(t, c, 99); out.Rating != review.Easy {
		t.Errorf("rating = %v, want Easy", out.Rating)
	}
	if out := revealAndRate(t, c, -4); out.Rating != review.Forgot {
		t.Errorf("rating = %v, want Forgot", out.Rating)
	}
	if got := c.Stats(); got.Reviewed != 2 || got.Correct != 1 {
		t.Errorf("stats = %+v, want reviewed=2 correct=1", got)
	}
}

func TestPersistFailureIsNonFatal(t *testing.T) {
	repo := &fakeRepo{cards: newCards("a", "b"), failCards: map[string]bool{"a": true, "b": true}}

	var mu sync.Mutex
	var reported []string
	c := newController(repo, studysession.Options{
		OnSaveError: func(f studysession.SaveFailure) {
			mu.Lock()
			reported = append(reported, f.Record.CardID)
			mu.Unlock()
		},
	})
	mustLoad(t, c)

	revealAndRate(t, c, 2)
	revealAndRate(t, c, 1)

	if got := c.State(); got != studysession.Complete {
		t.Fatalf("state = %v, want complete", got)
	}
	if got := c.Stats(); got.Reviewed != 2 || got.Correct != 1 {
		t.Errorf("stats = %+v, want reviewed=2 correct=1", got)
	}

	failures := c.SaveFailures()
	if len(failures) != 2 {
		t.Fatalf("failures = %d, want 2", len(failures))
	}
	if !errors.Is(failures[0].Err, errBoom) {
		t.Errorf("failure error = %v", failures[0].Err)
	}
	mu.Lock()
	if len(reported) != 2 {
		t.Errorf("OnSaveError called %d times, want 2", len(reported))
	}
	mu.Unlock()

	repo.mu.Lock()
	repo.failCards = nil
	repo.mu.Unlock()

	if err := c.RetrySave(context.Background(), "a"); err != nil {
		t.Fatalf("RetrySave: %v", err)
	}
	if got := len(c.SaveFailures()); got != 1 {
		t.Errorf("failures after retry = %d, want 1", got)
	}
	if err := c.RetrySave(context.Background(), "a"); !errors.Is(err, studysession.ErrNoSaveFailure) {
		t.Errorf("second RetrySave: got %v, want ErrNoSaveFailure", err)
	}
}

// rejectingWriter fails every write before Submit returns.
type rejectingWriter struct{}

func (rejectingWriter) Submit(rec studysession.Record, done func(error)) {
	done(errBoom)
}

func TestSaveErrorHookCanReadController(t *testing.T) {
	tests := []struct {
		name   string
		writer studysession.Writer
	}{
		{"synchronous", nil},
		{"writer fails inline", rejectingWriter{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{cards: newCards("a"), failCards: map[string]bool{"a": true}}

			var c *studysession.Controller
			seen := make(chan studysession.State, 1)
			c = newController(repo, studysession.Options{
				Writer: tt.writer,
				OnSaveError: func(f studysession.SaveFailure) {
					seen <- c.State()
				},
			})
			mustLoad(t, c)
			if err := c.Reveal(); err != nil {
				t.Fatal(err)
			}

			rated := make(chan error, 1)
			go func() {
				_, err := c.Rate(context.Background(), 2)
				rated <- err
			}()

			select {
			case err := <-rated:
				if err != nil {
					t.Fatalf("Rate: %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Rate did not return")
			}
			if got := <-seen; got != studysession.Complete {
				t.Errorf("hook saw state %v, want complete", got)
			}
			if len(c.SaveFailures()) != 1 {
				t.Errorf("failures = %d, want 1", len(c.SaveFailures()))
			}
		})
	}
}

// asyncWriter applies writes on a goroutine per card key, in order.
type asyncWriter struct {
	repo  *fakeRepo
	mu    sync.Mutex
	lanes map[string]chan func()
}

func (w *asyncWriter) Submit(rec studysession.Record, done func(error)) {
	w.mu.Lock()
	lane, ok := w.lanes[rec.CardID]
	if !ok {
		lane = make(chan func(), 16)
		w.lanes[rec.CardID] = lane
		go func() {
			for fn := range lane {
				fn()
			}
		}()
	}
	w.mu.Unlock()

	lane <- func() {
		time.Sleep(5 * time.Millisecond)
		done(w.repo.PersistReview(context.Background(), rec))
	}
}

func TestSummaryWaitsForAsyncWrites(t *testing.T) {
	repo := &fakeRepo{cards: newCards("a", "b", "c")}
	w := &asyncWriter{repo: repo, lanes: make(map[string]chan func())}
	c := newController(repo, studysession.Options{Writer: w})
	mustLoad(t, c)

	for c.State().Reviewing() {
		revealAndRate(t, c, 3)
	}

	if _, err := c.Summary(context.Background()); err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got := len(repo.records()); got != 3 {
		t.Errorf("persisted %d records after Summary, want 3", got)
	}
}

func TestSummaryFallsBackToLoadedStats(t *testing.T) {
	repo := &fakeRepo{stats: studysession.DeckStats{TotalCards: 4}}
	c := newController(repo, studysession.Options{})
	mustLoad(t, c)

	repo.mu.Lock()
	repo.statsErr = errBoom
	repo.mu.Unlock()

	sum, err := c.Summary(context.Background())
	if !errors.Is(err, errBoom) {
		t.Errorf("Summary error = %v, want errBoom", err)
	}
	if sum.Deck.TotalCards != 4 {
		t.Errorf("deck stats = %+v, want load-time stats", sum.Deck)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    studysession.State
		want string
	}{
		{studysession.Loading, "loading"},
		{studysession.Empty, "empty"},
		{studysession.Presenting, "presenting"},
		{studysession.Revealed, "revealed"},
		{studysession.Complete, "complete"},
		{studysession.State(9), "State(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
