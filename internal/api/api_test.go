package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gelos/backend/internal/domain/studysession"
	"github.com/gelos/backend/internal/service"
	"github.com/gelos/backend/internal/store"
)

// flakyRepo fails due-card loads while down is set.
type flakyRepo struct {
	studysession.Repository
	mu   sync.Mutex
	down bool
}

func (f *flakyRepo) setDown(v bool) {
	f.mu.Lock()
	f.down = v
	f.mu.Unlock()
}

func (f *flakyRepo) FetchDueCards(ctx context.Context, scope studysession.Scope, today time.Time) ([]studysession.DueCard, error) {
	f.mu.Lock()
	down := f.down
	f.mu.Unlock()
	if down {
		return nil, errors.New("database is locked")
	}
	return f.Repository.FetchDueCards(ctx, scope, today)
}

type testServer struct {
	*httptest.Server
	repo *flakyRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := &flakyRepo{Repository: db}
	study := service.NewStudyService(repo, nil, logger)

	mux := http.NewServeMux()
	RegisterRoutes(mux, NewHandler(db, nil, study, logger))

	srv := httptest.NewServer(Logging(logger)(CORS(mux)))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (s *testServer) createDeck(t *testing.T, fronts ...string) GetDeckResponse {
	t.Helper()
	req := CreateDeckRequest{Name: "Capitals"}
	for _, f := range fronts {
		req.Cards = append(req.Cards, CardInput{Front: f, Back: f + "!"})
	}
	var d GetDeckResponse
	if code := s.do(t, http.MethodPost, "/decks", req, &d); code != http.StatusCreated {
		t.Fatalf("create deck: status %d", code)
	}
	return d
}

func TestDecks_CRUD(t *testing.T) {
	s := newTestServer(t)
	d := s.createDeck(t, "France", "Japan")

	var got GetDeckResponse
	if code := s.do(t, http.MethodGet, "/decks/"+d.ID, nil, &got); code != http.StatusOK {
		t.Fatalf("get deck: status %d", code)
	}
	if got.Name != "Capitals" || len(got.Cards) != 2 {
		t.Errorf("deck = %+v", got)
	}

	var card CardResponse
	if code := s.do(t, http.MethodPost, "/decks/"+d.ID+"/cards", CardInput{Front: "Peru", Back: "Lima"}, &card); code != http.StatusCreated {
		t.Fatalf("add card: status %d", code)
	}
	if card.Position != 2 {
		t.Errorf("position = %d, want 2", card.Position)
	}

	if code := s.do(t, http.MethodDelete, "/decks/"+d.ID+"/cards/"+card.ID, nil, nil); code != http.StatusNoContent {
		t.Errorf("delete card: status %d", code)
	}

	var list []DeckResponse
	s.do(t, http.MethodGet, "/decks", nil, &list)
	if len(list) != 1 {
		t.Errorf("list = %+v", list)
	}

	if code := s.do(t, http.MethodDelete, "/decks/"+d.ID, nil, nil); code != http.StatusNoContent {
		t.Errorf("delete deck: status %d", code)
	}
	if code := s.do(t, http.MethodGet, "/decks/"+d.ID, nil, nil); code != http.StatusNotFound {
		t.Errorf("deleted deck: status %d, want 404", code)
	}
}

// recordingStats reads stats from the store and records invalidated decks.
type recordingStats struct {
	StatsReader
	mu          sync.Mutex
	invalidated []string
}

func (r *recordingStats) InvalidateDeck(ctx context.Context, deckID string) error {
	r.mu.Lock()
	r.invalidated = append(r.invalidated, deckID)
	r.mu.Unlock()
	return nil
}

func TestDecks_CardChangesInvalidateStats(t *testing.T) {
	db, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stats := &recordingStats{StatsReader: db}
	mux := http.NewServeMux()
	RegisterRoutes(mux, NewHandler(db, stats, service.NewStudyService(db, nil, logger), logger))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	s := &testServer{Server: srv}

	d := s.createDeck(t, "France")
	var card CardResponse
	if code := s.do(t, http.MethodPost, "/decks/"+d.ID+"/cards", CardInput{Front: "Peru", Back: "Lima"}, &card); code != http.StatusCreated {
		t.Fatalf("add card: status %d", code)
	}
	if code := s.do(t, http.MethodDelete, "/decks/"+d.ID+"/cards/"+card.ID, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete card: status %d", code)
	}
	if code := s.do(t, http.MethodDelete, "/decks/"+d.ID, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete deck: status %d", code)
	}
	// failed changes leave the cache alone
	s.do(t, http.MethodDelete, "/decks/"+d.ID, nil, nil)

	stats.mu.Lock()
	defer stats.mu.Unlock()
	if len(stats.invalidated) != 3 {
		t.Fatalf("invalidated = %v, want three entries", stats.invalidated)
	}
	for _, id := range stats.invalidated {
		if id != d.ID {
			t.Errorf("invalidated deck %q, want %q", id, d.ID)
		}
	}
}

func TestDecks_Validation(t *testing.T) {
	s := newTestServer(t)

	if code := s.do(t, http.MethodPost, "/decks", CreateDeckRequest{}, nil); code != http.StatusBadRequest {
		t.Errorf("empty name: status %d", code)
	}
	if code := s.do(t, http.MethodPost, "/decks/nope/cards", CardInput{Front: "x"}, nil); code != http.StatusNotFound {
		t.Errorf("card on missing deck: status %d", code)
	}

	d := s.createDeck(t, "France")
	if code := s.do(t, http.MethodGet, "/decks/"+d.ID+"/stats", nil, nil); code != http.StatusBadRequest {
		t.Errorf("stats without learner: status %d", code)
	}
}

func TestStudy_FullSession(t *testing.T) {
	s := newTestServer(t)
	d := s.createDeck(t, "France", "Japan", "Peru")

	var sess SessionResponse
	code := s.do(t, http.MethodPost, "/study-sessions", StartSessionRequest{DeckID: d.ID, LearnerID: "ana"}, &sess)
	if code != http.StatusCreated {
		t.Fatalf("start: status %d", code)
	}
	if sess.State != "presenting" || sess.Total != 3 || sess.Card == nil {
		t.Fatalf("session = %+v", sess)
	}
	if sess.Card.Back != "" {
		t.Error("back must stay hidden until reveal")
	}

	for i, rating := range []int{3, 0, 2} {
		var revealed SessionResponse
		if code := s.do(t, http.MethodPost, "/study-sessions/"+sess.ID+"/reveal", nil, &revealed); code != http.StatusOK {
			t.Fatalf("reveal %d: status %d", i, code)
		}
		if revealed.Card.Back == "" || len(revealed.Options) != 4 {
			t.Errorf("revealed = %+v", revealed)
		}

		var rated RateResponse
		if code := s.do(t, http.MethodPost, "/study-sessions/"+sess.ID+"/ratings", RateRequest{Rating: &rating}, &rated); code != http.StatusOK {
			t.Fatalf("rate %d: status %d", i, code)
		}
		if rated.Rating != rating {
			t.Errorf("rating = %d, want %d", rated.Rating, rating)
		}
	}

	var done CompleteSessionResponse
	if code := s.do(t, http.MethodPost, "/study-sessions/"+sess.ID+"/complete", nil, &done); code != http.StatusOK {
		t.Fatalf("complete: status %d", code)
	}
	if done.Reviewed != 3 || done.Correct != 2 {
		t.Errorf("summary = %+v, want reviewed=3 correct=2", done)
	}
	if done.Deck.ReviewedToday != 3 || done.Deck.NewCards != 0 {
		t.Errorf("deck stats = %+v", done.Deck)
	}

	var stats DeckStatsResponse
	s.do(t, http.MethodGet, "/decks/"+d.ID+"/stats?learner_id=ana", nil, &stats)
	if stats.TotalCards != 3 || stats.Accuracy != 67 {
		t.Errorf("stats = %+v", stats)
	}

	// only the lapsed card would be due tomorrow; nothing is due today
	var again SessionResponse
	s.do(t, http.MethodPost, "/study-sessions", StartSessionRequest{DeckID: d.ID, LearnerID: "ana"}, &again)
	if again.State != "empty" {
		t.Errorf("second session state = %q, want empty", again.State)
	}
}

func TestStudy_OutOfOrderActions(t *testing.T) {
	s := newTestServer(t)
	d := s.createDeck(t, "France")

	var sess SessionResponse
	s.do(t, http.MethodPost, "/study-sessions", StartSessionRequest{DeckID: d.ID, LearnerID: "ana"}, &sess)

	rating := 2
	if code := s.do(t, http.MethodPost, "/study-sessions/"+sess.ID+"/ratings", RateRequest{Rating: &rating}, nil); code != http.StatusConflict {
		t.Errorf("rate before reveal: status %d, want 409", code)
	}
	if code := s.do(t, http.MethodPost, "/study-sessions/"+sess.ID+"/complete", nil, nil); code != http.StatusConflict {
		t.Errorf("complete mid-session: status %d, want 409", code)
	}
	if code := s.do(t, http.MethodPost, "/study-sessions/"+sess.ID+"/ratings", RateRequest{}, nil); code != http.StatusBadRequest {
		t.Errorf("missing rating: status %d, want 400", code)
	}
	if code := s.do(t, http.MethodGet, "/study-sessions/unknown", nil, nil); code != http.StatusNotFound {
		t.Errorf("unknown session: status %d, want 404", code)
	}
	if code := s.do(t, http.MethodPost, "/study-sessions/"+sess.ID+"/retry/"+d.Cards[0].ID, nil, nil); code != http.StatusNotFound {
		t.Errorf("retry without failure: status %d, want 404", code)
	}
}

func TestStudy_StartUnknownDeck(t *testing.T) {
	s := newTestServer(t)
	code := s.do(t, http.MethodPost, "/study-sessions", StartSessionRequest{DeckID: "missing", LearnerID: "ana"}, nil)
	if code != http.StatusNotFound {
		t.Errorf("status %d, want 404", code)
	}
}

func TestStudy_LoadFailureRetry(t *testing.T) {
	s := newTestServer(t)
	d := s.createDeck(t, "France")
	s.repo.setDown(true)

	var failed LoadFailedResponse
	code := s.do(t, http.MethodPost, "/study-sessions", StartSessionRequest{DeckID: d.ID, LearnerID: "ana"}, &failed)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", code)
	}
	if failed.SessionID == "" || !strings.HasSuffix(failed.Retry, "/load") {
		t.Fatalf("response = %+v", failed)
	}

	s.repo.setDown(false)
	var sess SessionResponse
	if code := s.do(t, http.MethodPost, failed.Retry, nil, &sess); code != http.StatusOK {
		t.Fatalf("retry: status %d", code)
	}
	if sess.State != "presenting" || sess.Total != 1 {
		t.Errorf("session = %+v", sess)
	}
}

func TestStudy_LoadRetryAfterDeckDeleted(t *testing.T) {
	s := newTestServer(t)
	d := s.createDeck(t, "France")
	s.repo.setDown(true)

	var failed LoadFailedResponse
	if code := s.do(t, http.MethodPost, "/study-sessions", StartSessionRequest{DeckID: d.ID, LearnerID: "ana"}, &failed); code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", code)
	}

	if code := s.do(t, http.MethodDelete, "/decks/"+d.ID, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete deck: status %d", code)
	}
	s.repo.setDown(false)

	if code := s.do(t, http.MethodPost, failed.Retry, nil, nil); code != http.StatusNotFound {
		t.Errorf("retry after delete: status %d, want 404", code)
	}
}

func TestDecks_ImportExport(t *testing.T) {
	s := newTestServer(t)

	doc := "name: Verbs\ncards:\n  - front: ser\n    back: to be\n  - front: ''\n    back: nothing\n"
	resp, err := http.Post(s.URL+"/decks/import", "application/yaml", strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("import: status %d", resp.StatusCode)
	}
	var res ImportResult
	json.NewDecoder(resp.Body).Decode(&res)
	if res.CardsCreated != 1 || len(res.Skipped) != 1 {
		t.Errorf("import result = %+v", res)
	}

	exp, err := http.Get(s.URL + "/decks/" + res.DeckID + "/export")
	if err != nil {
		t.Fatal(err)
	}
	defer exp.Body.Close()
	body, _ := io.ReadAll(exp.Body)
	if !strings.Contains(string(body), "name: Verbs") || !strings.Contains(string(body), "front: ser") {
		t.Errorf("export body:\n%s", body)
	}

	bad, err := http.Post(s.URL+"/decks/import", "text/csv", strings.NewReader("a,b"))
	if err != nil {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("csv import: status %d, want 415", bad.StatusCode)
	}
}

func TestCORS_Preflight(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, s.URL+"/decks", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight: status %d, headers %v", resp.StatusCode, resp.Header)
	}
}
