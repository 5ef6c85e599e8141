package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gelos/backend/internal/domain/review"
	"github.com/gelos/backend/internal/domain/studysession"
	"github.com/gelos/backend/internal/service"
	"github.com/gelos/backend/internal/store"
)

// ── Request / Response types ────────────────────────────────────────────────

type StartSessionRequest struct {
	DeckID    string `json:"deck_id" example:"x9y8z7w6v5u4t3s2"`
	LearnerID string `json:"learner_id" example:"ana"`
	MaxCards  *int   `json:"max_cards,omitempty" example:"20"`
}

func (r *StartSessionRequest) Validate() error {
	if r.DeckID == "" {
		return errors.New("deck_id is required")
	}
	if r.LearnerID == "" {
		return errors.New("learner_id is required")
	}
	return nil
}

type StudyCard struct {
	ID       string `json:"id" example:"q1w2e3r4t5y6u7i8"`
	Front    string `json:"front" example:"¿Dónde está la biblioteca?"`
	Back     string `json:"back,omitempty" example:"Where is the library?"`
	Interval string `json:"interval" example:"New"`
}

type RatingOption struct {
	Rating     int    `json:"rating" example:"2"`
	Label      string `json:"label" example:"Good"`
	Color      string `json:"color" example:"#22c55e"`
	NextReview string `json:"next_review" example:"6 days"`
}

type SaveFailureResponse struct {
	CardID string `json:"card_id"`
	Rating int    `json:"rating"`
	Error  string `json:"error"`
}

type SessionResponse struct {
	ID           string                 `json:"id" example:"s1e2s3s4i5o6n7i8"`
	State        string                 `json:"state" example:"presenting"`
	Position     int                    `json:"position" example:"0"`
	Total        int                    `json:"total" example:"12"`
	Card         *StudyCard             `json:"card,omitempty"`
	Options      []RatingOption         `json:"options,omitempty"`
	Stats        studysession.Stats     `json:"stats"`
	Deck         studysession.DeckStats `json:"deck"`
	SaveFailures []SaveFailureResponse  `json:"save_failures"`
}

type LoadFailedResponse struct {
	Error     string `json:"error"`
	SessionID string `json:"session_id"`
	Retry     string `json:"retry" example:"/study-sessions/s1e2s3s4i5o6n7i8/load"`
}

type RateRequest struct {
	Rating *int `json:"rating" example:"2"`
}

func (r *RateRequest) Validate() error {
	if r.Rating == nil {
		return errors.New("rating is required")
	}
	return nil
}

type RateResponse struct {
	CardID       string          `json:"card_id"`
	Rating       int             `json:"rating" example:"2"`
	Label        string          `json:"label" example:"Good"`
	EaseFactor   float64         `json:"ease_factor" example:"2.5"`
	Interval     int             `json:"interval" example:"1"`
	Repetitions  int             `json:"repetitions" example:"1"`
	NextReviewAt time.Time       `json:"next_review_at"`
	Session      SessionResponse `json:"session"`
}

type CompleteSessionResponse struct {
	SessionID    string                 `json:"session_id"`
	Reviewed     int                    `json:"reviewed" example:"12"`
	Correct      int                    `json:"correct" example:"9"`
	Deck         studysession.DeckStats `json:"deck"`
	SaveFailures []SaveFailureResponse  `json:"save_failures"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// startSession loads a deck's due cards for a learner and presents the first.
// @Summary      Start a study session
// @Description  Loads the due cards in random order. When loading fails the session is kept and can be retried.
// @Tags         Study
// @Accept       json
// @Produce      json
// @Param        body  body      StartSessionRequest  true  "Session to start"
// @Success      201   {object}  SessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      503   {object}  LoadFailedResponse
// @Router       /study-sessions [post]
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req StartSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.store.GetDeck(ctx, req.DeckID); h.handleStoreError(w, err, "deck") {
		return
	}

	cfg := studysession.DefaultConfig()
	if req.MaxCards != nil && *req.MaxCards > 0 {
		cfg.MaxCards = req.MaxCards
	}

	scope := studysession.Scope{DeckID: req.DeckID, LearnerID: req.LearnerID}
	sessionID, ctrl, err := h.study.Start(ctx, scope, cfg)
	if err != nil {
		h.respondLoadFailed(w, sessionID, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.sessionView(sessionID, ctrl))
}

// loadSession retries loading a session whose first load failed.
// @Summary      Retry loading a study session
// @Tags         Study
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  SessionResponse
// @Failure      404        {object}  map[string]string
// @Failure      409        {object}  map[string]string
// @Failure      503        {object}  LoadFailedResponse
// @Router       /study-sessions/{sessionID}/load [post]
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	ctrl, err := h.study.Load(r.Context(), sessionID)
	if err != nil {
		h.respondLoadFailed(w, sessionID, err)
		return
	}
	respondJSON(w, http.StatusOK, h.sessionView(sessionID, ctrl))
}

// respondLoadFailed answers 503 only for failures worth retrying. A deck
// deleted since the session started stays gone.
func (h *Handler) respondLoadFailed(w http.ResponseWriter, sessionID string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		h.handleStoreError(w, err, "deck")
		return
	}
	if !errors.Is(err, studysession.ErrLoadFailed) {
		h.handleStoreError(w, err, "study session")
		return
	}
	h.logger.Warn("study session load failed", "session_id", sessionID, "error", err)
	respondJSON(w, http.StatusServiceUnavailable, LoadFailedResponse{
		Error:     "could not load cards, try again",
		SessionID: sessionID,
		Retry:     "/study-sessions/" + sessionID + "/load",
	})
}

// getSession returns the current state of a session.
// @Summary      Get a study session
// @Tags         Study
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  SessionResponse
// @Failure      404        {object}  map[string]string
// @Router       /study-sessions/{sessionID} [get]
func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	ctrl, err := h.study.Get(sessionID)
	if h.handleStoreError(w, err, "study session") {
		return
	}
	respondJSON(w, http.StatusOK, h.sessionView(sessionID, ctrl))
}

// revealCard shows the answer of the current card and the rating choices.
// @Summary      Reveal the current card
// @Tags         Study
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  SessionResponse
// @Failure      404        {object}  map[string]string
// @Failure      409        {object}  map[string]string
// @Router       /study-sessions/{sessionID}/reveal [post]
func (h *Handler) revealCard(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	if _, err := h.study.Reveal(sessionID); h.handleStoreError(w, err, "study session") {
		return
	}
	ctrl, err := h.study.Get(sessionID)
	if h.handleStoreError(w, err, "study session") {
		return
	}
	respondJSON(w, http.StatusOK, h.sessionView(sessionID, ctrl))
}

// rateCard rates the revealed card and moves to the next one.
// @Summary      Rate the current card
// @Description  Ratings are 0 (forgot) to 3 (easy); other values are clamped. A failed save does not fail the request: it is listed in save_failures.
// @Tags         Study
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string       true  "Session ID"
// @Param        body       body      RateRequest  true  "Rating"
// @Success      200        {object}  RateResponse
// @Failure      400        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Failure      409        {object}  map[string]string
// @Router       /study-sessions/{sessionID}/ratings [post]
func (h *Handler) rateCard(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	var req RateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	out, err := h.study.Rate(r.Context(), sessionID, *req.Rating)
	if h.handleStoreError(w, err, "study session") {
		return
	}
	ctrl, err := h.study.Get(sessionID)
	if h.handleStoreError(w, err, "study session") {
		return
	}

	respondJSON(w, http.StatusOK, RateResponse{
		CardID:       out.CardID,
		Rating:       int(out.Rating),
		Label:        out.Rating.String(),
		EaseFactor:   out.Result.EaseFactor,
		Interval:     out.Result.Interval,
		Repetitions:  out.Result.Repetitions,
		NextReviewAt: out.Result.NextReviewAt,
		Session:      h.sessionView(sessionID, ctrl),
	})
}

// retrySave resubmits a rating whose save failed.
// @Summary      Retry a failed save
// @Tags         Study
// @Param        sessionID  path  string  true  "Session ID"
// @Param        cardID     path  string  true  "Card ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /study-sessions/{sessionID}/retry/{cardID} [post]
func (h *Handler) retrySave(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	cardID := r.PathValue("cardID")

	err := h.study.RetrySave(r.Context(), sessionID, cardID)
	if err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if errors.Is(err, studysession.ErrNoSaveFailure) || errors.Is(err, service.ErrSessionNotFound) ||
		errors.Is(err, studysession.ErrInvalidAction) {
		h.handleStoreError(w, err, "study session")
		return
	}
	h.logger.Warn("retried save failed", "session_id", sessionID, "card_id", cardID, "error", err)
	respondError(w, http.StatusServiceUnavailable, "save failed again, try later")
}

// completeSession waits for the session's saves and reports its summary.
// @Summary      Complete a study session
// @Tags         Study
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  CompleteSessionResponse
// @Failure      404        {object}  map[string]string
// @Failure      409        {object}  map[string]string
// @Router       /study-sessions/{sessionID}/complete [post]
func (h *Handler) completeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	sum, failures, err := h.study.Finish(r.Context(), sessionID)
	if h.handleStoreError(w, err, "study session") {
		return
	}

	respondJSON(w, http.StatusOK, CompleteSessionResponse{
		SessionID:    sessionID,
		Reviewed:     sum.Reviewed,
		Correct:      sum.Correct,
		Deck:         sum.Deck,
		SaveFailures: toSaveFailures(failures),
	})
}

// ── View helpers ────────────────────────────────────────────────────────────

func (h *Handler) sessionView(sessionID string, ctrl *studysession.Controller) SessionResponse {
	snap := ctrl.Snapshot()
	resp := SessionResponse{
		ID:           sessionID,
		State:        snap.State.String(),
		Position:     snap.Position,
		Total:        snap.Total,
		Stats:        snap.Stats,
		Deck:         snap.Deck,
		SaveFailures: toSaveFailures(ctrl.SaveFailures()),
	}
	if snap.Card == nil {
		return resp
	}

	progress := review.InitialProgress()
	if snap.Card.Progress != nil {
		progress = *snap.Card.Progress
	}
	resp.Card = &StudyCard{
		ID:       snap.Card.CardID,
		Front:    snap.Card.Front,
		Interval: review.IntervalDescription(progress.Interval),
	}

	if snap.State == studysession.Revealed {
		resp.Card.Back = snap.Card.Back
		now := h.now()
		for r := review.Forgot; r <= review.Easy; r++ {
			next := review.CalculateNextReview(progress, int(r), now)
			resp.Options = append(resp.Options, RatingOption{
				Rating:     int(r),
				Label:      r.String(),
				Color:      r.Color(),
				NextReview: review.IntervalDescription(next.Interval),
			})
		}
	}
	return resp
}

func toSaveFailures(failures []studysession.SaveFailure) []SaveFailureResponse {
	out := make([]SaveFailureResponse, len(failures))
	for i, f := range failures {
		out[i] = SaveFailureResponse{
			CardID: f.Record.CardID,
			Rating: int(f.Record.Rating),
			Error:  f.Err.Error(),
		}
	}
	return out
}
