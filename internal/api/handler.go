// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gelos/backend/internal/domain/studysession"
	"github.com/gelos/backend/internal/service"
	"github.com/gelos/backend/internal/store"
)

// StatsReader is the read path for deck stats; the cached repository when
// Redis is configured, the store otherwise.
type StatsReader interface {
	FetchDeckStats(ctx context.Context, scope studysession.Scope, today time.Time) (studysession.DeckStats, error)
}

// statsInvalidator is implemented by stats readers that cache.
type statsInvalidator interface {
	InvalidateDeck(ctx context.Context, deckID string) error
}

// Handler holds all dependencies needed by HTTP handlers.
// Instead of relying on package-level globals, every handler method
// receives its dependencies through this struct.
type Handler struct {
	store  store.Store
	stats  StatsReader
	study  *service.StudyService
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates a Handler with the given dependencies. stats may be
// nil, in which case deck stats are read from the store.
func NewHandler(s store.Store, stats StatsReader, study *service.StudyService, logger *slog.Logger) *Handler {
	if stats == nil {
		stats = s
	}
	return &Handler{
		store:  s,
		stats:  stats,
		study:  study,
		logger: logger,
		now:    time.Now,
	}
}

// invalidateStats drops cached stats after a deck's cards changed. A failure
// leaves stale stats until the cache entry expires.
func (h *Handler) invalidateStats(ctx context.Context, deckID string) {
	inv, ok := h.stats.(statsInvalidator)
	if !ok {
		return
	}
	if err := inv.InvalidateDeck(ctx, deckID); err != nil {
		h.logger.Warn("stats cache invalidation failed", "deck_id", deckID, "error", err)
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads the request body into v. On failure it writes a 400 and
// returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

type validator interface {
	Validate() error
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, v validator) bool {
	if !decodeJSON(w, r, v) {
		return false
	}
	if err := v.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// handleStoreError checks for common store and session errors and writes the
// appropriate HTTP response. Returns true if an error was handled (caller
// should return).
func (h *Handler) handleStoreError(w http.ResponseWriter, err error, entity string) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, service.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, entity+" not found")
	case errors.Is(err, studysession.ErrNoSaveFailure):
		respondError(w, http.StatusNotFound, "no failed save for this card")
	case errors.Is(err, studysession.ErrInvalidAction):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, studysession.ErrLoadFailed):
		h.logger.Warn("study session load failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "could not load cards, try again")
	default:
		h.logger.Error("store error", "error", err, "entity", entity)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
	return true
}
