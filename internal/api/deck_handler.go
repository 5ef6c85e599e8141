package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gelos/backend/internal/domain/deck"
	"github.com/gelos/backend/internal/domain/studysession"
)

// ── Request / Response types ────────────────────────────────────────────────

type CardInput struct {
	Front string `json:"front" example:"¿Dónde está la biblioteca?"`
	Back  string `json:"back" example:"Where is the library?"`
}

type CreateDeckRequest struct {
	Name    string      `json:"name" example:"Spanish phrases"`
	GroupID *string     `json:"group_id,omitempty" example:"a1b2c3d4e5f6g7h8"`
	Cards   []CardInput `json:"cards,omitempty"`
}

func (r *CreateDeckRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	for _, c := range r.Cards {
		if c.Front == "" {
			return errors.New("every card needs a front")
		}
	}
	return nil
}

type DeckResponse struct {
	ID        string    `json:"id" example:"x9y8z7w6v5u4t3s2"`
	Name      string    `json:"name" example:"Spanish phrases"`
	GroupID   *string   `json:"group_id,omitempty" example:"a1b2c3d4e5f6g7h8"`
	CreatedAt time.Time `json:"created_at"`
}

type GetDeckResponse struct {
	DeckResponse
	Cards []CardResponse `json:"cards"`
}

type CardResponse struct {
	ID       string `json:"id" example:"q1w2e3r4t5y6u7i8"`
	Front    string `json:"front" example:"¿Dónde está la biblioteca?"`
	Back     string `json:"back" example:"Where is the library?"`
	Position int    `json:"position" example:"0"`
}

type DeckStatsResponse struct {
	DeckID    string `json:"deck_id" example:"x9y8z7w6v5u4t3s2"`
	LearnerID string `json:"learner_id" example:"ana"`
	studysession.DeckStats
}

func toDeckResponse(d *deck.Deck) DeckResponse {
	return DeckResponse{
		ID:        d.ID,
		Name:      d.Name,
		GroupID:   d.GroupID,
		CreatedAt: d.CreatedAt,
	}
}

func toCardResponse(c deck.Card) CardResponse {
	return CardResponse{
		ID:       c.ID,
		Front:    c.Front,
		Back:     c.Back,
		Position: c.Position,
	}
}

// ── Handlers ────────────────────────────────────────────────────────────────

// createDeck creates a deck, optionally with its first cards.
// @Summary      Create a deck
// @Tags         Decks
// @Accept       json
// @Produce      json
// @Param        body  body      CreateDeckRequest  true  "Deck to create"
// @Success      201   {object}  GetDeckResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /decks [post]
func (h *Handler) createDeck(w http.ResponseWriter, r *http.Request) {
	var req CreateDeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	d, err := deck.New(req.Name)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	d.SetGroup(req.GroupID)

	for _, c := range req.Cards {
		if _, err := d.AddCard(c.Front, c.Back); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := h.store.SaveDeck(r.Context(), d); err != nil {
		h.logger.Error("failed to save deck", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save deck")
		return
	}

	respondJSON(w, http.StatusCreated, toGetDeckResponse(d))
}

func toGetDeckResponse(d *deck.Deck) GetDeckResponse {
	cards := make([]CardResponse, len(d.Cards))
	for i, c := range d.Cards {
		cards[i] = toCardResponse(c)
	}
	return GetDeckResponse{DeckResponse: toDeckResponse(d), Cards: cards}
}

// listDecks lists all decks without their cards.
// @Summary      List decks
// @Tags         Decks
// @Produce      json
// @Success      200  {array}   DeckResponse
// @Failure      500  {object}  map[string]string
// @Router       /decks [get]
func (h *Handler) listDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.store.ListDecks(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load decks")
		return
	}

	response := make([]DeckResponse, len(decks))
	for i, d := range decks {
		response[i] = toDeckResponse(d)
	}
	respondJSON(w, http.StatusOK, response)
}

// getDeck returns a deck with its cards.
// @Summary      Get a deck
// @Tags         Decks
// @Produce      json
// @Param        deckID  path      string  true  "Deck ID"
// @Success      200     {object}  GetDeckResponse
// @Failure      404     {object}  map[string]string
// @Router       /decks/{deckID} [get]
func (h *Handler) getDeck(w http.ResponseWriter, r *http.Request) {
	d, err := h.store.GetDeck(r.Context(), r.PathValue("deckID"))
	if h.handleStoreError(w, err, "deck") {
		return
	}
	respondJSON(w, http.StatusOK, toGetDeckResponse(d))
}

// deleteDeck deletes a deck, its cards and every learner's progress on them.
// @Summary      Delete a deck
// @Tags         Decks
// @Param        deckID  path  string  true  "Deck ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /decks/{deckID} [delete]
func (h *Handler) deleteDeck(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")
	err := h.store.DeleteDeck(r.Context(), deckID)
	if h.handleStoreError(w, err, "deck") {
		return
	}
	h.invalidateStats(r.Context(), deckID)
	w.WriteHeader(http.StatusNoContent)
}

// getDeckStats returns a learner's counters for a deck.
// @Summary      Deck stats for a learner
// @Tags         Decks
// @Produce      json
// @Param        deckID      path      string  true  "Deck ID"
// @Param        learner_id  query     string  true  "Learner ID"
// @Success      200         {object}  DeckStatsResponse
// @Failure      400         {object}  map[string]string
// @Failure      404         {object}  map[string]string
// @Router       /decks/{deckID}/stats [get]
func (h *Handler) getDeckStats(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")
	learnerID := r.URL.Query().Get("learner_id")
	if learnerID == "" {
		respondError(w, http.StatusBadRequest, "learner_id is required")
		return
	}

	scope := studysession.Scope{DeckID: deckID, LearnerID: learnerID}
	stats, err := h.stats.FetchDeckStats(r.Context(), scope, h.now())
	if h.handleStoreError(w, err, "deck") {
		return
	}

	respondJSON(w, http.StatusOK, DeckStatsResponse{
		DeckID:    deckID,
		LearnerID: learnerID,
		DeckStats: stats,
	})
}

// addCard appends a card to a deck.
// @Summary      Add a card
// @Tags         Cards
// @Accept       json
// @Produce      json
// @Param        deckID  path      string     true  "Deck ID"
// @Param        body    body      CardInput  true  "Card to add"
// @Success      201     {object}  CardResponse
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /decks/{deckID}/cards [post]
func (h *Handler) addCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deckID := r.PathValue("deckID")

	var req CardInput
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := h.store.GetDeck(ctx, deckID)
	if h.handleStoreError(w, err, "deck") {
		return
	}

	card, err := d.AddCard(req.Front, req.Back)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.AddCard(ctx, deckID, card); h.handleStoreError(w, err, "deck") {
		return
	}
	h.invalidateStats(ctx, deckID)

	respondJSON(w, http.StatusCreated, toCardResponse(card))
}

// deleteCard removes a card and its review history.
// @Summary      Delete a card
// @Tags         Cards
// @Param        deckID  path  string  true  "Deck ID"
// @Param        cardID  path  string  true  "Card ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /decks/{deckID}/cards/{cardID} [delete]
func (h *Handler) deleteCard(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")
	err := h.store.DeleteCard(r.Context(), deckID, r.PathValue("cardID"))
	if h.handleStoreError(w, err, "card") {
		return
	}
	h.invalidateStats(r.Context(), deckID)
	w.WriteHeader(http.StatusNoContent)
}
