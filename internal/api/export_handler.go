package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gelos/backend/internal/importer"
)

const maxImportBytes = 10 << 20

// ── Request / Response types ────────────────────────────────────────────────

type ImportResult struct {
	DeckID       string   `json:"deck_id" example:"x9y8z7w6v5u4t3s2"`
	Name         string   `json:"name" example:"Capitals"`
	CardsCreated int      `json:"cards_created" example:"42"`
	Skipped      []string `json:"skipped"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// exportDeck downloads a deck as YAML.
// @Summary      Export a deck
// @Tags         Decks
// @Produce      application/yaml
// @Param        deckID  path  string  true  "Deck ID"
// @Success      200
// @Failure      404  {object}  map[string]string
// @Router       /decks/{deckID}/export [get]
func (h *Handler) exportDeck(w http.ResponseWriter, r *http.Request) {
	d, err := h.store.GetDeck(r.Context(), r.PathValue("deckID"))
	if h.handleStoreError(w, err, "deck") {
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", "attachment; filename="+d.ID+".yaml")
	if err := importer.WriteYAML(w, d); err != nil {
		h.logger.Error("failed to export deck", "deck_id", d.ID, "error", err)
	}
}

// importDeck creates a deck from a YAML document or an XLSX workbook sent as
// the request body. The format comes from the Content-Type header.
// @Summary      Import a deck
// @Tags         Decks
// @Accept       application/yaml
// @Accept       application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      json
// @Param        name  query     string  false  "Deck name for spreadsheets"
// @Success      201   {object}  ImportResult
// @Failure      400   {object}  map[string]string
// @Failure      415   {object}  map[string]string
// @Router       /decks/import [post]
func (h *Handler) importDeck(w http.ResponseWriter, r *http.Request) {
	format, err := importer.DetectFormat(r.Header.Get("Content-Type"))
	if err != nil {
		respondError(w, http.StatusUnsupportedMediaType, "send application/yaml or an xlsx workbook")
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	name := strings.TrimSpace(r.URL.Query().Get("name"))

	res, err := importer.Read(body, format, name)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "deck file too large")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.SaveDeck(r.Context(), res.Deck); err != nil {
		h.logger.Error("failed to save imported deck", "name", res.Deck.Name, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save deck")
		return
	}

	skipped := res.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	respondJSON(w, http.StatusCreated, ImportResult{
		DeckID:       res.Deck.ID,
		Name:         res.Deck.Name,
		CardsCreated: len(res.Deck.Cards),
		Skipped:      skipped,
	})
}
