// internal/api/router.go
package api

import "net/http"

func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Decks
	mux.HandleFunc("POST /decks", h.createDeck)
	mux.HandleFunc("GET /decks", h.listDecks)
	mux.HandleFunc("POST /decks/import", h.importDeck)
	mux.HandleFunc("GET /decks/{deckID}", h.getDeck)
	mux.HandleFunc("DELETE /decks/{deckID}", h.deleteDeck)
	mux.HandleFunc("GET /decks/{deckID}/stats", h.getDeckStats)
	mux.HandleFunc("GET /decks/{deckID}/export", h.exportDeck)

	// Cards
	mux.HandleFunc("POST /decks/{deckID}/cards", h.addCard)
	mux.HandleFunc("DELETE /decks/{deckID}/cards/{cardID}", h.deleteCard)

	// Study sessions
	mux.HandleFunc("POST /study-sessions", h.startSession)
	mux.HandleFunc("GET /study-sessions/{sessionID}", h.getSession)
	mux.HandleFunc("POST /study-sessions/{sessionID}/load", h.loadSession)
	mux.HandleFunc("POST /study-sessions/{sessionID}/reveal", h.revealCard)
	mux.HandleFunc("POST /study-sessions/{sessionID}/ratings", h.rateCard)
	mux.HandleFunc("POST /study-sessions/{sessionID}/retry/{cardID}", h.retrySave)
	mux.HandleFunc("POST /study-sessions/{sessionID}/complete", h.completeSession)
}
