package store

import (
	"context"
	"errors"
	"time"

	"github.com/gelos/backend/internal/domain/deck"
	"github.com/gelos/backend/internal/domain/studysession"
)

var (
	ErrNotFound = errors.New("not found")
)

// DeckDigest is the number of scheduled reviews due in one deck.
type DeckDigest struct {
	DeckID     string
	Name       string
	DueReviews int
}

// Store is everything the service needs from persistence.
type Store interface {
	studysession.Repository

	SaveDeck(ctx context.Context, d *deck.Deck) error
	GetDeck(ctx context.Context, id string) (*deck.Deck, error)
	ListDecks(ctx context.Context) ([]*deck.Deck, error)
	DeleteDeck(ctx context.Context, id string) error
	AddCard(ctx context.Context, deckID string, card deck.Card) error
	DeleteCard(ctx context.Context, deckID, cardID string) error
	DueDigest(ctx context.Context, today time.Time) ([]DeckDigest, error)

	Close() error
}
