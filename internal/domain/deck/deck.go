package deck

import (
	"errors"
	"strings"
	"time"

	"github.com/gelos/backend/internal/id"
)

var (
	ErrEmptyName  = errors.New("deck name cannot be empty")
	ErrEmptyFront = errors.New("card front cannot be empty")
)

type Deck struct {
	ID        string
	Name      string
	GroupID   *string // Optional - decks can be shared with a group
	CreatedAt time.Time
	Cards     []Card
}

type Card struct {
	ID        string
	DeckID    string
	Front     string
	Back      string
	Position  int
	CreatedAt time.Time
}

func New(name string) (*Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Deck{
		ID:        id.GenerateID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Cards:     []Card{},
	}, nil
}

func (d *Deck) SetGroup(groupID *string) {
	d.GroupID = groupID
}

// AddCard appends a card at the end of the deck and returns it.
func (d *Deck) AddCard(front, back string) (Card, error) {
	front = strings.TrimSpace(front)
	if front == "" {
		return Card{}, ErrEmptyFront
	}

	c := Card{
		ID:        id.GenerateID(),
		DeckID:    d.ID,
		Front:     front,
		Back:      strings.TrimSpace(back),
		Position:  len(d.Cards),
		CreatedAt: time.Now().UTC(),
	}
	d.Cards = append(d.Cards, c)
	return c, nil
}
