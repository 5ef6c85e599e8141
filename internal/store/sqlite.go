// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gelos/backend/internal/domain/deck"
	"github.com/gelos/backend/internal/domain/review"
	"github.com/gelos/backend/internal/domain/studysession"
)

const schema = `
CREATE TABLE IF NOT EXISTS decks (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    deck_id TEXT NOT NULL,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    position INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (deck_id) REFERENCES decks(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_cards_deck ON cards(deck_id);

CREATE TABLE IF NOT EXISTS card_progress (
    card_id TEXT NOT NULL,
    learner_id TEXT NOT NULL,
    ease_factor REAL NOT NULL,
    interval_days INTEGER NOT NULL,
    repetitions INTEGER NOT NULL,
    next_review_at INTEGER NOT NULL,
    reviewed_at INTEGER NOT NULL,
    review_id TEXT NOT NULL,
    PRIMARY KEY (card_id, learner_id),
    FOREIGN KEY (card_id) REFERENCES cards(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS review_log (
    review_id TEXT PRIMARY KEY,
    card_id TEXT NOT NULL,
    learner_id TEXT NOT NULL,
    rating INTEGER NOT NULL,
    ease_factor REAL NOT NULL,
    interval_days INTEGER NOT NULL,
    repetitions INTEGER NOT NULL,
    next_review_at INTEGER NOT NULL,
    reviewed_at INTEGER NOT NULL,
    FOREIGN KEY (card_id) REFERENCES cards(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_review_log_card ON review_log(card_id, learner_id);
`

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// one connection: SQLite allows a single writer and the workers write concurrently
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate upgrades databases created before decks could be shared with a group.
func migrate(db *sql.DB) error {
	return addColumnIfNotExists(db, "decks", "group_id", "TEXT")
}

func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

// ============================================================================
// Decks
// ============================================================================

func (s *SQLiteStore) SaveDeck(ctx context.Context, d *deck.Deck) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO decks (id, name, group_id, created_at) VALUES (?, ?, ?, ?)",
		d.ID, d.Name, d.GroupID, d.CreatedAt.Unix(),
	)
	if err != nil {
		return err
	}

	for _, c := range d.Cards {
		if err := insertCard(ctx, tx, d.ID, c); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetDeck(ctx context.Context, id string) (*deck.Deck, error) {
	var (
		d         deck.Deck
		groupID   sql.NullString
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, group_id, created_at FROM decks WHERE id = ?", id,
	).Scan(&d.ID, &d.Name, &groupID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if groupID.Valid {
		d.GroupID = &groupID.String
	}
	d.CreatedAt = time.Unix(createdAt, 0).UTC()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, front, back, position, created_at FROM cards WHERE deck_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	d.Cards = []deck.Card{}
	for rows.Next() {
		c := deck.Card{DeckID: id}
		var cardCreated int64
		if err := rows.Scan(&c.ID, &c.Front, &c.Back, &c.Position, &cardCreated); err != nil {
			return nil, err
		}
		c.CreatedAt = time.Unix(cardCreated, 0).UTC()
		d.Cards = append(d.Cards, c)
	}
	return &d, rows.Err()
}

func (s *SQLiteStore) ListDecks(ctx context.Context) ([]*deck.Deck, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, group_id, created_at FROM decks ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decks []*deck.Deck
	for rows.Next() {
		var (
			d         deck.Deck
			groupID   sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&d.ID, &d.Name, &groupID, &createdAt); err != nil {
			return nil, err
		}
		if groupID.Valid {
			d.GroupID = &groupID.String
		}
		d.CreatedAt = time.Unix(createdAt, 0).UTC()
		decks = append(decks, &d)
	}
	return decks, rows.Err()
}

func (s *SQLiteStore) DeleteDeck(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	cardsOfDeck := "SELECT id FROM cards WHERE deck_id = ?"
	if _, err := tx.ExecContext(ctx, "DELETE FROM review_log WHERE card_id IN ("+cardsOfDeck+")", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM card_progress WHERE card_id IN ("+cardsOfDeck+")", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM cards WHERE deck_id = ?", id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM decks WHERE id = ?", id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// ============================================================================
// Cards
// ============================================================================

func (s *SQLiteStore) AddCard(ctx context.Context, deckID string, card deck.Card) error {
	if err := s.deckExists(ctx, deckID); err != nil {
		return err
	}
	return insertCard(ctx, s.db, deckID, card)
}

func (s *SQLiteStore) DeleteCard(ctx context.Context, deckID, cardID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM cards WHERE id = ? AND deck_id = ?", cardID, deckID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM card_progress WHERE card_id = ?", cardID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM review_log WHERE card_id = ?", cardID); err != nil {
		return err
	}

	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertCard(ctx context.Context, db execer, deckID string, c deck.Card) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO cards (id, deck_id, front, back, position, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		c.ID, deckID, c.Front, c.Back, c.Position, c.CreatedAt.Unix(),
	)
	return err
}

func (s *SQLiteStore) deckExists(ctx context.Context, deckID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM decks WHERE id = ?", deckID).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

// ============================================================================
// Study
// ============================================================================

// dueBefore is the first instant that is no longer due on today's date.
func dueBefore(today time.Time) int64 {
	return review.StartOfDay(today).AddDate(0, 0, 1).Unix()
}

func (s *SQLiteStore) FetchDueCards(ctx context.Context, scope studysession.Scope, today time.Time) ([]studysession.DueCard, error) {
	if err := s.deckExists(ctx, scope.DeckID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.front, c.back, p.ease_factor, p.interval_days, p.repetitions, p.next_review_at
		FROM cards c
		LEFT JOIN card_progress p ON p.card_id = c.id AND p.learner_id = ?
		WHERE c.deck_id = ? AND (p.card_id IS NULL OR p.next_review_at < ?)
	`, scope.LearnerID, scope.DeckID, dueBefore(today))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []studysession.DueCard{}
	for rows.Next() {
		var (
			c           studysession.DueCard
			easeFactor  sql.NullFloat64
			interval    sql.NullInt64
			repetitions sql.NullInt64
			nextReview  sql.NullInt64
		)
		if err := rows.Scan(&c.CardID, &c.Front, &c.Back, &easeFactor, &interval, &repetitions, &nextReview); err != nil {
			return nil, err
		}
		if easeFactor.Valid {
			c.Progress = &review.Progress{
				EaseFactor:  easeFactor.Float64,
				Interval:    int(interval.Int64),
				Repetitions: int(repetitions.Int64),
			}
			next := time.Unix(nextReview.Int64, 0).In(today.Location())
			c.NextReviewAt = &next
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (s *SQLiteStore) FetchDeckStats(ctx context.Context, scope studysession.Scope, today time.Time) (studysession.DeckStats, error) {
	if err := s.deckExists(ctx, scope.DeckID); err != nil {
		return studysession.DeckStats{}, err
	}

	var stats studysession.DeckStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN p.card_id IS NULL THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN p.card_id IS NULL OR p.next_review_at < ? THEN 1 ELSE 0 END), 0)
		FROM cards c
		LEFT JOIN card_progress p ON p.card_id = c.id AND p.learner_id = ?
		WHERE c.deck_id = ?
	`, dueBefore(today), scope.LearnerID, scope.DeckID).Scan(&stats.TotalCards, &stats.NewCards, &stats.DueCards)
	if err != nil {
		return studysession.DeckStats{}, err
	}

	var reviews, correct int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN r.rating >= ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN r.reviewed_at >= ? THEN 1 ELSE 0 END), 0)
		FROM review_log r
		JOIN cards c ON c.id = r.card_id
		WHERE c.deck_id = ? AND r.learner_id = ?
	`, int(review.Good), review.StartOfDay(today).UnixNano(), scope.DeckID, scope.LearnerID).Scan(&reviews, &correct, &stats.ReviewedToday)
	if err != nil {
		return studysession.DeckStats{}, err
	}

	if reviews > 0 {
		stats.Accuracy = int(math.Round(float64(correct) * 100 / float64(reviews)))
	}
	return stats, nil
}

// PersistReview logs the rating and updates the card's progress. Replaying a
// review ID is a no-op, and progress is only overwritten by a rating at least
// as recent as the stored one.
func (s *SQLiteStore) PersistReview(ctx context.Context, rec studysession.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM cards WHERE id = ?", rec.CardID).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	res := rec.Result
	result, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO review_log
		    (review_id, card_id, learner_id, rating, ease_factor, interval_days, repetitions, next_review_at, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ReviewID, rec.CardID, rec.LearnerID, int(rec.Rating),
		res.EaseFactor, res.Interval, res.Repetitions, res.NextReviewAt.Unix(), rec.ReviewedAt.UnixNano())
	if err != nil {
		return err
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 0 {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO card_progress
		    (card_id, learner_id, ease_factor, interval_days, repetitions, next_review_at, reviewed_at, review_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (card_id, learner_id) DO UPDATE SET
		    ease_factor = excluded.ease_factor,
		    interval_days = excluded.interval_days,
		    repetitions = excluded.repetitions,
		    next_review_at = excluded.next_review_at,
		    reviewed_at = excluded.reviewed_at,
		    review_id = excluded.review_id
		WHERE excluded.reviewed_at >= card_progress.reviewed_at
	`, rec.CardID, rec.LearnerID, res.EaseFactor, res.Interval, res.Repetitions,
		res.NextReviewAt.Unix(), rec.ReviewedAt.UnixNano(), rec.ReviewID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DueDigest counts, per deck, the scheduled reviews that are due today
// across all learners. Cards nobody has studied yet are not counted.
func (s *SQLiteStore) DueDigest(ctx context.Context, today time.Time) ([]DeckDigest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.name, COUNT(p.card_id)
		FROM decks d
		JOIN cards c ON c.deck_id = d.id
		JOIN card_progress p ON p.card_id = c.id
		WHERE p.next_review_at < ?
		GROUP BY d.id, d.name
		ORDER BY d.name
	`, dueBefore(today))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var digest []DeckDigest
	for rows.Next() {
		var d DeckDigest
		if err := rows.Scan(&d.DeckID, &d.Name, &d.DueReviews); err != nil {
			return nil, err
		}
		digest = append(digest, d)
	}
	return digest, rows.Err()
}
