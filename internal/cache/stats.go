// Package cache keeps per-learner deck stats in Redis so that repeated stats
// reads within a day do not hit the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gelos/backend/internal/domain/studysession"
)

const keyPrefix = "gelos:stats:"

// CachedRepository decorates a study repository with a stats cache. Every
// persisted review drops the learner's cached stats, and InvalidateDeck drops
// a deck's stats for every learner. Redis failures are logged and the call
// falls through to the wrapped repository.
type CachedRepository struct {
	studysession.Repository

	rdb    goredis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

var _ studysession.Repository = (*CachedRepository)(nil)

func NewCachedRepository(repo studysession.Repository, rdb goredis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	return &CachedRepository{
		Repository: repo,
		rdb:        rdb,
		ttl:        ttl,
		logger:     logger.With("component", "stats_cache"),
	}
}

// Connect opens a Redis client and checks that the server answers.
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// learnerKey holds one hash per learner; fields are deck and day.
func learnerKey(learnerID string) string {
	return keyPrefix + learnerID
}

func statsField(deckID string, today time.Time) string {
	return deckID + ":" + today.Format("2006-01-02")
}

func (c *CachedRepository) FetchDeckStats(ctx context.Context, scope studysession.Scope, today time.Time) (studysession.DeckStats, error) {
	key, field := learnerKey(scope.LearnerID), statsField(scope.DeckID, today)

	raw, err := c.rdb.HGet(ctx, key, field).Bytes()
	switch {
	case err == nil:
		var stats studysession.DeckStats
		if err := json.Unmarshal(raw, &stats); err == nil {
			return stats, nil
		}
		c.logger.Warn("discarding malformed cached stats", "key", key, "field", field)
	case !errors.Is(err, goredis.Nil):
		c.logger.Warn("stats cache read failed", "key", key, "error", err)
	}

	stats, err := c.Repository.FetchDeckStats(ctx, scope, today)
	if err != nil {
		return studysession.DeckStats{}, err
	}

	if raw, err := json.Marshal(stats); err == nil {
		pipe := c.rdb.TxPipeline()
		pipe.HSet(ctx, key, field, raw)
		pipe.Expire(ctx, key, c.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			c.logger.Warn("stats cache write failed", "key", key, "error", err)
		}
	}
	return stats, nil
}

func (c *CachedRepository) PersistReview(ctx context.Context, rec studysession.Record) error {
	if err := c.Repository.PersistReview(ctx, rec); err != nil {
		return err
	}
	if err := c.rdb.Del(ctx, learnerKey(rec.LearnerID)).Err(); err != nil {
		c.logger.Warn("stats cache invalidation failed", "learner_id", rec.LearnerID, "error", err)
	}
	return nil
}

// InvalidateDeck drops the cached stats of deckID for every learner. Call it
// after cards are added to or removed from the deck.
func (c *CachedRepository) InvalidateDeck(ctx context.Context, deckID string) error {
	prefix := deckID + ":"
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := c.rdb.HKeys(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("list cached stats of %s: %w", key, err)
		}
		var stale []string
		for _, f := range fields {
			if strings.HasPrefix(f, prefix) {
				stale = append(stale, f)
			}
		}
		if len(stale) == 0 {
			continue
		}
		if err := c.rdb.HDel(ctx, key, stale...).Err(); err != nil {
			return fmt.Errorf("drop cached stats of %s: %w", key, err)
		}
	}
	return iter.Err()
}
