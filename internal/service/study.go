// internal/service/study.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gelos/backend/internal/domain/studysession"
	"github.com/gelos/backend/internal/id"
)

var ErrSessionNotFound = errors.New("study session not found")

// StudyService keeps the in-memory study sessions. Session state is never
// persisted: a session that is abandoned is simply pruned.
type StudyService struct {
	repo   studysession.Repository
	writer studysession.Writer
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	ctrl       *studysession.Controller
	lastActive time.Time
}

// NewStudyService creates a StudyService. writer may be nil, in which case
// ratings are persisted synchronously.
func NewStudyService(repo studysession.Repository, writer studysession.Writer, logger *slog.Logger) *StudyService {
	return &StudyService{
		repo:     repo,
		writer:   writer,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Start registers a new session and loads it. When loading fails the session
// stays registered in the Loading state and the returned ID can be passed to
// Load to retry.
func (s *StudyService) Start(ctx context.Context, scope studysession.Scope, cfg studysession.Config) (string, *studysession.Controller, error) {
	sessionID := id.GenerateID()
	logger := s.logger.With("session_id", sessionID, "deck_id", scope.DeckID)

	ctrl := studysession.New(scope, s.repo, studysession.Options{
		Config: cfg,
		Writer: s.writer,
		Now:    s.now,
		OnSaveError: func(f studysession.SaveFailure) {
			logger.Warn("review not saved",
				"card_id", f.Record.CardID,
				"review_id", f.Record.ReviewID,
				"error", f.Err,
			)
		},
	})

	s.mu.Lock()
	s.sessions[sessionID] = &session{ctrl: ctrl, lastActive: s.now()}
	s.mu.Unlock()

	if err := ctrl.Load(ctx); err != nil {
		logger.Error("failed to load study session", "error", err)
		return sessionID, ctrl, err
	}

	logger.Info("study session started", "state", ctrl.State().String(), "cards", ctrl.Snapshot().Total)
	return sessionID, ctrl, nil
}

// Load retries loading a session that failed to load.
func (s *StudyService) Load(ctx context.Context, sessionID string) (*studysession.Controller, error) {
	ctrl, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Load(ctx); err != nil {
		return ctrl, err
	}
	return ctrl, nil
}

// Get returns the controller of a session and marks it active.
func (s *StudyService) Get(sessionID string) (*studysession.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastActive = s.now()
	return sess.ctrl, nil
}

func (s *StudyService) Reveal(sessionID string) (studysession.Snapshot, error) {
	ctrl, err := s.Get(sessionID)
	if err != nil {
		return studysession.Snapshot{}, err
	}
	if err := ctrl.Reveal(); err != nil {
		return studysession.Snapshot{}, err
	}
	return ctrl.Snapshot(), nil
}

func (s *StudyService) Rate(ctx context.Context, sessionID string, rating int) (studysession.Outcome, error) {
	ctrl, err := s.Get(sessionID)
	if err != nil {
		return studysession.Outcome{}, err
	}
	return ctrl.Rate(ctx, rating)
}

func (s *StudyService) RetrySave(ctx context.Context, sessionID, cardID string) error {
	ctrl, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	return ctrl.RetrySave(ctx, cardID)
}

// Finish waits for the session's writes, reports its summary and forgets it.
// A failed stats refresh is logged; the summary then carries the stats from
// when the session was loaded.
func (s *StudyService) Finish(ctx context.Context, sessionID string) (studysession.Summary, []studysession.SaveFailure, error) {
	ctrl, err := s.Get(sessionID)
	if err != nil {
		return studysession.Summary{}, nil, err
	}

	sum, err := ctrl.Summary(ctx)
	if errors.Is(err, studysession.ErrInvalidAction) {
		return studysession.Summary{}, nil, err
	}
	if err != nil {
		s.logger.Warn("deck stats refresh failed", "session_id", sessionID, "error", err)
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.logger.Info("study session finished",
		"session_id", sessionID,
		"reviewed", sum.Reviewed,
		"correct", sum.Correct,
	)
	return sum, ctrl.SaveFailures(), nil
}

// PruneIdle drops sessions that saw no activity for maxAge and returns how
// many were dropped. Ratings whose writes were already submitted still land.
func (s *StudyService) PruneIdle(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for sid, sess := range s.sessions {
		if sess.lastActive.Before(cutoff) {
			delete(s.sessions, sid)
			pruned++
		}
	}
	if pruned > 0 {
		s.logger.Info("pruned idle study sessions", "count", pruned)
	}
	return pruned
}

// Active returns the number of sessions in memory.
func (s *StudyService) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
