package app

import (
	"context"
	"fmt"

	"mathquiz/internal/domain"
)

// SessionRepository abstracts where live controllers are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(sessionID string, c *Controller)
	Get(sessionID string) (*Controller, bool)
	Delete(sessionID string)
	// Touch marks the session as still in use.
	Touch(sessionID string)
}

// QuizService hosts one controller per connected player over a shared leaderboard.
type QuizService struct {
	cfg      domain.QuizConfig
	sessions SessionRepository
	board    *Leaderboard
	opts     []Option
}

// NewQuizService fails fast when cfg cannot run a quiz. opts are applied to every controller.
func NewQuizService(cfg domain.QuizConfig, sessions SessionRepository, board *Leaderboard, opts ...Option) (*QuizService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &QuizService{cfg: cfg, sessions: sessions, board: board, opts: opts}, nil
}

func (s *QuizService) Config() domain.QuizConfig {
	return s.cfg
}

// Open creates a controller for sessionID, draws its intro screen, and registers it.
func (s *QuizService) Open(_ context.Context, sessionID string, view View) (*Controller, error) {
	if _, ok := s.sessions.Get(sessionID); ok {
		return nil, fmt.Errorf("session %s already open", sessionID)
	}
	c, err := NewController(sessionID, s.cfg, s.board, view, s.opts...)
	if err != nil {
		return nil, err
	}
	c.Init()
	s.sessions.Put(sessionID, c)
	return c, nil
}

// Session looks up a live controller.
func (s *QuizService) Session(sessionID string) (*Controller, error) {
	c, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return c, nil
}

// Touch records activity on a live session. Transports call it for every input.
func (s *QuizService) Touch(sessionID string) {
	s.sessions.Touch(sessionID)
}

// Close stops the session's timer and forgets it.
func (s *QuizService) Close(_ context.Context, sessionID string) {
	c, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	c.Close()
	s.sessions.Delete(sessionID)
}

// Leaderboard returns the shared board.
func (s *QuizService) Leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	return s.board.Snapshot(ctx)
}
