package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/fadilmartias/converge/internal/model"
	"github.com/fadilmartias/converge/pkg/logger"
)

// SessionStore persists the session across reloads.
type SessionStore interface {
	Load(ctx context.Context) (model.Session, error)
	Save(ctx context.Context, s model.Session) error
	Clear(ctx context.Context) error
}

// SessionService is the only writer of the session. Gateway services read
// the token through it and never touch the store directly.
type SessionService struct {
	mu      sync.RWMutex
	store   SessionStore
	session model.Session
}

func NewSessionService(ctx context.Context, store SessionStore) (*SessionService, error) {
	s, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &SessionService{store: store, session: s}, nil
}

func (s *SessionService) Current() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *SessionService) IsAuthenticated() bool {
	return s.Current().IsAuthenticated()
}

// Token fails fast with ErrNotAuthenticated when no session is held.
func (s *SessionService) Token() (string, error) {
	cur := s.Current()
	if !cur.IsAuthenticated() {
		return "", ErrNotAuthenticated
	}
	return cur.Token, nil
}

func (s *SessionService) UserID() string {
	return s.Current().UserID
}

// Establish moves Anonymous -> Authenticated.
func (s *SessionService) Establish(ctx context.Context, token, userID string) error {
	if token == "" {
		return NewValidationError("token", "empty session token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := model.Session{Token: token, UserID: userID}
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.session = next
	return nil
}

// HealUserID records a discovered identifier only while authenticated and
// only when none is held yet. It reports whether anything was written.
func (s *SessionService) HealUserID(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.IsAuthenticated() || s.session.UserID != "" {
		return false, nil
	}
	next := model.Session{Token: s.session.Token, UserID: id}
	if err := s.store.Save(ctx, next); err != nil {
		return false, fmt.Errorf("persist session: %w", err)
	}
	s.session = next
	logger.Info().Str("user_id", id).Msg("recovered missing user id from profile")
	return true, nil
}

// Clear moves back to Anonymous.
func (s *SessionService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = model.Session{}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// expireSession clears the session and returns the error describing it.
func (s *SessionService) expireSession(ctx context.Context, op string) *SessionExpiredError {
	if err := s.Clear(ctx); err != nil {
		logger.Error().Err(err).Str("op", op).Msg("failed to clear expired session")
	}
	return &SessionExpiredError{Op: op}
}
