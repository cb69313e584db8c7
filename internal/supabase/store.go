package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"telicommunity-go/internal/client/session"
	"telicommunity-go/pkg/logger"
)

// refreshLeeway refreshes slightly before the token actually expires.
const refreshLeeway = 30 * time.Second

type authAPI interface {
	GetUser(ctx context.Context, accessToken string) (User, error)
	RefreshSession(ctx context.Context, refreshToken string) (TokenResponse, error)
	SignOut(ctx context.Context, accessToken string) error
}

// SessionStore keeps the signed-in session for a client process and persists
// it to a JSON file between runs.
type SessionStore struct {
	api  authAPI
	path string
	log  logger.Logger
	now  func() time.Time

	mu        sync.Mutex
	current   *session.Session
	listeners map[int]func(session.AuthEvent)
	nextID    int
}

func NewSessionStore(api authAPI, path string, log logger.Logger) *SessionStore {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionStore{
		api:       api,
		path:      path,
		log:       log,
		now:       time.Now,
		listeners: make(map[int]func(session.AuthEvent)),
	}
}

// Load restores a persisted session. A missing file is not an error.
func (s *SessionStore) Load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session file: %w", err)
	}

	var stored session.Session
	if err := json.Unmarshal(data, &stored); err != nil {
		s.log.Warn("supabase.session: ignoring unreadable session file", "path", s.path, "err", err.Error())
		return nil
	}
	if stored.AccessToken == "" {
		return nil
	}

	s.mu.Lock()
	s.current = &stored
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context) (*session.Session, error) {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	if current == nil {
		return nil, nil
	}
	if current.ExpiresAt.IsZero() || s.now().Add(refreshLeeway).Before(current.ExpiresAt) {
		copied := *current
		return &copied, nil
	}
	return s.refresh(ctx, current)
}

func (s *SessionStore) refresh(ctx context.Context, current *session.Session) (*session.Session, error) {
	resp, err := s.api.RefreshSession(ctx, current.RefreshToken)
	if errors.Is(err, ErrUnauthorized) {
		s.log.Info("supabase.session: refresh token rejected, signing out", "user_id", current.UserID)
		s.replace(nil, session.EventSignedOut)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	next := &session.Session{
		UserID:       current.UserID,
		Email:        current.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: firstNonEmpty(resp.RefreshToken, current.RefreshToken),
		ExpiresAt:    s.expiry(resp.AccessToken, resp.ExpiresIn),
	}
	if user, ok := resp.User.toUser(); ok {
		next.UserID = user.ID
		next.Email = user.Email
	}
	s.replace(next, session.EventTokenRefreshed)

	copied := *next
	return &copied, nil
}

// SetSession establishes a session from a token pair, typically parsed from
// an OAuth redirect. The access token is checked against the auth server.
func (s *SessionStore) SetSession(ctx context.Context, accessToken, refreshToken string) (*session.Session, error) {
	user, err := s.api.GetUser(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("verify access token: %w", err)
	}

	next := &session.Session{
		UserID:       user.ID,
		Email:        user.Email,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.expiry(accessToken, 0),
	}
	s.replace(next, session.EventSignedIn)

	copied := *next
	return &copied, nil
}

// SignOut always clears the local session. The remote logout is best effort.
func (s *SessionStore) SignOut(ctx context.Context) error {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current == nil {
		return nil
	}

	if err := s.api.SignOut(ctx, current.AccessToken); err != nil && !errors.Is(err, ErrUnauthorized) {
		s.log.Warn("supabase.session: remote sign out failed", "err", err.Error())
	}
	s.replace(nil, session.EventSignedOut)
	return nil
}

func (s *SessionStore) OnAuthStateChange(fn func(session.AuthEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *SessionStore) replace(next *session.Session, kind session.AuthEventKind) {
	s.mu.Lock()
	s.current = next
	listeners := make([]func(session.AuthEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	if err := s.persist(next); err != nil {
		s.log.InternalError("supabase.session: persist failed", err, "path", s.path)
	}

	var event session.AuthEvent
	event.Kind = kind
	if next != nil {
		copied := *next
		event.Session = &copied
	}
	for _, fn := range listeners {
		fn(event)
	}
}

func (s *SessionStore) persist(current *session.Session) error {
	if s.path == "" {
		return nil
	}
	if current == nil {
		err := os.Remove(s.path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *SessionStore) expiry(accessToken string, expiresIn int) time.Time {
	if exp, err := ExpiresAt(accessToken); err == nil {
		return exp
	}
	if expiresIn > 0 {
		return s.now().Add(time.Duration(expiresIn) * time.Second)
	}
	return time.Time{}
}
