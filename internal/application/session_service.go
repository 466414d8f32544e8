package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/haloguard/haloguard-cli/internal/ports"
)

const (
	TokenKey = "haloguard/token"
	UserKey  = "haloguard/user"
)

// SessionService owns the signed-in identity and its bearer token. Failures
// are logged and reported as false; callers never see an error.
type SessionService struct {
	auth   ports.AuthAPI
	store  ports.SecretStore
	logger *slog.Logger

	mu      sync.RWMutex
	session domain.Session
	loading bool
}

var (
	_ ports.TokenSource      = (*SessionService)(nil)
	_ ports.AuthHeaderSource = (*SessionService)(nil)
)

func NewSessionService(auth ports.AuthAPI, store ports.SecretStore, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &SessionService{
		auth:    auth,
		store:   store,
		logger:  logger,
		loading: true,
	}
}

// Restore loads the persisted session. Missing or unreadable keys leave the
// session signed out.
func (s *SessionService) Restore(ctx context.Context) domain.Session {
	session := s.readPersisted(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
	s.loading = false
	return session
}

func (s *SessionService) readPersisted(ctx context.Context) domain.Session {
	token, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		s.logMissing("token", err)
		return domain.Session{}
	}

	rawUser, err := s.store.Get(ctx, UserKey)
	if err != nil {
		s.logMissing("user", err)
		return domain.Session{}
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.logger.Warn("stored identity is corrupt", slog.Any("err", fmt.Errorf("%w: %w", domain.ErrCorruptStore, err)))
		return domain.Session{}
	}

	session, err := domain.NewSession(user, token)
	if err != nil {
		s.logger.Warn("stored session is incomplete", slog.Any("err", err))
		return domain.Session{}
	}

	return session
}

func (s *SessionService) logMissing(what string, err error) {
	if errors.Is(err, domain.ErrKeyNotFound) {
		s.logger.Debug("no stored session", slog.String("key", what))
		return
	}
	s.logger.Warn("read stored session", slog.String("key", what), slog.Any("err", err))
}

func (s *SessionService) Login(ctx context.Context, username string, password string) bool {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.logger.Warn("login rejected", slog.String("reason", "username and password are required"))
		return false
	}

	token, err := s.auth.Login(ctx, username, password)
	if err != nil {
		s.logger.Warn("login failed", slog.String("username", username), slog.Any("err", err))
		return false
	}

	session, err := domain.NewSession(domain.UserFromUsername(username), token)
	if err != nil {
		s.logger.Warn("login failed", slog.String("username", username), slog.Any("err", err))
		return false
	}

	previous := s.Session()
	if err := s.persist(ctx, session); err != nil {
		s.logger.Error("persist session", slog.String("username", username), slog.Any("err", err))
		s.reinstate(ctx, previous)
		return false
	}

	s.mu.Lock()
	s.session = session
	s.loading = false
	s.mu.Unlock()

	return true
}

// persist writes token then identity. If either write fails the keys written
// so far are removed again.
func (s *SessionService) persist(ctx context.Context, session domain.Session) error {
	rawUser, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	if err := s.store.Put(ctx, TokenKey, session.Token); err != nil {
		return s.rollback(ctx, fmt.Errorf("store token: %w", err), TokenKey)
	}
	if err := s.store.Put(ctx, UserKey, string(rawUser)); err != nil {
		return s.rollback(ctx, fmt.Errorf("store identity: %w", err), TokenKey, UserKey)
	}

	return nil
}

func (s *SessionService) rollback(ctx context.Context, cause error, keys ...string) error {
	// The caller's context may be what failed the write.
	cleanupCtx := context.WithoutCancel(ctx)

	var rollbackErr error
	for _, key := range keys {
		if err := s.store.Delete(cleanupCtx, key); err != nil {
			rollbackErr = errors.Join(rollbackErr, fmt.Errorf("rollback %s: %w", key, err))
		}
	}
	if rollbackErr != nil {
		return errors.Join(cause, rollbackErr)
	}
	return cause
}

// reinstate writes previous back after a failed login overwrote or removed
// its keys. If that fails too, memory is signed out so it matches disk.
func (s *SessionService) reinstate(ctx context.Context, previous domain.Session) {
	if !previous.IsAuthenticated() {
		return
	}

	if err := s.persist(context.WithoutCancel(ctx), previous); err != nil {
		s.logger.Error("reinstate previous session", slog.Any("err", err))
		s.mu.Lock()
		s.session = domain.Session{}
		s.mu.Unlock()
	}
}

// Signup registers the account, then logs in with the same credentials.
func (s *SessionService) Signup(ctx context.Context, username string, password string) bool {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.logger.Warn("signup rejected", slog.String("reason", "username and password are required"))
		return false
	}

	if err := s.auth.Signup(ctx, username, password); err != nil {
		s.logger.Warn("signup failed", slog.String("username", username), slog.Any("err", err))
		return false
	}

	return s.Login(ctx, username, password)
}

// Logout clears the in-memory session first, then removes the persisted keys.
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()

	for _, key := range []string{TokenKey, UserKey} {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("delete stored session", slog.String("key", key), slog.Any("err", err))
		}
	}
}

func (s *SessionService) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loading
}

func (s *SessionService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session.IsAuthenticated()
}

// Session returns a copy of the current session.
func (s *SessionService) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session := s.session
	if session.User != nil {
		user := *session.User
		session.User = &user
	}
	return session
}

func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session.Token
}

func (s *SessionService) AuthHeaders() http.Header {
	header := http.Header{}
	if token := s.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return header
}
