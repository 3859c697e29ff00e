// Package session holds the signed-in user's credential and profile and keeps
// them in durable local storage between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"campus-sports-cli/api"

	"github.com/golang-jwt/jwt/v5"
)

// Persisted keys. Both are present or both are absent.
const (
	TokenKey = "token"
	UserKey  = "user"
)

var (
	ErrNotAuthenticated = errors.New("not logged in")
	ErrTokenExpired     = errors.New("session expired")
)

// Backend is the durable key/value storage behind a Store.
type Backend interface {
	Get(key string) (string, bool, error)
	SetAll(values map[string]string) error
	Remove(keys ...string) error
}

// Store holds at most one (token, user) pair. The pair is only ever replaced
// or cleared as a whole.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	logger  *log.Logger
	token   string
	user    *api.User
}

// Open loads the persisted pair. Missing, partial or unreadable data leaves the
// store signed out.
func Open(backend Backend, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Store{backend: backend, logger: logger}
	s.load()
	return s
}

func (s *Store) load() {
	token, hasToken, err := s.backend.Get(TokenKey)
	if err != nil {
		s.logger.Printf("session load error=%q", err)
		return
	}
	rawUser, hasUser, err := s.backend.Get(UserKey)
	if err != nil {
		s.logger.Printf("session load error=%q", err)
		return
	}
	if !hasToken && !hasUser {
		return
	}
	if !hasToken || !hasUser || strings.TrimSpace(token) == "" {
		s.logger.Printf("session discarded reason=%q", "partial state")
		s.discard()
		return
	}

	var user api.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.logger.Printf("session discarded reason=%q error=%q", "corrupt user", err)
		s.discard()
		return
	}
	s.token = token
	s.user = &user
}

func (s *Store) discard() {
	if err := s.backend.Remove(TokenKey, UserKey); err != nil {
		s.logger.Printf("session cleanup error=%q", err)
	}
}

func (s *Store) SetAuth(token string, user api.User) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("set auth: empty token")
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.SetAll(map[string]string{TokenKey: token, UserKey: string(encoded)}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.token = token
	s.user = &user
	return nil
}

// ClearAuth signs out. The in-memory pair is dropped even if the persisted
// copy cannot be removed.
func (s *Store) ClearAuth() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil
	if err := s.backend.Remove(TokenKey, UserKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) User() (api.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return api.User{}, false
	}
	return *s.user, true
}

// TokenExpiry reads the exp claim of the bearer token without verifying its
// signature; verification belongs to the server.
func (s *Store) TokenExpiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	return tokenExpiry(token)
}

func tokenExpiry(raw string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Require is the route guard for commands that need a signed-in user.
// Tokens without a readable expiry are left for the server to judge.
func (s *Store) Require(now time.Time) error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if exp, ok := s.TokenExpiry(); ok && !now.Before(exp) {
		return ErrTokenExpired
	}
	return nil
}
