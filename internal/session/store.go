// Package session persists the authenticated session: token, user profile and profile id.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/diarynotes/diary-go/internal/model"
)

// HeaderAuthToken is the header carrying the session token on every authenticated call.
const HeaderAuthToken = "authorization-token"

// Store owns the session. Every read goes to the underlying Storage so callers
// always see the latest login or logout.
type Store struct {
	storage Storage
	log     *slog.Logger
	mu      sync.Mutex
}

// NewStore creates a Store over storage.
func NewStore(storage Storage, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{storage: storage, log: log}
}

// Save replaces any prior session with token and user. The profile id is user.ID.
func (s *Store) Save(token string, user model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storage.Save(Record{
		Token:     token,
		UserJSON:  string(data),
		ProfileID: user.ID,
		LoggedIn:  true,
	})
}

// Clear removes the session. It is safe to call when nothing is stored.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Clear()
}

// Token returns the stored auth token.
func (s *Store) Token() (string, bool) {
	rec, ok := s.load()
	if !ok || rec.Token == "" {
		return "", false
	}
	return rec.Token, true
}

// ProfileID returns the profile id used as the notes path key.
func (s *Store) ProfileID() (string, bool) {
	rec, ok := s.load()
	if !ok || rec.ProfileID == "" {
		return "", false
	}
	return rec.ProfileID, true
}

// User returns the cached user profile. A profile that no longer decodes is reported as absent.
func (s *Store) User() (model.User, bool) {
	rec, ok := s.load()
	if !ok || rec.UserJSON == "" {
		return model.User{}, false
	}
	var user model.User
	if err := json.Unmarshal([]byte(rec.UserJSON), &user); err != nil {
		s.log.Warn("stored user profile unreadable", "error", err)
		return model.User{}, false
	}
	return user, true
}

// IsLoggedIn reports whether the logged-in flag is set and a token is present.
func (s *Store) IsLoggedIn() bool {
	rec, ok := s.load()
	return ok && rec.LoggedIn && rec.Token != ""
}

// AuthHeaders returns the headers for an authenticated call.
// An empty map means no request should be attempted.
func (s *Store) AuthHeaders() map[string]string {
	token, ok := s.Token()
	if !ok {
		return map[string]string{}
	}
	return map[string]string{HeaderAuthToken: token}
}

// ExpiresAt reads the exp claim of the stored token without verifying its signature.
// Tokens that are not JWTs, or carry no exp, report false.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token, ok := s.Token()
	if !ok {
		return time.Time{}, false
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Store) load() (Record, bool) {
	rec, ok, err := s.storage.Load()
	if err != nil {
		s.log.Warn("session storage unreadable", "error", err)
		return Record{}, false
	}
	return rec, ok
}
