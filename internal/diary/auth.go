// Package diary holds the sessions the presentation layer drives: login/logout and the
// notes collection with its loading state.
package diary

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/diarynotes/diary-go/internal/model"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9+._%\-]{1,256}@[a-zA-Z0-9][a-zA-Z0-9\-]{0,64}(\.[a-zA-Z0-9][a-zA-Z0-9\-]{0,25})+$`)
	codePattern  = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	pinPattern   = regexp.MustCompile(`^[0-9]{4}$`)
)

const codeLength = 4

// ValidationError is a local input error detected before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// LoginAPI is the login call of the API client.
type LoginAPI interface {
	Login(ctx context.Context, req model.LoginRequest) (model.LoginData, error)
}

// SessionStore persists the authenticated session.
type SessionStore interface {
	Save(token string, user model.User) error
	Clear() error
	IsLoggedIn() bool
	User() (model.User, bool)
}

// AuthSession logs users in and out.
type AuthSession struct {
	api   LoginAPI
	store SessionStore
	log   *slog.Logger
}

// NewAuthSession creates an AuthSession. A nil log uses slog.Default().
func NewAuthSession(api LoginAPI, store SessionStore, log *slog.Logger) *AuthSession {
	if log == nil {
		log = slog.Default()
	}
	return &AuthSession{api: api, store: store, log: log}
}

// LoginWithEmail authenticates with an email address and a 4-digit PIN.
func (a *AuthSession) LoginWithEmail(ctx context.Context, email, pin string) (model.User, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(pin) == "" {
		return model.User{}, &ValidationError{Field: "email", Message: "Please enter both email and password"}
	}
	if !emailPattern.MatchString(email) {
		return model.User{}, &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	if err := validatePIN(pin); err != nil {
		return model.User{}, err
	}
	return a.login(ctx, model.EmailLogin(email, pin))
}

// LoginWithCode authenticates with a 4-character signup code and a 4-digit PIN.
func (a *AuthSession) LoginWithCode(ctx context.Context, code, pin string) (model.User, error) {
	if strings.TrimSpace(code) == "" || strings.TrimSpace(pin) == "" {
		return model.User{}, &ValidationError{Field: "code", Message: "Please enter both signup code and password"}
	}
	if len(code) != codeLength {
		return model.User{}, &ValidationError{Field: "code", Message: "Signup code must be 4 characters"}
	}
	if !codePattern.MatchString(code) {
		return model.User{}, &ValidationError{Field: "code", Message: "Signup code must contain only letters and numbers"}
	}
	if err := validatePIN(pin); err != nil {
		return model.User{}, err
	}
	return a.login(ctx, model.CodeLogin(code, pin))
}

func validatePIN(pin string) error {
	if !pinPattern.MatchString(pin) {
		return &ValidationError{Field: "pin", Message: "PIN must be 4 digits"}
	}
	return nil
}

func (a *AuthSession) login(ctx context.Context, req model.LoginRequest) (model.User, error) {
	data, err := a.api.Login(ctx, req)
	if err != nil {
		a.log.Info("login failed", "error", err)
		return model.User{}, err
	}

	if err := a.store.Save(data.Authorization, data.User); err != nil {
		return model.User{}, fmt.Errorf("save session: %w", err)
	}
	a.log.Info("logged in", "profile_id", data.User.ID)
	return data.User, nil
}

// Logout clears the stored session. Calling it while logged out is harmless.
func (a *AuthSession) Logout() error {
	if err := a.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a session is stored.
func (a *AuthSession) IsAuthenticated() bool {
	return a.store.IsLoggedIn()
}

// User returns the logged-in user.
func (a *AuthSession) User() (model.User, bool) {
	return a.store.User()
}
