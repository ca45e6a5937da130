package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diarynotes/diary-go/internal/crypto"
	"github.com/diarynotes/diary-go/internal/model"
	"github.com/diarynotes/diary-go/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountNotFound     = errors.New("account not found")
	ErrCredentialsRequired = errors.New("email or signup code is required")
	ErrPINRequired         = errors.New("password is required")
	ErrEmailTaken          = errors.New("email or signup code already taken")
)

// UserStore is the account storage used by AuthService.
type UserStore interface {
	Create(ctx context.Context, acct *model.Account) error
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetBySignupCode(ctx context.Context, code string) (*model.Account, error)
	GetByID(ctx context.Context, id string) (*model.Account, error)
}

// AuthService handles authentication business logic.
type AuthService struct {
	repo      UserStore
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo UserStore, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// Register creates an account that can log in with either its email or its signup code.
func (s *AuthService) Register(ctx context.Context, user model.User, signupCode, pin string) (model.User, error) {
	if user.Email == "" && signupCode == "" {
		return model.User{}, ErrCredentialsRequired
	}
	if pin == "" {
		return model.User{}, ErrPINRequired
	}

	hash, err := crypto.HashPIN(pin)
	if err != nil {
		return model.User{}, err
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.FullName == "" {
		user.FullName = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}

	acct := &model.Account{
		User:       user,
		SignupCode: signupCode,
		PINHash:    hash,
	}
	if err := s.repo.Create(ctx, acct); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, err
	}

	return acct.User, nil
}

// Login authenticates by signup code or email and returns a token bound to the profile.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginData, error) {
	if req.Password == "" {
		return model.LoginData{}, ErrPINRequired
	}

	var (
		acct *model.Account
		err  error
	)
	switch {
	case req.SignUpCode != nil && *req.SignUpCode != "":
		acct, err = s.repo.GetBySignupCode(ctx, *req.SignUpCode)
	case req.Email != nil && *req.Email != "":
		acct, err = s.repo.GetByEmail(ctx, *req.Email)
	default:
		return model.LoginData{}, ErrCredentialsRequired
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.LoginData{}, ErrAccountNotFound
		}
		return model.LoginData{}, err
	}

	match, err := crypto.VerifyPIN(req.Password, acct.PINHash)
	if err != nil {
		return model.LoginData{}, err
	}
	if !match {
		return model.LoginData{}, ErrInvalidCredentials
	}

	token, err := crypto.GenerateToken(acct.User.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.LoginData{}, err
	}

	return model.LoginData{
		Authorization: token,
		User:          acct.User,
	}, nil
}

// GetUser retrieves the profile of an account.
func (s *AuthService) GetUser(ctx context.Context, id string) (model.User, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, ErrAccountNotFound
		}
		return model.User{}, err
	}
	return acct.User, nil
}
