package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/autoflow/autoflow/internal/auth"
	"github.com/autoflow/autoflow/internal/model"
	"github.com/autoflow/autoflow/internal/repository"
)

const minPasswordLength = 8

// UserStore reads and creates accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthService registers users and exchanges credentials for bearer tokens.
type AuthService struct {
	users  UserStore
	tokens *auth.TokenIssuer
	hash   func(string) (string, error)
	verify func(password, encodedHash string) (bool, error)
	now    func() time.Time

	// absentHash is verified against when the email is unknown so both
	// login failures cost one argon2 run.
	absentOnce sync.Once
	absentHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hash:   auth.HashPassword,
		verify: auth.VerifyPassword,
		now:    time.Now,
	}
}

// Session is a freshly issued token and the user it belongs to.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *model.User
}

// Register creates a free-tier account and signs the user in.
func (s *AuthService) Register(ctx context.Context, email, password string) (*Session, error) {
	normalized, ok := normalizeEmail(email)
	if !ok {
		return nil, validationError("a valid email is required")
	}
	if len(password) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := storedTime(s.now())
	user := &model.User{
		ID:           newID(),
		Email:        normalized,
		PasswordHash: hash,
		Tier:         model.TierFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.session(user)
}

// Login verifies credentials. Unknown emails and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	normalized, ok := normalizeEmail(email)
	if !ok || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.verifyAbsent(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	match, err := s.verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	return s.session(user)
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *AuthService) verifyAbsent(password string) {
	s.absentOnce.Do(func() {
		s.absentHash, _ = s.hash("autoflow-absent-account")
	})
	if s.absentHash != "" {
		_, _ = s.verify(password, s.absentHash)
	}
}

func (s *AuthService) session(user *model.User) (*Session, error) {
	token, expires, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{AccessToken: token, ExpiresAt: expires, User: user}, nil
}
