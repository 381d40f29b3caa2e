package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"taxfiling/internal/auth"
	"taxfiling/internal/domain"
)

// AuthService handles registration and login and issues session tokens.
type AuthService struct {
	users    domain.UserRepository
	secret   []byte
	tokenTTL time.Duration
	logger   zerolog.Logger
}

func NewAuthService(users domain.UserRepository, secret []byte, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, secret: secret, tokenTTL: tokenTTL, logger: logger}
}

// AuthResult is returned by both Register and Login.
type AuthResult struct {
	UserID   string
	UserName string
	Token    string
}

// Register creates a new user with a hashed password and returns a session
// token. A duplicate email is a conflict.
func (s *AuthService) Register(ctx context.Context, email, userName, password string) (*AuthResult, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("user with this email already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		UserName:     userName,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The unique index is authoritative; the pre-check above only
		// narrows the race window.
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("user with this email already exists: %w", domain.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(user)
}

// Login verifies the credentials and returns a session token. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrUnauthorized
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, s.secret, s.tokenTTL)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("sign token failed")
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{UserID: user.ID, UserName: user.UserName, Token: token}, nil
}
