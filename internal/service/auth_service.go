package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/security"
)

// AuthService handles registration, login and bearer-token resolution.
type AuthService struct {
	Deps
	tokens   *security.TokenService
	hash     *security.PasswordHasher
	profiles *UserService
	monikers func() string
}

func NewAuthService(deps Deps, tokens *security.TokenService, hash *security.PasswordHasher, profiles *UserService) *AuthService {
	return &AuthService{
		Deps:     deps.withDefaults(),
		tokens:   tokens,
		hash:     hash,
		profiles: profiles,
		monikers: RandomMoniker,
	}
}

type RegisterInput struct {
	Username string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

// Profile is a user as seen by themselves.
type Profile struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Moniker     string    `json:"moniker"`
	DisplayName *string   `json:"display_name"`
	ContactInfo *string   `json:"contact_info"`
	CreatedAt   time.Time `json:"created_at"`
}

type TokenResponse struct {
	AccessToken string   `json:"token"`
	TokenType   string   `json:"token_type"`
	User        *Profile `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*TokenResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, domain.Validation("Username and password required")
	}
	if n := utf8.RuneCountInString(username); n < domain.MinUsernameLen || n > domain.MaxUsernameLen {
		return nil, domain.Validation(fmt.Sprintf("Username must be %d-%d characters", domain.MinUsernameLen, domain.MaxUsernameLen))
	}
	if len(in.Password) < domain.MinPasswordLen {
		return nil, domain.Validation(fmt.Sprintf("Password must be at least %d characters", domain.MinPasswordLen))
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hashed,
		Moniker:      s.monikers(),
		CreatedAt:    s.now(),
	}
	if err := s.Store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	s.Logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	if in.Username == "" || in.Password == "" {
		return nil, domain.Validation("Username and password required")
	}
	user, err := s.Store.Users().GetByUsername(ctx, strings.TrimSpace(in.Username))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Authentication("Invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := s.hash.Matches(in.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domain.Authentication("Invalid credentials")
	}
	return s.issue(user)
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	username, err := s.tokens.Subject(token)
	if err != nil {
		return nil, domain.Wrap(domain.KindAuthentication, "Invalid or expired token", err)
	}
	user, err := s.Store.Users().GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Authentication("Invalid or expired token")
	}
	if err != nil {
		return nil, fmt.Errorf("get token user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*TokenResponse, error) {
	token, err := s.tokens.CreateForUser(user.Username)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	profile, err := s.profiles.profile(user)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        profile,
	}, nil
}
