package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

const minPasswordLength = 6

// AuthService implements signup, login and startup seeding.
type AuthService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo ports.UserRepository, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, logger: logger, now: time.Now}
}

func (s *AuthService) Signup(ctx context.Context, username, password, displayName string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: missing username or password", domain.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = username
	}
	return s.create(ctx, username, password, displayName, domain.RoleUser)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: missing username or password", domain.ErrValidation)
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Seed creates each listed account that does not exist yet.
func (s *AuthService) Seed(ctx context.Context, users []ports.SeedUser) error {
	for _, su := range users {
		if su.Username == "" || su.Password == "" {
			continue
		}
		_, err := s.repo.FindByUsername(ctx, su.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("seed %s: %w", su.Username, err)
		}
		name := su.DisplayName
		if name == "" {
			name = su.Username
		}
		if _, err := s.create(ctx, su.Username, su.Password, name, su.Role); err != nil {
			return fmt.Errorf("seed %s: %w", su.Username, err)
		}
		s.logger.Info().Str("username", su.Username).Str("role", string(su.Role)).Msg("seeded user")
	}
	return nil
}

func (s *AuthService) create(ctx context.Context, username, password, displayName string, role domain.Role) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Handle:       generateHandle(),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// generateHandle returns a public handle in the format user-xxxxxx.
func generateHandle() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("user-%06x", time.Now().UnixNano()&0xFFFFFF)
	}
	return fmt.Sprintf("user-%x", b)
}
