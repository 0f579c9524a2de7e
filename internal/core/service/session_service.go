package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

type sessionClaims struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SessionService signs session tokens with HS256 and checks them against a
// revocation list.
type SessionService struct {
	secret  []byte
	ttl     time.Duration
	revoked ports.RevocationList
	logger  zerolog.Logger
	now     func() time.Time
}

func NewSessionService(secret string, ttl time.Duration, revoked ports.RevocationList, logger zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *SessionService) Issue(_ context.Context, user *domain.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := sessionClaims{
		Name:   user.DisplayName,
		Handle: user.Handle,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, expires, nil
}

func (s *SessionService) Resolve(ctx context.Context, token string) domain.Identity {
	if token == "" {
		return domain.Guest()
	}
	claims, err := s.parse(token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("session token rejected")
		return domain.Guest()
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		// fail closed: an unreachable revocation list downgrades to guest
		s.logger.Warn().Err(err).Msg("revocation check failed")
		return domain.Guest()
	}
	if revoked {
		return domain.Guest()
	}

	return domain.Identity{
		Username:    claims.Subject,
		DisplayName: claims.Name,
		Handle:      claims.Handle,
		Role:        domain.ParseRole(claims.Role),
	}
}

func (s *SessionService) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		// nothing to revoke
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, ttl)
}

func (s *SessionService) parse(token string) (*sessionClaims, error) {
	var claims sessionClaims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.ID == "" {
		return nil, errors.New("invalid session token")
	}
	return &claims, nil
}
