package auth

import (
	"context"
	"errors"
	"time"

	"github.com/carewallet/carewallet/internal/access"
	"github.com/carewallet/carewallet/internal/config"
	"github.com/carewallet/carewallet/internal/identity"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenInvalidated = errors.New("token invalidated")
)

type Service struct {
	cfg    config.Config
	idRepo identity.Repository
	now    func() time.Time
}

func NewService(cfg config.Config, idRepo identity.Repository) *Service {
	return &Service{cfg: cfg, idRepo: idRepo, now: time.Now}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login issues a token pair for an already authenticated user.
func (s *Service) Login(user identity.User) (TokenPair, error) {
	now := s.now()
	accessToken, _, err := SignHS256(user, []byte(s.cfg.JWTSecret), now, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, _, err := SignHS256(user, []byte(s.cfg.RefreshSecret), now, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken, ExpiresIn: int64(s.cfg.AccessTokenTTL.Seconds())}, nil
}

// Refresh verifies the refresh token and returns a new access token if valid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	user, err := s.verify(ctx, refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return "", 0, err
	}
	signed, _, err := SignHS256(user, []byte(s.cfg.JWTSecret), s.now(), s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// Authenticate resolves an access token into the calling principal. The role
// is read from the stored user, not from the token.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (access.Principal, error) {
	user, err := s.verify(ctx, accessToken, s.cfg.JWTSecret)
	if err != nil {
		return access.Principal{}, err
	}
	return access.Principal{UserID: user.ID, Role: user.Role}, nil
}

// Logout increments token version so older tokens become invalid.
func (s *Service) Logout(ctx context.Context, userID string) error {
	user, err := s.idRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.idRepo.UpdateTokenVersion(ctx, user.ID, user.TokenVersion+1)
}

func (s *Service) verify(ctx context.Context, token, secret string) (identity.User, error) {
	claims, err := ParseHS256(token, []byte(secret))
	if err != nil {
		return identity.User{}, ErrInvalidToken
	}
	user, err := s.idRepo.FindByID(ctx, claims.Subject)
	if err != nil {
		return identity.User{}, ErrInvalidToken
	}
	if user.TokenVersion != claims.Version {
		return identity.User{}, ErrTokenInvalidated
	}
	return user, nil
}
