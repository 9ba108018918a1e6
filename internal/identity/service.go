package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// WalletProvisioner creates the wallet that every account owns. It must be
// idempotent.
type WalletProvisioner interface {
	Provision(ctx context.Context, userID string) (string, error)
}

// Service manages identity lifecycle.
type Service struct {
	repo    Repository
	wallets WalletProvisioner
	now     func() time.Time
}

// NewService creates a new identity service. wallets may be nil, in which case
// accounts are created without a wallet.
func NewService(repo Repository, wallets WalletProvisioner) *Service {
	return &Service{repo: repo, wallets: wallets, now: func() time.Time { return time.Now().UTC() }}
}

// Register creates a user with a hashed password and provisions its wallet.
// It returns the user and the wallet id. When the wallet cannot be opened the
// user is removed again so the registration can be retried.
func (s *Service) Register(ctx context.Context, reg Registration) (User, string, error) {
	email, err := normalizeEmail(reg.Email)
	if err != nil {
		return User{}, "", err
	}
	if len(reg.Password) < minPasswordLength {
		return User{}, "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRegistration, minPasswordLength)
	}
	if !reg.Role.Valid() {
		return User{}, "", fmt.Errorf("%w: unknown role %q", ErrInvalidRegistration, reg.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, "", err
	}

	user := User{
		ID:           uuid.New().String(),
		Email:        email,
		FullName:     strings.TrimSpace(reg.FullName),
		Role:         reg.Role,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, "", err
	}

	walletID, err := s.provision(ctx, user.ID)
	if err != nil {
		if delErr := s.repo.Delete(context.WithoutCancel(ctx), user.ID); delErr != nil {
			return User{}, "", errors.Join(err, fmt.Errorf("remove unprovisioned user: %w", delErr))
		}
		return User{}, "", err
	}
	return user, walletID, nil
}

// Authenticate verifies credentials and records the login time.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	email, err := normalizeEmail(creds.Email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.repo.TouchLogin(ctx, user.ID, now); err != nil {
		return User{}, err
	}
	user.LastLogin = &now
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator when it does not exist yet
// and makes sure it owns a wallet.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, fullName string) (User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	existing, err := s.repo.FindByEmail(ctx, normalized)
	switch {
	case err == nil:
		if existing.Role != RoleAdmin {
			return User{}, fmt.Errorf("bootstrap admin %s exists with role %s", normalized, existing.Role)
		}
		if _, err := s.provision(ctx, existing.ID); err != nil {
			return User{}, err
		}
		return existing, nil
	case !errors.Is(err, ErrUserNotFound):
		return User{}, err
	}

	user, _, err := s.Register(ctx, Registration{Email: normalized, Password: password, FullName: fullName, Role: RoleAdmin})
	return user, err
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) provision(ctx context.Context, userID string) (string, error) {
	if s.wallets == nil {
		return "", nil
	}
	walletID, err := s.wallets.Provision(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("provision wallet: %w", err)
	}
	return walletID, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: invalid email %q", ErrInvalidRegistration, email)
	}
	return email, nil
}
