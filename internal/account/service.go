package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
	CompareDummy(plain string)
}

type SignUpInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type Service interface {
	SignUp(ctx context.Context, input SignUpInput) (*Account, error)
	SignIn(ctx context.Context, email, password string) (*Account, error)
}

type service struct {
	repo   Repository
	hasher PasswordHasher
	kind   Kind
}

func NewService(repo Repository, hasher PasswordHasher, kind Kind) Service {
	return &service{repo: repo, hasher: hasher, kind: kind}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) SignUp(ctx context.Context, input SignUpInput) (*Account, error) {
	if input.Password == "" {
		return nil, errors.New("service: password cannot be empty")
	}
	if len(input.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		log.Error().Err(err).Str("kind", s.kind.String()).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: internal error hashing password: %w", err)
	}

	a := &Account{
		Email:        NormalizeEmail(input.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Str("kind", s.kind.String()).Msg("service: failed to create account in repository")
		return nil, fmt.Errorf("service: failed to save %s: %w", s.kind, err)
	}

	log.Info().Str("kind", s.kind.String()).Stringer("account_id", a.ID).Msg("service: account signed up")
	return a, nil
}

func (s *service) SignIn(ctx context.Context, email, password string) (*Account, error) {
	a, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.hasher.CompareDummy(password)
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Str("kind", s.kind.String()).Msg("service: failed to get account by email")
		return nil, fmt.Errorf("service: failed to look up %s: %w", s.kind, err)
	}

	if !s.hasher.Compare(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return a, nil
}
