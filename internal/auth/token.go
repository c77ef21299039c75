package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

// Scope separates the user and admin identity spaces. Each scope has its own
// signing secret and audience, so a token is only ever valid for one of them.
type Scope string

const (
	ScopeUser  Scope = "user"
	ScopeAdmin Scope = "admin"
)

func (s Scope) String() string {
	return string(s)
}

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Identity is what a verified token proves about the caller.
type Identity struct {
	ID        uuid.UUID
	Email     string
	Scope     Scope
	ExpiresAt time.Time
}

type TokenManager struct {
	secrets map[Scope][]byte
	issuer  string
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*TokenManager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) {
		m.now = now
	}
}

func NewTokenManager(userSecret, adminSecret, issuer string, ttl time.Duration, opts ...Option) (*TokenManager, error) {
	if userSecret == "" || adminSecret == "" {
		return nil, errors.New("auth: both user and admin secrets are required")
	}
	if userSecret == adminSecret {
		return nil, errors.New("auth: user and admin secrets must differ")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("auth: token ttl must be positive, got %s", ttl)
	}

	m := &TokenManager{
		secrets: map[Scope][]byte{
			ScopeUser:  []byte(userSecret),
			ScopeAdmin: []byte(adminSecret),
		},
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *TokenManager) Issue(scope Scope, subjectID uuid.UUID, email string) (string, time.Time, error) {
	secret, ok := m.secrets[scope]
	if !ok {
		return "", time.Time{}, fmt.Errorf("auth: unknown scope %q", scope)
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{scope.String()},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify fails closed: any problem with the token yields ErrInvalidToken.
func (m *TokenManager) Verify(scope Scope, tokenString string) (*Identity, error) {
	secret, ok := m.secrets[scope]
	if !ok || tokenString == "" {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(scope.String()),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	id, err := uuid.FromString(claims.Subject)
	if err != nil || id == uuid.Nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return &Identity{
		ID:        id,
		Email:     claims.Email,
		Scope:     scope,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
