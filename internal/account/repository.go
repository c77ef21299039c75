package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/course-marketplace/internal/db"
)

var (
	ErrNotFound    = errors.New("account not found")
	ErrEmailExists = errors.New("email already exists")
)

type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
}

type postgresRepository struct {
	db   db.Querier
	kind Kind
}

func NewRepository(q db.Querier, kind Kind) Repository {
	return &postgresRepository{db: q, kind: kind}
}

// Create inserts the account and fills in its generated id and creation time.
// Uniqueness of the email is decided by the table's unique constraint.
func (r *postgresRepository) Create(ctx context.Context, a *Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.kind.table())

	err := r.db.QueryRow(ctx, query, a.Email, a.PasswordHash, a.FirstName, a.LastName).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			log.Warn().Str("kind", r.kind.String()).Str("constraint", pgErr.ConstraintName).Msg("repository: email already exists")
			return ErrEmailExists
		}
		return fmt.Errorf("repository: failed to insert %s: %w", r.kind, err)
	}

	return nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT id, email, password_hash, first_name, last_name, created_at
		FROM %s
		WHERE email = $1
	`, r.kind.table())

	return r.scanOne(r.db.QueryRow(ctx, query, email), "email", email)
}

func (r *postgresRepository) scanOne(row pgx.Row, by, value string) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select %s by %s '%s': %w", r.kind, by, value, err)
	}
	return &a, nil
}
