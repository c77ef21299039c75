package course

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/course-marketplace/internal/db"
)

var (
	ErrNotFound        = errors.New("course not found")
	ErrCreatorNotFound = errors.New("course creator not found")
)

const courseColumns = "id, title, description, price, image_url, creator_id, created_at, updated_at"

type Repository interface {
	Create(ctx context.Context, c *Course) error
	UpdateOwned(ctx context.Context, id, creatorID uuid.UUID, patch Patch) (*Course, error)
	List(ctx context.Context) ([]Course, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Course, error)
}

type postgresRepository struct {
	db db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &postgresRepository{db: q}
}

func (r *postgresRepository) Create(ctx context.Context, c *Course) error {
	query := `
		INSERT INTO courses (title, description, price, image_url, creator_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, c.Title, c.Description, c.Price, c.ImageURL, c.CreatorID).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.ForeignKeyViolation:
				log.Warn().Stringer("creator_id", c.CreatorID).Msg("repository: course creator does not exist")
				return ErrCreatorNotFound
			case pgerrcode.CheckViolation, pgerrcode.NumericValueOutOfRange:
				log.Warn().Str("code", pgErr.Code).Float64("price", c.Price).Msg("repository: course price rejected")
				return ErrInvalidPrice
			}
		}
		return fmt.Errorf("repository: failed to insert course: %w", err)
	}

	return nil
}

// UpdateOwned applies patch to the course only if it belongs to creatorID and
// returns the row as stored. A missing course and a foreign one are both ErrNotFound.
func (r *postgresRepository) UpdateOwned(ctx context.Context, id, creatorID uuid.UUID, patch Patch) (*Course, error) {
	query := `
		UPDATE courses
		SET title       = COALESCE($3, title),
		    description = COALESCE($4, description),
		    price       = COALESCE($5, price),
		    image_url   = COALESCE($6, image_url),
		    updated_at  = NOW()
		WHERE id = $1 AND creator_id = $2
		RETURNING ` + courseColumns

	row := r.db.QueryRow(ctx, query, id, creatorID, patch.Title, patch.Description, patch.Price, patch.ImageURL)

	c, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == pgerrcode.CheckViolation || pgErr.Code == pgerrcode.NumericValueOutOfRange) {
			log.Warn().Str("code", pgErr.Code).Stringer("course_id", id).Msg("repository: course price rejected")
			return nil, ErrInvalidPrice
		}
		return nil, fmt.Errorf("repository: failed to update course '%s': %w", id, err)
	}

	return c, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at DESC, id`

	return r.list(ctx, query)
}

func (r *postgresRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE creator_id = $1 ORDER BY created_at DESC, id`

	return r.list(ctx, query, creatorID)
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...any) ([]Course, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := make([]Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan course: %w", err)
		}
		courses = append(courses, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed to iterate courses: %w", err)
	}

	return courses, nil
}

func scanCourse(row pgx.Row) (*Course, error) {
	var c Course
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Price, &c.ImageURL, &c.CreatorID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
