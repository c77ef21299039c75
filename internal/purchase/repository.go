package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/course-marketplace/internal/db"
)

var (
	ErrAlreadyPurchased = errors.New("course already purchased")
	ErrCourseNotFound   = errors.New("course not found")
	ErrUserNotFound     = errors.New("purchasing user not found")
)

const userForeignKey = "purchases_user_id_fkey"

type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Detail, error)
}

type postgresRepository struct {
	db db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &postgresRepository{db: q}
}

// Create records the purchase. The (user_id, course_id) unique constraint
// rejects a second purchase even when two requests race.
func (r *postgresRepository) Create(ctx context.Context, p *Purchase) error {
	query := `
		INSERT INTO purchases (user_id, course_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, p.UserID, p.CourseID).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				log.Warn().Stringer("user_id", p.UserID).Stringer("course_id", p.CourseID).Msg("repository: course already purchased")
				return ErrAlreadyPurchased
			case pgerrcode.ForeignKeyViolation:
				if pgErr.ConstraintName == userForeignKey {
					log.Warn().Stringer("user_id", p.UserID).Msg("repository: purchase by unknown user")
					return ErrUserNotFound
				}
				log.Warn().Str("constraint", pgErr.ConstraintName).Stringer("course_id", p.CourseID).Msg("repository: purchase of unknown course")
				return ErrCourseNotFound
			}
		}
		return fmt.Errorf("repository: failed to insert purchase: %w", err)
	}

	return nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Detail, error) {
	query := `
		SELECT p.id, p.user_id, p.course_id, p.created_at,
		       c.id, c.title, c.description, c.price, c.image_url, c.creator_id, c.created_at, c.updated_at
		FROM purchases p
		JOIN courses c ON c.id = p.course_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC, p.id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query purchases of user '%s': %w", userID, err)
	}
	defer rows.Close()

	details := make([]Detail, 0)
	for rows.Next() {
		var d Detail
		err := rows.Scan(
			&d.ID, &d.UserID, &d.CourseID, &d.CreatedAt,
			&d.Course.ID, &d.Course.Title, &d.Course.Description, &d.Course.Price,
			&d.Course.ImageURL, &d.Course.CreatorID, &d.Course.CreatedAt, &d.Course.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan purchase: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed to iterate purchases: %w", err)
	}

	return details, nil
}
