package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	Purchase(ctx context.Context, userID, courseID uuid.UUID) (*Purchase, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Detail, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Purchase(ctx context.Context, userID, courseID uuid.UUID) (*Purchase, error) {
	p := &Purchase{UserID: userID, CourseID: courseID}

	if err := s.repo.Create(ctx, p); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyPurchased), errors.Is(err, ErrCourseNotFound), errors.Is(err, ErrUserNotFound):
			return nil, err
		}
		log.Error().Err(err).Stringer("user_id", userID).Stringer("course_id", courseID).Msg("service: failed to create purchase in repository")
		return nil, fmt.Errorf("service: failed to save purchase: %w", err)
	}

	log.Info().Stringer("purchase_id", p.ID).Stringer("user_id", userID).Stringer("course_id", courseID).Msg("service: course purchased")
	return p, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Detail, error) {
	details, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to list purchases")
		return nil, fmt.Errorf("service: failed to list purchases: %w", err)
	}
	return details, nil
}
