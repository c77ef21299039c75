package course

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidPrice = errors.New("price must be between 0.01 and 99999999.99 with at most 2 decimal places")
	ErrInvalidTitle = errors.New("title must be between 3 and 200 characters")
)

type CreateInput struct {
	Title       string
	Description string
	Price       float64
	ImageURL    string
}

type Service interface {
	Create(ctx context.Context, creatorID uuid.UUID, input CreateInput) (*Course, error)
	Update(ctx context.Context, creatorID, courseID uuid.UUID, patch Patch) (*Course, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Course, error)
	List(ctx context.Context) ([]Course, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, creatorID uuid.UUID, input CreateInput) (*Course, error) {
	if !ValidPrice(input.Price) {
		return nil, ErrInvalidPrice
	}
	title := strings.TrimSpace(input.Title)
	if !ValidTitle(title) {
		return nil, ErrInvalidTitle
	}

	c := &Course{
		Title:       title,
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		CreatorID:   creatorID,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		switch {
		case errors.Is(err, ErrCreatorNotFound):
			return nil, ErrCreatorNotFound
		case errors.Is(err, ErrInvalidPrice):
			return nil, ErrInvalidPrice
		}
		log.Error().Err(err).Stringer("creator_id", creatorID).Msg("service: failed to create course in repository")
		return nil, fmt.Errorf("service: failed to save course: %w", err)
	}

	log.Info().Stringer("course_id", c.ID).Stringer("creator_id", creatorID).Msg("service: course created")
	return c, nil
}

func (s *service) Update(ctx context.Context, creatorID, courseID uuid.UUID, patch Patch) (*Course, error) {
	if patch.Price != nil && !ValidPrice(*patch.Price) {
		return nil, ErrInvalidPrice
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if !ValidTitle(title) {
			return nil, ErrInvalidTitle
		}
		patch.Title = &title
	}
	if patch.IsEmpty() {
		log.Debug().Stringer("course_id", courseID).Msg("service: update without fields, only touching updated_at")
	}

	c, err := s.repo.UpdateOwned(ctx, courseID, creatorID, patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, ErrInvalidPrice):
			return nil, ErrInvalidPrice
		}
		log.Error().Err(err).Stringer("course_id", courseID).Msg("service: failed to update course in repository")
		return nil, fmt.Errorf("service: failed to update course: %w", err)
	}

	log.Info().Stringer("course_id", c.ID).Stringer("creator_id", c.CreatorID).Msg("service: course updated")
	return c, nil
}

func (s *service) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Course, error) {
	courses, err := s.repo.ListByCreator(ctx, creatorID)
	if err != nil {
		log.Error().Err(err).Stringer("creator_id", creatorID).Msg("service: failed to list creator courses")
		return nil, fmt.Errorf("service: failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *service) List(ctx context.Context) ([]Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list courses")
		return nil, fmt.Errorf("service: failed to list courses: %w", err)
	}
	return courses, nil
}
