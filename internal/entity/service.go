package entity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/explore-grabby/booking-backend/internal/logger"
)

type CreateRequest struct {
	Name        string
	Description string
	Details     Details
}

// UpdateRequest changes descriptive attributes. A non-nil Details must be of
// the entity's existing kind.
type UpdateRequest struct {
	Name        *string
	Description *string
	Details     Details
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	List(ctx context.Context, filter Filter) ([]*Entity, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Entity, error)
	SetArchived(ctx context.Context, id string, archived bool) (*Entity, error)
	Delete(ctx context.Context, id string) error
	SeedDemo(ctx context.Context) ([]*Entity, error)
}

type service struct {
	repo  Repository
	cache Cache
}

func NewService(repo Repository, cache Cache) Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &service{repo: repo, cache: cache}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Entity, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate entity id failed: %w", err)
	}

	e := &Entity{
		ID:          id.String(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Details:     req.Details,
	}
	if err := e.validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return e, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Entity, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Entity, error) {
	// The generation is read before the repository so a write racing this
	// query invalidates what we are about to store.
	gen, genErr := s.cache.Generation(ctx)
	if genErr == nil {
		if items, ok := s.cache.GetList(ctx, gen, filter); ok {
			return items, nil
		}
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if genErr == nil {
		s.cache.SetList(ctx, gen, filter, items)
	}
	return items, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Entity, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		e.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Details != nil {
		if req.Details.Kind() != e.Kind() {
			return nil, ErrKindMismatch
		}
		e.Details = req.Details
	}
	if err := e.validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return e, nil
}

// SetArchived hides or restores an entity in bookable listings. Existing
// reservations are untouched.
func (s *service) SetArchived(ctx context.Context, id string, archived bool) (*Entity, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Archived == archived {
		return e, nil
	}

	e.Archived = archived
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return e, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// SeedDemo creates a small catalog for manual testing.
func (s *service) SeedDemo(ctx context.Context) ([]*Entity, error) {
	const nintendoSwitch = "Nintendo Switch"
	seed := []CreateRequest{
		{
			Name:        "Mario Kart 8 Deluxe",
			Description: "Fun racing with classic Nintendo characters on colorful tracks.",
			Details:     Game{ConsoleType: nintendoSwitch},
		},
		{
			Name:        "Super Smash Bros Ultimate",
			Description: "Fighting game with the largest roster of the series.",
			Details:     Game{ConsoleType: nintendoSwitch},
		},
		{
			Name:    nintendoSwitch,
			Details: Console{Color: "red-blue"},
		},
		{
			Name:    "Joycons",
			Details: ConsoleAccessory{Color: "blue-yellow", ConsoleType: nintendoSwitch},
		},
	}

	created := make([]*Entity, 0, len(seed))
	for _, req := range seed {
		e, err := s.Create(ctx, req)
		if err != nil {
			return created, err
		}
		created = append(created, e)
	}
	return created, nil
}

func (s *service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.WarnContext(ctx, "entity cache invalidation failed", "error", err)
	}
}
