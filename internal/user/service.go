package user

import (
	"context"
	"strings"
)

// Service is the identity boundary. Nothing else creates user records:
// callers provision explicitly before relying on a user's existence.
type Service interface {
	Provision(ctx context.Context, id Identity) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Provision(ctx context.Context, id Identity) (*User, error) {
	subject := strings.TrimSpace(id.Subject)
	if subject == "" {
		return nil, ErrSubjectMissing
	}

	u := &User{
		ID:         subject,
		GivenName:  strings.TrimSpace(id.GivenName),
		FamilyName: strings.TrimSpace(id.FamilyName),
	}
	if err := s.repo.Upsert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}
