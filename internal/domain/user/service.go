package user

import (
	"context"

	"github.com/google/uuid"
)

// Service exposes user directory reads
type Service struct {
	repo Repository
}

// NewService creates the user service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns one user
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns users, optionally filtered by role.
func (s *Service) List(ctx context.Context, role Role, limit, offset int) ([]*User, error) {
	if role != "" && !role.Valid() {
		return nil, ErrInvalidRole
	}
	return s.repo.List(ctx, role, limit, offset)
}
