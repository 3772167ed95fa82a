package service

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	OrganisationID *uuid.UUID
	Search         string
	Limit          int
	Offset         int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Service, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]*Service, error)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, s *Service) (*Service, error)
	// Update rewrites the service row and wholesale-replaces its nested
	// useful infos, offerings, social medias and category links.
	Update(ctx context.Context, s *Service) (*Service, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
