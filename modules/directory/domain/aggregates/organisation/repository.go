package organisation

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Organisation, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]*Organisation, error)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, o *Organisation) (*Organisation, error)
	Update(ctx context.Context, o *Organisation) (*Organisation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
