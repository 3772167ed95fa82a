package location

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
	GetByID(ctx context.Context, id uuid.UUID) (*Location, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]*Location, error)
	Create(ctx context.Context, l *Location) (*Location, error)
	Update(ctx context.Context, l *Location) (*Location, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
