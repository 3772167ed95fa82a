package taxonomy

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Taxonomy, error)
	GetByTree(ctx context.Context, tree Tree) ([]*Taxonomy, error)
	SlugExists(ctx context.Context, tree Tree, slug string, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, t *Taxonomy) (*Taxonomy, error)
	Update(ctx context.Context, t *Taxonomy) (*Taxonomy, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
