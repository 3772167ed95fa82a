package servicelocation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceLocation, error)
	GetByServiceID(ctx context.Context, serviceID uuid.UUID) ([]*ServiceLocation, error)
	Create(ctx context.Context, sl *ServiceLocation) (*ServiceLocation, error)
	// Update rewrites the row and wholesale-replaces both opening-hour sets.
	Update(ctx context.Context, sl *ServiceLocation) (*ServiceLocation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
