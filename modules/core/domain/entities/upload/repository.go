package upload

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Upload, error)
	Create(ctx context.Context, u *Upload) (*Upload, error)
	// MarkAssigned transitions a pending-assignment file to assigned. It
	// fails when the file is missing or already assigned.
	MarkAssigned(ctx context.Context, id uuid.UUID) error
}
