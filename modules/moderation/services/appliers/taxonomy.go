package appliers

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/directory/domain/entities/taxonomy"
	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
)

type taxonomyApplier struct {
	deps Deps
	tree taxonomy.Tree
}

type taxonomyUpdateDTO struct {
	Name     *string    `json:"name" validate:"omitempty,min=1,max=255"`
	ParentID *uuid.UUID `json:"parent_id"`
	Order    *int       `json:"order" validate:"omitempty,min=0"`
}

func (a *taxonomyApplier) Apply(ctx context.Context, targetID *uuid.UUID, doc payload.Document, _ Options) (*Result, error) {
	if targetID == nil {
		return nil, validationError("taxonomy proposals require a target id", nil)
	}
	node, err := a.deps.Taxonomies.GetByID(ctx, *targetID)
	if err != nil {
		return nil, notFoundError("taxonomy", err)
	}
	if node.Tree != a.tree {
		return nil, validationError("taxonomy belongs to a different tree", nil)
	}

	var dto taxonomyUpdateDTO
	if err := decodeInto(doc, &dto); err != nil {
		return nil, err
	}

	if doc.Has("name") && dto.Name != nil {
		node.Name = *dto.Name
		slug, err := uniqueSlug(ctx, node.Name, node.ID, func(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
			return a.deps.Taxonomies.SlugExists(ctx, a.tree, slug, exclude)
		})
		if err != nil {
			return nil, err
		}
		node.Slug = slug
	}
	if doc.Has("parent_id") {
		node.ParentID = dto.ParentID
	}
	if doc.Has("order") && dto.Order != nil {
		node.Order = *dto.Order
	}

	if _, err := a.deps.Taxonomies.Update(ctx, node); err != nil {
		return nil, err
	}
	return &Result{UpdatedID: &node.ID}, nil
}
