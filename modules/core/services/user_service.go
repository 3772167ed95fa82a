package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectedplaces/directory/modules/core/domain/aggregates/user"
)

type UserService struct {
	repo  user.Repository
	roles user.RoleRepository
}

func NewUserService(repo user.Repository, roles user.RoleRepository) *UserService {
	return &UserService{
		repo:  repo,
		roles: roles,
	}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) Roles(ctx context.Context, userID uuid.UUID) ([]user.Role, error) {
	return s.roles.RolesForUser(ctx, userID)
}

// IsGlobalAdmin reports whether the user holds the unscoped admin role.
func (s *UserService) IsGlobalAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	roles, err := s.roles.RolesForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.Name == user.RoleGlobalAdmin {
			return true, nil
		}
	}
	return false, nil
}
