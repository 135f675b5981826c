package services

import (
	"context"

	"storefront-service/apperrors"
	"storefront-service/models"
	"storefront-service/repository"
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Me(ctx context.Context, email string) (*models.User, error) {
	return resolveUser(ctx, s.users, email)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch users", err)
	}
	return users, nil
}

// UpdateRole changes the role of user id. Admins cannot demote themselves.
func (s *UserService) UpdateRole(ctx context.Context, actorEmail string, id int64, role models.Role) (*models.User, error) {
	actor, err := resolveUser(ctx, s.users, actorEmail)
	if err != nil {
		return nil, err
	}
	if actor.ID == id && role != models.RoleAdmin {
		return nil, apperrors.InvalidRequest("You cannot remove your own admin role")
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return nil, storeErr(err, "User")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "User")
	}
	return u, nil
}
