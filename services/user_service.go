package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/repositories"
	"github.com/yeremiapane/startup-platform/utils"
)

type UserService struct {
	repo repositories.UserRepository
}

func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.found(s.repo.FindByID(ctx, id))
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.found(s.repo.FindByEmail(ctx, email))
}

func (s *UserService) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return s.found(s.repo.FindByGoogleID(ctx, googleID))
}

func (s *UserService) found(user *models.User, err error) (*models.User, error) {
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("find user", err)
	}
	return user, nil
}

// Create validates and stores a new user. Role defaults to STARTUP and status to ACTIVE.
func (s *UserService) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" {
		return utils.NewValidationError("Email is required")
	}
	if user.UserRole == "" {
		user.UserRole = models.RoleStartup
	}
	if !user.UserRole.Valid() {
		return utils.NewValidationError("Invalid user role")
	}
	if user.Status == "" {
		user.Status = models.UserActive
	}
	if !user.Status.Valid() {
		return utils.NewValidationError("Invalid user status")
	}
	user.FirstName = utils.SanitizeText(user.FirstName)
	user.LastName = utils.SanitizeText(user.LastName)

	if _, err := s.repo.FindByEmail(ctx, user.Email); err == nil {
		return utils.NewConflictError("Email already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return utils.NewInternalError("check email", err)
	}

	err := s.repo.Create(ctx, user)
	if errors.Is(err, repositories.ErrDuplicate) {
		return utils.NewConflictError("Email already registered")
	}
	if err != nil {
		return utils.NewInternalError("create user", err)
	}
	return nil
}

// Update applies the provided fields only.
func (s *UserService) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.UserRole.Set && !patch.UserRole.Value.Valid() {
		return nil, utils.NewValidationError("Invalid user role")
	}
	if patch.Status.Set && !patch.Status.Value.Valid() {
		return nil, utils.NewValidationError("Invalid user status")
	}

	patch.FirstName.Apply(&user.FirstName)
	patch.LastName.Apply(&user.LastName)
	patch.ProfilePictureURL.Apply(&user.ProfilePictureURL)
	patch.UserRole.Apply(&user.UserRole)
	patch.Status.Apply(&user.Status)
	user.FirstName = utils.SanitizeText(user.FirstName)
	user.LastName = utils.SanitizeText(user.LastName)

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, utils.NewInternalError("update user", err)
	}
	return user, nil
}

// SetStatus is the admin status change.
func (s *UserService) SetStatus(ctx context.Context, id string, status models.UserStatus) (*models.User, error) {
	if !status.Valid() {
		return nil, utils.NewValidationError("Invalid status")
	}
	return s.Update(ctx, id, models.UserPatch{Status: models.Some(status)})
}

// SoftDelete marks the user DELETED and keeps the row.
func (s *UserService) SoftDelete(ctx context.Context, id string) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	now := time.Now()
	user.Status = models.UserDeleted
	user.DeletedAt = &now
	if err := s.repo.Save(ctx, user); err != nil {
		return utils.NewInternalError("soft delete user", err)
	}
	return nil
}

// HardDelete removes the row; admin only.
func (s *UserService) HardDelete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return utils.NewInternalError("delete user", err)
	}
	if !ok {
		return utils.NewNotFoundError("User not found")
	}
	return nil
}

func (s *UserService) List(ctx context.Context, filter repositories.UserFilter, req utils.PageRequest) (utils.Page[models.User], error) {
	users, total, err := s.repo.List(ctx, filter, req)
	if err != nil {
		return utils.Page[models.User]{}, utils.NewInternalError("list users", err)
	}
	return utils.NewPage(users, req, total), nil
}
