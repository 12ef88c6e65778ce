package services

import (
	"context"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/app/models/dto"
	"github.com/admitflow/admitflow/internal/pkg/apperrors"
	"github.com/admitflow/admitflow/internal/pkg/auth"
	"github.com/admitflow/admitflow/internal/pkg/logger"
)

// UserService manages staff accounts
type UserService interface {
	// CreateSubAdmin provisions a capability-restricted reviewer account
	CreateSubAdmin(ctx context.Context, actor models.Actor, req dto.CreateSubAdminRequest) (*models.User, error)

	// ListSubAdmins returns all sub-admin accounts
	ListSubAdmins(ctx context.Context, actor models.Actor) ([]models.User, error)

	// SetUserActive enables or disables an account, subject to the
	// actor's authority over the target's role.
	SetUserActive(ctx context.Context, actor models.Actor, userID int64, active bool) error

	// GetProfile returns the caller's own account
	GetProfile(ctx context.Context, actor models.Actor) (*models.User, error)
}

type userService struct {
	users userStore
}

// NewUserService creates a new UserService
func NewUserService(users userStore) UserService {
	return &userService{users: users}
}

func (s *userService) CreateSubAdmin(ctx context.Context, actor models.Actor, req dto.CreateSubAdminRequest) (*models.User, error) {
	if !actor.Role.IsPrivileged() {
		return nil, apperrors.NewForbiddenError("only administrators may create sub-admin accounts")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Error hashing sub-admin password")
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleSubAdmin,
		Active:       true,
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("userID", id).Int64("actorID", actor.UserID).Msg("Sub-admin account created")
	return s.users.GetByID(ctx, id)
}

func (s *userService) ListSubAdmins(ctx context.Context, actor models.Actor) ([]models.User, error) {
	if !actor.Role.IsPrivileged() {
		return nil, apperrors.NewForbiddenError("only administrators may list sub-admin accounts")
	}
	return s.users.ListByRole(ctx, models.RoleSubAdmin)
}

func (s *userService) GetProfile(ctx context.Context, actor models.Actor) (*models.User, error) {
	return s.users.GetByID(ctx, actor.UserID)
}

// canAdminister reports whether the actor's role has authority over the
// target's role for account management.
func canAdminister(actorRole, targetRole models.RoleType) bool {
	switch actorRole {
	case models.RoleSuperAdmin:
		return targetRole != models.RoleSuperAdmin
	case models.RoleAdmin:
		return targetRole == models.RoleAgent || targetRole == models.RoleSubAdmin
	case models.RoleSubAdmin:
		return targetRole == models.RoleAgent
	}
	return false
}

func (s *userService) SetUserActive(ctx context.Context, actor models.Actor, userID int64, active bool) error {
	if userID == actor.UserID {
		return apperrors.NewBadRequestError("cannot change the active state of your own account")
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !canAdminister(actor.Role, target.Role) {
		return apperrors.NewForbiddenError("role " + string(actor.Role) + " has no authority over " + string(target.Role) + " accounts")
	}

	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return err
	}

	logger.Info().
		Int64("userID", userID).
		Int64("actorID", actor.UserID).
		Bool("active", active).
		Msg("User active state changed")
	return nil
}
