package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	domainerrors "github.com/bookcourier/bookcourier-server/internal/errors"
	"github.com/bookcourier/bookcourier-server/internal/events"
	"github.com/bookcourier/bookcourier-server/internal/id"
	"github.com/bookcourier/bookcourier-server/internal/store"
	"github.com/bookcourier/bookcourier-server/internal/validation"
)

// UserService handles account records and roles.
type UserService struct {
	store     store.UserRepository
	publisher events.Publisher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users store.UserRepository, publisher events.Publisher, validator *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{
		store:     users,
		publisher: publisher,
		validator: validator,
		logger:    logger,
	}
}

// UpsertUserRequest is the profile a client posts after signing in.
type UpsertUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=200"`
	ImageURL string `json:"image" validate:"omitempty,url"`
}

// UpsertUser records a login. New users get role user; existing users only
// have their last login refreshed. The body email must be the caller's.
func (s *UserService) UpsertUser(ctx context.Context, caller Caller, req UpsertUserRequest) (*domain.User, bool, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, false, err
	}
	if !domain.SameEmail(req.Email, caller.Email) {
		return nil, false, domainerrors.Forbidden("email does not match the signed-in user")
	}

	now := time.Now().UTC()

	existing, err := s.store.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		existing.LastLoginAt = now
		existing.UpdatedAt = now
		if err := s.store.UpdateUser(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("update last login: %w", err)
		}
		return existing, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, false, fmt.Errorf("generate user id: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = caller.Name
	}

	user := &domain.User{
		Record:      domain.Record{ID: userID, CreatedAt: now, UpdatedAt: now},
		Email:       strings.TrimSpace(req.Email),
		Name:        name,
		ImageURL:    req.ImageURL,
		Role:        domain.RoleUser,
		LastLoginAt: now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		// Two first logins raced; the other one created the row.
		if errors.Is(err, store.ErrAlreadyExists) {
			existing, getErr := s.store.GetUserByEmail(ctx, req.Email)
			if getErr != nil {
				return nil, false, fmt.Errorf("get user after conflict: %w", getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	logFor(ctx, s.logger).Info("User registered", "user_id", user.ID, "email", user.Email)
	return user, true, nil
}

// GetRole returns the stored role for email, or "" for unknown users.
func (s *UserService) GetRole(ctx context.Context, email string) (domain.Role, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get user role: %w", err)
	}
	return user.Role, nil
}

// ListUsers returns every account.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateRoleRequest changes a user's role.
type UpdateRoleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,role"`
}

// UpdateRole sets a user's role. actorEmail is recorded on the event and
// may be empty for CLI changes.
func (s *UserService) UpdateRole(ctx context.Context, actorEmail string, req UpdateRoleRequest) (*domain.User, error) {
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.UpdateUserRole(ctx, req.Email, domain.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, domainerrors.NotFound("user not found").WithCause(err)
		case errors.Is(err, store.ErrLastAdmin):
			return nil, domainerrors.Forbidden("cannot demote the last admin").WithCause(err)
		}
		return nil, fmt.Errorf("update role: %w", err)
	}

	logFor(ctx, s.logger).Info("Role updated",
		"email", user.Email,
		"role", user.Role,
		"actor_email", actorEmail,
	)

	publish(ctx, s.publisher, s.logger, events.New(events.TypeRoleUpdated, events.RoleUpdated{
		Email:      user.Email,
		Role:       string(user.Role),
		ActorEmail: actorEmail,
	}))

	return user, nil
}
