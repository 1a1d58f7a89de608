package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookcourier/bookcourier-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "upsertUser",
		Method:      http.MethodPost,
		Path:        "/user",
		Summary:     "Record login",
		Description: "Creates the caller's account on first login, otherwise refreshes the last login time",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleUpsertUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserRole",
		Method:      http.MethodGet,
		Path:        "/user/role/{email}",
		Summary:     "Get user role",
		Description: "Returns the role for an email, or an empty role if no such user exists",
		Tags:        []string{"Users"},
	}, s.handleGetUserRole)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRole",
		Method:      http.MethodPatch,
		Path:        "/update-role",
		Summary:     "Update user role",
		Description: "Sets a user's role. Admin only. The last admin cannot be demoted.",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleUpdateRole)
}

// UpsertUserRequest is the profile posted after sign-in.
type UpsertUserRequest struct {
	Email string `json:"email" format:"email" doc:"Must be the caller's email"`
	Name  string `json:"name,omitempty" maxLength:"200" doc:"Display name"`
	Image string `json:"image,omitempty" doc:"Avatar URL"`
}

// UpsertUserInput wraps the upsert request for Huma.
type UpsertUserInput struct {
	Body UpsertUserRequest
}

// UpsertUserResponse reports the account and whether it was just created.
type UpsertUserResponse struct {
	User    UserResponse `json:"user"`
	Created bool         `json:"created" doc:"True on first login"`
}

// UpsertUserOutput wraps the upsert response for Huma.
type UpsertUserOutput struct {
	Body UpsertUserResponse
}

// RoleResponse holds a single role.
type RoleResponse struct {
	Role string `json:"role" doc:"user, librarian, admin, or empty for unknown users"`
}

// RoleOutput wraps the role response for Huma.
type RoleOutput struct {
	Body RoleResponse
}

// UpdateRoleRequest is the body for changing a role.
type UpdateRoleRequest struct {
	Email string `json:"email" format:"email" doc:"User to change"`
	Role  string `json:"role" doc:"New role: user, librarian, or admin"`
}

// UpdateRoleInput wraps the update role request for Huma.
type UpdateRoleInput struct {
	Body UpdateRoleRequest
}

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body UserResponse
}

func (s *Server) handleUpsertUser(ctx context.Context, input *UpsertUserInput) (*UpsertUserOutput, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	user, created, err := s.services.Users.UpsertUser(ctx, caller, service.UpsertUserRequest{
		Email:    input.Body.Email,
		Name:     input.Body.Name,
		ImageURL: input.Body.Image,
	})
	if err != nil {
		return nil, err
	}
	return &UpsertUserOutput{Body: UpsertUserResponse{User: toUserResponse(user), Created: created}}, nil
}

func (s *Server) handleGetUserRole(ctx context.Context, input *OwnerEmailInput) (*RoleOutput, error) {
	role, err := s.services.Users.GetRole(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	return &RoleOutput{Body: RoleResponse{Role: string(role)}}, nil
}

func (s *Server) handleUpdateRole(ctx context.Context, input *UpdateRoleInput) (*UserOutput, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Users.UpdateRole(ctx, caller.Email, service.UpdateRoleRequest{
		Email: input.Body.Email,
		Role:  input.Body.Role,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}
