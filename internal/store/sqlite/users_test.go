package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	"github.com/bookcourier/bookcourier-server/internal/store"
)

// makeTestUser creates a domain.User with sensible defaults for testing.
func makeTestUser(id, email string, role domain.Role) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		Record: domain.Record{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:       email,
		Name:        "Test User",
		Role:        role,
		LastLoginAt: now,
	}
}

func mustCreateUser(t *testing.T, s *Store, u *domain.User) {
	t.Helper()
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", u.Email, err)
	}
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := makeTestUser("user-1", "Alice@Example.com", domain.RoleLibrarian)
	user.ImageURL = "https://img.example/alice.png"
	mustCreateUser(t, s, user)

	got, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ID: got %q, want %q", got.ID, user.ID)
	}
	if got.Email != "Alice@Example.com" {
		t.Errorf("Email: got %q, want original casing", got.Email)
	}
	if got.Role != domain.RoleLibrarian {
		t.Errorf("Role: got %q", got.Role)
	}
	if got.ImageURL != user.ImageURL {
		t.Errorf("ImageURL: got %q", got.ImageURL)
	}
}

func TestCreateUser_DuplicateEmailAnyCase(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, makeTestUser("user-1", "bob@example.com", domain.RoleUser))

	err := s.CreateUser(context.Background(), makeTestUser("user-2", "BOB@example.com", domain.RoleUser))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUserByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUser_LoginFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := makeTestUser("user-1", "carol@example.com", domain.RoleUser)
	mustCreateUser(t, s, user)

	later := user.LastLoginAt.Add(time.Hour)
	user.LastLoginAt = later
	user.UpdatedAt = later
	user.Role = domain.RoleAdmin // ignored by UpdateUser
	if err := s.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	got, err := s.GetUserByEmail(ctx, "carol@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if !got.LastLoginAt.Equal(later) {
		t.Errorf("LastLoginAt: got %v, want %v", got.LastLoginAt, later)
	}
	if got.Role != domain.RoleUser {
		t.Errorf("UpdateUser must not change role, got %q", got.Role)
	}
}

func TestUpdateUserRole(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, makeTestUser("user-1", "dave@example.com", domain.RoleUser))

	got, err := s.UpdateUserRole(ctx, "DAVE@example.com", domain.RoleLibrarian)
	if err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if got.Role != domain.RoleLibrarian {
		t.Errorf("returned role: got %q", got.Role)
	}

	stored, err := s.GetUserByEmail(ctx, "dave@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if stored.Role != domain.RoleLibrarian {
		t.Errorf("stored role: got %q", stored.Role)
	}

	if _, err := s.UpdateUserRole(ctx, "ghost@example.com", domain.RoleAdmin); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUserRole_LastAdmin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, makeTestUser("user-1", "root@example.com", domain.RoleAdmin))

	if _, err := s.UpdateUserRole(ctx, "root@example.com", domain.RoleUser); !errors.Is(err, store.ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}

	// Re-asserting admin on the last admin is allowed.
	if _, err := s.UpdateUserRole(ctx, "root@example.com", domain.RoleAdmin); err != nil {
		t.Fatalf("UpdateUserRole(admin): %v", err)
	}

	mustCreateUser(t, s, makeTestUser("user-2", "second@example.com", domain.RoleAdmin))
	if _, err := s.UpdateUserRole(ctx, "root@example.com", domain.RoleUser); err != nil {
		t.Fatalf("demote with another admin present: %v", err)
	}
}

func TestListUsers(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, makeTestUser("user-1", "a@example.com", domain.RoleUser))
	mustCreateUser(t, s, makeTestUser("user-2", "b@example.com", domain.RoleAdmin))

	users, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}
