package users

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"plantstock/internal/recordstore"
)

func newTestService(t *testing.T) (*Service, *recordstore.MemoryStore) {
	t.Helper()
	backend := recordstore.NewMemoryStore()
	return NewService(recordstore.New(backend), "users"), backend
}

func TestService_RegisterAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	created, err := svc.Register(ctx, "alice", "secret123", RoleUser)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if created.ID != "alice" {
		t.Errorf("Register() id = %q, want %q", created.ID, "alice")
	}
	if created.PasswordHash == "secret123" {
		t.Fatal("Register() stored the plaintext password")
	}

	user, err := svc.Authenticate(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.ID != "alice" || user.Username != "alice" || user.Role != RoleUser {
		t.Errorf("Authenticate() = %+v, want id/username alice, role user", user)
	}

	if _, err := svc.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Authenticate() wrong password error = %v, want ErrInvalidCredentials", err)
	}
}

func TestService_Authenticate_UnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Authenticate(ctx, "nobody", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Authenticate() unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestService_Authenticate_SameErrorForMissAndMismatch(t *testing.T) {
	// The error must not reveal whether the username exists.
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.Register(ctx, "alice", "secret123", RoleUser); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, errMiss := svc.Authenticate(ctx, "nobody", "whatever")
	_, errMismatch := svc.Authenticate(ctx, "alice", "wrong")
	if errMiss.Error() != errMismatch.Error() {
		t.Errorf("unknown-user error %q differs from wrong-password error %q", errMiss, errMismatch)
	}
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.Register(ctx, "alice", "secret123", RoleUser); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "different1", RoleAdmin); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("Register() duplicate error = %v, want ErrUsernameTaken", err)
	}

	// The original record must survive unmodified.
	user, err := svc.Authenticate(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("Authenticate() after duplicate register error = %v", err)
	}
	if user.Role != RoleUser {
		t.Errorf("role after duplicate register = %q, want %q", user.Role, RoleUser)
	}
}

func TestService_Register_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name     string
		username string
		password string
		role     string
	}{
		{"short username", "ab", "secret123", RoleUser},
		{"short password", "alice", "short", RoleUser},
		{"unknown role", "alice", "secret123", "superuser"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.username, tt.password, tt.role); !errors.Is(err, ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestService_Register_DefaultRole(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	user, err := svc.Register(ctx, "dave", "secret123", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != RoleInventory {
		t.Errorf("default role = %q, want %q", user.Role, RoleInventory)
	}
}

func TestService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.Register(ctx, "alice", "secret123", RoleUser); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.ResetPassword(ctx, "alice", "newsecret9"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}

	if _, err := svc.Authenticate(ctx, "alice", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("old password still accepted after reset")
	}
	user, err := svc.Authenticate(ctx, "alice", "newsecret9")
	if err != nil {
		t.Fatalf("Authenticate() with new password error = %v", err)
	}
	if user.Role != RoleUser {
		t.Errorf("role lost on reset: %q, want %q", user.Role, RoleUser)
	}
}

func TestService_ResetPassword_UnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if err := svc.ResetPassword(ctx, "nobody", "newsecret9"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ResetPassword() error = %v, want ErrNotFound", err)
	}
}

func TestService_MigrateLegacy(t *testing.T) {
	ctx := context.Background()
	svc, backend := newTestService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("legacy-pass1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error = %v", err)
	}

	// A record written before the id field existed.
	legacy := recordstore.Record{
		Key:      "old-user",
		Document: "old-user",
		Metadata: map[string]any{
			"username": "old-user",
			"password": string(hash),
			"role":     RoleUser,
		},
	}
	if err := backend.Upsert(ctx, "users", legacy); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if _, err := svc.Register(ctx, "modern", "secret123", RoleUser); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.MigrateLegacy(ctx); err != nil {
		t.Fatalf("MigrateLegacy() error = %v", err)
	}

	user, err := svc.GetByID(ctx, "old-user")
	if err != nil {
		t.Fatalf("GetByID() after migration error = %v", err)
	}
	if user.ID != "old-user" {
		t.Errorf("migrated id = %q, want %q", user.ID, "old-user")
	}

	// Running the migration twice produces the same final state.
	if err := svc.MigrateLegacy(ctx); err != nil {
		t.Fatalf("MigrateLegacy() second run error = %v", err)
	}
	again, err := svc.GetByID(ctx, "old-user")
	if err != nil {
		t.Fatalf("GetByID() after second migration error = %v", err)
	}
	if *again != *user {
		t.Errorf("second migration changed the record: %+v != %+v", again, user)
	}
}

func TestService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if err := svc.EnsureAdmin(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}
	user, err := svc.Authenticate(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("Authenticate() admin error = %v", err)
	}
	if user.Role != RoleAdmin {
		t.Errorf("admin role = %q, want %q", user.Role, RoleAdmin)
	}

	// A second call must not reset an existing account.
	if err := svc.ResetPassword(ctx, "admin", "rotated99"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if err := svc.EnsureAdmin(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("EnsureAdmin() second call error = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "admin", "rotated99"); err != nil {
		t.Errorf("EnsureAdmin() overwrote the existing admin: %v", err)
	}
}
