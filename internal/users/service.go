package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"plantstock/internal/contextutil"
	"plantstock/internal/recordstore"
)

var (
	// ErrInvalidCredentials is returned on any authentication failure.
	// It is deliberately non-specific so callers cannot distinguish an
	// unknown username from a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrNotFound is returned when a user lookup misses.
	ErrNotFound = recordstore.ErrNotFound
	// ErrValidation is returned on malformed input.
	ErrValidation = errors.New("validation error")
)

// Hash of a throwaway password, compared against when the username is
// unknown so authentication latency does not leak user existence.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Service provides user registration, authentication, and maintenance
// over the record store.
type Service struct {
	store      *recordstore.Store
	collection string
}

// NewService creates a user service operating on the given collection.
func NewService(store *recordstore.Store, collection string) *Service {
	return &Service{store: store, collection: collection}
}

// Register adds a new user. The username becomes the record key and the
// id metadata field. The password is stored as a bcrypt hash; plaintext
// is never persisted.
func (s *Service) Register(ctx context.Context, username, password, role string) (*User, error) {
	if len(username) < 3 || len(username) > 50 {
		return nil, fmt.Errorf("%w: username must be 3-50 characters", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if role == "" {
		role = RoleInventory
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	// The store only enforces key uniqueness; the username field check
	// covers legacy records whose key diverged from the username.
	existing, err := s.store.FindRecords(ctx, s.collection, "username", username)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{ID: username, Username: username, PasswordHash: string(hash), Role: role}
	if _, err := s.store.AddRecord(ctx, s.collection, username, username, user.metadata()); err != nil {
		if errors.Is(err, recordstore.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "user registered", "username", username, "role", role)
	return &user, nil
}

// Authenticate verifies username and password, returning the stored
// identity on success and ErrInvalidCredentials on any mismatch.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	logger := contextutil.LoggerFromContext(ctx)

	records, err := s.store.FindRecords(ctx, s.collection, "username", username)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		// Burn a compare anyway so the miss is not observable by timing.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	user := fromRecord(records[0])
	if user.PasswordHash == "" || user.ID == "" {
		logger.WarnContext(ctx, "user record missing required metadata", "username", username)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.WarnContext(ctx, "failed login attempt", "username", username)
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetByID returns the user whose record key is id, or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	rec, err := s.store.GetRecordByKey(ctx, s.collection, id)
	if err != nil {
		return nil, err
	}
	user := fromRecord(*rec)
	return &user, nil
}

// ResetPassword replaces the stored hash for username. Unknown usernames
// fail with ErrNotFound.
func (s *Service) ResetPassword(ctx context.Context, username, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	records, err := s.store.FindRecords(ctx, s.collection, "username", username)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return ErrNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	rec := records[0]
	user := fromRecord(rec)
	user.PasswordHash = string(hash)
	if err := s.store.UpdateRecord(ctx, s.collection, rec.Key, user.metadata()); err != nil {
		return err
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "password reset", "username", username)
	return nil
}

// MigrateLegacy backfills the id metadata field for records that predate
// it, using the record's own key. Idempotent; a second run is a no-op.
func (s *Service) MigrateLegacy(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	records, err := s.store.GetAllRecords(ctx, s.collection, 0)
	if err != nil {
		return err
	}

	migrated := 0
	for _, rec := range records {
		if recordstore.MetaString(rec.Metadata, "id") != "" {
			continue
		}
		meta := make(map[string]any, len(rec.Metadata)+1)
		for k, v := range rec.Metadata {
			meta[k] = v
		}
		meta["id"] = rec.Key
		if err := s.store.UpdateRecord(ctx, s.collection, rec.Key, meta); err != nil {
			return fmt.Errorf("migrate user %q: %w", rec.Key, err)
		}
		migrated++
	}

	if migrated > 0 {
		logger.InfoContext(ctx, "migrated legacy user records", "count", migrated)
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin account when no user with the
// given username exists.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	records, err := s.store.FindRecords(ctx, s.collection, "username", username)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		return nil
	}
	if _, err := s.Register(ctx, username, password, RoleAdmin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "default admin user created", "username", username)
	return nil
}
