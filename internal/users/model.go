package users

import "plantstock/internal/recordstore"

// Roles known to the application. Role names gate route access in the
// HTTP layer.
const (
	RoleAdmin     = "admin"
	RoleEngineer  = "engineer"
	RoleInventory = "inventory"
	RoleUser      = "user"
)

// User is the explicit schema for a record in the users collection.
// The invariant for stored users is Metadata.id == record key == Username.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
}

// ValidRole reports whether the role is one the application knows.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEngineer, RoleInventory, RoleUser:
		return true
	}
	return false
}

func fromRecord(rec recordstore.Record) User {
	return User{
		ID:           recordstore.MetaString(rec.Metadata, "id"),
		Username:     recordstore.MetaString(rec.Metadata, "username"),
		PasswordHash: recordstore.MetaString(rec.Metadata, "password"),
		Role:         recordstore.MetaString(rec.Metadata, "role"),
	}
}

func (u User) metadata() map[string]any {
	return map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"password": u.PasswordHash,
		"role":     u.Role,
	}
}
