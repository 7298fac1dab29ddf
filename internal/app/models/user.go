package models

import (
	"time"
)

// RoleType defines the user role type
type RoleType string

const (
	RoleUser      RoleType = "user"
	RolePublisher RoleType = "publisher"
	RoleAdmin     RoleType = "admin"
)

// Valid reports whether r is one of the known roles
func (r RoleType) Valid() bool {
	switch r {
	case RoleUser, RolePublisher, RoleAdmin:
		return true
	}
	return false
}

// User defines the user model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Name      string    `json:"name" db:"name" example:"John Doe"`
	Email     string    `json:"email" db:"email" example:"john@gmail.com"`
	Role      RoleType  `json:"role" db:"role" example:"publisher"`
	Password  string    `json:"-" db:"password"` // bcrypt hash, never serialized
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// UserPatch carries the fields of a partial user update; nil means unchanged
type UserPatch struct {
	Name  *string
	Email *string
	Role  *RoleType
}

// IsEmpty reports whether the patch changes nothing
func (p *UserPatch) IsEmpty() bool {
	return p == nil || (p.Name == nil && p.Email == nil && p.Role == nil)
}
