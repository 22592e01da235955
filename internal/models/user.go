// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is an account privilege tier. Roles are stored as an explicit
// set on the user, but compare hierarchically: USER < ADMIN < OWNER.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
	RoleOwner Role = "OWNER"
)

// roleLevels orders roles by privilege. Unknown roles rank below USER.
var roleLevels = map[Role]int{
	RoleUser:  1,
	RoleAdmin: 2,
	RoleOwner: 3,
}

// Level returns the privilege rank of the role.
func (r Role) Level() int {
	return roleLevels[r]
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// RoleSet is the set of roles held by a user, persisted as JSON.
type RoleSet []Role

// Has reports whether the exact role is a member of the set.
func (s RoleSet) Has(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// AtLeast reports whether any held role meets or exceeds the required
// privilege tier. OWNER therefore satisfies ADMIN-gated checks, while
// ADMIN never satisfies OWNER-gated checks.
func (s RoleSet) AtLeast(required Role) bool {
	for _, r := range s {
		if r.Level() >= required.Level() {
			return true
		}
	}
	return false
}

// Add returns the set with role included, without duplicating it.
func (s RoleSet) Add(role Role) RoleSet {
	if s.Has(role) {
		return s
	}
	return append(s, role)
}

// Remove returns the set without the given role.
func (s RoleSet) Remove(role Role) RoleSet {
	out := make(RoleSet, 0, len(s))
	for _, r := range s {
		if r != role {
			out = append(out, r)
		}
	}
	return out
}

// PasswordSentinel marks an account created through the client identity
// provider that has not set a local password yet.
const PasswordSentinel = "firebase"

// User represents an account in the TrackBack application.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Email         string         `gorm:"unique;not null;index" json:"email"`
	PasswordHash  string         `json:"-"`
	FullName      string         `gorm:"not null" json:"name"`
	PhoneNumber   string         `json:"phone_number"`
	TermsAccepted bool           `json:"terms_accepted"`
	Roles         RoleSet        `gorm:"serializer:json" json:"roles"`
	Blocked       bool           `gorm:"default:false" json:"blocked"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Posts         []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// HasPassword reports whether the account has a usable local password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != "" && u.PasswordHash != PasswordSentinel
}
