package models

import "time"

// User defines a staff user account
type User struct {
	ID           string    `json:"id" db:"id"`
	SchoolID     string    `json:"schoolId" db:"school_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	RoleType     RoleType  `json:"roleType" db:"role_type"`
	Permissions  []string  `json:"permissions"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// HasPermission reports whether the user carries the named permission.
// Admins implicitly hold every permission.
func (u *User) HasPermission(perm string) bool {
	if u.RoleType == RoleAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
