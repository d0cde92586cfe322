package models

import "time"

// Guardian defines a parent/legal-guardian contact. A guardian can be linked to
// several students; the dedup identity within a school is the email address.
type Guardian struct {
	ID           string    `json:"id" db:"id"`
	SchoolID     string    `json:"schoolId" db:"school_id"`
	FullName     string    `json:"fullName" db:"full_name"`
	Relationship string    `json:"relationship" db:"relationship"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
