package models

import (
	"fmt"
	"time"
)

// StudentStatus defines the enrollment state of a student
type StudentStatus string

// Student status values
const (
	StudentActive      StudentStatus = "active"
	StudentInactive    StudentStatus = "inactive"
	StudentGraduated   StudentStatus = "graduated"
	StudentTransferred StudentStatus = "transferred"
)

// ParseStudentStatus validates a raw status string
func ParseStudentStatus(raw string) (StudentStatus, error) {
	switch s := StudentStatus(raw); s {
	case StudentActive, StudentInactive, StudentGraduated, StudentTransferred:
		return s, nil
	default:
		return "", fmt.Errorf("unknown student status: %q", raw)
	}
}

// Student defines an enrolled student record. Students are created either
// directly by staff or as the side effect of converting an accepted admission;
// in the latter case AdmissionID links back to the source application and is
// unique, which is what makes the conversion insert idempotent.
type Student struct {
	ID             string        `json:"id" db:"id"`
	SchoolID       string        `json:"schoolId" db:"school_id"`
	AdmissionID    string        `json:"admissionId,omitempty" db:"admission_id"`
	FirstName      string        `json:"firstName" db:"first_name"`
	LastName       string        `json:"lastName" db:"last_name"`
	DateOfBirth    time.Time     `json:"dateOfBirth" db:"date_of_birth"`
	Gender         string        `json:"gender" db:"gender"`
	Nationality    string        `json:"nationality" db:"nationality"`
	Grade          string        `json:"grade" db:"grade"`
	EnrollmentDate time.Time     `json:"enrollmentDate" db:"enrollment_date"`
	Status         StudentStatus `json:"status" db:"status"`
	GuardianIDs    []string      `json:"guardianIds"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}
