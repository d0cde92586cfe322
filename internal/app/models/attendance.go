package models

import (
	"fmt"
	"time"
)

// AttendanceStatus defines a student's attendance state for a day
type AttendanceStatus string

// Attendance status values
const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// ParseAttendanceStatus validates a raw attendance status string
func ParseAttendanceStatus(raw string) (AttendanceStatus, error) {
	switch s := AttendanceStatus(raw); s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return s, nil
	}
	return "", fmt.Errorf("unrecognized attendance status %q", raw)
}

// AttendanceRecord defines one student's attendance for one calendar day.
// There is at most one record per (student, date); re-recording the same day
// overwrites the previous value.
type AttendanceRecord struct {
	ID         string           `json:"id" db:"id"`
	SchoolID   string           `json:"schoolId" db:"school_id"`
	StudentID  string           `json:"studentId" db:"student_id"`
	Date       time.Time        `json:"date" db:"date"`
	Status     AttendanceStatus `json:"status" db:"status"`
	Notes      string           `json:"notes,omitempty" db:"notes"`
	RecordedBy string           `json:"recordedBy" db:"recorded_by"`
	CreatedAt  time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time        `json:"updatedAt" db:"updated_at"`
}
