package models

import "time"

// BehaviorCategory classifies a behavior note
type BehaviorCategory string

// Behavior categories
const (
	BehaviorPositive BehaviorCategory = "positive"
	BehaviorNegative BehaviorCategory = "negative"
)

// BehaviorSeverity grades the weight of an incident
type BehaviorSeverity string

// Behavior severities
const (
	SeverityLow    BehaviorSeverity = "low"
	SeverityMedium BehaviorSeverity = "medium"
	SeverityHigh   BehaviorSeverity = "high"
)

// BehaviorNote defines a recorded behavior observation for a student
type BehaviorNote struct {
	ID          string           `json:"id" db:"id"`
	SchoolID    string           `json:"schoolId" db:"school_id"`
	StudentID   string           `json:"studentId" db:"student_id"`
	Category    BehaviorCategory `json:"category" db:"category"`
	Severity    BehaviorSeverity `json:"severity" db:"severity"`
	Description string           `json:"description" db:"description"`
	RecordedBy  string           `json:"recordedBy" db:"recorded_by"`
	OccurredAt  time.Time        `json:"occurredAt" db:"occurred_at"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
}
