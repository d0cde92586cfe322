package models

import (
	"fmt"
	"time"
)

// AdmissionStatus defines the review state of an admission application
type AdmissionStatus string

// Admission status values
const (
	AdmissionSubmitted           AdmissionStatus = "submitted"
	AdmissionPending             AdmissionStatus = "pending"
	AdmissionUnderReview         AdmissionStatus = "under_review"
	AdmissionInterviewScheduled  AdmissionStatus = "interview_scheduled"
	AdmissionAssessmentScheduled AdmissionStatus = "assessment_scheduled"
	AdmissionOfferMade           AdmissionStatus = "offer_made"
	AdmissionOfferAccepted       AdmissionStatus = "offer_accepted"
	AdmissionOfferDeclined       AdmissionStatus = "offer_declined"
	AdmissionRejected            AdmissionStatus = "rejected"
	AdmissionWithdrawn           AdmissionStatus = "withdrawn"
	AdmissionConverted           AdmissionStatus = "converted_to_student"
)

// allAdmissionStatuses is the closed set of valid status values. Anything read
// from storage outside this set is a data-integrity failure, not a value to coerce.
var allAdmissionStatuses = map[AdmissionStatus]bool{
	AdmissionSubmitted:           true,
	AdmissionPending:             true,
	AdmissionUnderReview:         true,
	AdmissionInterviewScheduled:  true,
	AdmissionAssessmentScheduled: true,
	AdmissionOfferMade:           true,
	AdmissionOfferAccepted:       true,
	AdmissionOfferDeclined:       true,
	AdmissionRejected:            true,
	AdmissionWithdrawn:           true,
	AdmissionConverted:           true,
}

// admissionTransitions holds the permitted directed edges of the status machine.
// converted_to_student is deliberately absent as a target here: it is only
// reachable through the conversion operation, never through a plain status update.
var admissionTransitions = map[AdmissionStatus][]AdmissionStatus{
	AdmissionSubmitted:           {AdmissionPending, AdmissionUnderReview, AdmissionWithdrawn},
	AdmissionPending:             {AdmissionUnderReview, AdmissionWithdrawn},
	AdmissionUnderReview:         {AdmissionInterviewScheduled, AdmissionAssessmentScheduled, AdmissionOfferMade, AdmissionRejected, AdmissionWithdrawn},
	AdmissionInterviewScheduled:  {AdmissionAssessmentScheduled, AdmissionOfferMade, AdmissionRejected, AdmissionWithdrawn},
	AdmissionAssessmentScheduled: {AdmissionOfferMade, AdmissionRejected, AdmissionWithdrawn},
	AdmissionOfferMade:           {AdmissionOfferAccepted, AdmissionOfferDeclined, AdmissionWithdrawn},
	AdmissionOfferAccepted:       {AdmissionWithdrawn},
}

// ParseAdmissionStatus validates a raw status string against the enumerated set
func ParseAdmissionStatus(raw string) (AdmissionStatus, error) {
	s := AdmissionStatus(raw)
	if !allAdmissionStatuses[s] {
		return "", fmt.Errorf("unrecognized admission status %q", raw)
	}
	return s, nil
}

// IsTerminal reports whether the status has no outbound edges
func (s AdmissionStatus) IsTerminal() bool {
	switch s {
	case AdmissionRejected, AdmissionWithdrawn, AdmissionOfferDeclined, AdmissionConverted:
		return true
	}
	return false
}

// IsDecision reports whether entering the status records a staff decision
func (s AdmissionStatus) IsDecision() bool {
	switch s {
	case AdmissionOfferMade, AdmissionRejected, AdmissionOfferDeclined:
		return true
	}
	return false
}

// CanTransitionTo reports whether the edge s -> target exists in the machine
func (s AdmissionStatus) CanTransitionTo(target AdmissionStatus) bool {
	for _, t := range admissionTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// AdmissionGuardian is a guardian contact captured on the application itself.
// It is a snapshot, not a reference: the Guardian record only comes into
// existence (or gets linked) at conversion time.
type AdmissionGuardian struct {
	FullName     string `json:"fullName"`
	Relationship string `json:"relationship"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	IsPrimary    bool   `json:"isPrimary"`
}

// AdmissionDocument is an uploaded supporting document reference
type AdmissionDocument struct {
	Type       string    `json:"type"`
	Filename   string    `json:"filename"`
	StorageKey string    `json:"storageKey"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Applicant is the immutable snapshot of the prospective student taken at
// submission time. No Student record exists yet at that point.
type Applicant struct {
	FirstName          string    `json:"firstName" db:"first_name"`
	LastName           string    `json:"lastName" db:"last_name"`
	DateOfBirth        time.Time `json:"dateOfBirth" db:"date_of_birth"`
	Gender             string    `json:"gender" db:"gender"`
	Nationality        string    `json:"nationality" db:"nationality"`
	AppliedGrade       string    `json:"appliedGrade" db:"applied_grade"`
	PreferredStartDate time.Time `json:"preferredStartDate" db:"preferred_start_date"`
}

// Admission defines an admission application and its review state
type Admission struct {
	ID                string              `json:"id" db:"id" example:"b7a4c9e2-1f0d-4f6a-9f3e-2d8c1a5b7e90"`
	SchoolID          string              `json:"schoolId" db:"school_id"`
	ApplicationNumber string              `json:"applicationNumber" db:"application_number" example:"ADM-2026-4F2A1C"`
	Status            AdmissionStatus     `json:"status" db:"status" example:"submitted"`
	Applicant         Applicant           `json:"applicant"`
	PreviousSchool    string              `json:"previousSchool,omitempty" db:"previous_school"`
	Guardians         []AdmissionGuardian `json:"guardians"`
	Documents         []AdmissionDocument `json:"documents"`
	AssessmentScore   *float64            `json:"assessmentScore,omitempty" db:"assessment_score"`
	AssessmentNotes   string              `json:"assessmentNotes,omitempty" db:"assessment_notes"`
	DecisionNotes     string              `json:"decisionNotes,omitempty" db:"decision_notes"`
	DecisionBy        string              `json:"decisionBy,omitempty" db:"decision_by"`
	DecisionDate      *time.Time          `json:"decisionDate,omitempty" db:"decision_date"`
	StudentID         string              `json:"studentId,omitempty" db:"student_id"`
	CreatedAt         time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time           `json:"updatedAt" db:"updated_at"`
}

// HasAssessmentOutcome reports whether an assessment score or note was recorded.
// The assessment_scheduled -> offer_made/rejected edges are gated on this.
func (a *Admission) HasAssessmentOutcome() bool {
	return a.AssessmentScore != nil || a.AssessmentNotes != ""
}

// PrimaryGuardian returns the guardian flagged as primary contact, if any
func (a *Admission) PrimaryGuardian() *AdmissionGuardian {
	for i := range a.Guardians {
		if a.Guardians[i].IsPrimary {
			return &a.Guardians[i]
		}
	}
	return nil
}
