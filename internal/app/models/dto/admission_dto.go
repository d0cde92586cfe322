package dto

// --- Request DTOs ---

// ApplicantRequest carries the applicant snapshot of a new application.
// Dates use the YYYY-MM-DD form.
type ApplicantRequest struct {
	FirstName          string `json:"firstName" binding:"required" example:"Leyla"`
	LastName           string `json:"lastName" binding:"required" example:"Kaya"`
	DateOfBirth        string `json:"dateOfBirth" binding:"required" example:"2018-04-20"`
	Gender             string `json:"gender" binding:"required" example:"female"`
	Nationality        string `json:"nationality" binding:"required" example:"TR"`
	AppliedGrade       string `json:"appliedGrade" binding:"required" example:"grade-2"`
	PreferredStartDate string `json:"preferredStartDate" binding:"required" example:"2026-09-01"`
}

// GuardianRequest carries one guardian on a new application
type GuardianRequest struct {
	FullName     string `json:"fullName" binding:"required" example:"Murat Kaya"`
	Relationship string `json:"relationship" example:"father"`
	Email        string `json:"email" binding:"required,email" example:"murat.kaya@example.com"`
	Phone        string `json:"phone" example:"+90 532 000 0000"`
	IsPrimary    bool   `json:"isPrimary" example:"true"`
}

// SubmitAdmissionRequest represents a new application to a school
type SubmitAdmissionRequest struct {
	Applicant      ApplicantRequest  `json:"applicant" binding:"required"`
	Guardians      []GuardianRequest `json:"guardians" binding:"required,min=1,dive"`
	PreviousSchool string            `json:"previousSchool,omitempty" example:"Sunrise Primary"`
}

// TransitionAdmissionRequest asks for a status change on an application
type TransitionAdmissionRequest struct {
	Status string `json:"status" binding:"required" example:"under_review"`
	Notes  string `json:"notes,omitempty" example:"Strong interview, offer approved by head of admissions"`
}

// RecordAssessmentRequest stores the outcome of a scheduled assessment
type RecordAssessmentRequest struct {
	Score *float64 `json:"score,omitempty" example:"87.5"`
	Notes string   `json:"notes,omitempty" example:"Comfortable with grade-2 numeracy"`
}

// --- Response DTOs ---

// AdmissionGuardianResponse echoes a guardian on an application
type AdmissionGuardianResponse struct {
	FullName     string `json:"fullName" example:"Murat Kaya"`
	Relationship string `json:"relationship,omitempty" example:"father"`
	Email        string `json:"email" example:"murat.kaya@example.com"`
	Phone        string `json:"phone,omitempty" example:"+90 532 000 0000"`
	IsPrimary    bool   `json:"isPrimary" example:"true"`
}

// AdmissionDocumentResponse echoes an uploaded document reference
type AdmissionDocumentResponse struct {
	Type       string `json:"type" example:"birth_certificate"`
	Filename   string `json:"filename" example:"birth-cert.pdf"`
	StorageKey string `json:"storageKey" example:"admissions/7f3c/birth-cert.pdf"`
	UploadedAt string `json:"uploadedAt" example:"2026-03-12T09:15:00Z"`
}

// AdmissionResponse represents an application in API responses
type AdmissionResponse struct {
	ID                string                      `json:"id" example:"7f3c7aa2-32be-4a12-9c85-0a0d35b4a441"`
	SchoolID          string                      `json:"schoolId" example:"c3a1f884-1f5d-45f5-8d5a-55f1b38a2f10"`
	ApplicationNumber string                      `json:"applicationNumber" example:"ADM-2026-4F9A2C"`
	Status            string                      `json:"status" example:"under_review"`
	FirstName         string                      `json:"firstName" example:"Leyla"`
	LastName          string                      `json:"lastName" example:"Kaya"`
	DateOfBirth       string                      `json:"dateOfBirth" example:"2018-04-20"`
	Gender            string                      `json:"gender" example:"female"`
	Nationality       string                      `json:"nationality" example:"TR"`
	AppliedGrade      string                      `json:"appliedGrade" example:"grade-2"`
	PreferredStartDate string                     `json:"preferredStartDate" example:"2026-09-01"`
	PreviousSchool    string                      `json:"previousSchool,omitempty" example:"Sunrise Primary"`
	Guardians         []AdmissionGuardianResponse `json:"guardians"`
	Documents         []AdmissionDocumentResponse `json:"documents"`
	AssessmentScore   *float64                    `json:"assessmentScore,omitempty" example:"87.5"`
	AssessmentNotes   string                      `json:"assessmentNotes,omitempty"`
	DecisionNotes     string                      `json:"decisionNotes,omitempty"`
	DecisionBy        string                      `json:"decisionBy,omitempty"`
	DecisionDate      string                      `json:"decisionDate,omitempty" example:"2026-03-20T14:00:00Z"`
	StudentID         string                      `json:"studentId,omitempty"`
	CreatedAt         string                      `json:"createdAt" example:"2026-03-12T09:15:00Z"`
	UpdatedAt         string                      `json:"updatedAt" example:"2026-03-12T09:15:00Z"`
}

// AdmissionListResponse represents a page of applications
type AdmissionListResponse struct {
	Admissions []AdmissionResponse `json:"admissions"`
	Pagination PaginationInfo      `json:"pagination"`
}

// ConvertAdmissionResponse is returned when an accepted application becomes a student
type ConvertAdmissionResponse struct {
	Student   StudentResponse    `json:"student"`
	Guardians []GuardianResponse `json:"guardians"`
}
