package dto

// --- Request DTOs ---

// UpdateStudentRequest modifies a student's mutable details
type UpdateStudentRequest struct {
	FirstName   string `json:"firstName" binding:"required" example:"Leyla"`
	LastName    string `json:"lastName" binding:"required" example:"Kaya"`
	Grade       string `json:"grade" binding:"required" example:"grade-3"`
	Nationality string `json:"nationality,omitempty" example:"TR"`
}

// UpdateStudentStatusRequest changes a student's enrollment status
type UpdateStudentStatusRequest struct {
	Status string `json:"status" binding:"required" example:"graduated"`
}

// --- Response DTOs ---

// StudentResponse represents a student in API responses
type StudentResponse struct {
	ID             string   `json:"id" example:"2b1f7c43-8d0e-5f7a-b1c9-4717f1a6a0d2"`
	SchoolID       string   `json:"schoolId"`
	AdmissionID    string   `json:"admissionId,omitempty"`
	FirstName      string   `json:"firstName" example:"Leyla"`
	LastName       string   `json:"lastName" example:"Kaya"`
	DateOfBirth    string   `json:"dateOfBirth" example:"2018-04-20"`
	Gender         string   `json:"gender" example:"female"`
	Nationality    string   `json:"nationality" example:"TR"`
	Grade          string   `json:"grade" example:"grade-2"`
	EnrollmentDate string   `json:"enrollmentDate" example:"2026-09-01"`
	Status         string   `json:"status" example:"active"`
	GuardianIDs    []string `json:"guardianIds"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
}

// StudentListResponse represents a page of students
type StudentListResponse struct {
	Students   []StudentResponse `json:"students"`
	Pagination PaginationInfo    `json:"pagination"`
}
