package dto

// UpdateGuardianRequest modifies a guardian's contact details
type UpdateGuardianRequest struct {
	FullName     string `json:"fullName" binding:"required" example:"Murat Kaya"`
	Relationship string `json:"relationship,omitempty" example:"father"`
	Phone        string `json:"phone,omitempty" example:"+90 532 000 0000"`
}

// GuardianResponse represents a guardian in API responses
type GuardianResponse struct {
	ID           string `json:"id"`
	SchoolID     string `json:"schoolId"`
	FullName     string `json:"fullName" example:"Murat Kaya"`
	Relationship string `json:"relationship,omitempty" example:"father"`
	Email        string `json:"email" example:"murat.kaya@example.com"`
	Phone        string `json:"phone,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// GuardianListResponse represents a page of guardians
type GuardianListResponse struct {
	Guardians  []GuardianResponse `json:"guardians"`
	Pagination PaginationInfo     `json:"pagination"`
}
