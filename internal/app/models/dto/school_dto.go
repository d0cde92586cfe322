package dto

// CreateSchoolRequest registers a new tenant school
type CreateSchoolRequest struct {
	Name    string `json:"name" binding:"required" example:"Galata High School"`
	Code    string `json:"code" binding:"required" example:"GHS"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty" binding:"omitempty,email"`
}

// UpdateSchoolRequest modifies a school's details
type UpdateSchoolRequest struct {
	Name    string `json:"name" binding:"required" example:"Galata High School"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty" binding:"omitempty,email"`
	Active  *bool  `json:"active,omitempty"`
}

// SchoolResponse represents a school in API responses
type SchoolResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name" example:"Galata High School"`
	Code      string `json:"code" example:"GHS"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// SchoolListResponse represents all registered schools
type SchoolListResponse struct {
	Schools []SchoolResponse `json:"schools"`
}
