package dto

// LoginRequest authenticates a staff user
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@galata.school"`
	Password string `json:"password" binding:"required" example:"changeme-now"`
}

// RegisterUserRequest creates a staff account. Admin-only.
type RegisterUserRequest struct {
	Email       string   `json:"email" binding:"required,email" example:"staff@galata.school"`
	Password    string   `json:"password" binding:"required,min=8"`
	FirstName   string   `json:"firstName" binding:"required" example:"Ayşe"`
	LastName    string   `json:"lastName" binding:"required" example:"Demir"`
	RoleType    string   `json:"roleType" binding:"required,oneof=ADMIN STAFF" example:"STAFF"`
	Permissions []string `json:"permissions,omitempty" example:"admissions:decide"`
}

// UserResponse represents a staff account in API responses
type UserResponse struct {
	ID          string   `json:"id"`
	SchoolID    string   `json:"schoolId"`
	Email       string   `json:"email" example:"staff@galata.school"`
	FirstName   string   `json:"firstName" example:"Ayşe"`
	LastName    string   `json:"lastName" example:"Demir"`
	RoleType    string   `json:"roleType" example:"STAFF"`
	Permissions []string `json:"permissions,omitempty"`
	Active      bool     `json:"active"`
	CreatedAt   string   `json:"createdAt"`
}

// RefreshTokenRequest exchanges a refresh token for a new pair
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse carries an issued token pair
type TokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType" example:"Bearer"`
	ExpiresIn    int          `json:"expiresIn" example:"3600"`
	User         UserResponse `json:"user"`
}
