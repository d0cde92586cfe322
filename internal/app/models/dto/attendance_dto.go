package dto

// RecordAttendanceRequest records a student's attendance for a day
type RecordAttendanceRequest struct {
	Date   string `json:"date" binding:"required" example:"2026-03-12"`
	Status string `json:"status" binding:"required" example:"present"`
	Notes  string `json:"notes,omitempty" example:"Arrived 20 minutes late, parent called ahead"`
}

// AttendanceResponse represents one attendance record
type AttendanceResponse struct {
	ID         string `json:"id"`
	StudentID  string `json:"studentId"`
	Date       string `json:"date" example:"2026-03-12"`
	Status     string `json:"status" example:"present"`
	Notes      string `json:"notes,omitempty"`
	RecordedBy string `json:"recordedBy"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// AttendanceListResponse represents a student's attendance over a date range
type AttendanceListResponse struct {
	Records []AttendanceResponse `json:"records"`
}
