package dto

// CreateBehaviorNoteRequest records a behavior observation against a student
type CreateBehaviorNoteRequest struct {
	Category    string `json:"category" binding:"required" example:"positive"`
	Severity    string `json:"severity" binding:"required" example:"low"`
	Description string `json:"description" binding:"required" example:"Helped a younger student during recess"`
	OccurredAt  string `json:"occurredAt,omitempty" example:"2026-03-12T11:40:00Z"`
}

// BehaviorNoteResponse represents a behavior note in API responses
type BehaviorNoteResponse struct {
	ID          string `json:"id"`
	StudentID   string `json:"studentId"`
	Category    string `json:"category" example:"positive"`
	Severity    string `json:"severity" example:"low"`
	Description string `json:"description"`
	RecordedBy  string `json:"recordedBy"`
	OccurredAt  string `json:"occurredAt"`
	CreatedAt   string `json:"createdAt"`
}

// BehaviorNoteListResponse represents a student's behavior notes
type BehaviorNoteListResponse struct {
	Notes []BehaviorNoteResponse `json:"notes"`
}
