package types

import "time"

// Envelope is the uniform response body for every endpoint. Data is
// present (possibly null) on success, Details carries field-level
// validation messages on failure.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data"`
	Details map[string]string `json:"details,omitempty"`
}

type Pagination struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	Total           int64 `json:"total"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

type PaginatedEnvelope struct {
	Envelope
	Pagination Pagination `json:"pagination"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return Pagination{
		Page:            page,
		Limit:           limit,
		Total:           total,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

func Success(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

func SuccessMessage(message string, data interface{}) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

func Failure(message string, details map[string]string) Envelope {
	return Envelope{Success: false, Message: message, Details: details}
}

func Paginated(data interface{}, pagination Pagination) PaginatedEnvelope {
	return PaginatedEnvelope{
		Envelope:   Envelope{Success: true, Data: data},
		Pagination: pagination,
	}
}

type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TeamResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uint      `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TeamMemberResponse struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type TeamWithMembersResponse struct {
	TeamResponse
	Members []TeamMemberResponse `json:"members"`
}

type TaskResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatorID   *uint     `json:"creator_id"`
	AssigneeID  *uint     `json:"assignee_id"`
	TeamID      *uint     `json:"team_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
