package response

import (
	"time"

	"fieldops/internal/domain/entities"
)

type CustomerResponse struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

type AssignmentResponse struct {
	ID        string `json:"id"`
	CaptureID string `json:"capture_id"`
	PoleID    string `json:"pole_id,omitempty"`

	Customer CustomerResponse `json:"customer"`

	AssignedTo string `json:"assigned_to"`
	AssignedBy string `json:"assigned_by,omitempty"`
	Priority   string `json:"priority"`
	Status     string `json:"status"`

	AssignedAt    time.Time  `json:"assigned_at"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`

	Notes     string    `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromAssignment(a entities.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:        a.ID,
		CaptureID: a.CaptureID,
		PoleID:    a.PoleID,
		Customer: CustomerResponse{
			Name:    a.Customer.Name,
			Address: a.Customer.Address,
			Contact: a.Customer.Contact,
		},
		AssignedTo:    a.AssignedTo,
		AssignedBy:    a.AssignedBy,
		Priority:      string(a.Priority),
		Status:        string(a.Status),
		AssignedAt:    a.AssignedAt,
		AcceptedAt:    a.AcceptedAt,
		StartedAt:     a.StartedAt,
		CompletedAt:   a.CompletedAt,
		ScheduledDate: a.ScheduledDate,
		Notes:         a.Notes,
		UpdatedAt:     a.UpdatedAt,
	}
}

func FromAssignments(as []entities.Assignment) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(as))
	for _, a := range as {
		out = append(out, FromAssignment(a))
	}
	return out
}
