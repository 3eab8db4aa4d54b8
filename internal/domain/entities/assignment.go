package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus represents the lifecycle of a field-work assignment.
//
// Domain notes:
//   - The assignment store is the source of truth for assignment state.
//   - Status may only be changed through the status machine; every other
//     component treats it as read-only.

type AssignmentStatus string

const (
	StatusPending    AssignmentStatus = "pending"
	StatusAccepted   AssignmentStatus = "accepted"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusCompleted  AssignmentStatus = "completed"
	StatusCancelled  AssignmentStatus = "cancelled"
	StatusExpired    AssignmentStatus = "expired"
)

// IsTerminal reports whether the status admits no further transitions
// under the default policy table.
func (s AssignmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusExpired
}

// IsActive reports whether the status counts toward a technician's
// capacity ceiling.
func (s AssignmentStatus) IsActive() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusInProgress
}

// ValidStatus reports whether s is one of the six enumerated values.
func ValidStatus(s AssignmentStatus) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Priority of an assignment. Drives scheduling lead-time recommendations.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func ValidPriority(p Priority) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Customer is the denormalized customer snapshot carried on an assignment
// so the view layer can render without a second lookup.
type Customer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

// Assignment is the unit of field work persisted in DynamoDB.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (capture_id-index): capture_id — enforces lookups for the
//     one-assignment-per-capture rule
//   - GSI2 (assigned_to-index): assigned_to — technician-scoped scans
type Assignment struct {
	ID        string `json:"id"`
	CaptureID string `json:"capture_id"`
	PoleID    string `json:"pole_id"`

	Customer Customer `json:"customer"`

	AssignedTo string           `json:"assigned_to"`
	AssignedBy string           `json:"assigned_by"`
	Priority   Priority         `json:"priority"`
	Status     AssignmentStatus `json:"status"`

	AssignedAt    time.Time  `json:"assigned_at"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`

	Notes string `json:"notes,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// IsOverdue reports whether the scheduled date has passed while the
// assignment is still open. Completed and cancelled work is never overdue.
func (a Assignment) IsOverdue(now time.Time) bool {
	if a.ScheduledDate == nil {
		return false
	}
	if a.Status == StatusCompleted || a.Status == StatusCancelled {
		return false
	}
	return a.ScheduledDate.Before(now)
}

const assignmentIDPrefix = "asg"

// NewAssignmentID mints a globally unique identifier without server
// coordination: prefix, millisecond timestamp, random suffix. Devices
// generating IDs fully offline cannot collide on the suffix.
func NewAssignmentID() string {
	return fmt.Sprintf("%s-%d-%s", assignmentIDPrefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}
