package request

import (
	"strings"
	"time"
)

type CustomerRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

// CreateAssignmentRequest is the payload for single assignment creation.
type CreateAssignmentRequest struct {
	CaptureID     string          `json:"capture_id" binding:"required"`
	PoleID        string          `json:"pole_id"`
	AssignedTo    string          `json:"assigned_to" binding:"required"`
	AssignedBy    string          `json:"assigned_by"`
	Priority      string          `json:"priority" binding:"required"`
	ScheduledDate *time.Time      `json:"scheduled_date"`
	Notes         string          `json:"notes"`
	Customer      CustomerRequest `json:"customer"`
}

// UpdateAssignmentRequest is a partial non-status update; absent fields are
// left untouched.
type UpdateAssignmentRequest struct {
	PoleID        *string          `json:"pole_id"`
	Priority      *string          `json:"priority"`
	ScheduledDate *time.Time       `json:"scheduled_date"`
	Notes         *string          `json:"notes"`
	Customer      *CustomerRequest `json:"customer"`
}

// TransitionRequest identifies the actor driving a lifecycle transition.
type TransitionRequest struct {
	ActorID string `json:"actor_id" binding:"required"`
	Reason  string `json:"reason"`
}

// BulkCreateRequest targets one technician with several captures.
type BulkCreateRequest struct {
	AssignedTo    string          `json:"assigned_to" binding:"required"`
	AssignedBy    string          `json:"assigned_by"`
	CaptureIDs    []string        `json:"capture_ids" binding:"required"`
	Priority      string          `json:"priority" binding:"required"`
	ScheduledDate *time.Time      `json:"scheduled_date"`
	Notes         string          `json:"notes"`
	Customer      CustomerRequest `json:"customer"`
}

// BulkUpdateRequest applies one partial update to several assignments.
type BulkUpdateRequest struct {
	IDs    []string                `json:"ids" binding:"required"`
	Fields UpdateAssignmentRequest `json:"fields"`
}

// ReassignRequest hands an assignment to another technician.
type ReassignRequest struct {
	NewTechnicianID string `json:"new_technician_id" binding:"required"`
	ActorID         string `json:"actor_id" binding:"required"`
	Reason          string `json:"reason"`
}

// SyncRequest optionally narrows a sync batch to explicit IDs.
type SyncRequest struct {
	IDs []string `json:"ids"`
}

// AssignmentSnapshot is the remote copy of an assignment as reported by a
// conflicting push response.
type AssignmentSnapshot struct {
	PoleID        string          `json:"pole_id"`
	Customer      CustomerRequest `json:"customer"`
	AssignedTo    string          `json:"assigned_to"`
	AssignedBy    string          `json:"assigned_by"`
	Priority      string          `json:"priority"`
	Status        string          `json:"status"`
	AssignedAt    time.Time       `json:"assigned_at"`
	AcceptedAt    *time.Time      `json:"accepted_at"`
	StartedAt     *time.Time      `json:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at"`
	ScheduledDate *time.Time      `json:"scheduled_date"`
	Notes         string          `json:"notes"`
}

// ResolveConflictRequest carries the remote snapshot and the chosen
// strategy; the local snapshot is the stored record.
type ResolveConflictRequest struct {
	Resolution  string             `json:"resolution" binding:"required"`
	MergeFields []string           `json:"merge_fields"`
	Remote      AssignmentSnapshot `json:"remote"`
}

func (r CreateAssignmentRequest) ResolveCaptureID() string {
	return strings.TrimSpace(r.CaptureID)
}
