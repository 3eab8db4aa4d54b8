package usecase

import (
	"errors"
	"fmt"
	"strings"

	"fieldops/internal/domain/entities"
)

var (
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrCaptureNotFound     = errors.New("capture not found")
	ErrDuplicateForCapture = errors.New("assignment already exists for capture")

	ErrInvalidAssignmentID = errors.New("invalid assignment id")
	ErrInvalidCaptureID    = errors.New("invalid capture id")
	ErrInvalidTechnicianID = errors.New("invalid technician id")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrInvalidStatus       = errors.New("invalid status")

	// ErrCompletedImmutable guards non-status edits on completed work.
	ErrCompletedImmutable = errors.New("assignment is completed and immutable")

	// ErrSyncInProgress is returned when a second sync batch is requested
	// while one is still running. Callers should retry later.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrManualResolutionRequired signals a conflict that must be shown to
	// a human before it can be resolved with an explicit strategy.
	ErrManualResolutionRequired = errors.New("conflict requires manual resolution")
)

// AuthorizationError is returned when an actor attempts a transition on an
// assignment that is not theirs.
type AuthorizationError struct {
	AssignmentID string
	ActorID      string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %s is not assigned to %s", e.ActorID, e.AssignmentID)
}

// InvalidTransitionError is returned when no policy rule permits moving an
// assignment from its current status to the requested one, or when the
// acting role is not in the rule's allowed set.
type InvalidTransitionError struct {
	AssignmentID string
	From         entities.AssignmentStatus
	To           entities.AssignmentStatus
	Role         Role
}

func (e *InvalidTransitionError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("transition %s -> %s not permitted for role %s", e.From, e.To, e.Role)
	}
	return fmt.Sprintf("no transition from %s to %s", e.From, e.To)
}

// ValidationError carries the concrete list of violations so the view layer
// can show the actor exactly what is missing.
type ValidationError struct {
	AssignmentID string
	Violations   []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// CapacityExceededError reports a technician at or over the active ceiling.
// Active and Ceiling let callers render "N/M active assignments".
type CapacityExceededError struct {
	TechnicianID string
	Active       int
	Requested    int
	Ceiling      int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("technician %s has %d/%d active assignments (requested %d more)",
		e.TechnicianID, e.Active, e.Ceiling, e.Requested)
}

// IsCapacityError reports whether err is a capacity ceiling rejection.
// Uses errors.As to handle wrapped errors.
func IsCapacityError(err error) bool {
	var ce *CapacityExceededError
	return errors.As(err, &ce)
}

// IsValidationError reports whether err carries completeness violations.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
