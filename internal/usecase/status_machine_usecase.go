package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fieldops/internal/domain/entities"
	"fieldops/internal/lock"
)

// Role identifies who is driving a transition.
type Role string

const (
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
	RoleSystem     Role = "system"
)

// TransitionRule is one row of the status policy table: who may move an
// assignment from one status to another, and whether the linked capture
// must pass completeness validation first.
type TransitionRule struct {
	From               entities.AssignmentStatus
	To                 entities.AssignmentStatus
	AllowedRoles       []Role
	RequiresValidation bool

	// CaptureStatus is projected onto the linked capture record after the
	// transition is written. Empty means no projection.
	CaptureStatus entities.CaptureStatus
}

// DefaultTransitionTable is the shipped policy. It is pure data so the
// legal-transition set and role authorization are testable by iteration.
// Completed, cancelled and expired are terminal: no rule leaves them.
func DefaultTransitionTable() []TransitionRule {
	return []TransitionRule{
		{From: entities.StatusPending, To: entities.StatusAccepted, AllowedRoles: []Role{RoleTechnician}},
		{From: entities.StatusAccepted, To: entities.StatusInProgress, AllowedRoles: []Role{RoleTechnician}, CaptureStatus: entities.CaptureStatusInProgress},
		{From: entities.StatusInProgress, To: entities.StatusCompleted, AllowedRoles: []Role{RoleTechnician}, RequiresValidation: true, CaptureStatus: entities.CaptureStatusCaptured},
		{From: entities.StatusPending, To: entities.StatusCancelled, AllowedRoles: []Role{RoleAdmin}, CaptureStatus: entities.CaptureStatusDraft},
		{From: entities.StatusAccepted, To: entities.StatusCancelled, AllowedRoles: []Role{RoleAdmin}, CaptureStatus: entities.CaptureStatusDraft},
		{From: entities.StatusInProgress, To: entities.StatusCancelled, AllowedRoles: []Role{RoleAdmin}, CaptureStatus: entities.CaptureStatusDraft},
		{From: entities.StatusPending, To: entities.StatusExpired, AllowedRoles: []Role{RoleSystem}, CaptureStatus: entities.CaptureStatusDraft},
	}
}

// IStatusMachineUseCase is the only path that changes an assignment's
// lifecycle status.
type IStatusMachineUseCase interface {
	Accept(ctx context.Context, id, technicianID string) (entities.Assignment, error)
	Start(ctx context.Context, id, technicianID string) (entities.Assignment, error)
	Complete(ctx context.Context, id, technicianID string) (entities.Assignment, error)
	Cancel(ctx context.Context, id, actorID, reason string) (entities.Assignment, error)
	Expire(ctx context.Context, id string) (entities.Assignment, error)
}

type StatusMachineUseCase struct {
	store  *AssignmentStoreUseCase
	table  []TransitionRule
	locks  *lock.MutexMap
	logger *slog.Logger
}

var _ IStatusMachineUseCase = (*StatusMachineUseCase)(nil)

func NewStatusMachineUseCase(store *AssignmentStoreUseCase, locks *lock.MutexMap, logger *slog.Logger) *StatusMachineUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusMachineUseCase{
		store:  store,
		table:  DefaultTransitionTable(),
		locks:  locks,
		logger: logger,
	}
}

// Accept moves pending -> accepted for the assigned technician.
func (u *StatusMachineUseCase) Accept(ctx context.Context, id, technicianID string) (entities.Assignment, error) {
	return u.transition(ctx, id, entities.StatusAccepted, RoleTechnician, technicianID, "")
}

// Start moves accepted -> in_progress for the assigned technician.
func (u *StatusMachineUseCase) Start(ctx context.Context, id, technicianID string) (entities.Assignment, error) {
	return u.transition(ctx, id, entities.StatusInProgress, RoleTechnician, technicianID, "")
}

// Complete moves in_progress -> completed. The linked capture must pass its
// completeness rules; completion is never recorded for an incomplete capture.
func (u *StatusMachineUseCase) Complete(ctx context.Context, id, technicianID string) (entities.Assignment, error) {
	return u.transition(ctx, id, entities.StatusCompleted, RoleTechnician, technicianID, "")
}

// Cancel retires an open assignment. Admin-only under the default table.
func (u *StatusMachineUseCase) Cancel(ctx context.Context, id, actorID, reason string) (entities.Assignment, error) {
	return u.transition(ctx, id, entities.StatusCancelled, RoleAdmin, actorID, reason)
}

// Expire is the system-driven path for stale pending assignments.
func (u *StatusMachineUseCase) Expire(ctx context.Context, id string) (entities.Assignment, error) {
	return u.transition(ctx, id, entities.StatusExpired, RoleSystem, "", "")
}

func (u *StatusMachineUseCase) transition(
	ctx context.Context,
	id string,
	target entities.AssignmentStatus,
	role Role,
	actorID string,
	reason string,
) (entities.Assignment, error) {
	u.locks.Lock(id)
	defer u.locks.Unlock(id)

	a, err := u.store.GetByID(ctx, id)
	if err != nil {
		return entities.Assignment{}, err
	}

	if role == RoleTechnician && a.AssignedTo != actorID {
		return entities.Assignment{}, &AuthorizationError{AssignmentID: id, ActorID: actorID}
	}

	rule, ok := u.findRule(a.Status, target)
	if !ok {
		return entities.Assignment{}, &InvalidTransitionError{AssignmentID: id, From: a.Status, To: target}
	}
	if !roleAllowed(rule, role) {
		return entities.Assignment{}, &InvalidTransitionError{AssignmentID: id, From: a.Status, To: target, Role: role}
	}

	if rule.RequiresValidation {
		capture, err := u.store.captures.Get(ctx, a.CaptureID)
		if err != nil {
			return entities.Assignment{}, err
		}
		if capture.ID == "" {
			return entities.Assignment{}, ErrCaptureNotFound
		}
		if violations := capture.CompletenessViolations(); len(violations) > 0 {
			return entities.Assignment{}, &ValidationError{AssignmentID: id, Violations: violations}
		}
	}

	now := time.Now().UTC()
	a.Status = target
	switch target {
	case entities.StatusAccepted:
		a.AcceptedAt = &now
	case entities.StatusInProgress:
		a.StartedAt = &now
	case entities.StatusCompleted:
		a.CompletedAt = &now
	case entities.StatusCancelled:
		if reason != "" {
			a.Notes = appendNote(a.Notes, fmt.Sprintf("[cancelled by %s at %s] %s", actorID, now.Format(time.RFC3339), reason))
		}
	}

	updated, err := u.store.writeStatus(ctx, a)
	if err != nil {
		return entities.Assignment{}, err
	}

	if rule.CaptureStatus != "" {
		u.store.projectCapture(ctx, id, func(c context.Context) error {
			_, err := u.store.captures.SetStatus(c, a.CaptureID, rule.CaptureStatus)
			return err
		})
	}

	u.logger.Info("assignment transitioned",
		"assignment_id", id, "from", rule.From, "to", target, "role", role, "actor_id", actorID)
	return updated, nil
}

func (u *StatusMachineUseCase) findRule(from, to entities.AssignmentStatus) (TransitionRule, bool) {
	for _, r := range u.table {
		if r.From == from && r.To == to {
			return r, true
		}
	}
	return TransitionRule{}, false
}

func roleAllowed(rule TransitionRule, role Role) bool {
	for _, r := range rule.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}
	return notes + "\n" + note
}
