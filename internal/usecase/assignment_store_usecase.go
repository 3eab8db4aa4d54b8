package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fieldops/internal/domain/entities"
	"fieldops/internal/infrastructure/config"
	"fieldops/internal/lock"
	"fieldops/internal/usecase/interfaces"
)

// IDirtyMarker receives the IDs of locally changed assignments so the sync
// engine can queue them for the next outbound batch.
type IDirtyMarker interface {
	MarkDirty(id string)
}

// IAssignmentStoreUseCase exposes canonical assignment CRUD. It is the only
// component that writes assignment records; status changes go through the
// status machine, which delegates its writes here.
type IAssignmentStoreUseCase interface {
	Create(ctx context.Context, in CreateAssignmentInput) (entities.Assignment, error)
	GetByID(ctx context.Context, id string) (entities.Assignment, error)
	GetByCaptureID(ctx context.Context, captureID string) (entities.Assignment, error)
	GetAll(ctx context.Context) ([]entities.Assignment, error)
	Update(ctx context.Context, id string, in UpdateAssignmentInput) (entities.Assignment, error)
	Delete(ctx context.Context, id string) error
}

// CreateAssignmentInput carries the caller-supplied fields for a new
// assignment. Status is always pending on creation.
type CreateAssignmentInput struct {
	CaptureID     string
	PoleID        string
	AssignedTo    string
	AssignedBy    string
	Priority      entities.Priority
	ScheduledDate *time.Time
	Notes         string
	Customer      entities.Customer
}

// UpdateAssignmentInput is a partial non-status update. Nil fields are left
// untouched. Status and lifecycle timestamps are not updatable here.
type UpdateAssignmentInput struct {
	PoleID        *string
	Priority      *entities.Priority
	ScheduledDate *time.Time
	Notes         *string
	Customer      *entities.Customer
}

type AssignmentStoreUseCase struct {
	repo     interfaces.IAssignmentRepository
	captures interfaces.ICaptureRepository
	cfg      config.Config
	locks    *lock.MutexMap
	logger   *slog.Logger
	dirty    IDirtyMarker
}

var _ IAssignmentStoreUseCase = (*AssignmentStoreUseCase)(nil)

func NewAssignmentStoreUseCase(
	repo interfaces.IAssignmentRepository,
	captures interfaces.ICaptureRepository,
	cfg config.Config,
	locks *lock.MutexMap,
	logger *slog.Logger,
) *AssignmentStoreUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssignmentStoreUseCase{
		repo:     repo,
		captures: captures,
		cfg:      cfg,
		locks:    locks,
		logger:   logger,
	}
}

// SetDirtyMarker wires the sync engine's queue. Optional; nil means local
// changes are not tracked for synchronization.
func (u *AssignmentStoreUseCase) SetDirtyMarker(m IDirtyMarker) {
	u.dirty = m
}

func (u *AssignmentStoreUseCase) markDirty(id string) {
	if u.dirty != nil {
		u.dirty.MarkDirty(id)
	}
}

// Create mints a pending assignment for a capture and projects the
// back-reference onto the capture record. Fails if the capture does not
// exist, already has an assignment, or the technician is at capacity.
func (u *AssignmentStoreUseCase) Create(ctx context.Context, in CreateAssignmentInput) (entities.Assignment, error) {
	in.CaptureID = strings.TrimSpace(in.CaptureID)
	in.AssignedTo = strings.TrimSpace(in.AssignedTo)
	if in.CaptureID == "" {
		return entities.Assignment{}, ErrInvalidCaptureID
	}
	if in.AssignedTo == "" {
		return entities.Assignment{}, ErrInvalidTechnicianID
	}
	if !entities.ValidPriority(in.Priority) {
		return entities.Assignment{}, ErrInvalidPriority
	}

	// Serialize creations per capture so two interleaved calls cannot both
	// pass the duplicate check.
	captureKey := "capture:" + in.CaptureID
	u.locks.Lock(captureKey)
	defer u.locks.Unlock(captureKey)

	capture, err := u.captures.Get(ctx, in.CaptureID)
	if err != nil {
		return entities.Assignment{}, err
	}
	if capture.ID == "" {
		return entities.Assignment{}, ErrCaptureNotFound
	}

	// Enforce: 1 assignment per capture.
	if existing, err := u.repo.GetByCaptureID(ctx, in.CaptureID); err != nil {
		return entities.Assignment{}, err
	} else if existing.ID != "" {
		return entities.Assignment{}, ErrDuplicateForCapture
	}

	if err := u.checkCapacity(ctx, in.AssignedTo, 1); err != nil {
		return entities.Assignment{}, err
	}

	now := time.Now().UTC()
	a := entities.Assignment{
		ID:            entities.NewAssignmentID(),
		CaptureID:     in.CaptureID,
		PoleID:        in.PoleID,
		Customer:      in.Customer,
		AssignedTo:    in.AssignedTo,
		AssignedBy:    in.AssignedBy,
		Priority:      in.Priority,
		Status:        entities.StatusPending,
		AssignedAt:    now,
		ScheduledDate: in.ScheduledDate,
		Notes:         in.Notes,
		UpdatedAt:     now,
	}

	created, err := u.repo.Create(ctx, a)
	if err != nil {
		return entities.Assignment{}, err
	}

	// The capture back-reference is logically part of the create but there
	// is no cross-table transaction. Retry once, then log for
	// reconciliation rather than failing the already-written assignment.
	u.projectCapture(ctx, created.ID, func(c context.Context) error {
		_, err := u.captures.SetAssignment(c, in.CaptureID, created.ID, entities.CaptureStatusAssigned)
		return err
	})

	u.markDirty(created.ID)
	return created, nil
}

func (u *AssignmentStoreUseCase) GetByID(ctx context.Context, id string) (entities.Assignment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Assignment{}, ErrInvalidAssignmentID
	}
	a, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Assignment{}, err
	}
	if a.ID == "" {
		return entities.Assignment{}, ErrAssignmentNotFound
	}
	return a, nil
}

func (u *AssignmentStoreUseCase) GetByCaptureID(ctx context.Context, captureID string) (entities.Assignment, error) {
	captureID = strings.TrimSpace(captureID)
	if captureID == "" {
		return entities.Assignment{}, ErrInvalidCaptureID
	}
	a, err := u.repo.GetByCaptureID(ctx, captureID)
	if err != nil {
		return entities.Assignment{}, err
	}
	if a.ID == "" {
		return entities.Assignment{}, ErrAssignmentNotFound
	}
	return a, nil
}

func (u *AssignmentStoreUseCase) GetAll(ctx context.Context) ([]entities.Assignment, error) {
	return u.repo.ListAll(ctx)
}

// Update applies a partial non-status edit. Completed assignments are
// immutable to everything but an administrative delete.
func (u *AssignmentStoreUseCase) Update(ctx context.Context, id string, in UpdateAssignmentInput) (entities.Assignment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Assignment{}, ErrInvalidAssignmentID
	}
	if in.Priority != nil && !entities.ValidPriority(*in.Priority) {
		return entities.Assignment{}, ErrInvalidPriority
	}

	u.locks.Lock(id)
	defer u.locks.Unlock(id)

	a, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Assignment{}, err
	}
	if a.ID == "" {
		return entities.Assignment{}, ErrAssignmentNotFound
	}
	if a.Status == entities.StatusCompleted {
		return entities.Assignment{}, ErrCompletedImmutable
	}

	if in.PoleID != nil {
		a.PoleID = *in.PoleID
	}
	if in.Priority != nil {
		a.Priority = *in.Priority
	}
	if in.ScheduledDate != nil {
		a.ScheduledDate = in.ScheduledDate
	}
	if in.Notes != nil {
		a.Notes = *in.Notes
	}
	if in.Customer != nil {
		a.Customer = *in.Customer
	}
	a.UpdatedAt = time.Now().UTC()

	updated, err := u.repo.Update(ctx, a)
	if err != nil {
		return entities.Assignment{}, err
	}
	if updated.ID == "" {
		return entities.Assignment{}, ErrAssignmentNotFound
	}
	u.markDirty(updated.ID)
	return updated, nil
}

// Delete is the administrative removal path. It also clears the capture
// back-reference so the capture can be reassigned.
func (u *AssignmentStoreUseCase) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidAssignmentID
	}

	u.locks.Lock(id)
	defer u.locks.Unlock(id)

	a, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.ID == "" {
		return ErrAssignmentNotFound
	}

	if err := u.repo.Delete(ctx, id); err != nil {
		return err
	}

	u.projectCapture(ctx, id, func(c context.Context) error {
		_, err := u.captures.ClearAssignment(c, a.CaptureID)
		return err
	})
	return nil
}

// writeStatus persists a status transition decided by the status machine.
// Not part of the public contract; the status machine is the only caller.
// A record deleted between load and write surfaces as not-found, never as a
// zero-value success.
func (u *AssignmentStoreUseCase) writeStatus(ctx context.Context, a entities.Assignment) (entities.Assignment, error) {
	a.UpdatedAt = time.Now().UTC()
	updated, err := u.repo.Update(ctx, a)
	if err != nil {
		return entities.Assignment{}, err
	}
	if updated.ID == "" {
		return entities.Assignment{}, ErrAssignmentNotFound
	}
	u.markDirty(updated.ID)
	return updated, nil
}

// projectCapture runs a capture-record write with one retry, logging a
// reconciliation warning if both attempts fail. The assignment write it
// accompanies has already succeeded and is not rolled back.
func (u *AssignmentStoreUseCase) projectCapture(ctx context.Context, assignmentID string, write func(context.Context) error) {
	err := write(ctx)
	if err == nil {
		return
	}
	if err = write(ctx); err == nil {
		return
	}
	u.logger.Warn("capture projection failed, needs reconciliation",
		"assignment_id", assignmentID, "error", err)
}

func (u *AssignmentStoreUseCase) checkCapacity(ctx context.Context, technicianID string, requested int) error {
	existing, err := u.repo.ListByTechnician(ctx, technicianID)
	if err != nil {
		return err
	}
	active := 0
	for _, a := range existing {
		if a.Status.IsActive() {
			active++
		}
	}
	if active+requested > u.cfg.MaxActivePerTechnician {
		return &CapacityExceededError{
			TechnicianID: technicianID,
			Active:       active,
			Requested:    requested,
			Ceiling:      u.cfg.MaxActivePerTechnician,
		}
	}
	return nil
}
