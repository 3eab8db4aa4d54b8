package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fieldops/internal/domain/entities"
	"fieldops/internal/infrastructure/config"
)

// BulkCreateInput targets one technician with a list of captures sharing
// priority, schedule and notes.
type BulkCreateInput struct {
	AssignedTo    string
	AssignedBy    string
	CaptureIDs    []string
	Priority      entities.Priority
	ScheduledDate *time.Time
	Notes         string
	Customer      entities.Customer
}

// ItemError records one failed item inside an otherwise best-effort batch.
type ItemError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkCreateResult reports per-item outcomes. The batch only fails as a
// whole when the capacity gate rejects it up front.
type BulkCreateResult struct {
	Created []entities.Assignment `json:"created"`
	Failed  []ItemError           `json:"failed"`
}

// BulkUpdateResult reports per-item outcomes of a bulk field update.
type BulkUpdateResult struct {
	Successful []string    `json:"successful"`
	Failed     []ItemError `json:"failed"`
}

// ValidationReport is the pre-flight check result for a draft assignment.
// Errors block creation; warnings are advisory.
type ValidationReport struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// IBulkUseCase coordinates capacity-checked batch work and the periodic
// expiry sweep.
type IBulkUseCase interface {
	CreateBulkAssignments(ctx context.Context, in BulkCreateInput) (BulkCreateResult, error)
	UpdateBulkAssignments(ctx context.Context, ids []string, in UpdateAssignmentInput) (BulkUpdateResult, error)
	ReassignAssignment(ctx context.Context, id, newTechnicianID, actorID, reason string) (entities.Assignment, error)
	ValidateAssignment(ctx context.Context, draft CreateAssignmentInput) (ValidationReport, error)
	SweepExpired(ctx context.Context) (int, error)
}

type BulkUseCase struct {
	store   *AssignmentStoreUseCase
	stats   IStatisticsUseCase
	machine IStatusMachineUseCase
	cfg     config.Config
	logger  *slog.Logger

	sweepMu   sync.Mutex
	sweepStop chan struct{}
}

var _ IBulkUseCase = (*BulkUseCase)(nil)

func NewBulkUseCase(
	store *AssignmentStoreUseCase,
	stats IStatisticsUseCase,
	machine IStatusMachineUseCase,
	cfg config.Config,
	logger *slog.Logger,
) *BulkUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &BulkUseCase{
		store:   store,
		stats:   stats,
		machine: machine,
		cfg:     cfg,
		logger:  logger,
	}
}

// CreateBulkAssignments is capacity-gated up front: if the whole batch
// would push the technician over the ceiling, nothing is written. Past the
// gate, creation is best effort per item.
func (u *BulkUseCase) CreateBulkAssignments(ctx context.Context, in BulkCreateInput) (BulkCreateResult, error) {
	if in.AssignedTo == "" {
		return BulkCreateResult{}, ErrInvalidTechnicianID
	}
	if !entities.ValidPriority(in.Priority) {
		return BulkCreateResult{}, ErrInvalidPriority
	}

	workload, err := u.stats.GetTechnicianWorkload(ctx, in.AssignedTo)
	if err != nil {
		return BulkCreateResult{}, err
	}
	if workload.Active+len(in.CaptureIDs) > u.cfg.MaxActivePerTechnician {
		return BulkCreateResult{}, &CapacityExceededError{
			TechnicianID: in.AssignedTo,
			Active:       workload.Active,
			Requested:    len(in.CaptureIDs),
			Ceiling:      u.cfg.MaxActivePerTechnician,
		}
	}

	var result BulkCreateResult
	for _, captureID := range in.CaptureIDs {
		created, err := u.store.Create(ctx, CreateAssignmentInput{
			CaptureID:     captureID,
			AssignedTo:    in.AssignedTo,
			AssignedBy:    in.AssignedBy,
			Priority:      in.Priority,
			ScheduledDate: in.ScheduledDate,
			Notes:         in.Notes,
			Customer:      in.Customer,
		})
		if err != nil {
			result.Failed = append(result.Failed, ItemError{ID: captureID, Error: err.Error()})
			continue
		}
		result.Created = append(result.Created, created)
	}
	return result, nil
}

// UpdateBulkAssignments applies one partial update to each ID
// independently. Partial success is expected and reported.
func (u *BulkUseCase) UpdateBulkAssignments(ctx context.Context, ids []string, in UpdateAssignmentInput) (BulkUpdateResult, error) {
	var result BulkUpdateResult
	for _, id := range ids {
		if _, err := u.store.Update(ctx, id, in); err != nil {
			result.Failed = append(result.Failed, ItemError{ID: id, Error: err.Error()})
			continue
		}
		result.Successful = append(result.Successful, id)
	}
	return result, nil
}

// ReassignAssignment hands an open assignment to another technician. The
// assignment re-enters the workflow from the top: status back to pending,
// acceptance and start timestamps cleared, audit trail appended to notes.
func (u *BulkUseCase) ReassignAssignment(ctx context.Context, id, newTechnicianID, actorID, reason string) (entities.Assignment, error) {
	if id == "" {
		return entities.Assignment{}, ErrInvalidAssignmentID
	}
	if newTechnicianID == "" {
		return entities.Assignment{}, ErrInvalidTechnicianID
	}

	u.store.locks.Lock(id)
	defer u.store.locks.Unlock(id)

	a, err := u.store.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Assignment{}, err
	}
	if a.ID == "" {
		return entities.Assignment{}, ErrAssignmentNotFound
	}
	if a.Status == entities.StatusCompleted {
		return entities.Assignment{}, ErrCompletedImmutable
	}

	if a.AssignedTo != newTechnicianID {
		if err := u.store.checkCapacity(ctx, newTechnicianID, 1); err != nil {
			return entities.Assignment{}, err
		}
	}

	now := time.Now().UTC()
	audit := fmt.Sprintf("[reassigned %s from %s to %s by %s]", now.Format(time.RFC3339), a.AssignedTo, newTechnicianID, actorID)
	if reason != "" {
		audit += " " + reason
	}

	a.Notes = appendNote(a.Notes, audit)
	a.AssignedTo = newTechnicianID
	a.AssignedBy = actorID
	a.Status = entities.StatusPending
	a.AcceptedAt = nil
	a.StartedAt = nil
	a.AssignedAt = now

	updated, err := u.store.writeStatus(ctx, a)
	if err != nil {
		return entities.Assignment{}, err
	}

	u.logger.Info("assignment reassigned",
		"assignment_id", id, "to", newTechnicianID, "actor_id", actorID)
	return updated, nil
}

// ValidateAssignment is a pre-flight check: hard errors for missing
// required fields or a technician at capacity, soft warnings for schedule
// dates in the past or beyond the priority's recommended lead time.
func (u *BulkUseCase) ValidateAssignment(ctx context.Context, draft CreateAssignmentInput) (ValidationReport, error) {
	report := ValidationReport{}

	if draft.CaptureID == "" {
		report.Errors = append(report.Errors, "capture id is required")
	}
	if draft.AssignedTo == "" {
		report.Errors = append(report.Errors, "technician is required")
	}
	if !entities.ValidPriority(draft.Priority) {
		report.Errors = append(report.Errors, "priority must be high, medium or low")
	}

	if draft.AssignedTo != "" {
		workload, err := u.stats.GetTechnicianWorkload(ctx, draft.AssignedTo)
		if err != nil {
			return ValidationReport{}, err
		}
		if workload.Active >= u.cfg.MaxActivePerTechnician {
			report.Errors = append(report.Errors, fmt.Sprintf(
				"technician %s has %d/%d active assignments",
				draft.AssignedTo, workload.Active, u.cfg.MaxActivePerTechnician))
		}
	}

	if draft.ScheduledDate != nil {
		now := time.Now()
		if draft.ScheduledDate.Before(now) {
			report.Warnings = append(report.Warnings, "scheduled date is in the past")
		} else if entities.ValidPriority(draft.Priority) {
			lead := time.Duration(u.cfg.LeadTimeHours(string(draft.Priority))) * time.Hour
			if draft.ScheduledDate.After(now.Add(lead)) {
				report.Warnings = append(report.Warnings, fmt.Sprintf(
					"scheduled date exceeds the recommended %s-priority lead time of %dh",
					draft.Priority, u.cfg.LeadTimeHours(string(draft.Priority))))
			}
		}
	}

	report.IsValid = len(report.Errors) == 0
	return report, nil
}

// SweepExpired expires pending assignments older than the configured
// window. Individual failures are logged and do not abort the sweep.
// Returns how many assignments were expired.
func (u *BulkUseCase) SweepExpired(ctx context.Context) (int, error) {
	all, err := u.store.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -u.cfg.ExpiryWindowDays)
	expired := 0
	for _, a := range all {
		if a.Status != entities.StatusPending || !a.AssignedAt.Before(cutoff) {
			continue
		}
		if _, err := u.machine.Expire(ctx, a.ID); err != nil {
			u.logger.Warn("expiry sweep failed for assignment",
				"assignment_id", a.ID, "error", err)
			continue
		}
		expired++
	}
	if expired > 0 {
		u.logger.Info("expiry sweep finished", "expired", expired)
	}
	return expired, nil
}

// StartSweeper launches the periodic expiry sweep. Stop with StopSweeper.
func (u *BulkUseCase) StartSweeper(ctx context.Context) {
	u.sweepMu.Lock()
	defer u.sweepMu.Unlock()
	if u.sweepStop != nil {
		return
	}
	stop := make(chan struct{})
	u.sweepStop = stop

	go func() {
		ticker := time.NewTicker(u.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := u.SweepExpired(ctx); err != nil {
					u.logger.Error("expiry sweep aborted", "error", err)
				}
			}
		}
	}()
}

// StopSweeper halts the periodic sweep. Safe to call when not running.
func (u *BulkUseCase) StopSweeper() {
	u.sweepMu.Lock()
	defer u.sweepMu.Unlock()
	if u.sweepStop != nil {
		close(u.sweepStop)
		u.sweepStop = nil
	}
}
