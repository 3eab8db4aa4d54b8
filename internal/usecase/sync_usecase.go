package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fieldops/internal/domain/entities"
	"fieldops/internal/infrastructure/config"
	"fieldops/internal/usecase/interfaces"
)

// Resolution names a conflict-resolution strategy.
type Resolution string

const (
	// ResolutionLocal keeps the local snapshot as-is.
	ResolutionLocal Resolution = "local"
	// ResolutionRemote overwrites local with the remote's full state.
	ResolutionRemote Resolution = "remote"
	// ResolutionMerge takes the remote value for a caller-listed field
	// subset; local wins everywhere else.
	ResolutionMerge Resolution = "merge"
	// ResolutionManual always fails: a human must pick local/remote/merge.
	ResolutionManual Resolution = "manual"
)

// SyncResult accumulates per-item outcomes of one batch. One record's
// failure never blocks the others.
type SyncResult struct {
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Conflicts  int         `json:"conflicts"`
	Errors     []ItemError `json:"errors,omitempty"`
}

// ISyncUseCase drives outbound synchronization of locally changed
// assignments and resolves local/remote divergence.
type ISyncUseCase interface {
	QueueForSync(id string)
	ClearSyncQueue()
	QueuedIDs() []string
	ProcessSyncQueue(ctx context.Context) (SyncResult, error)
	SyncAssignments(ctx context.Context, ids []string) (SyncResult, error)
	ResolveConflict(local, remote entities.Assignment, resolution Resolution, mergeFields []string) (entities.Assignment, error)
	ResolveConflictByID(ctx context.Context, id string, remote entities.Assignment, resolution Resolution, mergeFields []string) (entities.Assignment, error)
	LastSyncAt() *time.Time
}

type SyncUseCase struct {
	store   *AssignmentStoreUseCase
	gateway interfaces.ISyncGateway
	cfg     config.SyncConfig
	logger  *slog.Logger

	mu         sync.Mutex
	queue      map[string]struct{}
	order      []string
	inProgress bool
	lastSyncAt *time.Time
}

var _ ISyncUseCase = (*SyncUseCase)(nil)
var _ IDirtyMarker = (*SyncUseCase)(nil)

func NewSyncUseCase(
	store *AssignmentStoreUseCase,
	gateway interfaces.ISyncGateway,
	cfg config.SyncConfig,
	logger *slog.Logger,
) *SyncUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncUseCase{
		store:   store,
		gateway: gateway,
		cfg:     cfg,
		logger:  logger,
		queue:   make(map[string]struct{}),
	}
}

// MarkDirty satisfies IDirtyMarker so the store and status machine can feed
// the queue without depending on the sync engine directly.
func (u *SyncUseCase) MarkDirty(id string) {
	u.QueueForSync(id)
}

// QueueForSync records a dirty assignment ID. Idempotent: re-queuing an
// already-queued ID is a no-op.
func (u *SyncUseCase) QueueForSync(id string) {
	if id == "" {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.queue[id]; ok {
		return
	}
	u.queue[id] = struct{}{}
	u.order = append(u.order, id)
}

// ClearSyncQueue drops all pending retry intent. An in-flight batch is not
// preempted; it runs each item to completion.
func (u *SyncUseCase) ClearSyncQueue() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.queue = make(map[string]struct{})
	u.order = nil
}

// QueuedIDs returns the currently queued IDs in enqueue order.
func (u *SyncUseCase) QueuedIDs() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	ids := make([]string, len(u.order))
	copy(ids, u.order)
	return ids
}

// LastSyncAt reports when the last batch finished, nil before the first.
func (u *SyncUseCase) LastSyncAt() *time.Time {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastSyncAt
}

// ProcessSyncQueue drains the current queue and syncs it as one batch. An
// empty queue is a no-op, not a full-store push. If the batch is refused or
// fails before running, the drained IDs go back on the queue: dirty intent
// must survive a "retry later" answer.
func (u *SyncUseCase) ProcessSyncQueue(ctx context.Context) (SyncResult, error) {
	u.mu.Lock()
	ids := u.order
	u.queue = make(map[string]struct{})
	u.order = nil
	u.mu.Unlock()

	if len(ids) == 0 {
		return SyncResult{}, nil
	}
	result, err := u.SyncAssignments(ctx, ids)
	if err != nil {
		for _, id := range ids {
			u.QueueForSync(id)
		}
		return result, err
	}
	return result, nil
}

// SyncAssignments pushes the given assignments (all of them when ids is
// empty) to the remote system of record. Refuses to overlap with a running
// batch. Items that fail the transport are re-queued; conflicts are counted
// and left for explicit resolution. lastSyncAt is stamped regardless of
// partial failure.
func (u *SyncUseCase) SyncAssignments(ctx context.Context, ids []string) (SyncResult, error) {
	u.mu.Lock()
	if u.inProgress {
		u.mu.Unlock()
		return SyncResult{}, ErrSyncInProgress
	}
	u.inProgress = true
	u.mu.Unlock()

	defer func() {
		now := time.Now().UTC()
		u.mu.Lock()
		u.inProgress = false
		u.lastSyncAt = &now
		u.mu.Unlock()
	}()

	targets, err := u.loadTargets(ctx, ids)
	if err != nil {
		return SyncResult{}, err
	}

	var result SyncResult
	for _, a := range targets {
		push, err := u.pushWithRetry(ctx, a)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ItemError{ID: a.ID, Error: err.Error()})
			u.QueueForSync(a.ID)
			u.logger.Warn("assignment sync failed", "assignment_id", a.ID, "error", err)
			continue
		}
		if push.Conflict {
			result.Conflicts++
			result.Errors = append(result.Errors, ItemError{ID: a.ID, Error: "remote conflict, resolution required"})
			u.logger.Warn("assignment sync conflict", "assignment_id", a.ID)
			continue
		}
		result.Successful++
	}

	u.logger.Info("sync batch finished",
		"successful", result.Successful, "failed", result.Failed, "conflicts", result.Conflicts)
	return result, nil
}

func (u *SyncUseCase) loadTargets(ctx context.Context, ids []string) ([]entities.Assignment, error) {
	if len(ids) == 0 {
		return u.store.GetAll(ctx)
	}
	targets := make([]entities.Assignment, 0, len(ids))
	for _, id := range ids {
		a, err := u.store.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if a.ID == "" {
			// Deleted since it was queued; nothing to push.
			continue
		}
		targets = append(targets, a)
	}
	return targets, nil
}

// pushWithRetry retries transport failures with capped exponential backoff.
// Conflict verdicts are not retried; they need resolution, not repetition.
func (u *SyncUseCase) pushWithRetry(ctx context.Context, a entities.Assignment) (interfaces.PushResult, error) {
	var lastErr error
	backoff := u.cfg.BackoffBase
	for attempt := 0; attempt <= u.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return interfaces.PushResult{}, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > u.cfg.BackoffCap {
				backoff = u.cfg.BackoffCap
			}
		}
		push, err := u.gateway.PushAssignment(ctx, a)
		if err == nil {
			return push, nil
		}
		lastErr = err
	}
	return interfaces.PushResult{}, fmt.Errorf("push failed after %d attempts: %w", u.cfg.MaxRetries+1, lastErr)
}

// ResolveConflict reconciles a diverged local/remote pair. Detection is the
// gateway's job; this only decides how to reconcile.
func (u *SyncUseCase) ResolveConflict(local, remote entities.Assignment, resolution Resolution, mergeFields []string) (entities.Assignment, error) {
	switch resolution {
	case ResolutionLocal:
		return local, nil
	case ResolutionRemote:
		return remote, nil
	case ResolutionMerge:
		return mergeAssignments(local, remote, mergeFields), nil
	case ResolutionManual:
		return entities.Assignment{}, ErrManualResolutionRequired
	default:
		return entities.Assignment{}, fmt.Errorf("unknown resolution strategy %q", resolution)
	}
}

// ResolveConflictByID resolves a reported conflict against the stored local
// snapshot and persists the outcome. The resolved record is re-queued so the
// next batch converges the remote on it; for a remote-wins resolution that
// push is an idempotent no-op.
func (u *SyncUseCase) ResolveConflictByID(ctx context.Context, id string, remote entities.Assignment, resolution Resolution, mergeFields []string) (entities.Assignment, error) {
	u.store.locks.Lock(id)
	defer u.store.locks.Unlock(id)

	local, err := u.store.GetByID(ctx, id)
	if err != nil {
		return entities.Assignment{}, err
	}

	resolved, err := u.ResolveConflict(local, remote, resolution, mergeFields)
	if err != nil {
		return entities.Assignment{}, err
	}
	// The remote snapshot is untrusted input; never persist a status outside
	// the enumerated set.
	if !entities.ValidStatus(resolved.Status) {
		return entities.Assignment{}, fmt.Errorf("%w: resolution produced %q", ErrInvalidStatus, resolved.Status)
	}
	// Identity is never up for resolution.
	resolved.ID = local.ID
	resolved.CaptureID = local.CaptureID
	resolved.UpdatedAt = time.Now().UTC()

	updated, err := u.store.repo.Update(ctx, resolved)
	if err != nil {
		return entities.Assignment{}, err
	}
	if updated.ID == "" {
		return entities.Assignment{}, ErrAssignmentNotFound
	}
	u.QueueForSync(updated.ID)
	u.logger.Info("sync conflict resolved", "assignment_id", id, "resolution", resolution)
	return updated, nil
}

// mergeAssignments overwrites only the listed fields with the remote's
// values; local wins on everything not listed.
func mergeAssignments(local, remote entities.Assignment, fields []string) entities.Assignment {
	merged := local
	for _, f := range fields {
		switch f {
		case "pole_id":
			merged.PoleID = remote.PoleID
		case "customer":
			merged.Customer = remote.Customer
		case "assigned_to":
			merged.AssignedTo = remote.AssignedTo
		case "assigned_by":
			merged.AssignedBy = remote.AssignedBy
		case "priority":
			merged.Priority = remote.Priority
		case "status":
			merged.Status = remote.Status
		case "scheduled_date":
			merged.ScheduledDate = remote.ScheduledDate
		case "notes":
			merged.Notes = remote.Notes
		}
	}
	return merged
}
