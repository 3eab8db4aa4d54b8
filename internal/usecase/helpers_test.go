package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"fieldops/internal/adapter/persistence/memory"
	"fieldops/internal/domain/entities"
	"fieldops/internal/infrastructure/config"
	"fieldops/internal/lock"
)

type testEnv struct {
	repo     *memory.AssignmentMemoryRepository
	captures *memory.CaptureMemoryRepository
	store    *AssignmentStoreUseCase
	machine  *StatusMachineUseCase
	stats    *StatisticsUseCase
	filter   *FilterUseCase
	bulk     *BulkUseCase
	cfg      config.Config
}

func newTestEnv(cfg config.Config) *testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewAssignmentMemoryRepository()
	captures := memory.NewCaptureMemoryRepository()
	locks := lock.NewMutexMap()

	store := NewAssignmentStoreUseCase(repo, captures, cfg, locks, logger)
	machine := NewStatusMachineUseCase(store, locks, logger)
	stats := NewStatisticsUseCase(repo)
	filter := NewFilterUseCase(repo)
	bulk := NewBulkUseCase(store, stats, machine, cfg, logger)

	return &testEnv{
		repo:     repo,
		captures: captures,
		store:    store,
		machine:  machine,
		stats:    stats,
		filter:   filter,
		bulk:     bulk,
		cfg:      cfg,
	}
}

// seedCapture registers a complete capture ready for assignment.
func (e *testEnv) seedCapture(id string) {
	e.captures.Seed(entities.Capture{
		ID:             id,
		PoleID:         "pole-" + id,
		Status:         entities.CaptureStatusDraft,
		PhotoCount:     3,
		RequiredPhotos: 3,
		CreatedAt:      time.Now().UTC(),
	})
}

// seedIncompleteCapture registers a capture that cannot back a completion.
func (e *testEnv) seedIncompleteCapture(id string, missing []string) {
	e.captures.Seed(entities.Capture{
		ID:             id,
		Status:         entities.CaptureStatusDraft,
		PhotoCount:     1,
		RequiredPhotos: 3,
		MissingFields:  missing,
		CreatedAt:      time.Now().UTC(),
	})
}

// createAssignment seeds a capture and creates a pending assignment for it.
func (e *testEnv) createAssignment(ctx context.Context, captureID, technicianID string) (entities.Assignment, error) {
	e.seedCapture(captureID)
	return e.store.Create(ctx, CreateAssignmentInput{
		CaptureID:  captureID,
		AssignedTo: technicianID,
		AssignedBy: "dispatcher-1",
		Priority:   entities.PriorityMedium,
	})
}
