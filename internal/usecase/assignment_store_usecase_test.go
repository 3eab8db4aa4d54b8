package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fieldops/internal/domain/entities"
	"fieldops/internal/infrastructure/config"
)

func TestAssignmentStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid capture id", func(t *testing.T) {
		env := newTestEnv(config.Default())
		_, err := env.store.Create(ctx, CreateAssignmentInput{CaptureID: "   ", AssignedTo: "tech-1", Priority: entities.PriorityHigh})
		if !errors.Is(err, ErrInvalidCaptureID) {
			t.Fatalf("expected ErrInvalidCaptureID, got %v", err)
		}
	})

	t.Run("invalid technician", func(t *testing.T) {
		env := newTestEnv(config.Default())
		_, err := env.store.Create(ctx, CreateAssignmentInput{CaptureID: "c1", Priority: entities.PriorityHigh})
		if !errors.Is(err, ErrInvalidTechnicianID) {
			t.Fatalf("expected ErrInvalidTechnicianID, got %v", err)
		}
	})

	t.Run("invalid priority", func(t *testing.T) {
		env := newTestEnv(config.Default())
		_, err := env.store.Create(ctx, CreateAssignmentInput{CaptureID: "c1", AssignedTo: "tech-1", Priority: "urgent"})
		if !errors.Is(err, ErrInvalidPriority) {
			t.Fatalf("expected ErrInvalidPriority, got %v", err)
		}
	})

	t.Run("capture does not exist", func(t *testing.T) {
		env := newTestEnv(config.Default())
		_, err := env.store.Create(ctx, CreateAssignmentInput{CaptureID: "ghost", AssignedTo: "tech-1", Priority: entities.PriorityHigh})
		if !errors.Is(err, ErrCaptureNotFound) {
			t.Fatalf("expected ErrCaptureNotFound, got %v", err)
		}
	})

	t.Run("create success projects capture back-reference", func(t *testing.T) {
		env := newTestEnv(config.Default())
		env.seedCapture("c1")

		created, err := env.store.Create(ctx, CreateAssignmentInput{
			CaptureID:  "c1",
			AssignedTo: "tech-1",
			AssignedBy: "dispatcher-1",
			Priority:   entities.PriorityHigh,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.ID == "" || created.Status != entities.StatusPending {
			t.Fatalf("unexpected assignment: %+v", created)
		}
		if created.AssignedAt.IsZero() {
			t.Fatalf("expected assigned timestamp")
		}
		if !strings.HasPrefix(created.ID, "asg-") {
			t.Fatalf("unexpected id format: %s", created.ID)
		}

		capture, _ := env.captures.Get(ctx, "c1")
		if capture.AssignmentID != created.ID {
			t.Fatalf("expected back-reference %s, got %q", created.ID, capture.AssignmentID)
		}
		if capture.Status != entities.CaptureStatusAssigned {
			t.Fatalf("expected capture status assigned, got %s", capture.Status)
		}
	})

	t.Run("duplicate for capture", func(t *testing.T) {
		env := newTestEnv(config.Default())
		first, err := env.createAssignment(ctx, "c1", "tech-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = env.store.Create(ctx, CreateAssignmentInput{CaptureID: "c1", AssignedTo: "tech-2", Priority: entities.PriorityLow})
		if !errors.Is(err, ErrDuplicateForCapture) {
			t.Fatalf("expected ErrDuplicateForCapture, got %v", err)
		}

		// First assignment is unaffected.
		got, err := env.store.GetByID(ctx, first.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.AssignedTo != "tech-1" || got.Status != entities.StatusPending {
			t.Fatalf("first assignment mutated: %+v", got)
		}
	})

	t.Run("capacity ceiling", func(t *testing.T) {
		cfg := config.Default()
		cfg.MaxActivePerTechnician = 2
		env := newTestEnv(cfg)

		for _, captureID := range []string{"c1", "c2"} {
			if _, err := env.createAssignment(ctx, captureID, "t1"); err != nil {
				t.Fatalf("unexpected error creating %s: %v", captureID, err)
			}
		}

		_, err := env.createAssignment(ctx, "c3", "t1")
		var ce *CapacityExceededError
		if !errors.As(err, &ce) {
			t.Fatalf("expected CapacityExceededError, got %v", err)
		}
		if ce.Active != 2 || ce.Ceiling != 2 {
			t.Fatalf("unexpected counts in error: %+v", ce)
		}

		workload, err := env.stats.GetTechnicianWorkload(ctx, "t1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if workload.Active != 2 {
			t.Fatalf("expected 2 active after rejected create, got %d", workload.Active)
		}
	})
}

func TestAssignmentStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id", func(t *testing.T) {
		env := newTestEnv(config.Default())
		_, err := env.store.Update(ctx, "missing", UpdateAssignmentInput{})
		if !errors.Is(err, ErrAssignmentNotFound) {
			t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
		}
	})

	t.Run("partial fields", func(t *testing.T) {
		env := newTestEnv(config.Default())
		a, err := env.createAssignment(ctx, "c1", "tech-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		notes := "gate code 4711"
		prio := entities.PriorityHigh
		updated, err := env.store.Update(ctx, a.ID, UpdateAssignmentInput{Notes: &notes, Priority: &prio})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Notes != notes || updated.Priority != entities.PriorityHigh {
			t.Fatalf("update not applied: %+v", updated)
		}
		if updated.AssignedTo != "tech-1" || updated.Status != entities.StatusPending {
			t.Fatalf("unrelated fields mutated: %+v", updated)
		}
	})

	t.Run("completed is immutable", func(t *testing.T) {
		env := newTestEnv(config.Default())
		a, err := env.createAssignment(ctx, "c1", "tech-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := env.machine.Accept(ctx, a.ID, "tech-1"); err != nil {
			t.Fatalf("accept: %v", err)
		}
		if _, err := env.machine.Start(ctx, a.ID, "tech-1"); err != nil {
			t.Fatalf("start: %v", err)
		}
		if _, err := env.machine.Complete(ctx, a.ID, "tech-1"); err != nil {
			t.Fatalf("complete: %v", err)
		}

		notes := "should not land"
		_, err = env.store.Update(ctx, a.ID, UpdateAssignmentInput{Notes: &notes})
		if !errors.Is(err, ErrCompletedImmutable) {
			t.Fatalf("expected ErrCompletedImmutable, got %v", err)
		}
	})
}

func TestAssignmentStore_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id", func(t *testing.T) {
		env := newTestEnv(config.Default())
		if err := env.store.Delete(ctx, "missing"); !errors.Is(err, ErrAssignmentNotFound) {
			t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
		}
	})

	t.Run("delete clears capture back-reference", func(t *testing.T) {
		env := newTestEnv(config.Default())
		a, err := env.createAssignment(ctx, "c1", "tech-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := env.store.Delete(ctx, a.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := env.store.GetByID(ctx, a.ID); !errors.Is(err, ErrAssignmentNotFound) {
			t.Fatalf("expected assignment gone, got %v", err)
		}
		capture, _ := env.captures.Get(ctx, "c1")
		if capture.AssignmentID != "" {
			t.Fatalf("expected cleared back-reference, got %q", capture.AssignmentID)
		}
		if capture.Status != entities.CaptureStatusDraft {
			t.Fatalf("expected capture reverted to draft, got %s", capture.Status)
		}
	})
}

func TestAssignmentStore_WriteStatusMissingRecord(t *testing.T) {
	env := newTestEnv(config.Default())

	// The repository reports a vanished record as a zero value, not an
	// error; the store must turn that into not-found, never a zero-value
	// success.
	_, err := env.store.writeStatus(context.Background(), entities.Assignment{
		ID:     "missing",
		Status: entities.StatusAccepted,
	})
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
}
