package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops/internal/domain/entities"
	"fieldops/internal/infrastructure/config"
)

func TestBulk_CreateBulkAssignments(t *testing.T) {
	ctx := context.Background()

	t.Run("capacity gate rejects the whole batch", func(t *testing.T) {
		cfg := config.Default()
		cfg.MaxActivePerTechnician = 3
		env := newTestEnv(cfg)

		_, err := env.createAssignment(ctx, "c0", "t1")
		require.NoError(t, err)

		for _, id := range []string{"c1", "c2", "c3"} {
			env.seedCapture(id)
		}
		_, err = env.bulk.CreateBulkAssignments(ctx, BulkCreateInput{
			AssignedTo: "t1",
			AssignedBy: "dispatcher-1",
			CaptureIDs: []string{"c1", "c2", "c3"},
			Priority:   entities.PriorityMedium,
		})
		var ce *CapacityExceededError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, 1, ce.Active)
		assert.Equal(t, 3, ce.Requested)

		// Gate fires before any write: still only the seed assignment.
		all, err := env.store.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("per-item failures do not abort the batch", func(t *testing.T) {
		env := newTestEnv(config.Default())
		env.seedCapture("c1")
		env.seedCapture("c2")
		// "ghost" is never seeded.

		result, err := env.bulk.CreateBulkAssignments(ctx, BulkCreateInput{
			AssignedTo: "t1",
			AssignedBy: "dispatcher-1",
			CaptureIDs: []string{"c1", "ghost", "c2"},
			Priority:   entities.PriorityHigh,
		})
		require.NoError(t, err)
		assert.Len(t, result.Created, 2)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "ghost", result.Failed[0].ID)
		assert.Contains(t, result.Failed[0].Error, "capture not found")
	})

	t.Run("rejects missing technician and bad priority up front", func(t *testing.T) {
		env := newTestEnv(config.Default())

		_, err := env.bulk.CreateBulkAssignments(ctx, BulkCreateInput{CaptureIDs: []string{"c1"}, Priority: entities.PriorityLow})
		require.True(t, errors.Is(err, ErrInvalidTechnicianID))

		_, err = env.bulk.CreateBulkAssignments(ctx, BulkCreateInput{AssignedTo: "t1", CaptureIDs: []string{"c1"}, Priority: "urgent"})
		require.True(t, errors.Is(err, ErrInvalidPriority))
	})
}

func TestBulk_UpdateBulkAssignments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(config.Default())

	a, err := env.createAssignment(ctx, "c1", "t1")
	require.NoError(t, err)
	b, err := env.createAssignment(ctx, "c2", "t1")
	require.NoError(t, err)

	notes := "bring the long ladder"
	result, err := env.bulk.UpdateBulkAssignments(ctx, []string{a.ID, "missing", b.ID}, UpdateAssignmentInput{Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, []string{a.ID, b.ID}, result.Successful)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "missing", result.Failed[0].ID)

	got, err := env.store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, notes, got.Notes)
}

func TestBulk_ReassignAssignment(t *testing.T) {
	ctx := context.Background()

	t.Run("resets the workflow and records an audit note", func(t *testing.T) {
		env := newTestEnv(config.Default())
		a, err := env.createAssignment(ctx, "c1", "t1")
		require.NoError(t, err)
		_, err = env.machine.Accept(ctx, a.ID, "t1")
		require.NoError(t, err)

		got, err := env.bulk.ReassignAssignment(ctx, a.ID, "t2", "admin-1", "t1 on leave")
		require.NoError(t, err)

		assert.Equal(t, "t2", got.AssignedTo)
		assert.Equal(t, entities.StatusPending, got.Status)
		assert.Nil(t, got.AcceptedAt)
		assert.Nil(t, got.StartedAt)
		assert.Contains(t, got.Notes, "from t1 to t2 by admin-1")
		assert.Contains(t, got.Notes, "t1 on leave")
	})

	t.Run("completed assignments stay put", func(t *testing.T) {
		env := newTestEnv(config.Default())
		a, err := env.createAssignment(ctx, "c1", "t1")
		require.NoError(t, err)
		for _, step := range []func() error{
			func() error { _, err := env.machine.Accept(ctx, a.ID, "t1"); return err },
			func() error { _, err := env.machine.Start(ctx, a.ID, "t1"); return err },
			func() error { _, err := env.machine.Complete(ctx, a.ID, "t1"); return err },
		} {
			require.NoError(t, step())
		}

		_, err = env.bulk.ReassignAssignment(ctx, a.ID, "t2", "admin-1", "")
		require.True(t, errors.Is(err, ErrCompletedImmutable))
	})

	t.Run("target technician capacity is enforced", func(t *testing.T) {
		cfg := config.Default()
		cfg.MaxActivePerTechnician = 1
		env := newTestEnv(cfg)

		_, err := env.createAssignment(ctx, "c1", "t2")
		require.NoError(t, err)
		a, err := env.createAssignment(ctx, "c2", "t1")
		require.NoError(t, err)

		_, err = env.bulk.ReassignAssignment(ctx, a.ID, "t2", "admin-1", "")
		var ce *CapacityExceededError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "t2", ce.TechnicianID)
	})

	t.Run("unknown assignment", func(t *testing.T) {
		env := newTestEnv(config.Default())
		_, err := env.bulk.ReassignAssignment(ctx, "missing", "t2", "admin-1", "")
		require.True(t, errors.Is(err, ErrAssignmentNotFound))
	})
}

func TestBulk_ValidateAssignment(t *testing.T) {
	ctx := context.Background()

	t.Run("missing required fields", func(t *testing.T) {
		env := newTestEnv(config.Default())
		report, err := env.bulk.ValidateAssignment(ctx, CreateAssignmentInput{Priority: "urgent"})
		require.NoError(t, err)

		assert.False(t, report.IsValid)
		assert.Contains(t, report.Errors, "capture id is required")
		assert.Contains(t, report.Errors, "technician is required")
		assert.Contains(t, report.Errors, "priority must be high, medium or low")
	})

	t.Run("technician at capacity", func(t *testing.T) {
		cfg := config.Default()
		cfg.MaxActivePerTechnician = 1
		env := newTestEnv(cfg)
		_, err := env.createAssignment(ctx, "c1", "t1")
		require.NoError(t, err)

		report, err := env.bulk.ValidateAssignment(ctx, CreateAssignmentInput{
			CaptureID: "c2", AssignedTo: "t1", Priority: entities.PriorityLow,
		})
		require.NoError(t, err)
		assert.False(t, report.IsValid)
		assert.Contains(t, report.Errors, "technician t1 has 1/1 active assignments")
	})

	t.Run("schedule warnings are advisory", func(t *testing.T) {
		env := newTestEnv(config.Default())

		past := time.Now().Add(-time.Hour)
		report, err := env.bulk.ValidateAssignment(ctx, CreateAssignmentInput{
			CaptureID: "c1", AssignedTo: "t1", Priority: entities.PriorityHigh, ScheduledDate: &past,
		})
		require.NoError(t, err)
		assert.True(t, report.IsValid)
		assert.Contains(t, report.Warnings, "scheduled date is in the past")

		// High priority recommends 24h lead; two weeks out trips the warning.
		far := time.Now().Add(14 * 24 * time.Hour)
		report, err = env.bulk.ValidateAssignment(ctx, CreateAssignmentInput{
			CaptureID: "c1", AssignedTo: "t1", Priority: entities.PriorityHigh, ScheduledDate: &far,
		})
		require.NoError(t, err)
		assert.True(t, report.IsValid)
		require.Len(t, report.Warnings, 1)
		assert.Contains(t, report.Warnings[0], "lead time")
	})
}

func TestBulk_SweepExpired(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.ExpiryWindowDays = 7
	env := newTestEnv(cfg)

	backdate := func(id string, d time.Duration) {
		a, err := env.repo.GetByID(ctx, id)
		require.NoError(t, err)
		a.AssignedAt = time.Now().UTC().Add(-d)
		_, err = env.repo.Update(ctx, a)
		require.NoError(t, err)
	}

	stale, err := env.createAssignment(ctx, "c1", "t1")
	require.NoError(t, err)
	backdate(stale.ID, 8*24*time.Hour)

	fresh, err := env.createAssignment(ctx, "c2", "t1")
	require.NoError(t, err)

	// Accepted assignments never expire, no matter how old.
	acceptedStale, err := env.createAssignment(ctx, "c3", "t1")
	require.NoError(t, err)
	_, err = env.machine.Accept(ctx, acceptedStale.ID, "t1")
	require.NoError(t, err)
	backdate(acceptedStale.ID, 30*24*time.Hour)

	n, err := env.bulk.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := env.store.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusExpired, got.Status)

	got, err = env.store.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusPending, got.Status)

	got, err = env.store.GetByID(ctx, acceptedStale.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusAccepted, got.Status)
}
