package usecase

import (
	"context"
	"time"

	"fieldops/internal/domain/entities"
	"fieldops/internal/usecase/interfaces"
)

// AssignmentStatistics is the global aggregate over all assignments,
// computed in a single pass. All durations are hours.
type AssignmentStatistics struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Accepted   int `json:"accepted"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	Expired    int `json:"expired"`

	Overdue int `json:"overdue"`

	// AvgAcceptanceHours averages accepted_at - assigned_at over records
	// with an acceptance timestamp.
	AvgAcceptanceHours float64 `json:"avg_acceptance_hours"`
	// AvgCompletionHours averages completed_at - assigned_at over
	// completed records.
	AvgCompletionHours float64 `json:"avg_completion_hours"`
	// CompletionRate is completed / (total - cancelled).
	CompletionRate float64 `json:"completion_rate"`

	ByTechnician map[string]int `json:"by_technician"`
	ByPriority   map[string]int `json:"by_priority"`

	AssignedToday     int `json:"assigned_today"`
	AssignedThisWeek  int `json:"assigned_this_week"`
	AssignedThisMonth int `json:"assigned_this_month"`
}

// WorkloadSnapshot is the derived per-technician read model. It holds no
// independent state; every call recomputes from the store.
type WorkloadSnapshot struct {
	TechnicianID string `json:"technician_id"`

	Active    int `json:"active"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`

	AvgCompletionHours float64 `json:"avg_completion_hours"`
	CompletionRate     float64 `json:"completion_rate"`
}

// IStatisticsUseCase is read-only aggregation over the store.
type IStatisticsUseCase interface {
	GetStatistics(ctx context.Context) (AssignmentStatistics, error)
	GetTechnicianWorkload(ctx context.Context, technicianID string) (WorkloadSnapshot, error)
}

type StatisticsUseCase struct {
	repo interfaces.IAssignmentRepository

	// now is swappable for tests exercising the day/week/month buckets.
	now func() time.Time
}

var _ IStatisticsUseCase = (*StatisticsUseCase)(nil)

func NewStatisticsUseCase(repo interfaces.IAssignmentRepository) *StatisticsUseCase {
	return &StatisticsUseCase{repo: repo, now: time.Now}
}

// GetStatistics aggregates every metric in one pass over the store.
func (u *StatisticsUseCase) GetStatistics(ctx context.Context) (AssignmentStatistics, error) {
	all, err := u.repo.ListAll(ctx)
	if err != nil {
		return AssignmentStatistics{}, err
	}

	now := u.now()
	// Bucket boundaries are local wall-clock midnights.
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := dayStart.AddDate(0, 0, -daysSinceMonday(dayStart))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := AssignmentStatistics{
		ByTechnician: make(map[string]int),
		ByPriority:   make(map[string]int),
	}

	var acceptanceSum, completionSum time.Duration
	var acceptanceN, completionN int

	for _, a := range all {
		stats.Total++
		switch a.Status {
		case entities.StatusPending:
			stats.Pending++
		case entities.StatusAccepted:
			stats.Accepted++
		case entities.StatusInProgress:
			stats.InProgress++
		case entities.StatusCompleted:
			stats.Completed++
		case entities.StatusCancelled:
			stats.Cancelled++
		case entities.StatusExpired:
			stats.Expired++
		}

		if a.IsOverdue(now) {
			stats.Overdue++
		}

		if a.AcceptedAt != nil {
			acceptanceSum += a.AcceptedAt.Sub(a.AssignedAt)
			acceptanceN++
		}
		if a.Status == entities.StatusCompleted && a.CompletedAt != nil {
			completionSum += a.CompletedAt.Sub(a.AssignedAt)
			completionN++
		}

		stats.ByTechnician[a.AssignedTo]++
		stats.ByPriority[string(a.Priority)]++

		assignedLocal := a.AssignedAt.In(now.Location())
		if !assignedLocal.Before(dayStart) {
			stats.AssignedToday++
		}
		if !assignedLocal.Before(weekStart) {
			stats.AssignedThisWeek++
		}
		if !assignedLocal.Before(monthStart) {
			stats.AssignedThisMonth++
		}
	}

	if acceptanceN > 0 {
		stats.AvgAcceptanceHours = acceptanceSum.Hours() / float64(acceptanceN)
	}
	if completionN > 0 {
		stats.AvgCompletionHours = completionSum.Hours() / float64(completionN)
	}
	if denom := stats.Total - stats.Cancelled; denom > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(denom)
	}
	return stats, nil
}

// GetTechnicianWorkload computes the capacity-relevant snapshot for one
// technician.
func (u *StatisticsUseCase) GetTechnicianWorkload(ctx context.Context, technicianID string) (WorkloadSnapshot, error) {
	if technicianID == "" {
		return WorkloadSnapshot{}, ErrInvalidTechnicianID
	}

	own, err := u.repo.ListByTechnician(ctx, technicianID)
	if err != nil {
		return WorkloadSnapshot{}, err
	}

	now := u.now()
	snap := WorkloadSnapshot{TechnicianID: technicianID}

	var completionSum time.Duration
	var completionN, cancelled int

	for _, a := range own {
		if a.Status.IsActive() {
			snap.Active++
			if a.IsOverdue(now) {
				snap.Overdue++
			}
		}
		switch a.Status {
		case entities.StatusCompleted:
			snap.Completed++
			if a.CompletedAt != nil {
				completionSum += a.CompletedAt.Sub(a.AssignedAt)
				completionN++
			}
		case entities.StatusCancelled:
			cancelled++
		}
	}

	if completionN > 0 {
		snap.AvgCompletionHours = completionSum.Hours() / float64(completionN)
	}
	if denom := len(own) - cancelled; denom > 0 {
		snap.CompletionRate = float64(snap.Completed) / float64(denom)
	}
	return snap, nil
}

// daysSinceMonday returns how many days t is past the most recent Monday.
func daysSinceMonday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 { // Sunday
		return 6
	}
	return wd - 1
}
