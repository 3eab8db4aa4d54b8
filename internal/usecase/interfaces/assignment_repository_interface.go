package interfaces

import (
	"context"

	"fieldops/internal/domain/entities"
)

// IAssignmentRepository abstracts persistence for Assignment.
//
// The engine needs keyed get/put/delete plus two indexed lookups:
//   - by capture id, to enforce the one-assignment-per-capture rule
//   - by technician, for capacity checks and workload scans
//
// A zero-value Assignment (empty ID) from a Get means "not found"; errors
// are reserved for the persistence engine itself failing.
type IAssignmentRepository interface {
	Create(ctx context.Context, a entities.Assignment) (entities.Assignment, error)
	GetByID(ctx context.Context, id string) (entities.Assignment, error)
	GetByCaptureID(ctx context.Context, captureID string) (entities.Assignment, error)
	ListByTechnician(ctx context.Context, technicianID string) ([]entities.Assignment, error)
	ListAll(ctx context.Context) ([]entities.Assignment, error)
	Update(ctx context.Context, a entities.Assignment) (entities.Assignment, error)
	Delete(ctx context.Context, id string) error
}
