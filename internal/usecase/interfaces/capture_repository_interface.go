package interfaces

import (
	"context"

	"fieldops/internal/domain/entities"
)

// ICaptureRepository is the boundary to the field-capture collaborator.
//
// The capture pipeline owns these records; the assignment engine only reads
// them and projects back-reference/status updates. A zero-value Capture
// (empty ID) from Get means "not found".
type ICaptureRepository interface {
	Get(ctx context.Context, captureID string) (entities.Capture, error)
	SetAssignment(ctx context.Context, captureID, assignmentID string, status entities.CaptureStatus) (entities.Capture, error)
	SetStatus(ctx context.Context, captureID string, status entities.CaptureStatus) (entities.Capture, error)
	ClearAssignment(ctx context.Context, captureID string) (entities.Capture, error)
}
