package interfaces

import (
	"context"

	"fieldops/internal/domain/entities"
)

// PushResult is the remote's verdict on one pushed assignment.
//
// When the remote copy diverged from the base revision the push was built
// on, Conflict is true and Remote carries the remote snapshot so the sync
// engine can run conflict resolution. Detection is the gateway's job
// (updated_at comparison against the pushed base); the engine only resolves.
type PushResult struct {
	Conflict bool
	Remote   entities.Assignment
}

// ISyncGateway abstracts the remote system of record (e.g. the HTTP
// transport layer). Implementations own timeouts and wire mechanics.
type ISyncGateway interface {
	PushAssignment(ctx context.Context, a entities.Assignment) (PushResult, error)
}
