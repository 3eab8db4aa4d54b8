package memory

import (
	"context"
	"sync"
	"time"

	"fieldops/internal/domain/entities"
	"fieldops/internal/usecase/interfaces"
)

// CaptureMemoryRepository is an in-memory ICaptureRepository for
// offline/dev mode and tests.
type CaptureMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]entities.Capture
}

var _ interfaces.ICaptureRepository = (*CaptureMemoryRepository)(nil)

func NewCaptureMemoryRepository() *CaptureMemoryRepository {
	return &CaptureMemoryRepository{items: make(map[string]entities.Capture)}
}

// Seed inserts a capture directly, standing in for the capture pipeline.
func (m *CaptureMemoryRepository) Seed(c entities.Capture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[c.ID] = c
}

func (m *CaptureMemoryRepository) Get(_ context.Context, captureID string) (entities.Capture, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[captureID], nil
}

func (m *CaptureMemoryRepository) SetAssignment(_ context.Context, captureID, assignmentID string, status entities.CaptureStatus) (entities.Capture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[captureID]
	if !ok {
		return entities.Capture{}, nil
	}
	c.AssignmentID = assignmentID
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	m.items[captureID] = c
	return c, nil
}

func (m *CaptureMemoryRepository) SetStatus(_ context.Context, captureID string, status entities.CaptureStatus) (entities.Capture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[captureID]
	if !ok {
		return entities.Capture{}, nil
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	m.items[captureID] = c
	return c, nil
}

func (m *CaptureMemoryRepository) ClearAssignment(_ context.Context, captureID string) (entities.Capture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[captureID]
	if !ok {
		return entities.Capture{}, nil
	}
	c.AssignmentID = ""
	c.Status = entities.CaptureStatusDraft
	c.UpdatedAt = time.Now().UTC()
	m.items[captureID] = c
	return c, nil
}
