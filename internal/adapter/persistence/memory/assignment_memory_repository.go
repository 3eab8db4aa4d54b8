package memory

import (
	"context"
	"sync"

	"fieldops/internal/domain/entities"
	"fieldops/internal/usecase/interfaces"
)

// AssignmentMemoryRepository is an in-memory IAssignmentRepository used in
// offline/dev mode and in tests. Scans return records in insertion order,
// matching the ordering contract of the DynamoDB adapter's callers.
type AssignmentMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]entities.Assignment
	order []string
}

var _ interfaces.IAssignmentRepository = (*AssignmentMemoryRepository)(nil)

func NewAssignmentMemoryRepository() *AssignmentMemoryRepository {
	return &AssignmentMemoryRepository{items: make(map[string]entities.Assignment)}
}

func (m *AssignmentMemoryRepository) Create(_ context.Context, a entities.Assignment) (entities.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[a.ID]; !exists {
		m.order = append(m.order, a.ID)
	}
	m.items[a.ID] = a
	return a, nil
}

func (m *AssignmentMemoryRepository) GetByID(_ context.Context, id string) (entities.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[id], nil
}

func (m *AssignmentMemoryRepository) GetByCaptureID(_ context.Context, captureID string) (entities.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		if a, ok := m.items[id]; ok && a.CaptureID == captureID {
			return a, nil
		}
	}
	return entities.Assignment{}, nil
}

func (m *AssignmentMemoryRepository) ListByTechnician(_ context.Context, technicianID string) ([]entities.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var results []entities.Assignment
	for _, id := range m.order {
		if a, ok := m.items[id]; ok && a.AssignedTo == technicianID {
			results = append(results, a)
		}
	}
	return results, nil
}

func (m *AssignmentMemoryRepository) ListAll(_ context.Context) ([]entities.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := make([]entities.Assignment, 0, len(m.order))
	for _, id := range m.order {
		if a, ok := m.items[id]; ok {
			results = append(results, a)
		}
	}
	return results, nil
}

func (m *AssignmentMemoryRepository) Update(_ context.Context, a entities.Assignment) (entities.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[a.ID]; !ok {
		return entities.Assignment{}, nil
	}
	m.items[a.ID] = a
	return a, nil
}

func (m *AssignmentMemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
