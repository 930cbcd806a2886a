package tasks

import (
	"context"
	"sync"

	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"go.uber.org/zap"
)

// SyncDispatcher runs tasks inline on Submit
type SyncDispatcher struct {
	registry *Registry
	store    StatusStore
	logger   *zap.Logger
}

// NewSyncDispatcher creates a dispatcher that executes in-process
func NewSyncDispatcher(registry *Registry, store StatusStore, logger *zap.Logger) *SyncDispatcher {
	return &SyncDispatcher{
		registry: registry,
		store:    store,
		logger:   logger,
	}
}

// Submit executes the task immediately and returns its final status
func (d *SyncDispatcher) Submit(ctx context.Context, kind Kind, payload any) (*Status, error) {
	task, err := newTask(ctx, d.registry, kind, payload)
	if err != nil {
		return nil, err
	}

	if err := d.store.Create(ctx, pendingStatus(task)); err != nil {
		d.logger.Error("failed to record task", zap.Error(err), zap.String("task_id", task.ID))
		return nil, err
	}

	d.logger.Info("running task inline",
		zap.String("task_id", task.ID),
		zap.String("kind", string(kind)),
	)

	return execute(ctx, d.registry, d.store, task, d.logger), nil
}

// Status returns the stored status of a task
func (d *SyncDispatcher) Status(ctx context.Context, id string) (*Status, error) {
	return d.store.Get(ctx, id)
}

// MemoryStatusStore keeps statuses in process memory
type MemoryStatusStore struct {
	mu       sync.RWMutex
	statuses map[string]Status
}

// NewMemoryStatusStore creates an empty MemoryStatusStore
func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{statuses: make(map[string]Status)}
}

// Create implements StatusStore
func (m *MemoryStatusStore) Create(ctx context.Context, status *Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[status.ID] = *status
	return nil
}

// Update implements StatusStore
func (m *MemoryStatusStore) Update(ctx context.Context, status *Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[status.ID] = *status
	return nil
}

// Get implements StatusStore
func (m *MemoryStatusStore) Get(ctx context.Context, id string) (*Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.statuses[id]
	if !ok {
		return nil, apperr.NotFoundf("task %s not found", id)
	}
	return &s, nil
}
