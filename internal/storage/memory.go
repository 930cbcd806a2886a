package storage

import (
	"bytes"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MemoryStorage is an in-memory BackupStorage for tests and local runs
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	now     func() time.Time
	logger  *zap.Logger
}

type memoryObject struct {
	data       []byte
	modifiedAt time.Time
}

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage(logger *zap.Logger) *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string]memoryObject),
		now:     time.Now,
		logger:  logger,
	}
}

// Put stores a copy of data
func (m *MemoryStorage) Put(ctx context.Context, name string, data []byte) error {
	if err := CheckName(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[name] = memoryObject{data: bytes.Clone(data), modifiedAt: m.now().UTC()}
	if m.logger != nil {
		m.logger.Info("memory: backup stored", zap.String("name", name), zap.Int("size_bytes", len(data)))
	}
	return nil
}

// Get returns a copy of the stored data
func (m *MemoryStorage) Get(ctx context.Context, name string) ([]byte, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[name]
	if !ok {
		return nil, notFound(name)
	}
	return bytes.Clone(obj.data), nil
}

// List returns every stored object, newest first
func (m *MemoryStorage) List(ctx context.Context) ([]Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	objects := make([]Object, 0, len(m.objects))
	for name, obj := range m.objects {
		objects = append(objects, Object{Name: name, Size: int64(len(obj.data)), ModifiedAt: obj.modifiedAt})
	}
	sortNewestFirst(objects)
	return objects, nil
}
