package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"go.uber.org/zap"
)

// Kind names a registered unit of background work
type Kind string

const (
	KindBackup          Kind = "backup"
	KindWeeklyReport    Kind = "weekly_report"
	KindRecomputeDishes Kind = "recompute_dishes"
)

// State is the lifecycle state of a submitted task
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Task is the message handed to a worker
type Task struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	SubmittedBy string          `json:"submitted_by,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// Status is the externally visible record of a task
type Status struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	State     State           `json:"state"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Handler executes one task and returns a JSON-encodable result
type Handler func(ctx context.Context, task Task) (any, error)

// Dispatcher accepts background work. Callers never know whether it runs
// inline or on a broker.
type Dispatcher interface {
	Submit(ctx context.Context, kind Kind, payload any) (*Status, error)
	Status(ctx context.Context, id string) (*Status, error)
}

// StatusStore persists task statuses so API and worker processes share them
type StatusStore interface {
	Create(ctx context.Context, status *Status) error
	Update(ctx context.Context, status *Status) error
	Get(ctx context.Context, id string) (*Status, error)
}

// Registry maps task kinds to handlers
type Registry struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Kind]Handler)}
}

// Register binds a handler to kind, replacing any previous one
func (r *Registry) Register(kind Kind, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = h
}

func (r *Registry) lookup(kind Kind) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[kind]
	return h, ok
}

// Kinds lists the registered kinds
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.handlers))
	for k := range r.handlers {
		kinds = append(kinds, k)
	}
	return kinds
}

// newTask validates kind and encodes payload
func newTask(ctx context.Context, registry *Registry, kind Kind, payload any) (Task, error) {
	if _, ok := registry.lookup(kind); !ok {
		return Task{}, apperr.Validationf("unknown task kind %q", kind)
	}

	task := Task{
		ID:          uuid.New().String(),
		Kind:        kind,
		SubmittedBy: submitterFrom(ctx),
		SubmittedAt: time.Now().UTC(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Task{}, apperr.Validationf("task payload is not JSON encodable: %v", err)
		}
		task.Payload = raw
	}
	return task, nil
}

func pendingStatus(task Task) *Status {
	return &Status{
		ID:        task.ID,
		Kind:      task.Kind,
		State:     StatePending,
		CreatedAt: task.SubmittedAt,
		UpdatedAt: task.SubmittedAt,
	}
}

// execute runs task through registry, recording each state change in store
func execute(ctx context.Context, registry *Registry, store StatusStore, task Task, logger *zap.Logger) *Status {
	status := pendingStatus(task)
	if existing, err := store.Get(ctx, task.ID); err == nil {
		status = existing
	}

	handler, ok := registry.lookup(task.Kind)
	if !ok {
		status.State = StateFailed
		status.Error = fmt.Sprintf("no handler registered for %q", task.Kind)
		status.UpdatedAt = time.Now().UTC()
		saveStatus(ctx, store, status, logger)
		return status
	}

	status.State = StateRunning
	status.UpdatedAt = time.Now().UTC()
	saveStatus(ctx, store, status, logger)

	started := time.Now()
	result, err := runHandler(ctx, handler, task)

	status.UpdatedAt = time.Now().UTC()
	if err != nil {
		status.State = StateFailed
		status.Error = err.Error()
		logger.Error("task failed",
			zap.Error(err),
			zap.String("task_id", task.ID),
			zap.String("kind", string(task.Kind)),
			zap.Duration("duration", time.Since(started)),
		)
	} else {
		status.State = StateSucceeded
		if result != nil {
			raw, merr := json.Marshal(result)
			if merr != nil {
				status.State = StateFailed
				status.Error = fmt.Sprintf("failed to encode task result: %v", merr)
			} else {
				status.Result = raw
			}
		}
		logger.Info("task finished",
			zap.String("task_id", task.ID),
			zap.String("kind", string(task.Kind)),
			zap.String("state", string(status.State)),
			zap.Duration("duration", time.Since(started)),
		)
	}

	saveStatus(ctx, store, status, logger)
	return status
}

// runHandler converts handler panics into task failures
func runHandler(ctx context.Context, h Handler, task Task) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return h(ctx, task)
}

func saveStatus(ctx context.Context, store StatusStore, status *Status, logger *zap.Logger) {
	if err := store.Update(ctx, status); err != nil {
		logger.Error("failed to record task status",
			zap.Error(err),
			zap.String("task_id", status.ID),
			zap.String("state", string(status.State)),
		)
	}
}

type submitterKey struct{}

// WithSubmitter records who submitted work started from ctx
func WithSubmitter(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, submitterKey{}, user)
}

func submitterFrom(ctx context.Context) string {
	if u, ok := ctx.Value(submitterKey{}).(string); ok {
		return u
	}
	return ""
}

// DecodePayload unmarshals a task payload into v; an empty payload leaves v untouched
func DecodePayload(task Task, v any) error {
	if len(task.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(task.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", task.Kind, err)
	}
	return nil
}
