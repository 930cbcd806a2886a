package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/nutrifast/internal/tasks"
	"go.uber.org/zap"
)

// TaskStatusRepository persists background task statuses
type TaskStatusRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewTaskStatusRepository creates a new TaskStatusRepository
func NewTaskStatusRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskStatusRepository {
	return &TaskStatusRepository{
		db:     db,
		logger: logger,
	}
}

var _ tasks.StatusStore = (*TaskStatusRepository)(nil)

// Create inserts a new status row
func (r *TaskStatusRepository) Create(ctx context.Context, s *tasks.Status) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO task_statuses (id, kind, state, result, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.ID, string(s.Kind), string(s.State), nullableJSON(s.Result), s.Error, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create task status", zap.Error(err), zap.String("task_id", s.ID))
		return translateError(err, "task", "create task status")
	}
	return nil
}

// Update upserts a status row; workers may see a task before its pending
// row is visible
func (r *TaskStatusRepository) Update(ctx context.Context, s *tasks.Status) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO task_statuses (id, kind, state, result, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			result = EXCLUDED.result,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at
	`, s.ID, string(s.Kind), string(s.State), nullableJSON(s.Result), s.Error, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to update task status", zap.Error(err), zap.String("task_id", s.ID))
		return translateError(err, "task", "update task status")
	}
	return nil
}

// Get retrieves a status by task ID
func (r *TaskStatusRepository) Get(ctx context.Context, id string) (*tasks.Status, error) {
	var (
		s      tasks.Status
		result []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, kind, state, result, error, created_at, updated_at
		FROM task_statuses
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Kind, &s.State, &result, &s.Error, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err != pgx.ErrNoRows {
			r.logger.Error("failed to find task status", zap.Error(err), zap.String("task_id", id))
		}
		return nil, translateError(err, "task", "find task status")
	}
	s.Result = result
	return &s, nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
