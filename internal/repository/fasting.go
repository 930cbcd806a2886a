package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// fastingLockKey serialises fasting state transitions across connections
const fastingLockKey int64 = 0x6661737469

// FastingFilter narrows a session listing
type FastingFilter struct {
	Status model.FastingStatus
	From   *time.Time
	To     *time.Time
	Limit  int
}

// FastingTx is the set of session operations available inside a locked
// transaction
type FastingTx interface {
	FindOpen(ctx context.Context) (*model.FastingSession, error)
	FindByID(ctx context.Context, id string) (*model.FastingSession, error)
	Create(ctx context.Context, s *model.FastingSession) error
	Update(ctx context.Context, s *model.FastingSession) error
	Delete(ctx context.Context, id string) error
}

// FastingRepository manages fasting sessions
type FastingRepository struct {
	pool *pgxpool.Pool
	fastingQueries
}

// NewFastingRepository creates a new FastingRepository
func NewFastingRepository(db *pgxpool.Pool, logger *zap.Logger) *FastingRepository {
	return &FastingRepository{
		pool:           db,
		fastingQueries: fastingQueries{db: db, logger: logger},
	}
}

// RunLocked runs fn in a transaction holding the fasting advisory lock, so
// that check-then-write sequences on the open session never interleave
func (r *FastingRepository) RunLocked(ctx context.Context, fn func(tx FastingTx) error) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, fastingLockKey); err != nil {
			r.logger.Error("failed to acquire fasting lock", zap.Error(err))
			return fmt.Errorf("failed to acquire fasting lock: %w", err)
		}
		return fn(&fastingQueries{db: tx, logger: r.logger})
	})
}

type fastingQueries struct {
	db     DBTX
	logger *zap.Logger
}

const fastingColumns = `
	id, fasting_type, started_at, ended_at, status, notes,
	paused_at, paused_seconds, duration_hours, created_at, updated_at`

func scanFasting(row pgx.Row) (*model.FastingSession, error) {
	var s model.FastingSession
	err := row.Scan(
		&s.ID,
		&s.FastingType,
		&s.StartedAt,
		&s.EndedAt,
		&s.Status,
		&s.Notes,
		&s.PausedAt,
		&s.PausedSeconds,
		&s.DurationHours,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindOpen returns the active or paused session, or a NotFound error
func (q *fastingQueries) FindOpen(ctx context.Context) (*model.FastingSession, error) {
	query := `SELECT ` + fastingColumns + `
		FROM fasting_sessions
		WHERE status IN ('active', 'paused')
		LIMIT 1`

	s, err := scanFasting(q.db.QueryRow(ctx, query))
	if err != nil {
		if err != pgx.ErrNoRows {
			q.logger.Error("failed to find open fasting session", zap.Error(err))
		}
		return nil, translateError(err, "open fasting session", "find open fasting session")
	}
	return s, nil
}

// FindByID retrieves a session by ID
func (q *fastingQueries) FindByID(ctx context.Context, id string) (*model.FastingSession, error) {
	s, err := scanFasting(q.db.QueryRow(ctx, `SELECT `+fastingColumns+` FROM fasting_sessions WHERE id = $1`, id))
	if err != nil {
		if err != pgx.ErrNoRows {
			q.logger.Error("failed to find fasting session", zap.Error(err), zap.String("session_id", id))
		}
		return nil, translateError(err, "fasting session", "find fasting session")
	}
	return s, nil
}

// Create inserts a session
func (q *fastingQueries) Create(ctx context.Context, s *model.FastingSession) error {
	query := `
		INSERT INTO fasting_sessions (
			id, fasting_type, started_at, ended_at, status, notes,
			paused_at, paused_seconds, duration_hours, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := q.db.Exec(ctx, query,
		s.ID,
		s.FastingType,
		s.StartedAt,
		s.EndedAt,
		string(s.Status),
		s.Notes,
		s.PausedAt,
		s.PausedSeconds,
		s.DurationHours,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		q.logger.Error("failed to create fasting session", zap.Error(err), zap.String("session_id", s.ID))
		return translateError(err, "fasting session", "create fasting session")
	}
	return nil
}

// Update overwrites a session's state
func (q *fastingQueries) Update(ctx context.Context, s *model.FastingSession) error {
	query := `
		UPDATE fasting_sessions
		SET ended_at = $2, status = $3, notes = $4, paused_at = $5,
			paused_seconds = $6, duration_hours = $7, updated_at = $8
		WHERE id = $1
	`

	tag, err := q.db.Exec(ctx, query,
		s.ID,
		s.EndedAt,
		string(s.Status),
		s.Notes,
		s.PausedAt,
		s.PausedSeconds,
		s.DurationHours,
		s.UpdatedAt,
	)
	if err != nil {
		q.logger.Error("failed to update fasting session", zap.Error(err), zap.String("session_id", s.ID))
		return translateError(err, "fasting session", "update fasting session")
	}
	if tag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows, "fasting session", "update fasting session")
	}
	return nil
}

// Delete removes a session
func (q *fastingQueries) Delete(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM fasting_sessions WHERE id = $1`, id)
	if err != nil {
		q.logger.Error("failed to delete fasting session", zap.Error(err), zap.String("session_id", id))
		return translateError(err, "fasting session", "delete fasting session")
	}
	if tag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows, "fasting session", "delete fasting session")
	}
	return nil
}

// List retrieves sessions newest first
func (r *FastingRepository) List(ctx context.Context, filter FastingFilter) ([]model.FastingSession, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("started_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("started_at < $%d", len(args)))
	}

	query := `SELECT ` + fastingColumns + ` FROM fasting_sessions`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY started_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list fasting sessions", zap.Error(err))
		return nil, translateError(err, "fasting session", "list fasting sessions")
	}
	defer rows.Close()

	sessions := []model.FastingSession{}
	for rows.Next() {
		s, err := scanFasting(rows)
		if err != nil {
			r.logger.Error("failed to scan fasting session", zap.Error(err))
			return nil, fmt.Errorf("failed to scan fasting session: %w", err)
		}
		sessions = append(sessions, *s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating fasting sessions", zap.Error(err))
		return nil, fmt.Errorf("error iterating fasting sessions: %w", err)
	}

	return sessions, nil
}
