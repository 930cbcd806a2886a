package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// LogEntryRepository manages food log entries
type LogEntryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewLogEntryRepository creates a new LogEntryRepository
func NewLogEntryRepository(db *pgxpool.Pool, logger *zap.Logger) *LogEntryRepository {
	return &LogEntryRepository{
		db:     db,
		logger: logger,
	}
}

const logEntryColumns = `
	id, entry_date, meal, item_type, item_id, grams, notes, created_at, updated_at`

func scanLogEntry(row pgx.Row) (*model.LogEntry, error) {
	var e model.LogEntry
	err := row.Scan(
		&e.ID,
		&e.Date,
		&e.Meal,
		&e.ItemType,
		&e.ItemID,
		&e.Grams,
		&e.Notes,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a log entry
func (r *LogEntryRepository) Create(ctx context.Context, e *model.LogEntry) error {
	query := `
		INSERT INTO log_entries (
			id, entry_date, meal, item_type, item_id, grams, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`

	_, err := r.db.Exec(ctx, query,
		e.ID,
		e.Date,
		string(e.Meal),
		string(e.ItemType),
		e.ItemID,
		e.Grams,
		e.Notes,
		e.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create log entry",
			zap.Error(err),
			zap.String("entry_id", e.ID),
			zap.String("item_id", e.ItemID),
		)
		return translateError(err, "log entry", "create log entry")
	}

	return nil
}

// FindByID retrieves a log entry by ID
func (r *LogEntryRepository) FindByID(ctx context.Context, id string) (*model.LogEntry, error) {
	e, err := scanLogEntry(r.db.QueryRow(ctx, `SELECT `+logEntryColumns+` FROM log_entries WHERE id = $1`, id))
	if err != nil {
		if err != pgx.ErrNoRows {
			r.logger.Error("failed to find log entry", zap.Error(err), zap.String("entry_id", id))
		}
		return nil, translateError(err, "log entry", "find log entry")
	}
	return e, nil
}

// ListByDateRange retrieves entries with from <= date <= to, ordered by
// date and creation time
func (r *LogEntryRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.LogEntry, error) {
	query := `SELECT ` + logEntryColumns + `
		FROM log_entries
		WHERE entry_date BETWEEN $1 AND $2
		ORDER BY entry_date, created_at, id`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		r.logger.Error("failed to list log entries",
			zap.Error(err),
			zap.Time("from", from),
			zap.Time("to", to),
		)
		return nil, translateError(err, "log entry", "list log entries")
	}
	defer rows.Close()

	entries := []model.LogEntry{}
	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			r.logger.Error("failed to scan log entry", zap.Error(err))
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entries = append(entries, *e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating log entries", zap.Error(err))
		return nil, fmt.Errorf("error iterating log entries: %w", err)
	}

	return entries, nil
}

// Update overwrites a log entry's mutable fields
func (r *LogEntryRepository) Update(ctx context.Context, e *model.LogEntry) error {
	query := `
		UPDATE log_entries
		SET entry_date = $2, meal = $3, item_type = $4, item_id = $5,
			grams = $6, notes = $7, updated_at = $8
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		e.ID,
		e.Date,
		string(e.Meal),
		string(e.ItemType),
		e.ItemID,
		e.Grams,
		e.Notes,
		e.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to update log entry", zap.Error(err), zap.String("entry_id", e.ID))
		return translateError(err, "log entry", "update log entry")
	}
	if tag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows, "log entry", "update log entry")
	}

	return nil
}

// Delete removes a log entry
func (r *LogEntryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM log_entries WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("failed to delete log entry", zap.Error(err), zap.String("entry_id", id))
		return translateError(err, "log entry", "delete log entry")
	}
	if tag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows, "log entry", "delete log entry")
	}

	return nil
}
