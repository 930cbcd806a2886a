package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// OperationType represents the type of operation performed
type OperationType string

const (
	OperationDelete  OperationType = "DELETE"
	OperationBackup  OperationType = "BACKUP"
	OperationRestore OperationType = "RESTORE"
	OperationLogin   OperationType = "LOGIN"
)

// ResourceType represents the type of resource being touched
type ResourceType string

const (
	ResourceProduct        ResourceType = "product"
	ResourceDish           ResourceType = "dish"
	ResourceLogEntry       ResourceType = "log_entry"
	ResourceFastingSession ResourceType = "fasting_session"
	ResourceFastingGoal    ResourceType = "fasting_goal"
	ResourceBackup         ResourceType = "backup"
	ResourceUser           ResourceType = "user"
)

// Entry represents an audit log row
type Entry struct {
	UserID         string
	OperationType  OperationType
	ResourceType   ResourceType
	ResourceID     string
	Timestamp      time.Time
	IPAddress      string
	UserAgent      string
	AdditionalData map[string]any
}

// Recorder is implemented by Logger; services depend on it so tests can
// substitute a no-op
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Logger writes audit entries to zap and the audit_logs table
type Logger struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewLogger creates a new audit logger
func NewLogger(db *pgxpool.Pool, logger *zap.Logger) *Logger {
	return &Logger{
		db:     db,
		logger: logger,
	}
}

// Record stores an audit entry
func (l *Logger) Record(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.UserID == "" {
		entry.UserID = UserFromContext(ctx)
	}
	if client, ok := ctx.Value(clientKey{}).(clientInfo); ok {
		if entry.IPAddress == "" {
			entry.IPAddress = client.ip
		}
		if entry.UserAgent == "" {
			entry.UserAgent = client.userAgent
		}
	}

	l.logger.Info("audit log entry",
		zap.String("user_id", entry.UserID),
		zap.String("operation", string(entry.OperationType)),
		zap.String("resource_type", string(entry.ResourceType)),
		zap.String("resource_id", entry.ResourceID),
		zap.Time("timestamp", entry.Timestamp),
		zap.String("ip_address", entry.IPAddress),
	)

	query := `
		INSERT INTO audit_logs (
			user_id, operation_type, resource_type, resource_id,
			timestamp, ip_address, user_agent, additional_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := l.db.Exec(ctx, query,
		entry.UserID,
		string(entry.OperationType),
		string(entry.ResourceType),
		entry.ResourceID,
		entry.Timestamp,
		entry.IPAddress,
		entry.UserAgent,
		entry.AdditionalData,
	)
	if err != nil {
		l.logger.Error("failed to write audit log to database",
			zap.Error(err),
			zap.String("user_id", entry.UserID),
			zap.String("operation", string(entry.OperationType)),
			zap.String("resource_type", string(entry.ResourceType)),
		)
		return err
	}

	return nil
}

// Recent retrieves the latest audit entries
func (l *Logger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT user_id, operation_type, resource_type, resource_id,
		       timestamp, ip_address, user_agent
		FROM audit_logs
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := l.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.UserID,
			&e.OperationType,
			&e.ResourceType,
			&e.ResourceID,
			&e.Timestamp,
			&e.IPAddress,
			&e.UserAgent,
		)
		if err != nil {
			l.logger.Error("failed to scan audit log", zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

type (
	ctxKey    struct{}
	clientKey struct{}
)

type clientInfo struct {
	ip        string
	userAgent string
}

// WithUser attaches the acting user to ctx so deeper layers can attribute
// audit entries without knowing about authentication
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserFromContext returns the acting user, or "system" when none is set
func UserFromContext(ctx context.Context) string {
	if u, ok := ctx.Value(ctxKey{}).(string); ok && u != "" {
		return u
	}
	return "system"
}

// WithClient attaches the caller's address and user agent to ctx
func WithClient(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey{}, clientInfo{ip: ip, userAgent: userAgent})
}

// Nop discards entries
type Nop struct{}

// Record implements Recorder
func (Nop) Record(context.Context, Entry) error { return nil }
