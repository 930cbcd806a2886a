package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// GoalRepository manages fasting goals
type GoalRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewGoalRepository creates a new GoalRepository
func NewGoalRepository(db *pgxpool.Pool, logger *zap.Logger) *GoalRepository {
	return &GoalRepository{
		db:     db,
		logger: logger,
	}
}

const goalColumns = `id, goal_type, target_value, period_start, period_end, created_at`

func scanGoal(row pgx.Row) (*model.FastingGoal, error) {
	var g model.FastingGoal
	if err := row.Scan(&g.ID, &g.GoalType, &g.TargetValue, &g.PeriodStart, &g.PeriodEnd, &g.CreatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts a goal
func (r *GoalRepository) Create(ctx context.Context, g *model.FastingGoal) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO fasting_goals (id, goal_type, target_value, period_start, period_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, g.ID, string(g.GoalType), g.TargetValue, g.PeriodStart, g.PeriodEnd, g.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create fasting goal", zap.Error(err), zap.String("goal_id", g.ID))
		return translateError(err, "fasting goal", "create fasting goal")
	}
	return nil
}

// FindByID retrieves a goal by ID
func (r *GoalRepository) FindByID(ctx context.Context, id string) (*model.FastingGoal, error) {
	g, err := scanGoal(r.db.QueryRow(ctx, `SELECT `+goalColumns+` FROM fasting_goals WHERE id = $1`, id))
	if err != nil {
		if err != pgx.ErrNoRows {
			r.logger.Error("failed to find fasting goal", zap.Error(err), zap.String("goal_id", id))
		}
		return nil, translateError(err, "fasting goal", "find fasting goal")
	}
	return g, nil
}

// List retrieves all goals, most recent period first
func (r *GoalRepository) List(ctx context.Context) ([]model.FastingGoal, error) {
	rows, err := r.db.Query(ctx, `SELECT `+goalColumns+` FROM fasting_goals ORDER BY period_start DESC, created_at DESC`)
	if err != nil {
		r.logger.Error("failed to list fasting goals", zap.Error(err))
		return nil, translateError(err, "fasting goal", "list fasting goals")
	}
	defer rows.Close()

	goals := []model.FastingGoal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			r.logger.Error("failed to scan fasting goal", zap.Error(err))
			return nil, fmt.Errorf("failed to scan fasting goal: %w", err)
		}
		goals = append(goals, *g)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating fasting goals", zap.Error(err))
		return nil, fmt.Errorf("error iterating fasting goals: %w", err)
	}

	return goals, nil
}

// Delete removes a goal
func (r *GoalRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM fasting_goals WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("failed to delete fasting goal", zap.Error(err), zap.String("goal_id", id))
		return translateError(err, "fasting goal", "delete fasting goal")
	}
	if tag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows, "fasting goal", "delete fasting goal")
	}
	return nil
}
