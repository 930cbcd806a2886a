package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// SnapshotRepository exports and restores the full data set
type SnapshotRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(db *pgxpool.Pool, logger *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:     db,
		logger: logger,
	}
}

// Export reads every table inside one repeatable-read transaction
func (r *SnapshotRepository) Export(ctx context.Context) (*model.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		r.logger.Error("failed to begin export transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to begin export transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	snap := &model.Snapshot{}

	if snap.Products, err = collect(ctx, tx, `SELECT `+productColumns+` FROM products ORDER BY created_at, id`, scanProduct); err != nil {
		return nil, r.exportErr("products", err)
	}
	if snap.Dishes, err = exportDishes(ctx, tx); err != nil {
		return nil, r.exportErr("dishes", err)
	}
	if snap.LogEntries, err = collect(ctx, tx, `SELECT `+logEntryColumns+` FROM log_entries ORDER BY entry_date, created_at, id`, scanLogEntry); err != nil {
		return nil, r.exportErr("log entries", err)
	}
	if snap.FastingSessions, err = collect(ctx, tx, `SELECT `+fastingColumns+` FROM fasting_sessions ORDER BY started_at, id`, scanFasting); err != nil {
		return nil, r.exportErr("fasting sessions", err)
	}
	if snap.FastingGoals, err = collect(ctx, tx, `SELECT `+goalColumns+` FROM fasting_goals ORDER BY created_at, id`, scanGoal); err != nil {
		return nil, r.exportErr("fasting goals", err)
	}

	profiles, err := collect(ctx, tx, `
		SELECT gender, birth_date, height_cm, weight_kg, activity_level, goal,
			body_fat_percent, lean_body_mass_kg, updated_at
		FROM profile`, scanProfile)
	if err != nil {
		return nil, r.exportErr("profile", err)
	}
	if len(profiles) > 0 {
		snap.Profile = &profiles[0]
	}

	r.logger.Info("snapshot exported",
		zap.Int("products", len(snap.Products)),
		zap.Int("dishes", len(snap.Dishes)),
		zap.Int("log_entries", len(snap.LogEntries)),
		zap.Int("fasting_sessions", len(snap.FastingSessions)),
	)

	return snap, nil
}

func (r *SnapshotRepository) exportErr(what string, err error) error {
	r.logger.Error("failed to export "+what, zap.Error(err))
	return fmt.Errorf("failed to export %s: %w", what, err)
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(
		&p.Gender,
		&p.BirthDate,
		&p.HeightCM,
		&p.WeightKG,
		&p.ActivityLevel,
		&p.Goal,
		&p.BodyFatPercent,
		&p.LeanBodyMassKG,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collect[T any](ctx context.Context, db DBTX, query string, scan func(pgx.Row) (*T, error)) ([]T, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func exportDishes(ctx context.Context, db DBTX) ([]model.Dish, error) {
	dishes, err := collect(ctx, db, `SELECT id, name, description, created_at, updated_at FROM dishes ORDER BY created_at, id`,
		func(row pgx.Row) (*model.Dish, error) {
			var d model.Dish
			if err := row.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt); err != nil {
				return nil, err
			}
			return &d, nil
		})
	if err != nil {
		return nil, err
	}

	type ingredientRow struct {
		dishID string
		model.DishIngredient
	}
	rows, err := collect(ctx, db, `SELECT dish_id, position, product_id, grams FROM dish_ingredients ORDER BY dish_id, position`,
		func(row pgx.Row) (*ingredientRow, error) {
			var ir ingredientRow
			if err := row.Scan(&ir.dishID, &ir.Position, &ir.ProductID, &ir.Grams); err != nil {
				return nil, err
			}
			return &ir, nil
		})
	if err != nil {
		return nil, err
	}

	byDish := make(map[string][]model.DishIngredient, len(dishes))
	for _, ir := range rows {
		byDish[ir.dishID] = append(byDish[ir.dishID], ir.DishIngredient)
	}
	for i := range dishes {
		dishes[i].Ingredients = byDish[dishes[i].ID]
	}
	return dishes, nil
}

// Restore replaces the contents of every table with snap in a single
// transaction; on any failure nothing changes
func (r *SnapshotRepository) Restore(ctx context.Context, snap *model.Snapshot) error {
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			TRUNCATE log_entries, dish_ingredients, dishes, products,
				fasting_sessions, fasting_goals, profile
		`); err != nil {
			return fmt.Errorf("failed to clear tables: %w", err)
		}

		batch := &pgx.Batch{}
		for _, p := range snap.Products {
			batch.Queue(`
				INSERT INTO products (
					id, name, calories, protein, fat, carbs, fiber, sugars,
					category, processing_level, glycemic_index, region,
					created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			`, p.ID, p.Name, p.Per100g.Calories, p.Per100g.Protein, p.Per100g.Fat, p.Per100g.Carbs,
				p.Per100g.Fiber, p.Per100g.Sugars, p.Category, p.ProcessingLevel, p.GlycemicIndex,
				p.Region, p.CreatedAt, p.UpdatedAt)
		}
		for _, d := range snap.Dishes {
			batch.Queue(`
				INSERT INTO dishes (id, name, description, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5)
			`, d.ID, d.Name, d.Description, d.CreatedAt, d.UpdatedAt)
			for i, ing := range d.Ingredients {
				batch.Queue(`
					INSERT INTO dish_ingredients (dish_id, position, product_id, grams)
					VALUES ($1, $2, $3, $4)
				`, d.ID, i, ing.ProductID, ing.Grams)
			}
		}
		for _, e := range snap.LogEntries {
			batch.Queue(`
				INSERT INTO log_entries (
					id, entry_date, meal, item_type, item_id, grams, notes, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, e.ID, e.Date, string(e.Meal), string(e.ItemType), e.ItemID, e.Grams, e.Notes, e.CreatedAt, e.UpdatedAt)
		}
		for _, s := range snap.FastingSessions {
			batch.Queue(`
				INSERT INTO fasting_sessions (
					id, fasting_type, started_at, ended_at, status, notes,
					paused_at, paused_seconds, duration_hours, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			`, s.ID, s.FastingType, s.StartedAt, s.EndedAt, string(s.Status), s.Notes,
				s.PausedAt, s.PausedSeconds, s.DurationHours, s.CreatedAt, s.UpdatedAt)
		}
		for _, g := range snap.FastingGoals {
			batch.Queue(`
				INSERT INTO fasting_goals (id, goal_type, target_value, period_start, period_end, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, g.ID, string(g.GoalType), g.TargetValue, g.PeriodStart, g.PeriodEnd, g.CreatedAt)
		}
		if p := snap.Profile; p != nil {
			batch.Queue(`
				INSERT INTO profile (
					id, gender, birth_date, height_cm, weight_kg, activity_level, goal,
					body_fat_percent, lean_body_mass_kg, updated_at
				) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, string(p.Gender), p.BirthDate, p.HeightCM, p.WeightKG, string(p.ActivityLevel),
				string(p.Goal), p.BodyFatPercent, p.LeanBodyMassKG, p.UpdatedAt)
		}

		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return translateError(err, "snapshot row", "restore snapshot")
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to restore snapshot", zap.Error(err))
		return err
	}

	r.logger.Info("snapshot restored",
		zap.Int("products", len(snap.Products)),
		zap.Int("dishes", len(snap.Dishes)),
		zap.Int("log_entries", len(snap.LogEntries)),
		zap.Int("fasting_sessions", len(snap.FastingSessions)),
	)

	return nil
}
