package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// DishRepository manages dishes and their ingredient lists
type DishRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewDishRepository creates a new DishRepository
func NewDishRepository(db *pgxpool.Pool, logger *zap.Logger) *DishRepository {
	return &DishRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a dish and its ingredients in one transaction
func (r *DishRepository) Create(ctx context.Context, d *model.Dish) error {
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO dishes (id, name, description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
		`, d.ID, d.Name, d.Description, d.CreatedAt)
		if err != nil {
			return translateError(err, "dish", "create dish")
		}
		return insertIngredients(ctx, tx, d)
	})
	if err != nil {
		r.logger.Error("failed to create dish",
			zap.Error(err),
			zap.String("dish_id", d.ID),
			zap.String("name", d.Name),
		)
		return err
	}

	return nil
}

func insertIngredients(ctx context.Context, tx pgx.Tx, d *model.Dish) error {
	batch := &pgx.Batch{}
	for i, ing := range d.Ingredients {
		batch.Queue(`
			INSERT INTO dish_ingredients (dish_id, position, product_id, grams)
			VALUES ($1, $2, $3, $4)
		`, d.ID, i, ing.ProductID, ing.Grams)
	}

	results := tx.SendBatch(ctx, batch)
	for range d.Ingredients {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return translateError(err, "dish ingredient", "insert dish ingredient")
		}
	}
	if err := results.Close(); err != nil {
		return translateError(err, "dish ingredient", "insert dish ingredients")
	}
	return nil
}

// FindByID retrieves a dish with its ordered ingredients
func (r *DishRepository) FindByID(ctx context.Context, id string) (*model.Dish, error) {
	var d model.Dish
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM dishes
		WHERE id = $1
	`, id).Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if err != pgx.ErrNoRows {
			r.logger.Error("failed to find dish", zap.Error(err), zap.String("dish_id", id))
		}
		return nil, translateError(err, "dish", "find dish")
	}

	byDish, err := r.loadIngredients(ctx, []string{d.ID})
	if err != nil {
		return nil, err
	}
	d.Ingredients = byDish[d.ID]

	return &d, nil
}

// List retrieves every dish ordered by name, ingredients included
func (r *DishRepository) List(ctx context.Context) ([]model.Dish, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM dishes
		ORDER BY name
	`)
	if err != nil {
		r.logger.Error("failed to list dishes", zap.Error(err))
		return nil, translateError(err, "dish", "list dishes")
	}
	defer rows.Close()

	dishes := []model.Dish{}
	var ids []string
	for rows.Next() {
		var d model.Dish
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt); err != nil {
			r.logger.Error("failed to scan dish", zap.Error(err))
			return nil, fmt.Errorf("failed to scan dish: %w", err)
		}
		dishes = append(dishes, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating dishes", zap.Error(err))
		return nil, fmt.Errorf("error iterating dishes: %w", err)
	}

	byDish, err := r.loadIngredients(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range dishes {
		dishes[i].Ingredients = byDish[dishes[i].ID]
	}

	return dishes, nil
}

func (r *DishRepository) loadIngredients(ctx context.Context, dishIDs []string) (map[string][]model.DishIngredient, error) {
	result := make(map[string][]model.DishIngredient, len(dishIDs))
	if len(dishIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT dish_id, position, product_id, grams
		FROM dish_ingredients
		WHERE dish_id = ANY($1::uuid[])
		ORDER BY dish_id, position
	`, dishIDs)
	if err != nil {
		r.logger.Error("failed to load dish ingredients", zap.Error(err))
		return nil, translateError(err, "dish ingredient", "load dish ingredients")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			dishID string
			ing    model.DishIngredient
		)
		if err := rows.Scan(&dishID, &ing.Position, &ing.ProductID, &ing.Grams); err != nil {
			r.logger.Error("failed to scan dish ingredient", zap.Error(err))
			return nil, fmt.Errorf("failed to scan dish ingredient: %w", err)
		}
		result[dishID] = append(result[dishID], ing)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating dish ingredients", zap.Error(err))
		return nil, fmt.Errorf("error iterating dish ingredients: %w", err)
	}

	return result, nil
}

// Update overwrites the dish fields and replaces its ingredient list
func (r *DishRepository) Update(ctx context.Context, d *model.Dish) error {
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE dishes SET name = $2, description = $3, updated_at = $4
			WHERE id = $1
		`, d.ID, d.Name, d.Description, d.UpdatedAt)
		if err != nil {
			return translateError(err, "dish", "update dish")
		}
		if tag.RowsAffected() == 0 {
			return translateError(pgx.ErrNoRows, "dish", "update dish")
		}

		if _, err := tx.Exec(ctx, `DELETE FROM dish_ingredients WHERE dish_id = $1`, d.ID); err != nil {
			return translateError(err, "dish ingredient", "clear dish ingredients")
		}
		return insertIngredients(ctx, tx, d)
	})
	if err != nil {
		r.logger.Error("failed to update dish", zap.Error(err), zap.String("dish_id", d.ID))
		return err
	}

	return nil
}

// Delete removes a dish; its ingredients cascade
func (r *DishRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM dishes WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("failed to delete dish", zap.Error(err), zap.String("dish_id", id))
		return translateError(err, "dish", "delete dish")
	}
	if tag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows, "dish", "delete dish")
	}

	return nil
}

// CountReferences returns how many log entries point at the dish
func (r *DishRepository) CountReferences(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM log_entries WHERE item_type = 'dish' AND item_id = $1
	`, id).Scan(&count)
	if err != nil {
		r.logger.Error("failed to count dish references", zap.Error(err), zap.String("dish_id", id))
		return 0, translateError(err, "dish", "count dish references")
	}

	return count, nil
}
