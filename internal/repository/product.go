package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// ProductFilter narrows a product listing
type ProductFilter struct {
	Search   string
	Category string
	Limit    int
	Offset   int
}

// ProductRepository manages product data
type ProductRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db *pgxpool.Pool, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

const productColumns = `
	id, name, calories, protein, fat, carbs, fiber, sugars,
	category, processing_level, glycemic_index, region,
	created_at, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Per100g.Calories,
		&p.Per100g.Protein,
		&p.Per100g.Fat,
		&p.Per100g.Carbs,
		&p.Per100g.Fiber,
		&p.Per100g.Sugars,
		&p.Category,
		&p.ProcessingLevel,
		&p.GlycemicIndex,
		&p.Region,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (
			id, name, calories, protein, fat, carbs, fiber, sugars,
			category, processing_level, glycemic_index, region,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Per100g.Calories,
		p.Per100g.Protein,
		p.Per100g.Fat,
		p.Per100g.Carbs,
		p.Per100g.Fiber,
		p.Per100g.Sugars,
		p.Category,
		p.ProcessingLevel,
		p.GlycemicIndex,
		p.Region,
		p.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create product",
			zap.Error(err),
			zap.String("product_id", p.ID),
			zap.String("name", p.Name),
		)
		return translateError(err, "product", "create product")
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err != pgx.ErrNoRows {
			r.logger.Error("failed to find product", zap.Error(err), zap.String("product_id", id))
		}
		return nil, translateError(err, "product", "find product")
	}

	return p, nil
}

// FindByIDs retrieves the products with the given IDs keyed by ID. Missing
// IDs are simply absent from the result.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Product, error) {
	result := make(map[string]*model.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::uuid[])`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error("failed to find products", zap.Error(err), zap.Int("count", len(ids)))
		return nil, translateError(err, "product", "find products")
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error("failed to scan product", zap.Error(err))
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result[p.ID] = p
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating products", zap.Error(err))
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return result, nil
}

// likeEscaper makes LIKE metacharacters in a search term match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List retrieves products ordered by name
func (r *ProductRepository) List(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(filter.Search))+"%")
		conditions = append(conditions, fmt.Sprintf(`lower(name) LIKE $%d ESCAPE '\'`, len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY name`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list products", zap.Error(err))
		return nil, translateError(err, "product", "list products")
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error("failed to scan product", zap.Error(err))
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating products", zap.Error(err))
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Update overwrites a product's mutable fields
func (r *ProductRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, calories = $3, protein = $4, fat = $5, carbs = $6,
			fiber = $7, sugars = $8, category = $9, processing_level = $10,
			glycemic_index = $11, region = $12, updated_at = $13
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Per100g.Calories,
		p.Per100g.Protein,
		p.Per100g.Fat,
		p.Per100g.Carbs,
		p.Per100g.Fiber,
		p.Per100g.Sugars,
		p.Category,
		p.ProcessingLevel,
		p.GlycemicIndex,
		p.Region,
		p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to update product", zap.Error(err), zap.String("product_id", p.ID))
		return translateError(err, "product", "update product")
	}
	if tag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows, "product", "update product")
	}

	return nil
}

// SaveAll inserts or updates every product by id in one transaction; when
// any row fails the table is left unchanged
func (r *ProductRepository) SaveAll(ctx context.Context, products []model.Product) error {
	query := `
		INSERT INTO products (
			id, name, calories, protein, fat, carbs, fiber, sugars,
			category, processing_level, glycemic_index, region,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, calories = EXCLUDED.calories, protein = EXCLUDED.protein,
			fat = EXCLUDED.fat, carbs = EXCLUDED.carbs, fiber = EXCLUDED.fiber,
			sugars = EXCLUDED.sugars, category = EXCLUDED.category,
			processing_level = EXCLUDED.processing_level,
			glycemic_index = EXCLUDED.glycemic_index, region = EXCLUDED.region,
			updated_at = EXCLUDED.updated_at
	`

	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		for i := range products {
			p := &products[i]
			_, err := tx.Exec(ctx, query,
				p.ID,
				p.Name,
				p.Per100g.Calories,
				p.Per100g.Protein,
				p.Per100g.Fat,
				p.Per100g.Carbs,
				p.Per100g.Fiber,
				p.Per100g.Sugars,
				p.Category,
				p.ProcessingLevel,
				p.GlycemicIndex,
				p.Region,
				p.CreatedAt,
				p.UpdatedAt,
			)
			if err != nil {
				r.logger.Error("failed to save product",
					zap.Error(err),
					zap.Int("row", i),
					zap.String("name", p.Name),
				)
				return translateError(err, "product", "save product")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("products saved", zap.Int("count", len(products)))
	return nil
}

// Delete removes a product
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("failed to delete product", zap.Error(err), zap.String("product_id", id))
		return translateError(err, "product", "delete product")
	}
	if tag.RowsAffected() == 0 {
		return translateError(pgx.ErrNoRows, "product", "delete product")
	}

	return nil
}

// CountReferences returns how many log entries and dish ingredients point
// at the product
func (r *ProductRepository) CountReferences(ctx context.Context, id string) (logEntries, ingredients int, err error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM log_entries WHERE item_type = 'product' AND item_id = $1),
			(SELECT COUNT(*) FROM dish_ingredients WHERE product_id = $1)
	`

	if err := r.db.QueryRow(ctx, query, id).Scan(&logEntries, &ingredients); err != nil {
		r.logger.Error("failed to count product references", zap.Error(err), zap.String("product_id", id))
		return 0, 0, translateError(err, "product", "count product references")
	}

	return logEntries, ingredients, nil
}
