package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/internal/nutrition"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// DishRepositoryInterface defines dish data access
type DishRepositoryInterface interface {
	Create(ctx context.Context, d *model.Dish) error
	FindByID(ctx context.Context, id string) (*model.Dish, error)
	List(ctx context.Context) ([]model.Dish, error)
	Update(ctx context.Context, d *model.Dish) error
	Delete(ctx context.Context, id string) error
	CountReferences(ctx context.Context, id string) (int, error)
}

// DishView is a dish with its derived nutrition
type DishView struct {
	model.Dish
	TotalGrams     float64         `json:"total_grams"`
	Per100g        model.Nutrition `json:"nutrition_per_100g"`
	TotalNutrition model.Nutrition `json:"total_nutrition"`
}

// DishService handles dish composition and nutrition resolution
type DishService struct {
	repo     DishRepositoryInterface
	products ProductRepositoryInterface
	audit    audit.Recorder
	now      Clock
	logger   *zap.Logger
}

// NewDishService creates a new DishService
func NewDishService(repo DishRepositoryInterface, products ProductRepositoryInterface, recorder audit.Recorder, logger *zap.Logger) *DishService {
	return &DishService{
		repo:     repo,
		products: products,
		audit:    recorder,
		now:      systemClock,
		logger:   logger,
	}
}

func validateDish(d *model.Dish) error {
	var c apperr.Collector

	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	c.Check(d.Name != "", "name is required")
	c.Check(len(d.Ingredients) > 0, "a dish needs at least one ingredient")

	for i := range d.Ingredients {
		ing := &d.Ingredients[i]
		ing.Position = i
		id, err := uuid.Parse(strings.TrimSpace(ing.ProductID))
		if err != nil {
			c.Addf("ingredients[%d]: product_id %q is not a valid id", i, ing.ProductID)
		} else {
			ing.ProductID = id.String()
		}
		c.Check(!math.IsNaN(ing.Grams) && !math.IsInf(ing.Grams, 0) && ing.Grams > 0,
			"ingredients[%d]: grams must be greater than 0", i)
	}

	return c.Err()
}

// loadProducts fetches every product the dishes use. Missing products fail
// with a ValidationError naming each missing id.
func (s *DishService) loadProducts(ctx context.Context, dishes ...*model.Dish) (map[string]*model.Product, error) {
	var ids []string
	seen := make(map[string]bool)
	for _, d := range dishes {
		for _, ing := range d.Ingredients {
			if !seen[ing.ProductID] {
				seen[ing.ProductID] = true
				ids = append(ids, ing.ProductID)
			}
		}
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load dish products: %w", err)
	}

	var missing []string
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		msgs := make([]string, 0, len(missing))
		for _, id := range missing {
			msgs = append(msgs, fmt.Sprintf("product %s does not exist", id))
		}
		return nil, apperr.Validation(msgs...)
	}

	return products, nil
}

func view(d *model.Dish, products map[string]*model.Product) (*DishView, error) {
	ingredients := make([]nutrition.Ingredient, 0, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		ingredients = append(ingredients, nutrition.Ingredient{
			Per100g: products[ing.ProductID].Per100g,
			Grams:   ing.Grams,
		})
	}

	per100g, err := nutrition.ResolveDish(ingredients)
	if err != nil {
		return nil, err
	}
	total, grams := nutrition.Sum(ingredients)

	return &DishView{
		Dish:           *d,
		TotalGrams:     grams,
		Per100g:        per100g,
		TotalNutrition: total,
	}, nil
}

// CreateDish validates and stores a dish
func (s *DishService) CreateDish(ctx context.Context, d *model.Dish) (*DishView, error) {
	if err := validateDish(d); err != nil {
		return nil, err
	}
	products, err := s.loadProducts(ctx, d)
	if err != nil {
		return nil, err
	}

	d.ID = uuid.New().String()
	now := s.now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	v, err := view(d, products)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("dish created",
		zap.String("dish_id", d.ID),
		zap.String("name", d.Name),
		zap.Int("ingredients", len(d.Ingredients)),
	)
	return v, nil
}

// GetDish retrieves a dish with derived nutrition
func (s *DishService) GetDish(ctx context.Context, id string) (*DishView, error) {
	if err := checkID(id, "dish"); err != nil {
		return nil, err
	}
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := s.loadProducts(ctx, d)
	if err != nil {
		return nil, err
	}
	return view(d, products)
}

// ListDishes retrieves every dish with derived nutrition
func (s *DishService) ListDishes(ctx context.Context) ([]DishView, error) {
	dishes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}

	ptrs := make([]*model.Dish, len(dishes))
	for i := range dishes {
		ptrs[i] = &dishes[i]
	}
	products, err := s.loadProducts(ctx, ptrs...)
	if err != nil {
		return nil, err
	}

	views := make([]DishView, 0, len(dishes))
	for i := range dishes {
		v, err := view(&dishes[i], products)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// UpdateDish replaces a dish's name, description and ingredient list
func (s *DishService) UpdateDish(ctx context.Context, id string, d *model.Dish) (*DishView, error) {
	if err := checkID(id, "dish"); err != nil {
		return nil, err
	}
	if err := validateDish(d); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := s.loadProducts(ctx, d)
	if err != nil {
		return nil, err
	}

	d.ID = id
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = s.now().UTC()

	v, err := view(d, products)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("dish updated", zap.String("dish_id", id), zap.Int("ingredients", len(d.Ingredients)))
	return v, nil
}

// DeleteDish removes a dish no log entry references
func (s *DishService) DeleteDish(ctx context.Context, id string) error {
	if err := checkID(id, "dish"); err != nil {
		return err
	}

	refs, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apperr.Conflictf("dish is referenced by %d log entries", refs)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, audit.Entry{
		OperationType: audit.OperationDelete,
		ResourceType:  audit.ResourceDish,
		ResourceID:    id,
	}); err != nil {
		s.logger.Warn("failed to audit dish deletion", zap.Error(err), zap.String("dish_id", id))
	}

	s.logger.Info("dish deleted", zap.String("dish_id", id))
	return nil
}

// Per100g implements NutritionSource for dishes
func (s *DishService) Per100g(ctx context.Context, ids []string) (map[string]model.Nutrition, error) {
	result := make(map[string]model.Nutrition, len(ids))
	for _, id := range validIDs(ids) {
		d, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				continue
			}
			return nil, err
		}
		products, err := s.loadProducts(ctx, d)
		if err != nil {
			return nil, err
		}
		v, err := view(d, products)
		if err != nil {
			return nil, err
		}
		result[id] = v.Per100g
	}
	return result, nil
}

// RecomputedDish is one line of a recompute report
type RecomputedDish struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	CaloriesPer100g float64 `json:"calories_per_100g"`
	Error           string  `json:"error,omitempty"`
}

// RecomputeAll resolves every dish against current product values. Dishes
// that fail to resolve are reported rather than aborting the run.
func (s *DishService) RecomputeAll(ctx context.Context) ([]RecomputedDish, error) {
	dishes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}

	report := make([]RecomputedDish, 0, len(dishes))
	failed := 0
	for i := range dishes {
		line := RecomputedDish{ID: dishes[i].ID, Name: dishes[i].Name}
		products, err := s.loadProducts(ctx, &dishes[i])
		if err == nil {
			var v *DishView
			if v, err = view(&dishes[i], products); err == nil {
				line.CaloriesPer100g = math.Round(v.Per100g.Calories*10) / 10
			}
		}
		if err != nil {
			line.Error = strings.Join(apperr.MessagesOf(err), "; ")
			failed++
		}
		report = append(report, line)
	}

	s.logger.Info("dish nutrition recomputed",
		zap.Int("dishes", len(dishes)),
		zap.Int("failed", failed),
	)
	return report, nil
}
