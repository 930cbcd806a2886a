package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/internal/nutrition"
	"github.com/vcscsvcscs/nutrifast/internal/repository"
	"github.com/vcscsvcscs/nutrifast/internal/tasks"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// ProductRepositoryInterface defines product data access
type ProductRepositoryInterface interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.Product, error)
	List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
	SaveAll(ctx context.Context, products []model.Product) error
	CountReferences(ctx context.Context, id string) (logEntries, ingredients int, err error)
}

// TaskSubmitter hands work to the background dispatcher
type TaskSubmitter interface {
	Submit(ctx context.Context, kind tasks.Kind, payload any) (*tasks.Status, error)
}

// ProductService handles product catalogue business logic
type ProductService struct {
	repo   ProductRepositoryInterface
	tasks  TaskSubmitter
	audit  audit.Recorder
	now    Clock
	logger *zap.Logger
}

// NewProductService creates a new ProductService. submitter may be nil, in
// which case bulk imports skip the dish recompute.
func NewProductService(repo ProductRepositoryInterface, submitter TaskSubmitter, recorder audit.Recorder, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		tasks:  submitter,
		audit:  recorder,
		now:    systemClock,
		logger: logger,
	}
}

func validateProduct(p *model.Product) error {
	var c apperr.Collector

	p.Name = strings.TrimSpace(p.Name)
	c.Check(p.Name != "", "name is required")

	macros := []struct {
		name  string
		value float64
	}{
		{"calories", p.Per100g.Calories},
		{"protein", p.Per100g.Protein},
		{"fat", p.Per100g.Fat},
		{"carbs", p.Per100g.Carbs},
		{"fiber", p.Per100g.Fiber},
		{"sugars", p.Per100g.Sugars},
	}
	for _, m := range macros {
		c.Check(!math.IsNaN(m.value) && !math.IsInf(m.value, 0), "%s must be a finite number", m.name)
		c.Check(m.value >= 0, "%s must not be negative", m.name)
	}

	if p.GlycemicIndex != nil {
		c.Check(*p.GlycemicIndex >= 0 && *p.GlycemicIndex <= 100, "glycemic_index must be between 0 and 100")
	}

	p.Category = strings.TrimSpace(p.Category)
	p.ProcessingLevel = strings.TrimSpace(p.ProcessingLevel)
	p.Region = strings.TrimSpace(p.Region)

	return c.Err()
}

// CreateProduct validates and stores a new product. Missing calories are
// derived from the macros.
func (s *ProductService) CreateProduct(ctx context.Context, p *model.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	p.ID = uuid.New().String()
	p.Per100g = nutrition.Normalize(p.Per100g)
	now := s.now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}

	s.logger.Info("product created",
		zap.String("product_id", p.ID),
		zap.String("name", p.Name),
		zap.Float64("calories", p.Per100g.Calories),
	)
	return nil
}

// GetProduct retrieves a product
func (s *ProductService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if err := checkID(id, "product"); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// ListProducts searches products by name substring and category
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, apperr.Validation("limit and offset must not be negative")
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Category = strings.TrimSpace(filter.Category)

	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// UpdateProduct replaces a product's fields
func (s *ProductService) UpdateProduct(ctx context.Context, id string, p *model.Product) error {
	if err := checkID(id, "product"); err != nil {
		return err
	}
	if err := validateProduct(p); err != nil {
		return err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	p.ID = id
	p.Per100g = nutrition.Normalize(p.Per100g)
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}

	s.logger.Info("product updated", zap.String("product_id", id), zap.String("name", p.Name))
	return nil
}

// DeleteProduct removes a product that nothing references
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := checkID(id, "product"); err != nil {
		return err
	}

	entries, ingredients, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if entries > 0 || ingredients > 0 {
		return apperr.Conflictf("product is referenced by %d log entries and %d dish ingredients", entries, ingredients)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, audit.Entry{
		OperationType: audit.OperationDelete,
		ResourceType:  audit.ResourceProduct,
		ResourceID:    id,
	}); err != nil {
		s.logger.Warn("failed to audit product deletion", zap.Error(err), zap.String("product_id", id))
	}

	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

// ImportResult summarises a bulk product import
type ImportResult struct {
	Created       int    `json:"created"`
	Updated       int    `json:"updated"`
	RecomputeTask string `json:"recompute_task_id,omitempty"`
}

// ImportProducts upserts products by name in a single transaction and
// schedules a dish recompute so dishes built from changed products report
// fresh nutrition. A failing row rejects the whole import.
func (s *ProductService) ImportProducts(ctx context.Context, products []model.Product) (*ImportResult, error) {
	if len(products) == 0 {
		return nil, apperr.Validation("at least one product is required")
	}

	var c apperr.Collector
	seen := make(map[string]bool, len(products))
	for i := range products {
		if err := validateProduct(&products[i]); err != nil {
			for _, msg := range apperr.MessagesOf(err) {
				c.Addf("products[%d]: %s", i, msg)
			}
			continue
		}
		key := strings.ToLower(products[i].Name)
		c.Check(!seen[key], "products[%d]: duplicate name %q in import", i, products[i].Name)
		seen[key] = true
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	existing, err := s.repo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load products for import: %w", err)
	}
	byName := make(map[string]model.Product, len(existing))
	for _, p := range existing {
		byName[strings.ToLower(p.Name)] = p
	}

	result := &ImportResult{}
	now := s.now().UTC()
	for i := range products {
		p := &products[i]
		p.Per100g = nutrition.Normalize(p.Per100g)
		p.UpdatedAt = now

		if current, ok := byName[strings.ToLower(p.Name)]; ok {
			p.ID = current.ID
			p.CreatedAt = current.CreatedAt
			result.Updated++
			continue
		}
		p.ID = uuid.New().String()
		p.CreatedAt = now
		result.Created++
	}

	if err := s.repo.SaveAll(ctx, products); err != nil {
		s.logger.Error("product import rolled back", zap.Error(err), zap.Int("products", len(products)))
		return nil, err
	}

	if s.tasks != nil && result.Updated > 0 {
		status, err := s.tasks.Submit(ctx, tasks.KindRecomputeDishes, nil)
		if err != nil {
			s.logger.Warn("failed to schedule dish recompute", zap.Error(err))
		} else {
			result.RecomputeTask = status.ID
		}
	}

	s.logger.Info("products imported",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
	)

	return result, nil
}
