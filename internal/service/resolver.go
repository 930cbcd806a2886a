package service

import (
	"context"
	"fmt"

	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/nutrition"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
)

// NutritionSource resolves per-100g nutrition for every item of one type.
// Unknown ids are absent from the result.
type NutritionSource interface {
	Per100g(ctx context.Context, ids []string) (map[string]model.Nutrition, error)
}

// ItemRef is the tagged reference held by a log entry
type ItemRef struct {
	Type model.ItemType
	ID   string
}

// ItemResolver dispatches item references to the source registered for
// their type
type ItemResolver struct {
	sources map[model.ItemType]NutritionSource
}

// NewItemResolver creates a resolver over the given capability map
func NewItemResolver(sources map[model.ItemType]NutritionSource) *ItemResolver {
	return &ItemResolver{sources: sources}
}

// Lookup starts a memoized resolution scope. A lookup is meant for one
// aggregation call and is not safe for concurrent use.
func (r *ItemResolver) Lookup() *ItemLookup {
	return &ItemLookup{
		resolver: r,
		cache:    make(map[ItemRef]model.Nutrition),
		missing:  make(map[ItemRef]bool),
	}
}

// ItemLookup memoizes resolved items
type ItemLookup struct {
	resolver *ItemResolver
	cache    map[ItemRef]model.Nutrition
	missing  map[ItemRef]bool
}

// Prefetch resolves every not yet known reference with one source call
// per item type
func (l *ItemLookup) Prefetch(ctx context.Context, refs []ItemRef) error {
	pending := make(map[model.ItemType][]string)
	queued := make(map[ItemRef]bool)
	for _, ref := range refs {
		if _, ok := l.cache[ref]; ok || l.missing[ref] || queued[ref] {
			continue
		}
		queued[ref] = true
		pending[ref.Type] = append(pending[ref.Type], ref.ID)
	}

	for itemType, ids := range pending {
		source, ok := l.resolver.sources[itemType]
		if !ok {
			return apperr.Validationf("unsupported item type %q", itemType)
		}
		found, err := source.Per100g(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to resolve %s items: %w", itemType, err)
		}
		for _, id := range ids {
			ref := ItemRef{Type: itemType, ID: id}
			if n, ok := found[id]; ok {
				l.cache[ref] = n
			} else {
				l.missing[ref] = true
			}
		}
	}

	return nil
}

// Per100g returns the item's per-100g nutrition
func (l *ItemLookup) Per100g(ctx context.Context, ref ItemRef) (model.Nutrition, error) {
	if err := l.Prefetch(ctx, []ItemRef{ref}); err != nil {
		return model.Nutrition{}, err
	}
	if n, ok := l.cache[ref]; ok {
		return n, nil
	}
	return model.Nutrition{}, apperr.NotFoundf("%s %s not found", ref.Type, ref.ID)
}

// Scaled returns the absolute nutrition of grams of the item
func (l *ItemLookup) Scaled(ctx context.Context, ref ItemRef, grams float64) (model.Nutrition, error) {
	per100g, err := l.Per100g(ctx, ref)
	if err != nil {
		return model.Nutrition{}, err
	}
	return nutrition.Scale(per100g, grams), nil
}

// ProductSource adapts the product repository to NutritionSource
type ProductSource struct {
	repo ProductRepositoryInterface
}

// NewProductSource creates a ProductSource
func NewProductSource(repo ProductRepositoryInterface) *ProductSource {
	return &ProductSource{repo: repo}
}

// Per100g implements NutritionSource
func (s *ProductSource) Per100g(ctx context.Context, ids []string) (map[string]model.Nutrition, error) {
	products, err := s.repo.FindByIDs(ctx, validIDs(ids))
	if err != nil {
		return nil, err
	}
	result := make(map[string]model.Nutrition, len(products))
	for id, p := range products {
		result[id] = nutrition.Normalize(p.Per100g)
	}
	return result, nil
}

// validIDs drops ids that cannot be UUIDs so they resolve as missing
// instead of failing the whole query
func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if checkID(id, "item") == nil {
			valid = append(valid, id)
		}
	}
	return valid
}
