package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/internal/repository"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// fakeProductRepo is an in-memory product table with the unique name index
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]model.Product
	refs     func(id string) (int, int)
	saveErr  func(p *model.Product) error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]model.Product{}}
}

func (r *fakeProductRepo) nameTaken(name, except string) bool {
	for id, p := range r.products {
		if id != except && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (r *fakeProductRepo) Create(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(p.Name, "") {
		return apperr.Conflictf("a product with this name already exists")
	}
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, apperr.NotFoundf("product %s not found", id)
	}
	return &p, nil
}

func (r *fakeProductRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := make(map[string]*model.Product)
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			found[id] = &p
		}
	}
	return found, nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []model.Product{}
	for _, p := range r.products {
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return apperr.NotFoundf("product %s not found", p.ID)
	}
	if r.nameTaken(p.Name, p.ID) {
		return apperr.Conflictf("a product with this name already exists")
	}
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return apperr.NotFoundf("product %s not found", id)
	}
	delete(r.products, id)
	return nil
}

// SaveAll applies every row to a copy and swaps it in only when all succeed
func (r *fakeProductRepo) SaveAll(ctx context.Context, products []model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := &fakeProductRepo{products: make(map[string]model.Product, len(r.products))}
	for id, p := range r.products {
		staged.products[id] = p
	}
	for i := range products {
		p := &products[i]
		if r.saveErr != nil {
			if err := r.saveErr(p); err != nil {
				return err
			}
		}
		if staged.nameTaken(p.Name, p.ID) {
			return apperr.Conflictf("a product with this name already exists")
		}
		staged.products[p.ID] = *p
	}
	r.products = staged.products
	return nil
}

func (r *fakeProductRepo) CountReferences(ctx context.Context, id string) (int, int, error) {
	if r.refs == nil {
		return 0, 0, nil
	}
	entries, ingredients := r.refs(id)
	return entries, ingredients, nil
}

// fakeDishRepo is an in-memory dish table
type fakeDishRepo struct {
	mu     sync.Mutex
	dishes map[string]model.Dish
	refs   func(id string) int
}

func newFakeDishRepo() *fakeDishRepo {
	return &fakeDishRepo{dishes: map[string]model.Dish{}}
}

func (r *fakeDishRepo) Create(ctx context.Context, d *model.Dish) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.dishes {
		if strings.EqualFold(other.Name, d.Name) {
			return apperr.Conflictf("a dish with this name already exists")
		}
	}
	r.dishes[d.ID] = cloneDish(*d)
	return nil
}

func (r *fakeDishRepo) FindByID(ctx context.Context, id string) (*model.Dish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dishes[id]
	if !ok {
		return nil, apperr.NotFoundf("dish %s not found", id)
	}
	d = cloneDish(d)
	return &d, nil
}

func (r *fakeDishRepo) List(ctx context.Context) ([]model.Dish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []model.Dish{}
	for _, d := range r.dishes {
		result = append(result, cloneDish(d))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *fakeDishRepo) Update(ctx context.Context, d *model.Dish) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dishes[d.ID]; !ok {
		return apperr.NotFoundf("dish %s not found", d.ID)
	}
	r.dishes[d.ID] = cloneDish(*d)
	return nil
}

func (r *fakeDishRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dishes[id]; !ok {
		return apperr.NotFoundf("dish %s not found", id)
	}
	delete(r.dishes, id)
	return nil
}

func (r *fakeDishRepo) CountReferences(ctx context.Context, id string) (int, error) {
	if r.refs == nil {
		return 0, nil
	}
	return r.refs(id), nil
}

func cloneDish(d model.Dish) model.Dish {
	d.Ingredients = append([]model.DishIngredient(nil), d.Ingredients...)
	return d
}

// fakeLogEntryRepo is an in-memory log entry table
type fakeLogEntryRepo struct {
	mu      sync.Mutex
	entries map[string]model.LogEntry
}

func newFakeLogEntryRepo() *fakeLogEntryRepo {
	return &fakeLogEntryRepo{entries: map[string]model.LogEntry{}}
}

func (r *fakeLogEntryRepo) Create(ctx context.Context, e *model.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.ID] = *e
	return nil
}

func (r *fakeLogEntryRepo) FindByID(ctx context.Context, id string) (*model.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, apperr.NotFoundf("log entry %s not found", id)
	}
	return &e, nil
}

func (r *fakeLogEntryRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []model.LogEntry{}
	for _, e := range r.entries {
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeLogEntryRepo) Update(ctx context.Context, e *model.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.ID]; !ok {
		return apperr.NotFoundf("log entry %s not found", e.ID)
	}
	r.entries[e.ID] = *e
	return nil
}

func (r *fakeLogEntryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return apperr.NotFoundf("log entry %s not found", id)
	}
	delete(r.entries, id)
	return nil
}

// recordingAudit captures audit entries
type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *recordingAudit) Record(ctx context.Context, e audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *recordingAudit) operations() []audit.OperationType {
	a.mu.Lock()
	defer a.mu.Unlock()
	ops := make([]audit.OperationType, 0, len(a.entries))
	for _, e := range a.entries {
		ops = append(ops, e.OperationType)
	}
	return ops
}

// nutritionFixture wires the catalogue and food log services over fakes the
// way main does over Postgres
type nutritionFixture struct {
	clock    *testClock
	products *fakeProductRepo
	dishes   *fakeDishRepo
	entries  *fakeLogEntryRepo
	audit    *recordingAudit

	productSvc *ProductService
	dishSvc    *DishService
	entrySvc   *LogEntryService
	statsSvc   *StatsService
}

func newNutritionFixture() *nutritionFixture {
	f := &nutritionFixture{
		clock:    &testClock{t: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)},
		products: newFakeProductRepo(),
		dishes:   newFakeDishRepo(),
		entries:  newFakeLogEntryRepo(),
		audit:    &recordingAudit{},
	}
	logger := zap.NewNop()

	f.productSvc = NewProductService(f.products, nil, f.audit, logger)
	f.productSvc.now = f.clock.now
	f.dishSvc = NewDishService(f.dishes, f.products, f.audit, logger)
	f.dishSvc.now = f.clock.now

	resolver := NewItemResolver(map[model.ItemType]NutritionSource{
		model.ItemProduct: NewProductSource(f.products),
		model.ItemDish:    f.dishSvc,
	})
	f.entrySvc = NewLogEntryService(f.entries, resolver, f.audit, time.UTC, logger).WithClock(f.clock.now)
	f.statsSvc = NewStatsService(f.entries, resolver, time.UTC, logger).WithClock(f.clock.now)
	return f
}
