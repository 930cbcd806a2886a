package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// maxRangeDays bounds log entry range queries
const maxRangeDays = 366

// LogEntryRepositoryInterface defines log entry data access
type LogEntryRepositoryInterface interface {
	Create(ctx context.Context, e *model.LogEntry) error
	FindByID(ctx context.Context, id string) (*model.LogEntry, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]model.LogEntry, error)
	Update(ctx context.Context, e *model.LogEntry) error
	Delete(ctx context.Context, id string) error
}

// LogEntryView is a log entry with the nutrition of its quantity
type LogEntryView struct {
	model.LogEntry
	Nutrition model.Nutrition `json:"nutrition"`
}

// LogEntryService handles the food log
type LogEntryService struct {
	repo     LogEntryRepositoryInterface
	resolver *ItemResolver
	audit    audit.Recorder
	loc      *time.Location
	now      Clock
	logger   *zap.Logger
}

// NewLogEntryService creates a new LogEntryService
func NewLogEntryService(repo LogEntryRepositoryInterface, resolver *ItemResolver, recorder audit.Recorder, loc *time.Location, logger *zap.Logger) *LogEntryService {
	if loc == nil {
		loc = time.Local
	}
	return &LogEntryService{
		repo:     repo,
		resolver: resolver,
		audit:    recorder,
		loc:      loc,
		now:      systemClock,
		logger:   logger,
	}
}

// WithClock replaces the time source
func (s *LogEntryService) WithClock(clock Clock) *LogEntryService {
	s.now = clock
	return s
}

// checkEntryFields normalizes and checks the fields of e that need no
// lookup, prefixing each message with prefix
func checkEntryFields(c *apperr.Collector, prefix string, e *model.LogEntry) {
	e.Meal = model.MealSlot(strings.ToLower(strings.TrimSpace(string(e.Meal))))
	e.ItemType = model.ItemType(strings.ToLower(strings.TrimSpace(string(e.ItemType))))

	c.Check(e.Meal.Valid(), "%smeal must be one of breakfast, lunch, dinner, snack", prefix)
	c.Check(e.ItemType.Valid(), "%sitem_type must be product or dish", prefix)
	c.Check(!math.IsNaN(e.Grams) && !math.IsInf(e.Grams, 0) && e.Grams > 0, "%sgrams must be greater than 0", prefix)

	id, err := uuid.Parse(strings.TrimSpace(e.ItemID))
	if err != nil {
		c.Addf("%sitem_id %q is not a valid id", prefix, e.ItemID)
	} else {
		e.ItemID = id.String()
	}
}

// validateEntry checks the entry's fields and that the referenced item
// exists, returning the entry's nutrition
func (s *LogEntryService) validateEntry(ctx context.Context, e *model.LogEntry) (model.Nutrition, error) {
	var c apperr.Collector
	checkEntryFields(&c, "", e)

	if e.Date.IsZero() {
		e.Date = calendarDay(s.now(), s.loc)
	} else {
		e.Date = time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, time.UTC)
	}
	e.Notes = trimmedPtr(e.Notes)

	if err := c.Err(); err != nil {
		return model.Nutrition{}, err
	}

	n, err := s.resolver.Lookup().Scaled(ctx, ItemRef{Type: e.ItemType, ID: e.ItemID}, e.Grams)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return model.Nutrition{}, apperr.Validationf("%s %s does not exist", e.ItemType, e.ItemID)
		}
		return model.Nutrition{}, err
	}
	return n, nil
}

// CreateEntry validates and stores a log entry. A zero date means today.
func (s *LogEntryService) CreateEntry(ctx context.Context, e *model.LogEntry) (*LogEntryView, error) {
	n, err := s.validateEntry(ctx, e)
	if err != nil {
		return nil, err
	}

	e.ID = uuid.New().String()
	now := s.now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("log entry created",
		zap.String("entry_id", e.ID),
		zap.String("date", e.Date.Format(DateLayout)),
		zap.String("item_type", string(e.ItemType)),
		zap.String("item_id", e.ItemID),
	)
	return &LogEntryView{LogEntry: *e, Nutrition: n}, nil
}

// GetEntry retrieves a log entry with its nutrition
func (s *LogEntryService) GetEntry(ctx context.Context, id string) (*LogEntryView, error) {
	if err := checkID(id, "log entry"); err != nil {
		return nil, err
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.withNutrition(ctx, []model.LogEntry{*e})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListEntries returns entries dated from..to inclusive. An empty to means
// the same day as from.
func (s *LogEntryService) ListEntries(ctx context.Context, from, to string) ([]LogEntryView, error) {
	start, end, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list log entries: %w", err)
	}
	return s.withNutrition(ctx, entries)
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := ParseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end := start
	if strings.TrimSpace(to) != "" {
		if end, err = ParseDate(to); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, apperr.Validation("'to' must not be before 'from'")
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, apperr.Validationf("date range must not exceed %d days", maxRangeDays)
	}
	return start, end, nil
}

func (s *LogEntryService) withNutrition(ctx context.Context, entries []model.LogEntry) ([]LogEntryView, error) {
	lookup := s.resolver.Lookup()
	refs := make([]ItemRef, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, ItemRef{Type: e.ItemType, ID: e.ItemID})
	}
	if err := lookup.Prefetch(ctx, refs); err != nil {
		return nil, err
	}

	views := make([]LogEntryView, 0, len(entries))
	for _, e := range entries {
		n, err := lookup.Scaled(ctx, ItemRef{Type: e.ItemType, ID: e.ItemID}, e.Grams)
		if err != nil {
			return nil, apperr.Integrity(err, fmt.Sprintf("log entry %s references a missing %s", e.ID, e.ItemType))
		}
		views = append(views, LogEntryView{LogEntry: e, Nutrition: n})
	}
	return views, nil
}

// UpdateEntry replaces a log entry's fields
func (s *LogEntryService) UpdateEntry(ctx context.Context, id string, e *model.LogEntry) (*LogEntryView, error) {
	if err := checkID(id, "log entry"); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if e.Date.IsZero() {
		e.Date = existing.Date
	}
	n, err := s.validateEntry(ctx, e)
	if err != nil {
		return nil, err
	}

	e.ID = id
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("log entry updated", zap.String("entry_id", id))
	return &LogEntryView{LogEntry: *e, Nutrition: n}, nil
}

// DeleteEntry removes a log entry
func (s *LogEntryService) DeleteEntry(ctx context.Context, id string) error {
	if err := checkID(id, "log entry"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, audit.Entry{
		OperationType: audit.OperationDelete,
		ResourceType:  audit.ResourceLogEntry,
		ResourceID:    id,
	}); err != nil {
		s.logger.Warn("failed to audit log entry deletion", zap.Error(err), zap.String("entry_id", id))
	}

	s.logger.Info("log entry deleted", zap.String("entry_id", id))
	return nil
}
