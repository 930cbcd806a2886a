package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// DailyStats is the nutrition consumed on one date
type DailyStats struct {
	Date string `json:"date"`
	model.Nutrition
	EntryCount int                                `json:"entry_count"`
	ByMeal     map[model.MealSlot]model.Nutrition `json:"by_meal"`
}

// WeeklyStats is a seven day rollup ending at the anchor date
type WeeklyStats struct {
	StartDate      string                `json:"start_date"`
	EndDate        string                `json:"end_date"`
	DailyBreakdown map[string]DailyStats `json:"daily_breakdown"`
	Totals         model.Nutrition       `json:"totals"`
	Averages       model.Nutrition       `json:"averages"`
	DaysLogged     int                   `json:"days_logged"`
}

// Days returns the breakdown in chronological order
func (w *WeeklyStats) Days() []DailyStats {
	start, _ := time.Parse(DateLayout, w.StartDate)
	days := make([]DailyStats, 0, len(w.DailyBreakdown))
	for i := 0; i < 7; i++ {
		key := start.AddDate(0, 0, i).Format(DateLayout)
		if d, ok := w.DailyBreakdown[key]; ok {
			days = append(days, d)
		}
	}
	return days
}

// StatsService aggregates log entries into daily and weekly summaries
type StatsService struct {
	entries  LogEntryRepositoryInterface
	resolver *ItemResolver
	loc      *time.Location
	now      Clock
	logger   *zap.Logger
}

// NewStatsService creates a new StatsService
func NewStatsService(entries LogEntryRepositoryInterface, resolver *ItemResolver, loc *time.Location, logger *zap.Logger) *StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{
		entries:  entries,
		resolver: resolver,
		loc:      loc,
		now:      systemClock,
		logger:   logger,
	}
}

// WithClock replaces the time source
func (s *StatsService) WithClock(clock Clock) *StatsService {
	s.now = clock
	return s
}

// Today returns the current calendar date
func (s *StatsService) Today() time.Time {
	return calendarDay(s.now(), s.loc)
}

func (s *StatsService) parsePastDate(date string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	if d.After(s.Today()) {
		return time.Time{}, apperr.Validationf("no stats for future date %s", date)
	}
	return d, nil
}

// DailyStats sums the nutrition of every entry on date. A day without
// entries yields zero totals.
func (s *StatsService) DailyStats(ctx context.Context, date string) (*DailyStats, error) {
	day, err := s.parsePastDate(date)
	if err != nil {
		return nil, err
	}

	byDay, err := s.aggregate(ctx, day, day)
	if err != nil {
		return nil, err
	}

	stats := byDay[day.Format(DateLayout)]
	s.logger.Info("daily stats computed",
		zap.String("date", stats.Date),
		zap.Int("entries", stats.EntryCount),
		zap.Float64("calories", stats.Calories),
	)
	return &stats, nil
}

// WeeklyStats rolls up anchor-6 through anchor. Totals are the sum of the
// daily breakdown and averages divide by seven.
func (s *StatsService) WeeklyStats(ctx context.Context, anchor string) (*WeeklyStats, error) {
	end, err := s.parsePastDate(anchor)
	if err != nil {
		return nil, err
	}
	start := end.AddDate(0, 0, -6)

	byDay, err := s.aggregate(ctx, start, end)
	if err != nil {
		return nil, err
	}

	week := &WeeklyStats{
		StartDate:      start.Format(DateLayout),
		EndDate:        end.Format(DateLayout),
		DailyBreakdown: byDay,
	}
	for _, day := range byDay {
		week.Totals = week.Totals.Add(day.Nutrition)
		if day.EntryCount > 0 {
			week.DaysLogged++
		}
	}
	week.Totals = roundNutrition(week.Totals)
	week.Averages = roundNutrition(scaleNutrition(week.Totals, 1.0/7))

	s.logger.Info("weekly stats computed",
		zap.String("start", week.StartDate),
		zap.String("end", week.EndDate),
		zap.Int("days_logged", week.DaysLogged),
	)
	return week, nil
}

// aggregate builds a DailyStats for every date in from..to, resolving each
// referenced item once
func (s *StatsService) aggregate(ctx context.Context, from, to time.Time) (map[string]DailyStats, error) {
	entries, err := s.entries.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load log entries: %w", err)
	}

	lookup := s.resolver.Lookup()
	refs := make([]ItemRef, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, ItemRef{Type: e.ItemType, ID: e.ItemID})
	}
	if err := lookup.Prefetch(ctx, refs); err != nil {
		return nil, err
	}

	byDay := make(map[string]DailyStats)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(DateLayout)
		byDay[key] = DailyStats{Date: key, ByMeal: emptyMeals()}
	}

	for _, e := range entries {
		n, err := lookup.Scaled(ctx, ItemRef{Type: e.ItemType, ID: e.ItemID}, e.Grams)
		if err != nil {
			s.logger.Error("log entry references a missing item",
				zap.Error(err),
				zap.String("entry_id", e.ID),
				zap.String("item_type", string(e.ItemType)),
				zap.String("item_id", e.ItemID),
			)
			return nil, apperr.Integrity(err, fmt.Sprintf("log entry %s references a missing %s", e.ID, e.ItemType))
		}

		key := e.Date.Format(DateLayout)
		day, ok := byDay[key]
		if !ok {
			continue
		}
		day.Nutrition = day.Nutrition.Add(n)
		day.ByMeal[e.Meal] = day.ByMeal[e.Meal].Add(n)
		day.EntryCount++
		byDay[key] = day
	}

	for key, day := range byDay {
		day.Nutrition = roundNutrition(day.Nutrition)
		for meal, n := range day.ByMeal {
			day.ByMeal[meal] = roundNutrition(n)
		}
		byDay[key] = day
	}

	return byDay, nil
}

func emptyMeals() map[model.MealSlot]model.Nutrition {
	meals := make(map[model.MealSlot]model.Nutrition, len(model.MealSlots))
	for _, m := range model.MealSlots {
		meals[m] = model.Nutrition{}
	}
	return meals
}

func scaleNutrition(n model.Nutrition, f float64) model.Nutrition {
	return model.Nutrition{
		Calories: n.Calories * f,
		Protein:  n.Protein * f,
		Fat:      n.Fat * f,
		Carbs:    n.Carbs * f,
		Fiber:    n.Fiber * f,
		Sugars:   n.Sugars * f,
	}
}

func roundNutrition(n model.Nutrition) model.Nutrition {
	r := func(v float64) float64 { return math.Round(v*100) / 100 }
	return model.Nutrition{
		Calories: r(n.Calories),
		Protein:  r(n.Protein),
		Fat:      r(n.Fat),
		Carbs:    r(n.Carbs),
		Fiber:    r(n.Fiber),
		Sugars:   r(n.Sugars),
	}
}
