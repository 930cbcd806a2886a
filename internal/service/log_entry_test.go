package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
)

func TestLogEntryService_CreateEntry_DefaultsToToday(t *testing.T) {
	f := newNutritionFixture()
	p := f.product(t, "Apple", model.Nutrition{Calories: 52})

	v, err := f.entrySvc.CreateEntry(context.Background(), &model.LogEntry{
		Meal:     "Snack",
		ItemType: model.ItemProduct,
		ItemID:   p.ID,
		Grams:    150,
	})

	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", v.Date.Format(DateLayout))
	assert.Equal(t, model.MealSnack, v.Meal)
	assert.InDelta(t, 78, v.Nutrition.Calories, 1e-9)
}

func TestLogEntryService_CreateEntry_Validation(t *testing.T) {
	f := newNutritionFixture()

	_, err := f.entrySvc.CreateEntry(context.Background(), &model.LogEntry{
		Meal:     "brunch",
		ItemType: "recipe",
		ItemID:   "x",
		Grams:    -5,
	})

	require.Error(t, err)
	msgs := apperr.MessagesOf(err)
	assert.Contains(t, msgs, "meal must be one of breakfast, lunch, dinner, snack")
	assert.Contains(t, msgs, "item_type must be product or dish")
	assert.Contains(t, msgs, "grams must be greater than 0")
	assert.Contains(t, msgs, `item_id "x" is not a valid id`)
}

func TestLogEntryService_CreateEntry_MissingItem(t *testing.T) {
	f := newNutritionFixture()
	missing := "11111111-2222-4333-8444-555555555555"

	_, err := f.entrySvc.CreateEntry(context.Background(), &model.LogEntry{
		Meal:     model.MealLunch,
		ItemType: model.ItemDish,
		ItemID:   missing,
		Grams:    100,
	})

	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "dish "+missing+" does not exist")
}

func TestLogEntryService_ListEntries_Range(t *testing.T) {
	f := newNutritionFixture()
	ctx := context.Background()
	p := f.product(t, "Bread", model.Nutrition{Calories: 250})

	for _, day := range []int{15, 16, 18} {
		_, err := f.entrySvc.CreateEntry(ctx, &model.LogEntry{
			Date:     time.Date(2026, 10, day, 0, 0, 0, 0, time.UTC),
			Meal:     model.MealBreakfast,
			ItemType: model.ItemProduct,
			ItemID:   p.ID,
			Grams:    40,
		})
		require.NoError(t, err)
	}

	views, err := f.entrySvc.ListEntries(ctx, "2026-10-16", "2026-10-18")
	require.NoError(t, err)
	assert.Len(t, views, 2)

	views, err = f.entrySvc.ListEntries(ctx, "2026-10-15", "")
	require.NoError(t, err)
	assert.Len(t, views, 1)
	assert.InDelta(t, 100, views[0].Nutrition.Calories, 1e-9)
}

func TestLogEntryService_ListEntries_BadRange(t *testing.T) {
	f := newNutritionFixture()
	ctx := context.Background()

	tests := []struct {
		name     string
		from, to string
	}{
		{"malformed", "18/10/2026", ""},
		{"reversed", "2026-10-18", "2026-10-01"},
		{"too long", "2024-01-01", "2026-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.entrySvc.ListEntries(ctx, tt.from, tt.to)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}
}

func TestLogEntryService_UpdateKeepsDate(t *testing.T) {
	f := newNutritionFixture()
	ctx := context.Background()
	p := f.product(t, "Rice", model.Nutrition{Calories: 130})

	v, err := f.entrySvc.CreateEntry(ctx, &model.LogEntry{
		Date:     time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC),
		Meal:     model.MealDinner,
		ItemType: model.ItemProduct,
		ItemID:   p.ID,
		Grams:    100,
	})
	require.NoError(t, err)

	updated, err := f.entrySvc.UpdateEntry(ctx, v.ID, &model.LogEntry{
		Meal:     model.MealLunch,
		ItemType: model.ItemProduct,
		ItemID:   p.ID,
		Grams:    200,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-10", updated.Date.Format(DateLayout))
	assert.InDelta(t, 260, updated.Nutrition.Calories, 1e-9)
}

func TestLogEntryService_DeleteEntry(t *testing.T) {
	f := newNutritionFixture()
	ctx := context.Background()
	p := f.product(t, "Rice", model.Nutrition{Calories: 130})

	v, err := f.entrySvc.CreateEntry(ctx, &model.LogEntry{Meal: model.MealDinner, ItemType: model.ItemProduct, ItemID: p.ID, Grams: 100})
	require.NoError(t, err)

	require.NoError(t, f.entrySvc.DeleteEntry(ctx, v.ID))
	assert.Equal(t, []audit.OperationType{audit.OperationDelete}, f.audit.operations())

	err = f.entrySvc.DeleteEntry(ctx, v.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
