package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
)

func (f *nutritionFixture) product(t *testing.T, name string, per100g model.Nutrition) *model.Product {
	p := &model.Product{Name: name, Per100g: per100g}
	require.NoError(t, f.productSvc.CreateProduct(context.Background(), p))
	return p
}

func TestDishService_CreateDish_ResolvesNutrition(t *testing.T) {
	f := newNutritionFixture()
	oats := f.product(t, "Oats", model.Nutrition{Protein: 13, Fat: 7, Carbs: 60})
	milk := f.product(t, "Milk", model.Nutrition{Calories: 64, Protein: 3.4, Fat: 3.6, Carbs: 4.8})

	v, err := f.dishSvc.CreateDish(context.Background(), &model.Dish{
		Name: "Porridge",
		Ingredients: []model.DishIngredient{
			{ProductID: oats.ID, Grams: 50},
			{ProductID: milk.ID, Grams: 200},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 250.0, v.TotalGrams)
	// oats 50g: 0.5*(52+63+240)=177.5, milk 200g: 128
	assert.InDelta(t, 305.5, v.TotalNutrition.Calories, 1e-9)
	assert.InDelta(t, 305.5/2.5, v.Per100g.Calories, 1e-9)
	assert.Equal(t, 1, v.Ingredients[1].Position)
}

func TestDishService_CreateDish_MissingProducts(t *testing.T) {
	f := newNutritionFixture()
	missing := "11111111-2222-4333-8444-555555555555"

	_, err := f.dishSvc.CreateDish(context.Background(), &model.Dish{
		Name:        "Ghost stew",
		Ingredients: []model.DishIngredient{{ProductID: missing, Grams: 100}},
	})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, apperr.MessagesOf(err), "product "+missing+" does not exist")
}

func TestDishService_CreateDish_Validation(t *testing.T) {
	f := newNutritionFixture()

	_, err := f.dishSvc.CreateDish(context.Background(), &model.Dish{
		Name:        "",
		Ingredients: []model.DishIngredient{{ProductID: "nope", Grams: 0}},
	})

	require.Error(t, err)
	msgs := apperr.MessagesOf(err)
	assert.Contains(t, msgs, "name is required")
	assert.Contains(t, msgs, `ingredients[0]: product_id "nope" is not a valid id`)
	assert.Contains(t, msgs, "ingredients[0]: grams must be greater than 0")
}

func TestDishService_UpdateReplacesIngredients(t *testing.T) {
	f := newNutritionFixture()
	ctx := context.Background()
	a := f.product(t, "A", model.Nutrition{Calories: 100})
	b := f.product(t, "B", model.Nutrition{Calories: 300})

	v, err := f.dishSvc.CreateDish(ctx, &model.Dish{Name: "Mix", Ingredients: []model.DishIngredient{{ProductID: a.ID, Grams: 100}}})
	require.NoError(t, err)

	updated, err := f.dishSvc.UpdateDish(ctx, v.ID, &model.Dish{Name: "Mix", Ingredients: []model.DishIngredient{{ProductID: b.ID, Grams: 50}}})
	require.NoError(t, err)
	assert.Equal(t, 300.0, updated.Per100g.Calories)
	assert.Equal(t, v.CreatedAt, updated.CreatedAt)

	got, err := f.dishSvc.GetDish(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, b.ID, got.Ingredients[0].ProductID)
}

func TestDishService_DeleteDish_Referenced(t *testing.T) {
	f := newNutritionFixture()
	ctx := context.Background()
	a := f.product(t, "A", model.Nutrition{Calories: 100})
	v, err := f.dishSvc.CreateDish(ctx, &model.Dish{Name: "Mix", Ingredients: []model.DishIngredient{{ProductID: a.ID, Grams: 100}}})
	require.NoError(t, err)

	f.dishes.refs = func(string) int { return 3 }
	err = f.dishSvc.DeleteDish(ctx, v.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	f.dishes.refs = nil
	require.NoError(t, f.dishSvc.DeleteDish(ctx, v.ID))
	_, err = f.dishSvc.GetDish(ctx, v.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDishService_RecomputeAll_ReportsBrokenDishes(t *testing.T) {
	f := newNutritionFixture()
	ctx := context.Background()
	a := f.product(t, "A", model.Nutrition{Calories: 123.44})
	_, err := f.dishSvc.CreateDish(ctx, &model.Dish{Name: "Good", Ingredients: []model.DishIngredient{{ProductID: a.ID, Grams: 100}}})
	require.NoError(t, err)

	gone := f.product(t, "Gone", model.Nutrition{Calories: 10})
	_, err = f.dishSvc.CreateDish(ctx, &model.Dish{Name: "Broken", Ingredients: []model.DishIngredient{{ProductID: gone.ID, Grams: 100}}})
	require.NoError(t, err)
	delete(f.products.products, gone.ID)

	report, err := f.dishSvc.RecomputeAll(ctx)

	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.Equal(t, "Broken", report[0].Name)
	assert.Contains(t, report[0].Error, "does not exist")
	assert.Equal(t, "Good", report[1].Name)
	assert.Equal(t, 123.4, report[1].CaloriesPer100g)
}
