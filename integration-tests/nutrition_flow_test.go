package integration_tests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
)

type idResponse struct {
	ID string `json:"id"`
}

func TestNutritionFlowIntegration(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("token is required", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/products", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	var oats, milk idResponse
	env.do("POST", "/api/v1/products", map[string]any{
		"name":     "Oats",
		"per_100g": map[string]float64{"calories": 389, "protein": 16.9, "fat": 6.9, "carbs": 66.3, "fiber": 10.6},
		"category": "grain",
	}, http.StatusCreated, &oats)
	env.do("POST", "/api/v1/products", map[string]any{
		"name":     "Milk",
		"per_100g": map[string]float64{"calories": 64, "protein": 3.3, "fat": 3.6, "carbs": 4.8, "sugars": 4.8},
	}, http.StatusCreated, &milk)

	t.Run("duplicate product name conflicts", func(t *testing.T) {
		w := env.raw("POST", "/api/v1/products", map[string]any{"name": "oats", "per_100g": map[string]float64{"calories": 1}})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	var porridge struct {
		ID         string        `json:"id"`
		TotalGrams float64       `json:"total_grams"`
		Per100g    api.Nutrition `json:"nutrition_per_100g"`
	}
	env.do("POST", "/api/v1/dishes", map[string]any{
		"name": "Porridge",
		"ingredients": []map[string]any{
			{"product_id": milk.ID, "grams": 250},
			{"product_id": oats.ID, "grams": 60},
		},
	}, http.StatusCreated, &porridge)
	assert.Equal(t, 310.0, porridge.TotalGrams)
	assert.InDelta(t, 393.4/310*100, porridge.Per100g.Calories, 1e-6)

	var entry api.LogEntryResponse
	env.do("POST", "/api/v1/entries", map[string]any{
		"meal":      "breakfast",
		"item_type": "dish",
		"item_id":   porridge.ID,
		"grams":     310,
	}, http.StatusCreated, &entry)
	assert.InDelta(t, 393.4, entry.Nutrition.Calories, 1e-6)
	assert.Equal(t, today(), entry.Date.String())

	t.Run("entry for a missing item is rejected", func(t *testing.T) {
		w := env.raw("POST", "/api/v1/entries", map[string]any{
			"meal": "lunch", "item_type": "product", "item_id": porridge.ID, "grams": 100,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	var daily struct {
		Date       string  `json:"date"`
		Calories   float64 `json:"calories"`
		EntryCount int     `json:"entry_count"`
	}
	env.do("GET", "/api/v1/stats/daily", nil, http.StatusOK, &daily)
	assert.Equal(t, today(), daily.Date)
	assert.Equal(t, 1, daily.EntryCount)
	assert.InDelta(t, 393.4, daily.Calories, 0.01)

	var weekly struct {
		DaysLogged int `json:"days_logged"`
		Totals     api.Nutrition
	}
	env.do("GET", "/api/v1/stats/weekly?date="+today(), nil, http.StatusOK, &weekly)
	assert.Equal(t, 1, weekly.DaysLogged)

	t.Run("referenced items cannot be deleted", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, env.raw("DELETE", "/api/v1/dishes/"+porridge.ID, nil).Code)
		assert.Equal(t, http.StatusConflict, env.raw("DELETE", "/api/v1/products/"+oats.ID, nil).Code)
	})

	t.Run("malformed ids are not found", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, env.raw("GET", "/api/v1/products/not-a-uuid", nil).Code)
		assert.Equal(t, http.StatusNotFound, env.raw("GET", "/api/v1/entries/not-a-uuid", nil).Code)
	})

	env.do("DELETE", "/api/v1/entries/"+entry.Id, nil, http.StatusNoContent, nil)
	env.do("DELETE", "/api/v1/dishes/"+porridge.ID, nil, http.StatusNoContent, nil)
	env.do("DELETE", "/api/v1/products/"+oats.ID, nil, http.StatusNoContent, nil)

	var products []idResponse
	env.do("GET", "/api/v1/products", nil, http.StatusOK, &products)
	require.Len(t, products, 1)
	assert.Equal(t, milk.ID, products[0].ID)
}
