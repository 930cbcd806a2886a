package nutrition

import (
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
)

// Energy density per gram of macro
const (
	KcalPerGramProtein = 4
	KcalPerGramCarbs   = 4
	KcalPerGramFat     = 9
)

// Ingredient is one weighted contribution to a composite item
type Ingredient struct {
	Per100g model.Nutrition
	Grams   float64
}

// CaloriesFromMacros returns the energy of the given macro grams
func CaloriesFromMacros(protein, fat, carbs float64) float64 {
	return protein*KcalPerGramProtein + fat*KcalPerGramFat + carbs*KcalPerGramCarbs
}

// EffectiveCalories returns the stored calories, or the macro-derived value
// when the stored value is absent or zero.
func EffectiveCalories(n model.Nutrition) float64 {
	if n.Calories > 0 {
		return n.Calories
	}
	return CaloriesFromMacros(n.Protein, n.Fat, n.Carbs)
}

// Normalize fills in derived calories so they stay consistent with macros
func Normalize(n model.Nutrition) model.Nutrition {
	n.Calories = EffectiveCalories(n)
	return n
}

// Scale converts per-100g values to absolute values for grams.
// grams is validated upstream to be > 0.
func Scale(per100g model.Nutrition, grams float64) model.Nutrition {
	return scaleBy(Normalize(per100g), grams/100)
}

func scaleBy(n model.Nutrition, f float64) model.Nutrition {
	return model.Nutrition{
		Calories: n.Calories * f,
		Protein:  n.Protein * f,
		Fat:      n.Fat * f,
		Carbs:    n.Carbs * f,
		Fiber:    n.Fiber * f,
		Sugars:   n.Sugars * f,
	}
}

// Sum returns the absolute nutrition of all ingredients and their total weight
func Sum(ingredients []Ingredient) (model.Nutrition, float64) {
	var total model.Nutrition
	var grams float64
	for _, ing := range ingredients {
		total = total.Add(Scale(ing.Per100g, ing.Grams))
		grams += ing.Grams
	}
	return total, grams
}

// ResolveDish expresses a composite item as a per-100g equivalent so that it
// scales exactly like a product.
func ResolveDish(ingredients []Ingredient) (model.Nutrition, error) {
	if len(ingredients) == 0 {
		return model.Nutrition{}, apperr.Validation("dish must have at least one ingredient")
	}
	total, grams := Sum(ingredients)
	if grams <= 0 {
		return model.Nutrition{}, apperr.Validation("dish ingredients must weigh more than 0 grams")
	}
	return scaleBy(total, 100/grams), nil
}
