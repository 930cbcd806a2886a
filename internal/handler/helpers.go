package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/nutrifast/internal/service"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
)

// Helper functions for type conversions between API types and internal models

func stringPtr(s string) *string {
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intValue(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// dateToTime converts types.Date to a UTC midnight time.Time
func dateToTime(d openapi_types.Date) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func timeToDate(t time.Time) openapi_types.Date {
	return openapi_types.Date{Time: t}
}

func toNutrition(n api.Nutrition) model.Nutrition {
	return model.Nutrition{
		Calories: n.Calories,
		Protein:  n.Protein,
		Fat:      n.Fat,
		Carbs:    n.Carbs,
		Fiber:    n.Fiber,
		Sugars:   n.Sugars,
	}
}

func fromNutrition(n model.Nutrition) api.Nutrition {
	return api.Nutrition{
		Calories: n.Calories,
		Protein:  n.Protein,
		Fat:      n.Fat,
		Carbs:    n.Carbs,
		Fiber:    n.Fiber,
		Sugars:   n.Sugars,
	}
}

func productFromRequest(req *api.ProductRequest) *model.Product {
	return &model.Product{
		Name:            req.Name,
		Per100g:         toNutrition(req.Per100g),
		Category:        stringValue(req.Category),
		ProcessingLevel: stringValue(req.ProcessingLevel),
		GlycemicIndex:   req.GlycemicIndex,
		Region:          stringValue(req.Region),
	}
}

func dishFromRequest(req *api.DishRequest) *model.Dish {
	d := &model.Dish{
		Name:        req.Name,
		Description: stringValue(req.Description),
		Ingredients: make([]model.DishIngredient, 0, len(req.Ingredients)),
	}
	for _, ing := range req.Ingredients {
		d.Ingredients = append(d.Ingredients, model.DishIngredient{ProductID: ing.ProductId, Grams: ing.Grams})
	}
	return d
}

func entryFromRequest(req *api.LogEntryRequest) *model.LogEntry {
	e := &model.LogEntry{
		Meal:     model.MealSlot(req.Meal),
		ItemType: model.ItemType(req.ItemType),
		ItemID:   req.ItemId,
		Grams:    req.Grams,
		Notes:    req.Notes,
	}
	if req.Date != nil {
		e.Date = dateToTime(*req.Date)
	}
	return e
}

func entryResponse(v *service.LogEntryView) api.LogEntryResponse {
	return api.LogEntryResponse{
		Id:        v.ID,
		Date:      timeToDate(v.Date),
		Meal:      string(v.Meal),
		ItemType:  string(v.ItemType),
		ItemId:    v.ItemID,
		Grams:     v.Grams,
		Notes:     v.Notes,
		Nutrition: fromNutrition(v.Nutrition),
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func goalResponse(g *model.FastingGoal) api.GoalResponse {
	return api.GoalResponse{
		Id:              g.ID,
		GoalType:        string(g.GoalType),
		TargetValue:     g.TargetValue,
		PeriodStart:     timeToDate(g.PeriodStart),
		PeriodEnd:       timeToDate(g.PeriodEnd),
		CurrentProgress: g.CurrentProgress,
		PercentComplete: g.PercentComplete,
		Achieved:        g.Achieved,
		CreatedAt:       g.CreatedAt,
	}
}

func profileFromRequest(req *api.ProfileRequest) *model.Profile {
	p := &model.Profile{
		Gender:         model.Gender(req.Gender),
		HeightCM:       req.HeightCm,
		WeightKG:       req.WeightKg,
		ActivityLevel:  model.ActivityLevel(req.ActivityLevel),
		Goal:           model.DietGoal(req.Goal),
		BodyFatPercent: req.BodyFatPercent,
		LeanBodyMassKG: req.LeanBodyMassKg,
	}
	if !req.BirthDate.IsZero() {
		p.BirthDate = dateToTime(req.BirthDate)
	}
	return p
}

func profileResponse(p *model.Profile) api.ProfileResponse {
	return api.ProfileResponse{
		ProfileRequest: api.ProfileRequest{
			Gender:         string(p.Gender),
			BirthDate:      timeToDate(p.BirthDate),
			HeightCm:       p.HeightCM,
			WeightKg:       p.WeightKG,
			ActivityLevel:  string(p.ActivityLevel),
			Goal:           string(p.Goal),
			BodyFatPercent: p.BodyFatPercent,
			LeanBodyMassKg: p.LeanBodyMassKG,
		},
		UpdatedAt: p.UpdatedAt,
	}
}
