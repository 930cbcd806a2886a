package nutrition

import (
	"fmt"
	"math"
	"time"

	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
)

// activityMultipliers maps activity levels to their TDEE multiplier.
// Also the source of truth for valid activity levels.
var activityMultipliers = map[model.ActivityLevel]float64{
	model.ActivitySedentary:  1.2,
	model.ActivityLight:      1.375,
	model.ActivityModerate:   1.55,
	model.ActivityActive:     1.725,
	model.ActivityVeryActive: 1.9,
}

// MacroSplit is a protein/carbs/fats energy split in percent
type MacroSplit struct {
	Protein float64
	Carbs   float64
	Fats    float64
}

var goalPlans = map[model.DietGoal]struct {
	calorieFactor float64
	split         MacroSplit
}{
	model.GoalWeightLoss:  {0.8, MacroSplit{Protein: 40, Carbs: 30, Fats: 30}},
	model.GoalMaintenance: {1.0, MacroSplit{Protein: 30, Carbs: 40, Fats: 30}},
	model.GoalMuscleGain:  {1.1, MacroSplit{Protein: 30, Carbs: 45, Fats: 25}},
}

// percentTolerance is the allowed drift of the split sum from 100 after rounding
const percentTolerance = 5

// MacroTargets is the derived daily energy and macro plan for a profile
type MacroTargets struct {
	BMR            float64 `json:"bmr"`
	BMRFormula     string  `json:"bmr_formula"`
	TDEE           float64 `json:"tdee"`
	Calories       float64 `json:"calories"`
	ProteinGrams   float64 `json:"protein_grams"`
	CarbsGrams     float64 `json:"carbs_grams"`
	FatsGrams      float64 `json:"fats_grams"`
	ProteinPercent float64 `json:"protein_percent"`
	CarbsPercent   float64 `json:"carbs_percent"`
	FatsPercent    float64 `json:"fats_percent"`
}

// ValidActivityLevel reports whether a is a known activity level
func ValidActivityLevel(a model.ActivityLevel) bool {
	_, ok := activityMultipliers[a]
	return ok
}

// ValidDietGoal reports whether g is a known profile goal
func ValidDietGoal(g model.DietGoal) bool {
	_, ok := goalPlans[g]
	return ok
}

// AgeAt returns completed years between birth and now
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Before(birth.AddDate(age, 0, 0)) {
		age--
	}
	return age
}

// LeanBodyMass returns the known or derivable lean mass in kg
func LeanBodyMass(p *model.Profile) (float64, bool) {
	if p.LeanBodyMassKG != nil && *p.LeanBodyMassKG > 0 {
		return *p.LeanBodyMassKG, true
	}
	if p.BodyFatPercent != nil && *p.BodyFatPercent > 0 && *p.BodyFatPercent < 100 {
		return p.WeightKG * (1 - *p.BodyFatPercent/100), true
	}
	return 0, false
}

// BMR computes basal metabolic rate. Katch-McArdle is used when lean body
// mass is known, Mifflin-St Jeor otherwise.
func BMR(p *model.Profile, now time.Time) (float64, string, error) {
	if lbm, ok := LeanBodyMass(p); ok {
		return 370 + 21.6*lbm, "katch_mcardle", nil
	}

	age := AgeAt(p.BirthDate, now)
	if age < 0 || age > 130 {
		return 0, "", apperr.Validationf("implausible age %d derived from birth date", age)
	}

	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(age)
	switch p.Gender {
	case model.GenderMale:
		bmr += 5
	case model.GenderFemale:
		bmr -= 161
	default:
		return 0, "", apperr.Validationf("unknown gender %q", p.Gender)
	}
	return bmr, "mifflin_st_jeor", nil
}

// CalculateMacroTargets derives BMR, TDEE and the goal-dependent macro plan
func CalculateMacroTargets(p *model.Profile, now time.Time) (*MacroTargets, error) {
	mult, ok := activityMultipliers[p.ActivityLevel]
	if !ok {
		return nil, apperr.Validationf("unknown activity level %q", p.ActivityLevel)
	}
	plan, ok := goalPlans[p.Goal]
	if !ok {
		return nil, apperr.Validationf("unknown goal %q", p.Goal)
	}

	bmr, formula, err := BMR(p, now)
	if err != nil {
		return nil, err
	}

	tdee := bmr * mult
	calories := math.Round(tdee * plan.calorieFactor)

	t := &MacroTargets{
		BMR:            math.Round(bmr),
		BMRFormula:     formula,
		TDEE:           math.Round(tdee),
		Calories:       calories,
		ProteinGrams:   math.Round(calories * plan.split.Protein / 100 / KcalPerGramProtein),
		CarbsGrams:     math.Round(calories * plan.split.Carbs / 100 / KcalPerGramCarbs),
		FatsGrams:      math.Round(calories * plan.split.Fats / 100 / KcalPerGramFat),
		ProteinPercent: plan.split.Protein,
		CarbsPercent:   plan.split.Carbs,
		FatsPercent:    plan.split.Fats,
	}

	if err := t.checkSplit(); err != nil {
		return nil, err
	}
	return t, nil
}

// checkSplit verifies that the rounded gram targets still add up to ~100%
func (t *MacroTargets) checkSplit() error {
	if t.Calories <= 0 {
		return apperr.Validation("derived calorie target must be positive")
	}
	energy := t.ProteinGrams*KcalPerGramProtein + t.CarbsGrams*KcalPerGramCarbs + t.FatsGrams*KcalPerGramFat
	sum := energy / t.Calories * 100
	if math.Abs(sum-100) > percentTolerance {
		return apperr.Internal(fmt.Errorf("macro split sums to %.1f%%", sum), "macro targets are inconsistent")
	}
	return nil
}
