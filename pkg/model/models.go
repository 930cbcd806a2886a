package model

import "time"

// Nutrition holds macro values. Depending on context these are either
// per-100g values or absolute values for a given quantity.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Fiber    float64 `json:"fiber"`
	Sugars   float64 `json:"sugars"`
}

// Add returns the field-wise sum of n and o
func (n Nutrition) Add(o Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Fat:      n.Fat + o.Fat,
		Carbs:    n.Carbs + o.Carbs,
		Fiber:    n.Fiber + o.Fiber,
		Sugars:   n.Sugars + o.Sugars,
	}
}

// Product represents a base food item with per-100g nutrition values
type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Per100g         Nutrition `json:"per_100g"`
	Category        string    `json:"category,omitempty"`
	ProcessingLevel string    `json:"processing_level,omitempty"`
	GlycemicIndex   *int      `json:"glycemic_index,omitempty"`
	Region          string    `json:"region,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DishIngredient is one weighted product reference inside a dish
type DishIngredient struct {
	ProductID string  `json:"product_id"`
	Grams     float64 `json:"grams"`
	Position  int     `json:"position"`
}

// Dish represents a composite food item made of weighted products
type Dish struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Ingredients []DishIngredient `json:"ingredients"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// TotalGrams returns the summed weight of all ingredients
func (d *Dish) TotalGrams() float64 {
	var total float64
	for _, ing := range d.Ingredients {
		total += ing.Grams
	}
	return total
}

// MealSlot represents the meal a log entry belongs to
type MealSlot string

const (
	MealBreakfast MealSlot = "breakfast"
	MealLunch     MealSlot = "lunch"
	MealDinner    MealSlot = "dinner"
	MealSnack     MealSlot = "snack"
)

// MealSlots lists every valid meal slot in display order
var MealSlots = []MealSlot{MealBreakfast, MealLunch, MealDinner, MealSnack}

// Valid reports whether m is one of the known meal slots
func (m MealSlot) Valid() bool {
	for _, s := range MealSlots {
		if s == m {
			return true
		}
	}
	return false
}

// ItemType discriminates what a log entry's item id refers to
type ItemType string

const (
	ItemProduct ItemType = "product"
	ItemDish    ItemType = "dish"
)

// Valid reports whether t is a known item type
func (t ItemType) Valid() bool {
	return t == ItemProduct || t == ItemDish
}

// LogEntry records consumption of a product or dish on a date
type LogEntry struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Meal      MealSlot  `json:"meal"`
	ItemType  ItemType  `json:"item_type"`
	ItemID    string    `json:"item_id"`
	Grams     float64   `json:"grams"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FastingStatus represents the lifecycle state of a fasting session
type FastingStatus string

const (
	FastingActive    FastingStatus = "active"
	FastingPaused    FastingStatus = "paused"
	FastingCompleted FastingStatus = "completed"
	FastingCancelled FastingStatus = "cancelled"
)

// Open reports whether the status still counts against the single-session limit
func (s FastingStatus) Open() bool {
	return s == FastingActive || s == FastingPaused
}

// Valid reports whether s is a known status
func (s FastingStatus) Valid() bool {
	switch s {
	case FastingActive, FastingPaused, FastingCompleted, FastingCancelled:
		return true
	}
	return false
}

// FastingSession is a tracked interval of intermittent fasting
type FastingSession struct {
	ID            string        `json:"id"`
	FastingType   string        `json:"fasting_type"`
	StartedAt     time.Time     `json:"started_at"`
	EndedAt       *time.Time    `json:"ended_at,omitempty"`
	Status        FastingStatus `json:"status"`
	Notes         *string       `json:"notes,omitempty"`
	PausedAt      *time.Time    `json:"paused_at,omitempty"`
	PausedSeconds float64       `json:"paused_seconds"`
	DurationHours *float64      `json:"duration_hours,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// GoalType identifies how a fasting goal's progress is measured
type GoalType string

const (
	GoalDailyHours   GoalType = "daily_hours"
	GoalTotalHours   GoalType = "total_hours"
	GoalSessionCount GoalType = "session_count"
)

// Valid reports whether g is a known goal type
func (g GoalType) Valid() bool {
	return g == GoalDailyHours || g == GoalTotalHours || g == GoalSessionCount
}

// FastingGoal is a target measured over completed sessions in a period
type FastingGoal struct {
	ID              string    `json:"id"`
	GoalType        GoalType  `json:"goal_type"`
	TargetValue     float64   `json:"target_value"`
	PeriodStart     time.Time `json:"period_start"`
	PeriodEnd       time.Time `json:"period_end"`
	CurrentProgress float64   `json:"current_progress"`
	PercentComplete float64   `json:"percent_complete"`
	Achieved        bool      `json:"achieved"`
	CreatedAt       time.Time `json:"created_at"`
}

// Gender is the sex used by the BMR formulas
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ActivityLevel is the closed set of activity multipliers
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// DietGoal is the closed set of profile goals
type DietGoal string

const (
	GoalWeightLoss  DietGoal = "weight_loss"
	GoalMaintenance DietGoal = "maintenance"
	GoalMuscleGain  DietGoal = "muscle_gain"
)

// Profile is the singleton user profile of an installation
type Profile struct {
	Gender         Gender        `json:"gender"`
	BirthDate      time.Time     `json:"birth_date"`
	HeightCM       float64       `json:"height_cm"`
	WeightKG       float64       `json:"weight_kg"`
	ActivityLevel  ActivityLevel `json:"activity_level"`
	Goal           DietGoal      `json:"goal"`
	BodyFatPercent *float64      `json:"body_fat_percent,omitempty"`
	LeanBodyMassKG *float64      `json:"lean_body_mass_kg,omitempty"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Snapshot is a full export of every stored entity
type Snapshot struct {
	Version         int              `json:"version"`
	CreatedAt       time.Time        `json:"created_at"`
	Products        []Product        `json:"products"`
	Dishes          []Dish           `json:"dishes"`
	LogEntries      []LogEntry       `json:"log_entries"`
	FastingSessions []FastingSession `json:"fasting_sessions"`
	FastingGoals    []FastingGoal    `json:"fasting_goals"`
	Profile         *Profile         `json:"profile,omitempty"`
}
