package api

import (
	"encoding/json"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Messages []string `json:"messages,omitempty"`
	Details  *string  `json:"details,omitempty"`
}

// LoginRequest defines model for LoginRequest.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse defines model for TokenResponse.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Nutrition defines model for Nutrition.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Fiber    float64 `json:"fiber"`
	Sugars   float64 `json:"sugars"`
}

// ProductRequest defines model for ProductRequest.
type ProductRequest struct {
	Name            string    `json:"name"`
	Per100g         Nutrition `json:"per_100g"`
	Category        *string   `json:"category,omitempty"`
	ProcessingLevel *string   `json:"processing_level,omitempty"`
	GlycemicIndex   *int      `json:"glycemic_index,omitempty"`
	Region          *string   `json:"region,omitempty"`
}

// ProductImportRequest defines model for ProductImportRequest.
type ProductImportRequest struct {
	Products []ProductRequest `json:"products"`
}

// DishIngredientRequest defines model for DishIngredientRequest.
type DishIngredientRequest struct {
	ProductId string  `json:"product_id"`
	Grams     float64 `json:"grams"`
}

// DishRequest defines model for DishRequest.
type DishRequest struct {
	Name        string                  `json:"name"`
	Description *string                 `json:"description,omitempty"`
	Ingredients []DishIngredientRequest `json:"ingredients"`
}

// LogEntryRequest defines model for LogEntryRequest.
type LogEntryRequest struct {
	Date     *openapi_types.Date `json:"date,omitempty"`
	Meal     string              `json:"meal"`
	ItemType string              `json:"item_type"`
	ItemId   string              `json:"item_id"`
	Grams    float64             `json:"grams"`
	Notes    *string             `json:"notes,omitempty"`
}

// LogEntryResponse defines model for LogEntryResponse.
type LogEntryResponse struct {
	Id        string             `json:"id"`
	Date      openapi_types.Date `json:"date"`
	Meal      string             `json:"meal"`
	ItemType  string             `json:"item_type"`
	ItemId    string             `json:"item_id"`
	Grams     float64            `json:"grams"`
	Notes     *string            `json:"notes,omitempty"`
	Nutrition Nutrition          `json:"nutrition"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// StartFastingRequest defines model for StartFastingRequest.
type StartFastingRequest struct {
	FastingType string  `json:"fasting_type"`
	Notes       *string `json:"notes,omitempty"`
}

// ResumeFastingRequest defines model for ResumeFastingRequest.
type ResumeFastingRequest struct {
	SessionId string `json:"session_id"`
}

// SessionNotesRequest defines model for SessionNotesRequest.
type SessionNotesRequest struct {
	Notes *string `json:"notes"`
}

// FastingType defines model for FastingType.
type FastingType struct {
	Name        string  `json:"name"`
	TargetHours float64 `json:"target_hours"`
}

// GoalRequest defines model for GoalRequest.
type GoalRequest struct {
	GoalType    string             `json:"goal_type"`
	TargetValue float64            `json:"target_value"`
	PeriodStart openapi_types.Date `json:"period_start"`
	PeriodEnd   openapi_types.Date `json:"period_end"`
}

// GoalResponse defines model for GoalResponse.
type GoalResponse struct {
	Id              string             `json:"id"`
	GoalType        string             `json:"goal_type"`
	TargetValue     float64            `json:"target_value"`
	PeriodStart     openapi_types.Date `json:"period_start"`
	PeriodEnd       openapi_types.Date `json:"period_end"`
	CurrentProgress float64            `json:"current_progress"`
	PercentComplete float64            `json:"percent_complete"`
	Achieved        bool               `json:"achieved"`
	CreatedAt       time.Time          `json:"created_at"`
}

// ProfileRequest defines model for ProfileRequest.
type ProfileRequest struct {
	Gender         string             `json:"gender"`
	BirthDate      openapi_types.Date `json:"birth_date"`
	HeightCm       float64            `json:"height_cm"`
	WeightKg       float64            `json:"weight_kg"`
	ActivityLevel  string             `json:"activity_level"`
	Goal           string             `json:"goal"`
	BodyFatPercent *float64           `json:"body_fat_percent,omitempty"`
	LeanBodyMassKg *float64           `json:"lean_body_mass_kg,omitempty"`
}

// ProfileResponse defines model for ProfileResponse.
type ProfileResponse struct {
	ProfileRequest
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskRequest defines model for TaskRequest.
type TaskRequest struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// BackupObject defines model for BackupObject.
type BackupObject struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Encrypted  bool      `json:"encrypted"`
	ModifiedAt time.Time `json:"modified_at"`
}

// RestoreResponse defines model for RestoreResponse.
type RestoreResponse struct {
	Name     string         `json:"name"`
	Restored map[string]int `json:"restored"`
}

// AuditEntry defines model for AuditEntry.
type AuditEntry struct {
	UserId        string    `json:"user_id"`
	OperationType string    `json:"operation_type"`
	ResourceType  string    `json:"resource_type"`
	ResourceId    string    `json:"resource_id"`
	Timestamp     time.Time `json:"timestamp"`
	IpAddress     string    `json:"ip_address,omitempty"`
	UserAgent     string    `json:"user_agent,omitempty"`
}

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status   string  `json:"status"`
	Database string  `json:"database"`
	Service  string  `json:"service"`
	Version  string  `json:"version"`
	Error    *string `json:"error,omitempty"`
}

// GetApiV1ProductsParams defines parameters for GetApiV1Products.
type GetApiV1ProductsParams struct {
	Search   *string `form:"search,omitempty" json:"search,omitempty"`
	Category *string `form:"category,omitempty" json:"category,omitempty"`
	Limit    *int    `form:"limit,omitempty" json:"limit,omitempty"`
	Offset   *int    `form:"offset,omitempty" json:"offset,omitempty"`
}

// GetApiV1EntriesParams defines parameters for GetApiV1Entries.
type GetApiV1EntriesParams struct {
	Date *string `form:"date,omitempty" json:"date,omitempty"`
	From *string `form:"from,omitempty" json:"from,omitempty"`
	To   *string `form:"to,omitempty" json:"to,omitempty"`
}

// StatsParams defines the anchor date parameter shared by the stats
// operations.
type StatsParams struct {
	Date *string `form:"date,omitempty" json:"date,omitempty"`
}

// GetApiV1FastingSessionsParams defines parameters for GetApiV1FastingSessions.
type GetApiV1FastingSessionsParams struct {
	Status *string    `form:"status,omitempty" json:"status,omitempty"`
	From   *time.Time `form:"from,omitempty" json:"from,omitempty"`
	To     *time.Time `form:"to,omitempty" json:"to,omitempty"`
	Limit  *int       `form:"limit,omitempty" json:"limit,omitempty"`
}

// GetApiV1FastingGkiParams defines parameters for GetApiV1FastingGki.
type GetApiV1FastingGkiParams struct {
	Glucose     float64 `form:"glucose" json:"glucose"`
	Ketones     float64 `form:"ketones" json:"ketones"`
	GlucoseUnit *string `form:"glucose_unit,omitempty" json:"glucose_unit,omitempty"`
}

// GetApiV1AdminAuditParams defines parameters for GetApiV1AdminAudit.
type GetApiV1AdminAuditParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}
