package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/nutrition"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// ProfileRepositoryInterface defines profile data access
type ProfileRepositoryInterface interface {
	Get(ctx context.Context) (*model.Profile, error)
	Upsert(ctx context.Context, p *model.Profile) error
}

// ProfileService manages the singleton profile and its derived targets
type ProfileService struct {
	repo   ProfileRepositoryInterface
	now    Clock
	logger *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(repo ProfileRepositoryInterface, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		now:    systemClock,
		logger: logger,
	}
}

// WithClock replaces the time source
func (s *ProfileService) WithClock(clock Clock) *ProfileService {
	s.now = clock
	return s
}

func (s *ProfileService) validateProfile(p *model.Profile) error {
	return validateProfile(p, s.now())
}

// validateProfile normalizes the enum fields of p and checks it, judging the
// birth date against now
func validateProfile(p *model.Profile, now time.Time) error {
	var c apperr.Collector

	p.Gender = model.Gender(strings.ToLower(strings.TrimSpace(string(p.Gender))))
	p.ActivityLevel = model.ActivityLevel(strings.ToLower(strings.TrimSpace(string(p.ActivityLevel))))
	p.Goal = model.DietGoal(strings.ToLower(strings.TrimSpace(string(p.Goal))))

	c.Check(p.Gender == model.GenderMale || p.Gender == model.GenderFemale, "gender must be male or female")
	c.Check(nutrition.ValidActivityLevel(p.ActivityLevel),
		"activity_level must be one of sedentary, light, moderate, active, very_active")
	c.Check(nutrition.ValidDietGoal(p.Goal), "goal must be one of weight_loss, maintenance, muscle_gain")
	c.Check(finite(p.HeightCM) && p.HeightCM > 0 && p.HeightCM < 300, "height_cm must be between 0 and 300")
	c.Check(finite(p.WeightKG) && p.WeightKG > 0 && p.WeightKG < 700, "weight_kg must be between 0 and 700")

	if p.BirthDate.IsZero() {
		c.Addf("birth_date is required")
	} else {
		p.BirthDate = dateOnly(p.BirthDate)
		age := nutrition.AgeAt(p.BirthDate, now)
		c.Check(age >= 0 && age <= 130, "birth_date implies an implausible age of %d", age)
	}

	if p.BodyFatPercent != nil {
		c.Check(finite(*p.BodyFatPercent) && *p.BodyFatPercent > 0 && *p.BodyFatPercent < 100,
			"body_fat_percent must be between 0 and 100")
	}
	if p.LeanBodyMassKG != nil {
		c.Check(finite(*p.LeanBodyMassKG) && *p.LeanBodyMassKG > 0 && *p.LeanBodyMassKG <= p.WeightKG,
			"lean_body_mass_kg must be positive and not exceed weight_kg")
	}

	return c.Err()
}

// GetProfile returns the stored profile
func (s *ProfileService) GetProfile(ctx context.Context) (*model.Profile, error) {
	return s.repo.Get(ctx)
}

// PutProfile validates and replaces the singleton profile
func (s *ProfileService) PutProfile(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	if err := s.validateProfile(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("profile saved",
		zap.String("goal", string(p.Goal)),
		zap.String("activity_level", string(p.ActivityLevel)),
	)
	return p, nil
}

// Targets derives the daily calorie and macro plan from the stored profile
func (s *ProfileService) Targets(ctx context.Context) (*nutrition.MacroTargets, error) {
	p, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	targets, err := nutrition.CalculateMacroTargets(p, s.now())
	if err != nil {
		s.logger.Error("failed to derive macro targets", zap.Error(err))
		return nil, err
	}
	return targets, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
