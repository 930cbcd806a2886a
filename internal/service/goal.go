package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/internal/repository"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// GoalRepositoryInterface defines fasting goal data access
type GoalRepositoryInterface interface {
	Create(ctx context.Context, g *model.FastingGoal) error
	FindByID(ctx context.Context, id string) (*model.FastingGoal, error)
	List(ctx context.Context) ([]model.FastingGoal, error)
	Delete(ctx context.Context, id string) error
}

// SessionLister lists fasting sessions
type SessionLister interface {
	List(ctx context.Context, filter repository.FastingFilter) ([]model.FastingSession, error)
}

// GoalService manages fasting goals and their derived progress
type GoalService struct {
	repo     GoalRepositoryInterface
	sessions SessionLister
	audit    audit.Recorder
	loc      *time.Location
	now      Clock
	logger   *zap.Logger
}

// NewGoalService creates a new GoalService
func NewGoalService(repo GoalRepositoryInterface, sessions SessionLister, recorder audit.Recorder, loc *time.Location, logger *zap.Logger) *GoalService {
	if loc == nil {
		loc = time.Local
	}
	return &GoalService{
		repo:     repo,
		sessions: sessions,
		audit:    recorder,
		loc:      loc,
		now:      systemClock,
		logger:   logger,
	}
}

func validateGoal(g *model.FastingGoal) error {
	var c apperr.Collector
	c.Check(g.GoalType.Valid(), "goal_type must be one of daily_hours, total_hours, session_count")
	c.Check(!math.IsNaN(g.TargetValue) && !math.IsInf(g.TargetValue, 0) && g.TargetValue > 0, "target_value must be greater than 0")
	c.Check(!g.PeriodStart.IsZero(), "period_start is required")
	c.Check(!g.PeriodEnd.IsZero(), "period_end is required")
	c.Check(!g.PeriodEnd.Before(g.PeriodStart), "period_end must not be before period_start")
	if g.GoalType == model.GoalDailyHours {
		c.Check(g.TargetValue <= 24, "daily_hours target cannot exceed 24")
	}
	return c.Err()
}

// CreateGoal validates and stores a goal, returning it with progress
func (s *GoalService) CreateGoal(ctx context.Context, g *model.FastingGoal) (*model.FastingGoal, error) {
	if err := validateGoal(g); err != nil {
		return nil, err
	}

	g.ID = uuid.New().String()
	g.CreatedAt = s.now().UTC()

	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}

	s.logger.Info("fasting goal created",
		zap.String("goal_id", g.ID),
		zap.String("goal_type", string(g.GoalType)),
		zap.Float64("target", g.TargetValue),
	)

	if err := s.attachProgress(ctx, []*model.FastingGoal{g}); err != nil {
		return nil, err
	}
	return g, nil
}

// GetGoal retrieves a goal with its current progress
func (s *GoalService) GetGoal(ctx context.Context, id string) (*model.FastingGoal, error) {
	if err := checkID(id, "fasting goal"); err != nil {
		return nil, err
	}
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachProgress(ctx, []*model.FastingGoal{g}); err != nil {
		return nil, err
	}
	return g, nil
}

// ListGoals retrieves every goal with its current progress
func (s *GoalService) ListGoals(ctx context.Context) ([]model.FastingGoal, error) {
	goals, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list fasting goals: %w", err)
	}

	ptrs := make([]*model.FastingGoal, len(goals))
	for i := range goals {
		ptrs[i] = &goals[i]
	}
	if err := s.attachProgress(ctx, ptrs); err != nil {
		return nil, err
	}
	return goals, nil
}

// DeleteGoal removes a goal
func (s *GoalService) DeleteGoal(ctx context.Context, id string) error {
	if err := checkID(id, "fasting goal"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, audit.Entry{
		OperationType: audit.OperationDelete,
		ResourceType:  audit.ResourceFastingGoal,
		ResourceID:    id,
	}); err != nil {
		s.logger.Warn("failed to audit goal deletion", zap.Error(err), zap.String("goal_id", id))
	}

	s.logger.Info("fasting goal deleted", zap.String("goal_id", id))
	return nil
}

func (s *GoalService) attachProgress(ctx context.Context, goals []*model.FastingGoal) error {
	if len(goals) == 0 {
		return nil
	}

	completed, err := s.sessions.List(ctx, repository.FastingFilter{Status: model.FastingCompleted})
	if err != nil {
		return fmt.Errorf("failed to load sessions for goal progress: %w", err)
	}

	for _, g := range goals {
		applyProgress(g, completed, s.loc)
	}
	return nil
}

// applyProgress measures completed sessions whose end date falls inside
// the goal period
func applyProgress(g *model.FastingGoal, sessions []model.FastingSession, loc *time.Location) {
	var (
		count int
		hours float64
	)
	for i := range sessions {
		session := &sessions[i]
		if session.Status != model.FastingCompleted || session.EndedAt == nil {
			continue
		}
		day := calendarDay(*session.EndedAt, loc)
		if day.Before(dateOnly(g.PeriodStart)) || day.After(dateOnly(g.PeriodEnd)) {
			continue
		}
		count++
		hours += sessionHours(session)
	}

	switch g.GoalType {
	case model.GoalDailyHours:
		if count > 0 {
			g.CurrentProgress = hours / float64(count)
		}
	case model.GoalTotalHours:
		g.CurrentProgress = hours
	case model.GoalSessionCount:
		g.CurrentProgress = float64(count)
	}

	g.CurrentProgress = round2(g.CurrentProgress)
	g.PercentComplete = round2(math.Min(100, g.CurrentProgress/g.TargetValue*100))
	g.Achieved = g.CurrentProgress >= g.TargetValue
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
