package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

type fakeGoalRepo struct {
	mu    sync.Mutex
	goals map[string]model.FastingGoal
}

func (r *fakeGoalRepo) Create(ctx context.Context, g *model.FastingGoal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.goals[g.ID] = *g
	return nil
}

func (r *fakeGoalRepo) FindByID(ctx context.Context, id string) (*model.FastingGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	if !ok {
		return nil, apperr.NotFoundf("fasting goal %s not found", id)
	}
	return &g, nil
}

func (r *fakeGoalRepo) List(ctx context.Context) ([]model.FastingGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	goals := []model.FastingGoal{}
	for _, g := range r.goals {
		goals = append(goals, g)
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].CreatedAt.Before(goals[j].CreatedAt) })
	return goals, nil
}

func (r *fakeGoalRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.goals[id]; !ok {
		return apperr.NotFoundf("fasting goal %s not found", id)
	}
	delete(r.goals, id)
	return nil
}

func completedSession(id string, start time.Time, hours float64) model.FastingSession {
	end := start.Add(time.Duration(hours * float64(time.Hour)))
	return model.FastingSession{
		ID:            id,
		FastingType:   "16:8",
		StartedAt:     start,
		EndedAt:       &end,
		Status:        model.FastingCompleted,
		DurationHours: &hours,
	}
}

func newTestGoalService(sessions ...model.FastingSession) *GoalService {
	repo := newFakeFastingRepo()
	for _, s := range sessions {
		repo.sessions[s.ID] = s
	}
	clock := &testClock{t: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
	svc := NewGoalService(&fakeGoalRepo{goals: map[string]model.FastingGoal{}}, repo, audit.Nop{}, time.UTC, zap.NewNop())
	svc.now = clock.now
	return svc
}

func day(d int) time.Time {
	return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC)
}

func TestGoalService_Progress(t *testing.T) {
	sessions := []model.FastingSession{
		completedSession("a", time.Date(2026, 10, 10, 20, 0, 0, 0, time.UTC), 16),
		completedSession("b", time.Date(2026, 10, 12, 20, 0, 0, 0, time.UTC), 18),
		completedSession("c", time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC), 20), // before period
	}
	cancelled := completedSession("d", time.Date(2026, 10, 13, 20, 0, 0, 0, time.UTC), 10)
	cancelled.Status = model.FastingCancelled
	sessions = append(sessions, cancelled)

	tests := []struct {
		name     string
		goalType model.GoalType
		target   float64
		progress float64
		percent  float64
		achieved bool
	}{
		{"daily hours", model.GoalDailyHours, 16, 17, 100, true},
		{"total hours", model.GoalTotalHours, 68, 34, 50, false},
		{"session count", model.GoalSessionCount, 4, 2, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestGoalService(sessions...)

			g, err := svc.CreateGoal(context.Background(), &model.FastingGoal{
				GoalType:    tt.goalType,
				TargetValue: tt.target,
				PeriodStart: day(5),
				PeriodEnd:   day(18),
			})

			require.NoError(t, err)
			assert.Equal(t, tt.progress, g.CurrentProgress)
			assert.Equal(t, tt.percent, g.PercentComplete)
			assert.Equal(t, tt.achieved, g.Achieved)
		})
	}
}

func TestGoalService_CreateGoal_Validation(t *testing.T) {
	svc := newTestGoalService()

	_, err := svc.CreateGoal(context.Background(), &model.FastingGoal{
		GoalType:    "weekly_magic",
		TargetValue: 0,
		PeriodStart: day(10),
		PeriodEnd:   day(5),
	})

	require.Error(t, err)
	msgs := apperr.MessagesOf(err)
	assert.Contains(t, msgs, "goal_type must be one of daily_hours, total_hours, session_count")
	assert.Contains(t, msgs, "target_value must be greater than 0")
	assert.Contains(t, msgs, "period_end must not be before period_start")
}

func TestGoalService_ListAndDelete(t *testing.T) {
	svc := newTestGoalService(completedSession("a", time.Date(2026, 10, 10, 20, 0, 0, 0, time.UTC), 16))
	ctx := context.Background()

	g, err := svc.CreateGoal(ctx, &model.FastingGoal{GoalType: model.GoalSessionCount, TargetValue: 1, PeriodStart: day(1), PeriodEnd: day(31)})
	require.NoError(t, err)

	goals, err := svc.ListGoals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.True(t, goals[0].Achieved)

	require.NoError(t, svc.DeleteGoal(ctx, g.ID))
	_, err = svc.GetGoal(ctx, g.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
