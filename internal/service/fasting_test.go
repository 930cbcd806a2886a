package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/internal/repository"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// fakeFastingRepo keeps sessions in memory. RunLocked works on a copy and
// only publishes it when fn succeeds, mirroring transaction rollback.
type fakeFastingRepo struct {
	mu       sync.Mutex
	sessions map[string]model.FastingSession
}

func newFakeFastingRepo() *fakeFastingRepo {
	return &fakeFastingRepo{sessions: map[string]model.FastingSession{}}
}

type fakeFastingTx struct {
	sessions map[string]model.FastingSession
}

func (r *fakeFastingRepo) RunLocked(ctx context.Context, fn func(tx repository.FastingTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	work := make(map[string]model.FastingSession, len(r.sessions))
	for k, v := range r.sessions {
		work[k] = v
	}
	if err := fn(&fakeFastingTx{sessions: work}); err != nil {
		return err
	}
	r.sessions = work
	return nil
}

func (r *fakeFastingRepo) FindOpen(ctx context.Context) (*model.FastingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (&fakeFastingTx{sessions: r.sessions}).FindOpen(ctx)
}

func (r *fakeFastingRepo) FindByID(ctx context.Context, id string) (*model.FastingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (&fakeFastingTx{sessions: r.sessions}).FindByID(ctx, id)
}

func (r *fakeFastingRepo) List(ctx context.Context, filter repository.FastingFilter) ([]model.FastingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []model.FastingSession{}
	for _, s := range r.sessions {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.From != nil && s.StartedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !s.StartedAt.Before(*filter.To) {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartedAt.After(result[j].StartedAt) })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *fakeFastingRepo) openCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sessions {
		if s.Status.Open() {
			n++
		}
	}
	return n
}

func (t *fakeFastingTx) FindOpen(ctx context.Context) (*model.FastingSession, error) {
	for _, s := range t.sessions {
		if s.Status.Open() {
			found := s
			return &found, nil
		}
	}
	return nil, apperr.NotFoundf("open fasting session not found")
}

func (t *fakeFastingTx) FindByID(ctx context.Context, id string) (*model.FastingSession, error) {
	s, ok := t.sessions[id]
	if !ok {
		return nil, apperr.NotFoundf("fasting session not found")
	}
	return &s, nil
}

func (t *fakeFastingTx) checkUnique(s *model.FastingSession) error {
	if !s.Status.Open() {
		return nil
	}
	for id, other := range t.sessions {
		if id != s.ID && other.Status.Open() {
			return apperr.Conflictf("an active fasting session already exists")
		}
	}
	return nil
}

func (t *fakeFastingTx) Create(ctx context.Context, s *model.FastingSession) error {
	if err := t.checkUnique(s); err != nil {
		return err
	}
	t.sessions[s.ID] = *s
	return nil
}

func (t *fakeFastingTx) Update(ctx context.Context, s *model.FastingSession) error {
	if _, ok := t.sessions[s.ID]; !ok {
		return apperr.NotFoundf("fasting session not found")
	}
	if err := t.checkUnique(s); err != nil {
		return err
	}
	t.sessions[s.ID] = *s
	return nil
}

func (t *fakeFastingTx) Delete(ctx context.Context, id string) error {
	if _, ok := t.sessions[id]; !ok {
		return apperr.NotFoundf("fasting session not found")
	}
	delete(t.sessions, id)
	return nil
}

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestFastingService() (*FastingService, *fakeFastingRepo, *testClock) {
	repo := newFakeFastingRepo()
	clock := &testClock{t: time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)}
	svc := NewFastingService(repo, audit.Nop{}, time.UTC, zap.NewNop()).WithClock(clock.now)
	return svc, repo, clock
}

func TestFastingService_DoubleStartConflicts(t *testing.T) {
	svc, repo, _ := newTestFastingService()
	ctx := context.Background()

	_, err := svc.Start(ctx, "16:8", nil)
	require.NoError(t, err)

	_, err = svc.Start(ctx, "16:8", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Contains(t, err.Error(), "active fasting session")
	assert.Equal(t, 1, repo.openCount())
}

func TestFastingService_StartRejectsUnknownType(t *testing.T) {
	svc, _, _ := newTestFastingService()

	_, err := svc.Start(context.Background(), "15:9", nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestFastingService_StartAfterTerminalState(t *testing.T) {
	svc, _, clock := newTestFastingService()
	ctx := context.Background()

	_, err := svc.Start(ctx, "18:6", nil)
	require.NoError(t, err)
	_, err = svc.Cancel(ctx)
	require.NoError(t, err)

	clock.advance(time.Minute)
	_, err = svc.Start(ctx, "18:6", nil)
	assert.NoError(t, err)
}

func TestFastingService_EndComputesDuration(t *testing.T) {
	svc, _, clock := newTestFastingService()
	ctx := context.Background()

	_, err := svc.Start(ctx, "16:8", nil)
	require.NoError(t, err)

	clock.advance(2*time.Hour + 30*time.Minute)
	ended, err := svc.End(ctx)
	require.NoError(t, err)

	assert.Equal(t, model.FastingCompleted, ended.Status)
	require.NotNil(t, ended.EndedAt)
	require.NotNil(t, ended.DurationHours)
	assert.InDelta(t, 2.5, *ended.DurationHours, 1e-9)
}

func TestFastingService_PauseExcludedFromDuration(t *testing.T) {
	svc, _, clock := newTestFastingService()
	ctx := context.Background()

	started, err := svc.Start(ctx, "16:8", nil)
	require.NoError(t, err)

	clock.advance(time.Hour)
	paused, err := svc.Pause(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.FastingPaused, paused.Status)
	require.NotNil(t, paused.PausedAt)

	clock.advance(time.Hour)
	resumed, err := svc.Resume(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FastingActive, resumed.Status)
	assert.Nil(t, resumed.PausedAt)
	assert.InDelta(t, 3600, resumed.PausedSeconds, 1e-9)

	clock.advance(2 * time.Hour)
	ended, err := svc.End(ctx)
	require.NoError(t, err)

	wall := ended.EndedAt.Sub(started.StartedAt).Hours()
	assert.InDelta(t, 3.0, *ended.DurationHours, 1e-9)
	assert.LessOrEqual(t, *ended.DurationHours, wall-1.0)
}

func TestFastingService_EndWhilePausedFoldsPause(t *testing.T) {
	svc, _, clock := newTestFastingService()
	ctx := context.Background()

	_, err := svc.Start(ctx, "20:4", nil)
	require.NoError(t, err)
	clock.advance(time.Hour)
	_, err = svc.Pause(ctx)
	require.NoError(t, err)
	clock.advance(3 * time.Hour)

	ended, err := svc.End(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, *ended.DurationHours, 1e-9)
	assert.Nil(t, ended.PausedAt)
}

func TestFastingService_PauseRequiresActiveSession(t *testing.T) {
	svc, _, _ := newTestFastingService()
	ctx := context.Background()

	_, err := svc.Pause(ctx)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Contains(t, err.Error(), "no active session")

	_, err = svc.Start(ctx, "16:8", nil)
	require.NoError(t, err)
	_, err = svc.Pause(ctx)
	require.NoError(t, err)

	_, err = svc.Pause(ctx)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

// A resume naming a session other than the open one is NotFound; naming the
// open session while it is running is a Conflict
func TestFastingService_ResumeIDHandling(t *testing.T) {
	svc, _, _ := newTestFastingService()
	ctx := context.Background()

	_, err := svc.Resume(ctx, "6f1c9a52-7c1e-4c3e-9b59-1b0e0c7f5a10")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	started, err := svc.Start(ctx, "16:8", nil)
	require.NoError(t, err)

	_, err = svc.Resume(ctx, started.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.Pause(ctx)
	require.NoError(t, err)

	_, err = svc.Resume(ctx, "6f1c9a52-7c1e-4c3e-9b59-1b0e0c7f5a10")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Resume(ctx, started.ID)
	assert.NoError(t, err)
}

func TestFastingService_CancelAndEndRequireOpenSession(t *testing.T) {
	svc, _, _ := newTestFastingService()
	ctx := context.Background()

	_, err := svc.Cancel(ctx)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.End(ctx)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestFastingService_Progress(t *testing.T) {
	svc, _, clock := newTestFastingService()
	ctx := context.Background()

	progress, err := svc.Progress(ctx)
	require.NoError(t, err)
	assert.False(t, progress.IsFasting)

	_, err = svc.Start(ctx, "16:8", nil)
	require.NoError(t, err)
	clock.advance(4 * time.Hour)

	progress, err = svc.Progress(ctx)
	require.NoError(t, err)
	assert.True(t, progress.IsFasting)
	assert.Equal(t, "16:8", progress.FastingType)
	assert.InDelta(t, 4.0, progress.CurrentDurationHours, 1e-9)
	assert.InDelta(t, 16.0, *progress.TargetHours, 1e-9)
	assert.InDelta(t, 25.0, *progress.PercentComplete, 1e-9)

	_, err = svc.Pause(ctx)
	require.NoError(t, err)
	clock.advance(2 * time.Hour)

	progress, err = svc.Progress(ctx)
	require.NoError(t, err)
	assert.True(t, progress.IsFasting)
	assert.Equal(t, model.FastingPaused, progress.Status)
	assert.InDelta(t, 4.0, progress.CurrentDurationHours, 1e-9)
}

func TestFastingService_StatsExcludeCancelled(t *testing.T) {
	svc, _, clock := newTestFastingService()
	ctx := context.Background()

	_, err := svc.Start(ctx, "16:8", nil)
	require.NoError(t, err)
	clock.advance(2 * time.Hour)
	_, err = svc.End(ctx)
	require.NoError(t, err)

	clock.advance(time.Hour)
	_, err = svc.Start(ctx, "16:8", nil)
	require.NoError(t, err)
	clock.advance(5 * time.Hour)
	_, err = svc.Cancel(ctx)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSessions)
	assert.InDelta(t, 2.0, stats.AvgDurationHours, 1e-9)
	assert.InDelta(t, 2.0, stats.LongestSessionHours, 1e-9)
	assert.Equal(t, 1, stats.CurrentStreak)
}

func TestComputeStats_Streak(t *testing.T) {
	now := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)
	completed := func(daysAgo int, hours float64) model.FastingSession {
		end := now.AddDate(0, 0, -daysAgo).Add(-time.Hour)
		return model.FastingSession{
			Status:        model.FastingCompleted,
			StartedAt:     end.Add(-time.Duration(hours * float64(time.Hour))),
			EndedAt:       &end,
			DurationHours: &hours,
		}
	}

	tests := []struct {
		name     string
		sessions []model.FastingSession
		want     int
	}{
		{"no sessions", nil, 0},
		{"today only", []model.FastingSession{completed(0, 16)}, 1},
		{"three consecutive days", []model.FastingSession{completed(0, 16), completed(1, 16), completed(2, 18)}, 3},
		{"gap stops streak", []model.FastingSession{completed(0, 16), completed(1, 16), completed(3, 16)}, 2},
		{"nothing today", []model.FastingSession{completed(1, 16), completed(2, 16)}, 0},
		{"two on one day count once", []model.FastingSession{completed(0, 12), completed(0, 14)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := computeStats(tt.sessions, now, time.UTC)
			assert.Equal(t, tt.want, stats.CurrentStreak)
		})
	}
}

func TestFastingService_DeleteSession(t *testing.T) {
	svc, _, clock := newTestFastingService()
	ctx := context.Background()

	started, err := svc.Start(ctx, "16:8", nil)
	require.NoError(t, err)

	err = svc.DeleteSession(ctx, started.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	clock.advance(time.Hour)
	_, err = svc.End(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, started.ID))

	_, err = svc.GetSession(ctx, started.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = svc.DeleteSession(ctx, "not-a-uuid")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestFastingService_UpdateNotes(t *testing.T) {
	svc, _, _ := newTestFastingService()
	ctx := context.Background()

	started, err := svc.Start(ctx, "16:8", nil)
	require.NoError(t, err)

	notes := "  felt great  "
	updated, err := svc.UpdateNotes(ctx, started.ID, &notes)
	require.NoError(t, err)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "felt great", *updated.Notes)
}

func TestFastingService_ListSessionsValidatesFilter(t *testing.T) {
	svc, _, _ := newTestFastingService()

	_, err := svc.ListSessions(context.Background(), repository.FastingFilter{Status: "sleeping"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.ListSessions(context.Background(), repository.FastingFilter{Limit: -1})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

// No sequence of operations ever leaves two sessions open, and starting
// while one is open is always a conflict
func TestProperty_AtMostOneOpenSession(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("open sessions never exceed one", prop.ForAll(
		func(ops []int) bool {
			svc, repo, clock := newTestFastingService()
			ctx := context.Background()
			var lastID string

			for _, op := range ops {
				clock.advance(17 * time.Minute)
				hadOpen := repo.openCount() == 1

				switch op {
				case 0:
					s, err := svc.Start(ctx, "16:8", nil)
					if hadOpen {
						if !apperr.Is(err, apperr.KindConflict) {
							return false
						}
					} else if err != nil {
						return false
					} else {
						lastID = s.ID
					}
				case 1:
					_, _ = svc.Pause(ctx)
				case 2:
					_, _ = svc.Resume(ctx, lastID)
				case 3:
					_, _ = svc.Cancel(ctx)
				case 4:
					s, err := svc.End(ctx)
					if err == nil && (s.DurationHours == nil || *s.DurationHours < 0) {
						return false
					}
				}

				if repo.openCount() > 1 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 4)),
	))

	properties.TestingRun(t)
}
