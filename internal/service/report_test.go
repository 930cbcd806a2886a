package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/internal/pdf"
	"github.com/vcscsvcscs/nutrifast/internal/storage"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type capturingGenerator struct {
	data *pdf.ReportData
}

func (g *capturingGenerator) Generate(data *pdf.ReportData) ([]byte, error) {
	g.data = data
	return []byte("%PDF-1.3 test"), nil
}

type reportSetup struct {
	profile    *model.Profile
	profileErr error
	sessions   []model.FastingSession
	logger     *zap.Logger
}

func newTestReportService(t *testing.T, setup reportSetup) (*ReportService, *nutritionFixture, *capturingGenerator, *storage.MemoryStorage) {
	f := newNutritionFixture()
	logger := setup.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fastingRepo := newFakeFastingRepo()
	sessions := setup.sessions
	if sessions == nil {
		sessions = []model.FastingSession{completedSession("f1", time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC), 16)}
	}
	for _, s := range sessions {
		fastingRepo.sessions[s.ID] = s
	}
	fasting := NewFastingService(fastingRepo, audit.Nop{}, time.UTC, zap.NewNop()).WithClock(f.clock.now)

	profileRepo := new(MockProfileRepository)
	switch {
	case setup.profileErr != nil:
		profileRepo.On("Get", mock.Anything).Return(nil, setup.profileErr)
	case setup.profile != nil:
		profileRepo.On("Get", mock.Anything).Return(setup.profile, nil)
	default:
		profileRepo.On("Get", mock.Anything).Return(validProfile(), nil)
	}
	profile := NewProfileService(profileRepo, zap.NewNop()).WithClock(f.clock.now)

	gen := &capturingGenerator{}
	store := storage.NewMemoryStorage(zap.NewNop())
	return NewReportService(f.statsSvc, fasting, profile, gen, store, logger), f, gen, store
}

func TestReportService_WeeklyReport(t *testing.T) {
	svc, f, gen, _ := newTestReportService(t, reportSetup{})
	ctx := context.Background()
	p := f.product(t, "Bread", model.Nutrition{Calories: 250})
	_, err := f.entrySvc.CreateEntry(ctx, &model.LogEntry{Meal: model.MealBreakfast, ItemType: model.ItemProduct, ItemID: p.ID, Grams: 100})
	require.NoError(t, err)

	doc, name, err := svc.WeeklyReport(ctx, "2026-10-18")

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
	assert.Equal(t, "report-2026-10-18.pdf", name)
	require.Len(t, gen.data.Days, 7)
	assert.Equal(t, 250.0, gen.data.Days[6].Nutrition.Calories)
	require.NotNil(t, gen.data.CalorieTarget)
	assert.Equal(t, 2759.0, *gen.data.CalorieTarget)
	assert.Equal(t, 1, gen.data.Fasting.TotalSessions)
}

func TestReportService_WithoutProfile(t *testing.T) {
	svc, _, gen, _ := newTestReportService(t, reportSetup{profileErr: apperr.NotFoundf("profile not found")})

	_, _, err := svc.WeeklyReport(context.Background(), "2026-10-18")

	require.NoError(t, err)
	assert.Nil(t, gen.data.CalorieTarget)
}

func TestReportService_UnusableProfileOmitsTargetWithWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	broken := validProfile()
	broken.ActivityLevel = "couch"
	svc, _, gen, _ := newTestReportService(t, reportSetup{profile: broken, logger: zap.New(core)})

	_, _, err := svc.WeeklyReport(context.Background(), "2026-10-18")

	require.NoError(t, err)
	assert.Nil(t, gen.data.CalorieTarget)
	entries := logs.FilterMessage("stored profile yields no targets, weekly report omits the calorie target").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestReportService_CompletedInWeekUsesEndDate(t *testing.T) {
	overnight := completedSession("overnight", time.Date(2026, 10, 11, 22, 0, 0, 0, time.UTC), 16)
	previous := completedSession("previous", time.Date(2026, 10, 10, 8, 0, 0, 0, time.UTC), 14)
	inWeek := completedSession("in-week", time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC), 18)
	svc, _, gen, _ := newTestReportService(t, reportSetup{sessions: []model.FastingSession{overnight, previous, inWeek}})

	_, _, err := svc.WeeklyReport(context.Background(), "2026-10-18")

	require.NoError(t, err)
	ids := make([]string, 0, len(gen.data.Fasting.CompletedInWeek))
	for _, s := range gen.data.Fasting.CompletedInWeek {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{"overnight", "in-week"}, ids)
}

func TestReportService_StoreWeeklyReport(t *testing.T) {
	svc, _, _, store := newTestReportService(t, reportSetup{})
	ctx := context.Background()

	name, err := svc.StoreWeeklyReport(ctx, "2026-10-18")
	require.NoError(t, err)

	data, err := store.Get(ctx, name)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
