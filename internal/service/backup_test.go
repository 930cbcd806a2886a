package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/internal/security"
	"github.com/vcscsvcscs/nutrifast/internal/storage"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

type fakeSnapshotRepo struct {
	current  *model.Snapshot
	restored *model.Snapshot
}

func (r *fakeSnapshotRepo) Export(ctx context.Context) (*model.Snapshot, error) {
	snap := *r.current
	return &snap, nil
}

func (r *fakeSnapshotRepo) Restore(ctx context.Context, snap *model.Snapshot) error {
	r.restored = snap
	return nil
}

func sampleSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Products: []model.Product{{ID: productID, Name: "Oats", Per100g: model.Nutrition{Calories: 355}}},
		Dishes: []model.Dish{{
			ID:          "0b7d4f6a-2c1e-4d8b-9a3f-5e6c7d8e9f01",
			Name:        "Porridge",
			Ingredients: []model.DishIngredient{{ProductID: productID, Grams: 50}},
		}},
		Profile: validProfile(),
	}
}

func newTestBackupService(t *testing.T, encrypted bool) (*BackupService, *fakeSnapshotRepo, *storage.MemoryStorage, *recordingAudit) {
	var encryptor *security.Encryptor
	if encrypted {
		key := make([]byte, 32)
		_, err := rand.Read(key)
		require.NoError(t, err)
		encryptor, err = security.NewEncryptor(key)
		require.NoError(t, err)
	}

	repo := &fakeSnapshotRepo{current: sampleSnapshot()}
	store := storage.NewMemoryStorage(zap.NewNop())
	recorder := &recordingAudit{}
	svc := NewBackupService(repo, store, encryptor, recorder, zap.NewNop()).WithClock(func() time.Time {
		return time.Date(2026, 10, 18, 8, 30, 0, 0, time.UTC)
	})
	return svc, repo, store, recorder
}

func TestBackupService_CreateAndRestore(t *testing.T) {
	for _, encrypted := range []bool{false, true} {
		name := "plain"
		if encrypted {
			name = "encrypted"
		}
		t.Run(name, func(t *testing.T) {
			svc, repo, store, recorder := newTestBackupService(t, encrypted)
			ctx := context.Background()

			info, err := svc.Create(ctx)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(info.Name, "backup-20261018T083000Z.json"))
			assert.Equal(t, encrypted, strings.HasSuffix(info.Name, ".enc"))
			assert.Equal(t, 1, info.Counts["dishes"])

			raw, err := store.Get(ctx, info.Name)
			require.NoError(t, err)
			assert.Equal(t, !encrypted, strings.Contains(string(raw), "Porridge"))

			counts, err := svc.Restore(ctx, info.Name)
			require.NoError(t, err)
			assert.Equal(t, 1, counts["products"])
			require.NotNil(t, repo.restored)
			assert.Equal(t, "Porridge", repo.restored.Dishes[0].Name)
			assert.Equal(t, 50.0, repo.restored.Dishes[0].Ingredients[0].Grams)

			assert.Equal(t, []audit.OperationType{audit.OperationBackup, audit.OperationRestore}, recorder.operations())
		})
	}
}

func TestBackupService_ListSkipsReports(t *testing.T) {
	svc, _, store, _ := newTestBackupService(t, false)
	ctx := context.Background()

	_, err := svc.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "report-2026-10-18.pdf", []byte("%PDF")))

	backups, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.True(t, strings.HasPrefix(backups[0].Name, "backup-"))
}

func TestBackupService_RestoreErrors(t *testing.T) {
	svc, _, store, _ := newTestBackupService(t, false)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "backup-bad.json", []byte("{not json")))
	require.NoError(t, store.Put(ctx, "backup-future.json", []byte(`{"version":99}`)))
	require.NoError(t, store.Put(ctx, "backup-sealed.json.enc", []byte("opaque")))

	tests := []struct {
		name string
		kind apperr.Kind
	}{
		{"backup-missing.json", apperr.KindNotFound},
		{"../escape.json", apperr.KindValidation},
		{"report-2026-10-18.pdf", apperr.KindValidation},
		{"backup-bad.json", apperr.KindValidation},
		{"backup-future.json", apperr.KindValidation},
		{"backup-sealed.json.enc", apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Restore(ctx, tt.name)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestBackupService_RestoreRejectsInconsistentSnapshot(t *testing.T) {
	const missingID = "9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b6a"
	started := time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(snap *model.Snapshot)
		message string
	}{
		{
			name:    "dish without ingredients",
			mutate:  func(snap *model.Snapshot) { snap.Dishes[0].Ingredients = nil },
			message: "dishes[0]: a dish needs at least one ingredient",
		},
		{
			name: "ingredient product missing",
			mutate: func(snap *model.Snapshot) {
				snap.Dishes[0].Ingredients[0].ProductID = missingID
			},
			message: "dishes[0]: ingredients[0]: product " + missingID + " is not in the backup",
		},
		{
			name: "log entry item missing",
			mutate: func(snap *model.Snapshot) {
				snap.LogEntries = []model.LogEntry{{
					ID:       "3e2d1c0b-9a8f-4e7d-8c6b-5a4f3e2d1c0b",
					Date:     time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
					Meal:     model.MealLunch,
					ItemType: model.ItemDish,
					ItemID:   productID,
					Grams:    200,
				}}
			},
			message: "log_entries[0]: dish " + productID + " is not in the backup",
		},
		{
			name:    "unknown activity level",
			mutate:  func(snap *model.Snapshot) { snap.Profile.ActivityLevel = "couch" },
			message: "profile: activity_level must be one of sedentary, light, moderate, active, very_active",
		},
		{
			name: "unknown fasting type",
			mutate: func(snap *model.Snapshot) {
				ended := started.Add(16 * time.Hour)
				snap.FastingSessions = []model.FastingSession{{
					ID:          "7a6b5c4d-3e2f-4a1b-9c8d-7e6f5a4b3c2d",
					FastingType: "15:9",
					StartedAt:   started,
					EndedAt:     &ended,
					Status:      model.FastingCompleted,
				}}
			},
			message: `fasting_sessions[0]: unknown fasting_type "15:9"`,
		},
		{
			name: "goal period reversed",
			mutate: func(snap *model.Snapshot) {
				snap.FastingGoals = []model.FastingGoal{{
					ID:          "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d",
					GoalType:    model.GoalTotalHours,
					TargetValue: 40,
					PeriodStart: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
					PeriodEnd:   time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC),
				}}
			},
			message: "fasting_goals[0]: period_end must not be before period_start",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, store, recorder := newTestBackupService(t, false)
			ctx := context.Background()

			snap := sampleSnapshot()
			snap.Version = snapshotVersion
			tt.mutate(snap)
			data, err := json.Marshal(snap)
			require.NoError(t, err)
			require.NoError(t, store.Put(ctx, "backup-inconsistent.json", data))

			_, err = svc.Restore(ctx, "backup-inconsistent.json")
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Contains(t, apperr.MessagesOf(err), tt.message)
			assert.Nil(t, repo.restored)
			assert.Empty(t, recorder.operations())
		})
	}
}
