package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type reportPayload struct {
	Date string `json:"date"`
}

func newTestRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(KindWeeklyReport, func(ctx context.Context, task Task) (any, error) {
		var p reportPayload
		if err := DecodePayload(task, &p); err != nil {
			return nil, err
		}
		return map[string]string{"date": p.Date, "by": task.SubmittedBy}, nil
	})
	registry.Register(KindBackup, func(ctx context.Context, task Task) (any, error) {
		return nil, errors.New("storage offline")
	})
	registry.Register(KindRecomputeDishes, func(ctx context.Context, task Task) (any, error) {
		panic("boom")
	})
	return registry
}

func TestSyncDispatcher_RunsHandlerInline(t *testing.T) {
	store := NewMemoryStatusStore()
	d := NewSyncDispatcher(newTestRegistry(), store, zap.NewNop())
	ctx := WithSubmitter(context.Background(), "admin")

	status, err := d.Submit(ctx, KindWeeklyReport, reportPayload{Date: "2026-10-18"})
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, status.State)

	var result map[string]string
	require.NoError(t, json.Unmarshal(status.Result, &result))
	assert.Equal(t, "2026-10-18", result["date"])
	assert.Equal(t, "admin", result["by"])

	stored, err := d.Status(ctx, status.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, stored.State)
}

func TestSyncDispatcher_RecordsFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	d := NewSyncDispatcher(newTestRegistry(), NewMemoryStatusStore(), zap.New(core))

	status, err := d.Submit(context.Background(), KindBackup, nil)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, status.State)
	assert.Equal(t, "storage offline", status.Error)

	entries := logs.FilterMessage("task failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, string(KindBackup), entries[0].ContextMap()["kind"])
}

func TestSyncDispatcher_RecoversPanics(t *testing.T) {
	d := NewSyncDispatcher(newTestRegistry(), NewMemoryStatusStore(), zap.NewNop())

	status, err := d.Submit(context.Background(), KindRecomputeDishes, nil)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, status.State)
	assert.Contains(t, status.Error, "panicked")
}

func TestSyncDispatcher_RejectsUnknownKind(t *testing.T) {
	d := NewSyncDispatcher(NewRegistry(), NewMemoryStatusStore(), zap.NewNop())

	_, err := d.Submit(context.Background(), "reindex", nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestMemoryStatusStore_GetMissing(t *testing.T) {
	_, err := NewMemoryStatusStore().Get(context.Background(), "nope")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestWorker_Handle(t *testing.T) {
	store := NewMemoryStatusStore()
	w := NewWorker("amqp://unused", "tasks", newTestRegistry(), store, zap.NewNop())
	ctx := context.Background()

	err := w.Handle(ctx, []byte("{not json"))
	assert.Error(t, err)

	err = w.Handle(ctx, []byte(`{"kind":"weekly_report"}`))
	assert.Error(t, err)

	task := Task{
		ID:          "5a8c7f0e-33a8-4b1c-9a51-0d6f3b1f7e21",
		Kind:        KindWeeklyReport,
		Payload:     json.RawMessage(`{"date":"2026-10-12"}`),
		SubmittedAt: time.Now().UTC(),
	}
	body, err := json.Marshal(task)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, pendingStatus(task)))

	require.NoError(t, w.Handle(ctx, body))

	status, err := store.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, status.State)
	assert.JSONEq(t, `{"date":"2026-10-12","by":""}`, string(status.Result))
}

func TestWorker_HandleUnregisteredKindFailsTask(t *testing.T) {
	store := NewMemoryStatusStore()
	w := NewWorker("amqp://unused", "tasks", NewRegistry(), store, zap.NewNop())

	body := []byte(`{"id":"t-1","kind":"backup","submitted_at":"2026-10-18T00:00:00Z"}`)
	require.NoError(t, w.Handle(context.Background(), body))

	status, err := store.Get(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, status.State)
	assert.Contains(t, status.Error, "no handler")
}
