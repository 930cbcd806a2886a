package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/internal/repository"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// FastingTypes maps each supported protocol to its target fasting hours
var FastingTypes = map[string]float64{
	"12:12": 12,
	"14:10": 14,
	"16:8":  16,
	"18:6":  18,
	"20:4":  20,
	"OMAD":  23,
	"24h":   24,
	"36h":   36,
}

// FastingTypeNames returns the supported protocols sorted by target hours
func FastingTypeNames() []string {
	names := make([]string, 0, len(FastingTypes))
	for name := range FastingTypes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return FastingTypes[names[i]] < FastingTypes[names[j]]
	})
	return names
}

// FastingRepositoryInterface defines the storage operations the fasting
// manager needs
type FastingRepositoryInterface interface {
	RunLocked(ctx context.Context, fn func(tx repository.FastingTx) error) error
	FindOpen(ctx context.Context) (*model.FastingSession, error)
	FindByID(ctx context.Context, id string) (*model.FastingSession, error)
	List(ctx context.Context, filter repository.FastingFilter) ([]model.FastingSession, error)
}

// FastingService owns the fasting session lifecycle
type FastingService struct {
	repo   FastingRepositoryInterface
	audit  audit.Recorder
	loc    *time.Location
	now    Clock
	logger *zap.Logger
}

// NewFastingService creates a new FastingService. loc defines calendar days
// for streaks.
func NewFastingService(repo FastingRepositoryInterface, recorder audit.Recorder, loc *time.Location, logger *zap.Logger) *FastingService {
	if loc == nil {
		loc = time.Local
	}
	return &FastingService{
		repo:   repo,
		audit:  recorder,
		loc:    loc,
		now:    systemClock,
		logger: logger,
	}
}

// WithClock replaces the time source
func (s *FastingService) WithClock(clock Clock) *FastingService {
	s.now = clock
	return s
}

func noActiveSession() error {
	return apperr.NotFoundf("no active session")
}

// Start begins a new session of the given protocol
func (s *FastingService) Start(ctx context.Context, fastingType string, notes *string) (*model.FastingSession, error) {
	if _, ok := FastingTypes[fastingType]; !ok {
		return nil, apperr.Validationf("unknown fasting type %q, expected one of %v", fastingType, FastingTypeNames())
	}

	var session *model.FastingSession
	err := s.repo.RunLocked(ctx, func(tx repository.FastingTx) error {
		open, err := tx.FindOpen(ctx)
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return err
		}
		if open != nil {
			return apperr.Conflictf("an active fasting session already exists (%s)", open.ID)
		}

		now := s.now().UTC()
		session = &model.FastingSession{
			ID:          uuid.New().String(),
			FastingType: fastingType,
			StartedAt:   now,
			Status:      model.FastingActive,
			Notes:       trimmedPtr(notes),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Create(ctx, session)
	})
	if err != nil {
		s.logger.Warn("failed to start fasting session",
			zap.Error(err),
			zap.String("fasting_type", fastingType),
		)
		return nil, err
	}

	s.logger.Info("fasting session started",
		zap.String("session_id", session.ID),
		zap.String("fasting_type", fastingType),
	)

	return session, nil
}

// Pause suspends the active session
func (s *FastingService) Pause(ctx context.Context) (*model.FastingSession, error) {
	return s.transition(ctx, "pause", func(open *model.FastingSession, now time.Time) error {
		if open.Status != model.FastingActive {
			return noActiveSession()
		}
		open.PausedAt = &now
		open.Status = model.FastingPaused
		return nil
	})
}

// Resume reactivates the paused session. The id must name the currently
// open session; any other id is reported as not found.
func (s *FastingService) Resume(ctx context.Context, sessionID string) (*model.FastingSession, error) {
	return s.transition(ctx, "resume", func(open *model.FastingSession, now time.Time) error {
		if open.ID != sessionID {
			return apperr.NotFoundf("fasting session %s is not the open session", sessionID)
		}
		if open.Status != model.FastingPaused {
			return apperr.Conflictf("fasting session %s is not paused", sessionID)
		}
		foldPause(open, now)
		open.Status = model.FastingActive
		return nil
	})
}

// Cancel abandons the open session; it never counts toward statistics
func (s *FastingService) Cancel(ctx context.Context) (*model.FastingSession, error) {
	return s.transition(ctx, "cancel", func(open *model.FastingSession, now time.Time) error {
		foldPause(open, now)
		open.Status = model.FastingCancelled
		open.EndedAt = &now
		return nil
	})
}

// End completes the open session and records its net duration
func (s *FastingService) End(ctx context.Context) (*model.FastingSession, error) {
	return s.transition(ctx, "end", func(open *model.FastingSession, now time.Time) error {
		foldPause(open, now)
		open.Status = model.FastingCompleted
		open.EndedAt = &now
		hours := netSeconds(open, now) / 3600
		open.DurationHours = &hours
		return nil
	})
}

// transition loads the open session under the fasting lock, applies mutate
// and persists the result
func (s *FastingService) transition(ctx context.Context, op string, mutate func(open *model.FastingSession, now time.Time) error) (*model.FastingSession, error) {
	var session *model.FastingSession
	err := s.repo.RunLocked(ctx, func(tx repository.FastingTx) error {
		open, err := tx.FindOpen(ctx)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return noActiveSession()
			}
			return err
		}

		now := s.now().UTC()
		if err := mutate(open, now); err != nil {
			return err
		}
		open.UpdatedAt = now
		session = open
		return tx.Update(ctx, open)
	})
	if err != nil {
		s.logger.Warn("fasting transition rejected",
			zap.Error(err),
			zap.String("operation", op),
		)
		return nil, err
	}

	s.logger.Info("fasting session updated",
		zap.String("operation", op),
		zap.String("session_id", session.ID),
		zap.String("status", string(session.Status)),
	)

	return session, nil
}

// foldPause adds an in-flight pause to the accumulated paused time
func foldPause(session *model.FastingSession, now time.Time) {
	if session.PausedAt == nil {
		return
	}
	if d := now.Sub(*session.PausedAt).Seconds(); d > 0 {
		session.PausedSeconds += d
	}
	session.PausedAt = nil
}

// netSeconds is the fasting time elapsed at ref, excluding pauses
func netSeconds(session *model.FastingSession, ref time.Time) float64 {
	return math.Max(0, ref.Sub(session.StartedAt).Seconds()-session.PausedSeconds)
}

// Progress describes the open session at a point in time
type Progress struct {
	IsFasting            bool                `json:"is_fasting"`
	SessionID            string              `json:"session_id,omitempty"`
	FastingType          string              `json:"fasting_type,omitempty"`
	Status               model.FastingStatus `json:"status,omitempty"`
	StartedAt            *time.Time          `json:"started_at,omitempty"`
	CurrentDurationHours float64             `json:"current_duration_hours"`
	TargetHours          *float64            `json:"target_hours,omitempty"`
	PercentComplete      *float64            `json:"percent_complete,omitempty"`
	RemainingHours       *float64            `json:"remaining_hours,omitempty"`
}

// Progress reports the open session's elapsed fasting time. While paused
// the duration stays frozen at the pause start.
func (s *FastingService) Progress(ctx context.Context) (*Progress, error) {
	open, err := s.repo.FindOpen(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return &Progress{IsFasting: false}, nil
		}
		return nil, fmt.Errorf("failed to load fasting progress: %w", err)
	}

	return progressAt(open, s.now().UTC()), nil
}

func progressAt(open *model.FastingSession, now time.Time) *Progress {
	ref := now
	if open.Status == model.FastingPaused && open.PausedAt != nil {
		ref = *open.PausedAt
	}
	hours := netSeconds(open, ref) / 3600

	started := open.StartedAt
	p := &Progress{
		IsFasting:            true,
		SessionID:            open.ID,
		FastingType:          open.FastingType,
		Status:               open.Status,
		StartedAt:            &started,
		CurrentDurationHours: round2(hours),
	}

	if target, ok := FastingTypes[open.FastingType]; ok {
		percent := round2(hours / target * 100)
		remaining := round2(math.Max(0, target-hours))
		p.TargetHours = &target
		p.PercentComplete = &percent
		p.RemainingHours = &remaining
	}

	return p
}

// ListSessions returns sessions newest first
func (s *FastingService) ListSessions(ctx context.Context, filter repository.FastingFilter) ([]model.FastingSession, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.Validationf("unknown session status %q", filter.Status)
	}
	if filter.Limit < 0 {
		return nil, apperr.Validation("limit must not be negative")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperr.Validation("'to' must not be before 'from'")
	}

	sessions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list fasting sessions: %w", err)
	}
	return sessions, nil
}

// GetSession retrieves one session
func (s *FastingService) GetSession(ctx context.Context, id string) (*model.FastingSession, error) {
	if err := checkID(id, "fasting session"); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// UpdateNotes replaces a session's notes
func (s *FastingService) UpdateNotes(ctx context.Context, id string, notes *string) (*model.FastingSession, error) {
	if err := checkID(id, "fasting session"); err != nil {
		return nil, err
	}

	var session *model.FastingSession
	err := s.repo.RunLocked(ctx, func(tx repository.FastingTx) error {
		found, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		found.Notes = trimmedPtr(notes)
		found.UpdatedAt = s.now().UTC()
		session = found
		return tx.Update(ctx, found)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("fasting session notes updated", zap.String("session_id", id))
	return session, nil
}

// DeleteSession removes a finished session. Open sessions must be ended or
// cancelled first.
func (s *FastingService) DeleteSession(ctx context.Context, id string) error {
	if err := checkID(id, "fasting session"); err != nil {
		return err
	}

	err := s.repo.RunLocked(ctx, func(tx repository.FastingTx) error {
		found, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if found.Status.Open() {
			return apperr.Conflictf("fasting session %s is still %s; end or cancel it first", id, found.Status)
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if err := s.audit.Record(ctx, audit.Entry{
		OperationType: audit.OperationDelete,
		ResourceType:  audit.ResourceFastingSession,
		ResourceID:    id,
	}); err != nil {
		s.logger.Warn("failed to audit fasting session deletion", zap.Error(err), zap.String("session_id", id))
	}

	s.logger.Info("fasting session deleted", zap.String("session_id", id))
	return nil
}

// FastingStats summarises completed sessions
type FastingStats struct {
	TotalSessions       int     `json:"total_sessions"`
	AvgDurationHours    float64 `json:"avg_duration"`
	LongestSessionHours float64 `json:"longest_session"`
	TotalHours          float64 `json:"total_hours"`
	CurrentStreak       int     `json:"current_streak"`
}

// Stats computes statistics over completed sessions only
func (s *FastingService) Stats(ctx context.Context) (*FastingStats, error) {
	completed, err := s.repo.List(ctx, repository.FastingFilter{Status: model.FastingCompleted})
	if err != nil {
		return nil, fmt.Errorf("failed to load completed sessions: %w", err)
	}

	return computeStats(completed, s.now(), s.loc), nil
}

func computeStats(sessions []model.FastingSession, now time.Time, loc *time.Location) *FastingStats {
	stats := &FastingStats{}
	days := make(map[time.Time]bool)

	for _, session := range sessions {
		if session.Status != model.FastingCompleted {
			continue
		}
		hours := sessionHours(&session)
		stats.TotalSessions++
		stats.TotalHours += hours
		stats.LongestSessionHours = math.Max(stats.LongestSessionHours, hours)
		if session.EndedAt != nil {
			days[calendarDay(*session.EndedAt, loc)] = true
		}
	}

	if stats.TotalSessions > 0 {
		stats.AvgDurationHours = round2(stats.TotalHours / float64(stats.TotalSessions))
	}
	stats.TotalHours = round2(stats.TotalHours)
	stats.LongestSessionHours = round2(stats.LongestSessionHours)

	for day := calendarDay(now, loc); days[day]; day = day.AddDate(0, 0, -1) {
		stats.CurrentStreak++
	}

	return stats
}

// sessionHours returns the stored duration, deriving it for rows written
// without one
func sessionHours(session *model.FastingSession) float64 {
	if session.DurationHours != nil {
		return *session.DurationHours
	}
	if session.EndedAt == nil {
		return 0
	}
	return netSeconds(session, *session.EndedAt) / 3600
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
