package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/pdf"
	"github.com/vcscsvcscs/nutrifast/internal/repository"
	"github.com/vcscsvcscs/nutrifast/internal/storage"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// ReportGenerator renders report data to a document
type ReportGenerator interface {
	Generate(data *pdf.ReportData) ([]byte, error)
}

// ReportService builds weekly PDF reports from stats, fasting history and
// the profile's targets
type ReportService struct {
	stats     *StatsService
	fasting   *FastingService
	profile   *ProfileService
	generator ReportGenerator
	store     storage.BackupStorage
	logger    *zap.Logger
}

// NewReportService creates a new ReportService. store may be nil when
// reports are only streamed.
func NewReportService(stats *StatsService, fasting *FastingService, profile *ProfileService, generator ReportGenerator, store storage.BackupStorage, logger *zap.Logger) *ReportService {
	return &ReportService{
		stats:     stats,
		fasting:   fasting,
		profile:   profile,
		generator: generator,
		store:     store,
		logger:    logger,
	}
}

// WeeklyReport renders the week ending at anchor and returns the document
// with its file name
func (s *ReportService) WeeklyReport(ctx context.Context, anchor string) ([]byte, string, error) {
	week, err := s.stats.WeeklyStats(ctx, anchor)
	if err != nil {
		return nil, "", err
	}

	data := &pdf.ReportData{
		StartDate:   week.StartDate,
		EndDate:     week.EndDate,
		Totals:      week.Totals,
		Averages:    week.Averages,
		GeneratedAt: s.stats.now(),
	}
	for _, day := range week.Days() {
		data.Days = append(data.Days, pdf.DayRow{Date: day.Date, Nutrition: day.Nutrition, EntryCount: day.EntryCount})
	}

	targets, err := s.profile.Targets(ctx)
	switch {
	case err == nil:
		data.CalorieTarget = &targets.Calories
	case apperr.Is(err, apperr.KindNotFound):
		s.logger.Debug("weekly report without calorie target, no profile stored")
	case apperr.Is(err, apperr.KindValidation):
		s.logger.Warn("stored profile yields no targets, weekly report omits the calorie target", zap.Error(err))
	default:
		return nil, "", err
	}

	fastingStats, err := s.fasting.Stats(ctx)
	if err != nil {
		return nil, "", err
	}
	data.Fasting = pdf.FastingSummary{
		TotalSessions: fastingStats.TotalSessions,
		TotalHours:    fastingStats.TotalHours,
		AvgHours:      fastingStats.AvgDurationHours,
		LongestHours:  fastingStats.LongestSessionHours,
		CurrentStreak: fastingStats.CurrentStreak,
	}

	completed, err := s.completedInWeek(ctx, week)
	if err != nil {
		return nil, "", err
	}
	data.Fasting.CompletedInWeek = completed

	doc, err := s.generator.Generate(data)
	if err != nil {
		return nil, "", apperr.Internal(err, "failed to render report")
	}

	name := fmt.Sprintf("report-%s.pdf", week.EndDate)
	s.logger.Info("weekly report rendered", zap.String("report", name), zap.Int("size_bytes", len(doc)))
	return doc, name, nil
}

// completedInWeek returns the completed sessions whose local end date falls
// inside the week, the same bucketing stats and goals use
func (s *ReportService) completedInWeek(ctx context.Context, week *WeeklyStats) ([]model.FastingSession, error) {
	from, err := ParseDate(week.StartDate)
	if err != nil {
		return nil, err
	}
	to, err := ParseDate(week.EndDate)
	if err != nil {
		return nil, err
	}
	loc := s.stats.loc
	startedBefore := time.Date(to.Year(), to.Month(), to.Day()+1, 0, 0, 0, 0, loc)

	sessions, err := s.fasting.ListSessions(ctx, repository.FastingFilter{
		Status: model.FastingCompleted,
		To:     &startedBefore,
	})
	if err != nil {
		return nil, err
	}

	var completed []model.FastingSession
	for _, session := range sessions {
		if session.EndedAt == nil {
			continue
		}
		day := calendarDay(*session.EndedAt, loc)
		if day.Before(from) || day.After(to) {
			continue
		}
		completed = append(completed, session)
	}
	return completed, nil
}

// StoreWeeklyReport renders the report and saves it to storage
func (s *ReportService) StoreWeeklyReport(ctx context.Context, anchor string) (string, error) {
	if s.store == nil {
		return "", apperr.Internal(fmt.Errorf("no report storage configured"), "report storage unavailable")
	}
	doc, name, err := s.WeeklyReport(ctx, anchor)
	if err != nil {
		return "", err
	}
	if err := s.store.Put(ctx, name, doc); err != nil {
		return "", err
	}
	return name, nil
}
