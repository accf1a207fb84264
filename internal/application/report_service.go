package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// ReportService derives dashboard KPIs from the registration and worker sets.
// All operations are read-only reductions.
type ReportService struct {
	registrations RegistrationRepository
	workers       WorkerRepository
	now           func() time.Time
	cache         *summaryCache
	logger        *slog.Logger
}

// NewReportService wires dependencies for the report service.
func NewReportService(registrations RegistrationRepository, workers WorkerRepository, now func() time.Time) *ReportService {
	return NewReportServiceWithLogger(registrations, workers, now, nil)
}

// NewReportServiceWithLogger constructs a ReportService with a specified logger.
func NewReportServiceWithLogger(registrations RegistrationRepository, workers WorkerRepository, now func() time.Time, logger *slog.Logger) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		registrations: registrations,
		workers:       workers,
		now:           now,
		cache:         newSummaryCache(30*time.Second, 64, now),
		logger:        defaultLogger(logger),
	}
}

func (s *ReportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReportService", operation, attrs...)
}

// InvalidateCache drops all cached summaries. Wired as the registration
// service's after-write hook.
func (s *ReportService) InvalidateCache() {
	if s != nil {
		s.cache.Invalidate()
	}
}

// Summary computes the dashboard KPIs over the requested window.
func (s *ReportService) Summary(ctx context.Context, params SummaryParams) (ReportSummary, error) {
	if s == nil {
		return ReportSummary{}, fmt.Errorf("ReportService is nil")
	}
	if !params.Principal.IsAdmin {
		return ReportSummary{}, ErrForbidden
	}
	if s.registrations == nil || s.workers == nil {
		return ReportSummary{}, fmt.Errorf("report service not fully configured")
	}

	logger := s.loggerWith(ctx, "Summary")

	key := summaryKey(params.DateFrom, params.DateTo)
	if cached, ok := s.cache.Get(key); ok {
		logger.InfoContext(ctx, "summary served from cache")
		return cached, nil
	}

	registrations, _, err := s.registrations.ListRegistrations(ctx, RegistrationQuery{
		CheckInFrom: params.DateFrom,
		CheckInTo:   params.DateTo,
		SortBy:      SortByCheckIn,
		SortOrder:   SortAsc,
	})
	if err != nil {
		return ReportSummary{}, err
	}

	workers, err := s.workers.ListWorkers(ctx)
	if err != nil {
		return ReportSummary{}, err
	}

	openRegistrations, _, err := s.registrations.ListRegistrations(ctx, RegistrationQuery{
		Status: StatusInProgress,
	})
	if err != nil {
		return ReportSummary{}, err
	}

	summary := reduceSummary(registrations, workers, openRegistrations, s.now())
	s.cache.Store(key, summary)

	logger.With("total_registrations", summary.TotalRegistrations).InfoContext(ctx, "summary computed")
	return summary, nil
}

func reduceSummary(registrations []TimeRegistration, workers []Worker, openRegistrations []TimeRegistration, now time.Time) ReportSummary {
	var summary ReportSummary

	summary.TotalRegistrations = len(registrations)

	var totalHours float64
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, registration := range registrations {
		switch registration.Status {
		case StatusInProgress:
			summary.InProgressCount++
		case StatusCompleted:
			summary.CompletedCount++
		}
		if registration.ManualIntervention {
			summary.ManualInterventionCount++
		}

		hours, ok := registration.DurationHours()
		if ok {
			totalHours += hours
		}

		if !registration.CheckIn.Before(midnight) {
			summary.TodayRegistrations++
			if ok {
				summary.TodayHours += hours
			}
		}
	}

	summary.TotalHours = round2(totalHours)
	summary.TodayHours = round2(summary.TodayHours)
	if summary.CompletedCount > 0 {
		summary.AverageHours = round2(totalHours / float64(summary.CompletedCount))
	}
	if summary.TotalRegistrations > 0 {
		rate := float64(summary.ManualInterventionCount) / float64(summary.TotalRegistrations) * 100
		summary.ManualInterventionRate = round2(rate)
	}

	for _, worker := range workers {
		if worker.Active {
			summary.ActiveWorkers++
		} else {
			summary.InactiveWorkers++
		}
	}

	holders := make(map[string]struct{}, len(openRegistrations))
	for _, registration := range openRegistrations {
		holders[registration.WorkerID] = struct{}{}
	}
	summary.WorkersCheckedIn = len(holders)

	return summary
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func summaryKey(from, to *time.Time) string {
	format := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.UTC().Format(time.RFC3339Nano)
	}
	return format(from) + "|" + format(to)
}
