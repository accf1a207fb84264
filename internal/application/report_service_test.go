package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestReportService_Summary(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 3, 15, 0, 0, 0, time.UTC)
	admin := Principal{AdminID: "admin-1", IsAdmin: true}

	completed := func(id string, checkIn time.Time, hours int, manual bool) TimeRegistration {
		checkOut := checkIn.Add(time.Duration(hours) * time.Hour)
		return TimeRegistration{
			ID:                 id,
			WorkerID:           "worker-1",
			CheckIn:            checkIn,
			CheckOut:           &checkOut,
			Status:             StatusCompleted,
			ManualIntervention: manual,
		}
	}

	t.Run("reduces counts, hours, and rates over the window", func(t *testing.T) {
		t.Parallel()

		yesterday := now.Add(-24 * time.Hour)
		today := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)
		registrations := &registrationRepoStub{registrations: []TimeRegistration{
			completed("reg-1", yesterday, 8, false),
			completed("reg-2", yesterday.Add(time.Hour), 6, true),
			completed("reg-3", today, 4, false),
			{ID: "reg-4", WorkerID: "worker-2", CheckIn: today.Add(time.Hour), Status: StatusInProgress, ManualIntervention: true},
		}}
		workers := &workerRepoStub{workers: []Worker{
			{ID: "worker-1", Active: true},
			{ID: "worker-2", Active: true},
			{ID: "worker-3", Active: false},
		}}

		svc := NewReportService(registrations, workers, func() time.Time { return now })

		summary, err := svc.Summary(context.Background(), SummaryParams{Principal: admin})
		if err != nil {
			t.Fatalf("Summary failed: %v", err)
		}

		if summary.TotalRegistrations != 4 {
			t.Fatalf("expected 4 registrations, got %d", summary.TotalRegistrations)
		}
		if summary.CompletedCount != 3 || summary.InProgressCount != 1 {
			t.Fatalf("unexpected status counts: %+v", summary)
		}
		if summary.ManualInterventionCount != 2 {
			t.Fatalf("expected 2 manual interventions, got %d", summary.ManualInterventionCount)
		}
		if summary.ManualInterventionRate != 50 {
			t.Fatalf("expected 50%% manual rate, got %v", summary.ManualInterventionRate)
		}
		if summary.TotalHours != 18 {
			t.Fatalf("expected 18 total hours, got %v", summary.TotalHours)
		}
		if summary.AverageHours != 6 {
			t.Fatalf("expected 6 average hours, got %v", summary.AverageHours)
		}
		if summary.ActiveWorkers != 2 || summary.InactiveWorkers != 1 {
			t.Fatalf("unexpected worker counts: %+v", summary)
		}
		if summary.WorkersCheckedIn != 1 {
			t.Fatalf("expected 1 worker checked in, got %d", summary.WorkersCheckedIn)
		}
		if summary.TodayRegistrations != 2 {
			t.Fatalf("expected 2 registrations today, got %d", summary.TodayRegistrations)
		}
		if summary.TodayHours != 4 {
			t.Fatalf("expected 4 hours today, got %v", summary.TodayHours)
		}
	})

	t.Run("guards divisions against empty data", func(t *testing.T) {
		t.Parallel()

		svc := NewReportService(&registrationRepoStub{}, &workerRepoStub{}, func() time.Time { return now })

		summary, err := svc.Summary(context.Background(), SummaryParams{Principal: admin})
		if err != nil {
			t.Fatalf("Summary failed: %v", err)
		}
		if summary.ManualInterventionRate != 0 || summary.AverageHours != 0 {
			t.Fatalf("expected zero rates on empty data, got %+v", summary)
		}
	})

	t.Run("requires administrator rights", func(t *testing.T) {
		t.Parallel()

		svc := NewReportService(&registrationRepoStub{}, &workerRepoStub{}, time.Now)
		_, err := svc.Summary(context.Background(), SummaryParams{})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("serves repeated requests from cache until invalidated", func(t *testing.T) {
		t.Parallel()

		registrations := &registrationRepoStub{registrations: []TimeRegistration{
			completed("reg-1", now.Add(-2*time.Hour), 1, false),
		}}
		workers := &workerRepoStub{}
		svc := NewReportService(registrations, workers, func() time.Time { return now })

		first, err := svc.Summary(context.Background(), SummaryParams{Principal: admin})
		if err != nil {
			t.Fatalf("Summary failed: %v", err)
		}

		// A write the cache has not seen yet.
		registrations.registrations = append(registrations.registrations, completed("reg-2", now.Add(-time.Hour), 1, false))

		cached, err := svc.Summary(context.Background(), SummaryParams{Principal: admin})
		if err != nil {
			t.Fatalf("Summary failed: %v", err)
		}
		if cached.TotalRegistrations != first.TotalRegistrations {
			t.Fatalf("expected cached summary, got %d registrations", cached.TotalRegistrations)
		}

		svc.InvalidateCache()

		fresh, err := svc.Summary(context.Background(), SummaryParams{Principal: admin})
		if err != nil {
			t.Fatalf("Summary failed: %v", err)
		}
		if fresh.TotalRegistrations != 2 {
			t.Fatalf("expected fresh summary after invalidation, got %d", fresh.TotalRegistrations)
		}
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("boom")
		registrations := &registrationRepoStub{listErr: expected}
		svc := NewReportService(registrations, &workerRepoStub{}, time.Now)

		_, err := svc.Summary(context.Background(), SummaryParams{Principal: admin})
		if !errors.Is(err, expected) {
			t.Fatalf("expected %v, got %v", expected, err)
		}
	})
}
