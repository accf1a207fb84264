package http

import (
	"time"

	"github.com/example/timetrack/internal/application"
)

type workerDTO struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department,omitempty"`
	Active     bool   `json:"active"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// toWorkerDTO converts a worker for external consumption. The PIN hash never
// appears in any payload.
func toWorkerDTO(worker application.Worker) workerDTO {
	return workerDTO{
		ID:         worker.ID,
		FirstName:  worker.FirstName,
		LastName:   worker.LastName,
		Department: worker.Department,
		Active:     worker.Active,
		CreatedAt:  worker.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  worker.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toWorkerDTOs(workers []application.Worker) []workerDTO {
	if len(workers) == 0 {
		return nil
	}
	out := make([]workerDTO, 0, len(workers))
	for _, worker := range workers {
		out = append(out, toWorkerDTO(worker))
	}
	return out
}

type registrationDTO struct {
	ID                 string   `json:"id"`
	WorkerID           string   `json:"worker_id"`
	CheckIn            string   `json:"check_in"`
	CheckOut           *string  `json:"check_out"`
	Status             string   `json:"status"`
	ManualIntervention bool     `json:"manual_intervention"`
	Notes              string   `json:"notes,omitempty"`
	ModifiedByAdminID  string   `json:"modified_by_admin_id,omitempty"`
	DurationHours      *float64 `json:"duration_hours,omitempty"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

func toRegistrationDTO(registration application.TimeRegistration) registrationDTO {
	dto := registrationDTO{
		ID:                 registration.ID,
		WorkerID:           registration.WorkerID,
		CheckIn:            registration.CheckIn.UTC().Format(time.RFC3339Nano),
		Status:             string(registration.Status),
		ManualIntervention: registration.ManualIntervention,
		Notes:              registration.Note,
		ModifiedByAdminID:  registration.ModifiedByAdminID,
		CreatedAt:          registration.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:          registration.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if registration.CheckOut != nil {
		checkOut := registration.CheckOut.UTC().Format(time.RFC3339Nano)
		dto.CheckOut = &checkOut
	}
	if hours, ok := registration.DurationHours(); ok {
		dto.DurationHours = &hours
	}
	return dto
}

func toRegistrationDTOs(registrations []application.TimeRegistration) []registrationDTO {
	if len(registrations) == 0 {
		return nil
	}
	out := make([]registrationDTO, 0, len(registrations))
	for _, registration := range registrations {
		out = append(out, toRegistrationDTO(registration))
	}
	return out
}

type paginationDTO struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

func toPaginationDTO(p application.Pagination) paginationDTO {
	return paginationDTO{
		Page:        p.Page,
		Limit:       p.Limit,
		TotalItems:  p.TotalItems,
		TotalPages:  p.TotalPages,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
	}
}

type summaryDTO struct {
	TotalRegistrations      int     `json:"total_registrations"`
	InProgressCount         int     `json:"in_progress_count"`
	CompletedCount          int     `json:"completed_count"`
	ManualInterventionCount int     `json:"manual_intervention_count"`
	ManualInterventionRate  float64 `json:"manual_intervention_rate"`
	TotalHours              float64 `json:"total_hours"`
	AverageHours            float64 `json:"average_hours"`
	ActiveWorkers           int     `json:"active_workers"`
	InactiveWorkers         int     `json:"inactive_workers"`
	WorkersCheckedIn        int     `json:"workers_checked_in"`
	TodayRegistrations      int     `json:"today_registrations"`
	TodayHours              float64 `json:"today_hours"`
}

func toSummaryDTO(summary application.ReportSummary) summaryDTO {
	return summaryDTO{
		TotalRegistrations:      summary.TotalRegistrations,
		InProgressCount:         summary.InProgressCount,
		CompletedCount:          summary.CompletedCount,
		ManualInterventionCount: summary.ManualInterventionCount,
		ManualInterventionRate:  summary.ManualInterventionRate,
		TotalHours:              summary.TotalHours,
		AverageHours:            summary.AverageHours,
		ActiveWorkers:           summary.ActiveWorkers,
		InactiveWorkers:         summary.InactiveWorkers,
		WorkersCheckedIn:        summary.WorkersCheckedIn,
		TodayRegistrations:      summary.TodayRegistrations,
		TodayHours:              summary.TodayHours,
	}
}
