package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/timetrack/internal/application"
)

type registrationService interface {
	CreateRegistration(ctx context.Context, params application.CreateRegistrationParams) (application.TimeRegistration, error)
	UpdateRegistration(ctx context.Context, params application.UpdateRegistrationParams) (application.TimeRegistration, error)
	DeleteRegistration(ctx context.Context, principal application.Principal, registrationID string) error
	ListRegistrations(ctx context.Context, params application.ListRegistrationsParams) (application.RegistrationPage, error)
}

// RegistrationHandler serves the administrator registration endpoints.
type RegistrationHandler struct {
	service   registrationService
	responder responder
	logger    *slog.Logger
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(service registrationService, logger *slog.Logger) *RegistrationHandler {
	base := defaultLogger(logger)
	return &RegistrationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RegistrationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RegistrationHandler", operation, attrs...)
}

type createRegistrationRequest struct {
	WorkerID string `json:"worker_id"`
	CheckIn  string `json:"check_in"`
	Notes    string `json:"notes"`
}

type updateRegistrationRequest struct {
	CheckIn  *string `json:"check_in"`
	CheckOut *string `json:"check_out"`
	Status   *string `json:"status"`
	Notes    *string `json:"notes"`
}

type registrationResponse struct {
	Registration registrationDTO `json:"registration"`
}

type listRegistrationsResponse struct {
	Registrations []registrationDTO `json:"registrations"`
	Pagination    paginationDTO     `json:"pagination"`
}

// Create records a manual time registration on behalf of a worker.
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req createRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode registration request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody.Error(), nil)
		return
	}

	checkIn, fieldErrors := parseTimestampField(req.CheckIn, "check_in")
	if len(fieldErrors) > 0 {
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, codeValidation, "The request contains invalid fields.", fieldErrors)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.AdminID, "worker_id", req.WorkerID)

	registration, err := h.service.CreateRegistration(r.Context(), application.CreateRegistrationParams{
		Principal: principal,
		WorkerID:  req.WorkerID,
		CheckIn:   checkIn,
		Note:      req.Notes,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "registration creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("registration_id", registration.ID).InfoContext(r.Context(), "registration created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, registrationResponse{Registration: toRegistrationDTO(registration)}, "")
}

// Update patches a registration's attributes and marks it as manually adjusted.
func (h *RegistrationHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	registrationID, ok := RegistrationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(registrationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, "A registration id is required.", nil)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req updateRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "registration_id", registrationID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode registration update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody.Error(), nil)
		return
	}

	patch, fieldErrors := buildRegistrationPatch(req)
	if len(fieldErrors) > 0 {
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, codeValidation, "The request contains invalid fields.", fieldErrors)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.AdminID, "registration_id", registrationID)

	registration, err := h.service.UpdateRegistration(r.Context(), application.UpdateRegistrationParams{
		Principal:      principal,
		RegistrationID: registrationID,
		Patch:          patch,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "registration update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "registration updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, registrationResponse{Registration: toRegistrationDTO(registration)}, "")
}

// Delete removes a registration permanently.
func (h *RegistrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	registrationID, ok := RegistrationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(registrationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, "A registration id is required.", nil)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.AdminID, "registration_id", registrationID)

	if err := h.service.DeleteRegistration(r.Context(), principal, registrationID); err != nil {
		logger.ErrorContext(r.Context(), "registration deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "registration deleted")
	h.responder.writeData(r.Context(), w, http.StatusOK, nil, "The registration was deleted.")
}

// List returns registrations filtered, sorted, and paginated per query
// parameters.
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	params, fieldErrors := parseListRegistrationsQuery(r)
	if len(fieldErrors) > 0 {
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, codeValidation, "The request contains invalid parameters.", fieldErrors)
		return
	}
	params.Principal = principal

	logger := h.log(r.Context(), "List", "principal_id", principal.AdminID)

	page, err := h.service.ListRegistrations(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "registration list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With(
		"result_count", len(page.Registrations),
		"total_items", page.Pagination.TotalItems,
	).InfoContext(r.Context(), "registrations listed")

	h.responder.writeData(r.Context(), w, http.StatusOK, listRegistrationsResponse{
		Registrations: toRegistrationDTOs(page.Registrations),
		Pagination:    toPaginationDTO(page.Pagination),
	}, "")
}

func buildRegistrationPatch(req updateRegistrationRequest) (application.RegistrationPatch, map[string]string) {
	patch := application.RegistrationPatch{}
	fieldErrors := map[string]string{}

	if req.CheckIn != nil {
		value, err := parseTimestamp(*req.CheckIn)
		if err != nil {
			fieldErrors["check_in"] = "must be an RFC 3339 timestamp"
		} else {
			patch.CheckIn = &value
		}
	}
	if req.CheckOut != nil {
		value, err := parseTimestamp(*req.CheckOut)
		if err != nil {
			fieldErrors["check_out"] = "must be an RFC 3339 timestamp"
		} else {
			patch.CheckOut = &value
		}
	}
	if req.Status != nil {
		status := application.RegistrationStatus(strings.TrimSpace(*req.Status))
		patch.Status = &status
	}
	if req.Notes != nil {
		patch.Note = req.Notes
	}

	if len(fieldErrors) > 0 {
		return application.RegistrationPatch{}, fieldErrors
	}
	return patch, nil
}

func parseListRegistrationsQuery(r *http.Request) (application.ListRegistrationsParams, map[string]string) {
	query := r.URL.Query()
	params := application.ListRegistrationsParams{
		WorkerID:  strings.TrimSpace(query.Get("worker_id")),
		Status:    application.RegistrationStatus(strings.TrimSpace(query.Get("status"))),
		SortBy:    strings.TrimSpace(query.Get("sort_by")),
		SortOrder: strings.TrimSpace(query.Get("sort_order")),
	}
	fieldErrors := map[string]string{}

	if raw := strings.TrimSpace(query.Get("manual_intervention")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			fieldErrors["manual_intervention"] = "must be true or false"
		} else {
			params.ManualIntervention = &value
		}
	}
	if raw := strings.TrimSpace(query.Get("date_from")); raw != "" {
		value, err := parseTimestamp(raw)
		if err != nil {
			fieldErrors["date_from"] = "must be an RFC 3339 timestamp"
		} else {
			params.DateFrom = &value
		}
	}
	if raw := strings.TrimSpace(query.Get("date_to")); raw != "" {
		value, err := parseTimestamp(raw)
		if err != nil {
			fieldErrors["date_to"] = "must be an RFC 3339 timestamp"
		} else {
			params.DateTo = &value
		}
	}
	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 1 {
			fieldErrors["page"] = "must be a positive integer"
		} else {
			params.Page = value
		}
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 1 {
			fieldErrors["limit"] = "must be a positive integer"
		} else {
			params.Limit = value
		}
	}

	if len(fieldErrors) > 0 {
		return application.ListRegistrationsParams{}, fieldErrors
	}
	return params, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(raw))
}

func parseTimestampField(raw, field string) (time.Time, map[string]string) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, map[string]string{field: "is required"}
	}
	value, err := parseTimestamp(raw)
	if err != nil {
		return time.Time{}, map[string]string{field: "must be an RFC 3339 timestamp"}
	}
	return value, nil
}
