package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/timetrack/internal/application"
)

type reportService interface {
	Summary(ctx context.Context, params application.SummaryParams) (application.ReportSummary, error)
}

// ReportHandler serves the dashboard reporting endpoints.
type ReportHandler struct {
	service   reportService
	responder responder
	logger    *slog.Logger
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(service reportService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReportHandler", operation, attrs...)
}

type summaryResponse struct {
	Summary summaryDTO `json:"summary"`
}

// Summary aggregates KPIs over an optional date window.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	params := application.SummaryParams{Principal: principal}
	fieldErrors := map[string]string{}

	query := r.URL.Query()
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
	if len(fieldErrors) > 0 {
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, codeValidation, "The request contains invalid parameters.", fieldErrors)
		return
	}

	logger := h.log(r.Context(), "Summary", "principal_id", principal.AdminID)

	summary, err := h.service.Summary(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "summary aggregation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "summary computed")
	h.responder.writeData(r.Context(), w, http.StatusOK, summaryResponse{Summary: toSummaryDTO(summary)}, "")
}
