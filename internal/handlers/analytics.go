package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/habito/habito-api/internal/analytics"
	"github.com/habito/habito-api/internal/database"
	"github.com/habito/habito-api/internal/eventlog"
	"github.com/habito/habito-api/internal/middleware"
	"github.com/habito/habito-api/internal/models"
	"github.com/habito/habito-api/internal/validation"
)

// AnalyticsHandler serves the aggregated consistency views
type AnalyticsHandler struct {
	completionRepo database.CompletionRepositoryInterface
	completionLog  eventlog.Store
	logger         *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(completionRepo database.CompletionRepositoryInterface, completionLog eventlog.Store, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{completionRepo: completionRepo, completionLog: completionLog, logger: logger}
}

// RegisterRoutes registers analytics routes on the given router
// The router should already have the /analytics prefix
func (h *AnalyticsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetReport).Methods("GET")
	r.HandleFunc("/heatmap", h.GetHeatmap).Methods("GET")
	r.HandleFunc("/year", h.GetYearView).Methods("GET")
	r.HandleFunc("/activity", h.GetActivityLog).Methods("GET")
	r.HandleFunc("/activity", h.ClearActivityLog).Methods("DELETE")
}

// parseRangeParam reads and validates the optional "range" query parameter,
// falling back to def when absent. Returns false after writing the error
// response if the value is invalid.
func parseRangeParam(w http.ResponseWriter, r *http.Request, def models.TimeRange) (models.TimeRange, bool) {
	rangeParam := r.URL.Query().Get("range")
	if rangeParam == "" {
		return def, true
	}
	if err := validation.ValidateTimeRange(rangeParam); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return def, false
	}
	return models.TimeRange(rangeParam), true
}

// rangeStart converts a time range into the inclusive lower bound for event
// queries; the all-time range maps to the zero time
func rangeStart(window models.TimeRange, now time.Time) time.Time {
	if window == models.TimeRangeAll {
		return time.Time{}
	}
	return now.AddDate(0, 0, -window.Days())
}

// GetReport computes the consistency rollup for a time range.
// Every call recomputes from the event history; nothing is cached.
func (h *AnalyticsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	window, ok := parseRangeParam(w, r, models.TimeRange30d)
	if !ok {
		return
	}

	now := time.Now()
	events, err := h.completionRepo.GetByUserIDSince(r.Context(), user.ID, rangeStart(window, now))
	if err != nil {
		h.logger.Error("analytics_query_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to compute analytics")
		return
	}

	respondJSON(w, http.StatusOK, analytics.Report(events, window, now))
}

// GetHeatmap returns per-day completion counts for a time range (default 90d)
func (h *AnalyticsHandler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	window, ok := parseRangeParam(w, r, models.TimeRange90d)
	if !ok {
		return
	}

	since := rangeStart(window, time.Now())
	points, err := h.completionRepo.CompletedPerDay(r.Context(), user.ID, since)
	if err != nil {
		h.logger.Error("heatmap_query_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to compute heatmap")
		return
	}

	respondJSON(w, http.StatusOK, points)
}

// GetYearView returns a per-day completed flag for a calendar year
func (h *AnalyticsHandler) GetYearView(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	year := time.Now().Year()
	if yearParam := r.URL.Query().Get("year"); yearParam != "" {
		parsed, err := strconv.Atoi(yearParam)
		if err != nil || parsed < 2000 || parsed > 2100 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid year")
			return
		}
		year = parsed
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(1, 0, 0)
	events, err := h.completionRepo.GetByUserIDRange(r.Context(), user.ID, start, end)
	if err != nil {
		h.logger.Error("year_view_query_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to compute year view")
		return
	}

	respondJSON(w, http.StatusOK, analytics.YearView(events, year))
}

// ActivityLogResponse is the activity log plus a summary recomputed from it
type ActivityLogResponse struct {
	Records []eventlog.Record      `json:"records"`
	Summary models.AnalyticsReport `json:"summary"`
}

// GetActivityLog returns the user's raw event log for a time range (default
// 30d) along with a consistency summary computed from those records alone.
// Unlike GetReport this reads the append-only log, not the completions table,
// so it reflects exactly what was recorded as it happened.
func (h *AnalyticsHandler) GetActivityLog(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	window, ok := parseRangeParam(w, r, models.TimeRange30d)
	if !ok {
		return
	}

	now := time.Now()
	var records []eventlog.Record
	var err error
	if window == models.TimeRangeAll {
		records, err = h.completionLog.Records(r.Context(), user.ID)
	} else {
		records, err = h.completionLog.RecordsSince(r.Context(), user.ID, rangeStart(window, now))
	}
	if err != nil {
		h.logger.Error("activity_log_query_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to read activity log")
		return
	}
	if records == nil {
		records = []eventlog.Record{}
	}

	summary := analytics.Report(analytics.EventsFromLog(records), window, now)
	respondJSON(w, http.StatusOK, ActivityLogResponse{Records: records, Summary: summary})
}

// ClearActivityLog erases the user's event log. Streak counters and the
// completions table are untouched; only the local activity mirror is reset.
func (h *AnalyticsHandler) ClearActivityLog(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	if err := h.completionLog.Clear(r.Context(), user.ID); err != nil {
		h.logger.Error("activity_log_clear_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to clear activity log")
		return
	}

	h.logger.Info("activity_log_cleared", zap.String("user_id", user.ID.String()))
	respondJSON(w, http.StatusOK, map[string]string{"message": "Activity log cleared"})
}
