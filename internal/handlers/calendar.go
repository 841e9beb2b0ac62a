package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/habito/habito-api/internal/calendar"
	"github.com/habito/habito-api/internal/database"
	"github.com/habito/habito-api/internal/middleware"
)

// CalendarHandler serves the habit schedule as an iCalendar download
type CalendarHandler struct {
	habitRepo *database.HabitRepository
	logger    *zap.Logger
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(habitRepo *database.HabitRepository, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{habitRepo: habitRepo, logger: logger}
}

// Export renders every habit as a recurring VEVENT
func (h *CalendarHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	habits, err := h.habitRepo.GetByUserID(r.Context(), user.ID, nil, nil)
	if err != nil {
		h.logger.Error("calendar_query_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to export calendar")
		return
	}

	ics := calendar.Generate(habits, time.Now())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="habito.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(ics)); err != nil {
		h.logger.Warn("calendar_write_failed", zap.Error(err))
	}
}
