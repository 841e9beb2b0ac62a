package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/habito/habito-api/internal/database"
	"github.com/habito/habito-api/internal/engine"
	"github.com/habito/habito-api/internal/middleware"
	"github.com/habito/habito-api/internal/models"
	"github.com/habito/habito-api/internal/templates"
	"github.com/habito/habito-api/internal/validation"
)

const (
	// MaxHabitNameLength is the maximum length for a habit name
	MaxHabitNameLength = 200
	// MaxDescriptionLength is the maximum length for a habit description
	MaxDescriptionLength = 2000
	// MaxReasonLength is the maximum length for a missed reason
	MaxReasonLength = 500
)

// HabitHandler handles habit-related requests
type HabitHandler struct {
	habitRepo *database.HabitRepository
	engine    *engine.Engine
	logger    *zap.Logger
}

// NewHabitHandler creates a new habit handler
func NewHabitHandler(habitRepo *database.HabitRepository, eng *engine.Engine, logger *zap.Logger) *HabitHandler {
	return &HabitHandler{habitRepo: habitRepo, engine: eng, logger: logger}
}

// RegisterRoutes registers habit routes on the given router
// The router should already have the /habits prefix
func (h *HabitHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListHabits).Methods("GET")
	r.HandleFunc("", h.CreateHabit).Methods("POST")
	r.HandleFunc("/templates", h.ListTemplates).Methods("GET")
	r.HandleFunc("/milestones", h.GetMilestones).Methods("GET")
	r.HandleFunc("/{id}", h.GetHabit).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateHabit).Methods("PATCH")
	r.HandleFunc("/{id}/complete", h.CompleteHabit).Methods("POST")
	r.HandleFunc("/{id}/missed", h.ReportMissed).Methods("POST")
}

// CreateHabitRequest represents a create habit request. Either template_id or
// the descriptive fields must be provided; template fields can be overridden.
type CreateHabitRequest struct {
	TemplateID   *string `json:"template_id,omitempty"`
	Name         string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description  string  `json:"description" validate:"omitempty,max=2000"`
	Category     *string `json:"category,omitempty"`
	TimeOfDay    string  `json:"time_of_day" validate:"omitempty,time_of_day"`
	Occurrence   string  `json:"occurrence" validate:"omitempty,occurrence"`
	SpecificTime *string `json:"specific_time,omitempty"`
}

// UpdateHabitRequest represents an update to a habit's descriptive fields.
// Streak counters are never client-writable.
type UpdateHabitRequest struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	Category     *string `json:"category,omitempty"`
	TimeOfDay    *string `json:"time_of_day,omitempty"`
	Occurrence   *string `json:"occurrence,omitempty"`
	SpecificTime *string `json:"specific_time,omitempty"`
	IconURL      *string `json:"icon_url,omitempty"`
}

// ReportMissedRequest carries the reason for a missed habit
type ReportMissedRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

// view joins a habit with its transient attempt overlay
func (h *HabitHandler) view(habit *models.Habit, now time.Time) *models.HabitView {
	attempt := h.engine.State(habit.ID)
	view := &models.HabitView{
		Habit:          *habit,
		CompletedToday: habit.CompletedOn(now),
		Pending:        attempt.Status == engine.StatusPending,
		Missed:         attempt.Status == engine.StatusMissed,
	}
	if attempt.Status == engine.StatusMissed && attempt.Reason != "" {
		reason := attempt.Reason
		view.MissedReason = &reason
	}
	return view
}

// ListHabits lists habits for the authenticated user
func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	ctx := r.Context()

	var timeOfDay *models.TimeOfDay
	if tod := r.URL.Query().Get("time_of_day"); tod != "" {
		if err := validation.ValidateTimeOfDay(tod); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		todEnum := models.TimeOfDay(tod)
		timeOfDay = &todEnum
	}

	var occurrence *models.Occurrence
	if occ := r.URL.Query().Get("occurrence"); occ != "" {
		if err := validation.ValidateOccurrence(occ); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		occEnum := models.Occurrence(occ)
		occurrence = &occEnum
	}

	habits, err := h.habitRepo.GetByUserID(ctx, user.ID, timeOfDay, occurrence)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve habits")
		return
	}

	now := time.Now()
	views := make([]*models.HabitView, 0, len(habits))
	for _, habit := range habits {
		views = append(views, h.view(habit, now))
	}

	respondJSON(w, http.StatusOK, views)
}

// CreateHabit creates a new habit, either custom or from a template
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateHabitRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	habit := &models.Habit{
		ID:         uuid.New(),
		UserID:     user.ID,
		TimeOfDay:  models.TimeOfDayAnytime,
		Occurrence: models.OccurrenceDaily,
	}

	if req.TemplateID != nil {
		tmpl := templates.ByID(*req.TemplateID)
		if tmpl == nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Unknown template: %s", *req.TemplateID))
			return
		}
		habit.Name = tmpl.Name
		habit.Description = tmpl.Description
		habit.TimeOfDay = tmpl.TimeOfDay
		habit.Occurrence = tmpl.Occurrence
		category := string(tmpl.Category)
		habit.Category = &category
	}

	// Explicit fields override template values
	if name := validation.SanitizeText(req.Name); name != "" {
		habit.Name = name
	}
	if desc := validation.SanitizeText(req.Description); desc != "" {
		habit.Description = desc
	}
	if req.Category != nil {
		habit.Category = req.Category
	}
	if req.TimeOfDay != "" {
		habit.TimeOfDay = models.TimeOfDay(req.TimeOfDay)
	}
	if req.Occurrence != "" {
		habit.Occurrence = models.Occurrence(req.Occurrence)
	}
	if req.SpecificTime != nil {
		habit.SpecificTime = req.SpecificTime
	}

	if habit.Name == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Habit name is required")
		return
	}
	if len(habit.Name) > MaxHabitNameLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Name exceeds maximum length of %d characters", MaxHabitNameLength))
		return
	}

	ctx := r.Context()
	if err := h.habitRepo.Create(ctx, habit); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create habit")
		return
	}

	h.engine.RecordCreated(ctx, habit)

	respondJSON(w, http.StatusCreated, h.view(habit, time.Now()))
}

// GetHabit retrieves a habit by ID
func (h *HabitHandler) GetHabit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	habit, ok := h.loadOwnedHabit(w, r, user.ID)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, h.view(habit, time.Now()))
}

// UpdateHabit updates a habit's descriptive and scheduling fields
func (h *HabitHandler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	habit, ok := h.loadOwnedHabit(w, r, user.ID)
	if !ok {
		return
	}

	var req UpdateHabitRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if req.Name != nil {
		sanitized := validation.SanitizeText(*req.Name)
		if sanitized == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name cannot be empty after sanitization")
			return
		}
		if len(sanitized) > MaxHabitNameLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Name exceeds maximum length of %d characters", MaxHabitNameLength))
			return
		}
		habit.Name = sanitized
	}
	if req.Description != nil {
		sanitized := validation.SanitizeText(*req.Description)
		if len(sanitized) > MaxDescriptionLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Description exceeds maximum length of %d characters", MaxDescriptionLength))
			return
		}
		habit.Description = sanitized
	}
	if req.Category != nil {
		habit.Category = req.Category
	}
	if req.TimeOfDay != nil {
		if err := validation.ValidateTimeOfDay(*req.TimeOfDay); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		habit.TimeOfDay = models.TimeOfDay(*req.TimeOfDay)
	}
	if req.Occurrence != nil {
		if err := validation.ValidateOccurrence(*req.Occurrence); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		habit.Occurrence = models.Occurrence(*req.Occurrence)
	}
	if req.SpecificTime != nil {
		habit.SpecificTime = req.SpecificTime
	}
	if req.IconURL != nil {
		habit.IconURL = req.IconURL
	}

	if err := h.habitRepo.Update(r.Context(), habit); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update habit")
		return
	}

	respondJSON(w, http.StatusOK, h.view(habit, time.Now()))
}

// CompleteHabit drives one completion attempt through the engine
func (h *HabitHandler) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid habit ID")
		return
	}

	habit, err := h.engine.Complete(r.Context(), user.ID, id)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.view(habit, time.Now()))
}

// ReportMissed records a missed habit with a reason
func (h *HabitHandler) ReportMissed(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid habit ID")
		return
	}

	var req ReportMissedRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Reason is required")
		return
	}

	habit, err := h.engine.ReportMissed(r.Context(), user.ID, id, req.Reason)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.view(habit, time.Now()))
}

// ListTemplates returns the built-in habit template catalog
func (h *HabitHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, templates.Catalog)
}

// GetMilestones returns the cross-habit milestone summary
func (h *HabitHandler) GetMilestones(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	summary, err := h.habitRepo.MilestoneSummary(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to compute milestones")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// loadOwnedHabit fetches the habit in the route and verifies ownership,
// writing the error response itself on failure
func (h *HabitHandler) loadOwnedHabit(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*models.Habit, bool) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid habit ID")
		return nil, false
	}

	habit, err := h.habitRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Habit not found")
		return nil, false
	}

	if habit.UserID != userID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Habit does not belong to user")
		return nil, false
	}

	return habit, true
}

// respondEngineError maps engine errors onto HTTP responses
func (h *HabitHandler) respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotOwner):
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Habit does not belong to user")
	case errors.Is(err, engine.ErrAlreadyCompleted):
		respondJSONError(w, http.StatusConflict, "Conflict", "Habit already completed today")
	case errors.Is(err, engine.ErrAttemptInFlight):
		respondJSONError(w, http.StatusConflict, "Conflict", "A completion attempt is already in progress")
	case errors.Is(err, engine.ErrEmptyReason):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Missed reason must not be empty")
	case errors.Is(err, engine.ErrAckFailed):
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Completion could not be confirmed, please try again")
	default:
		h.logger.Error("habit_transition_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update habit")
	}
}
