package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/request"
	"github.com/benvon/smart-scheduler/internal/services/assistant"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// dateLayout is the calendar date format accepted by the slots endpoint
const dateLayout = "2006-01-02"

// Assistant is the orchestrator surface the HTTP API exposes
type Assistant interface {
	GetPreferences(ctx context.Context, userID uuid.UUID) (*models.Preference, error)
	SetPreferences(ctx context.Context, userID uuid.UUID, p *models.Preference) (*models.Preference, error)
	FindOptimalSlots(ctx context.Context, userID uuid.UUID, q assistant.SlotQuery) (*models.SlotResult, error)
	PredictNoShow(ctx context.Context, userID, meetingID uuid.UUID) (models.Result[*models.RiskPrediction], error)
	GenerateMeetingPrep(ctx context.Context, userID, meetingID uuid.UUID) (models.Result[*models.MeetingPrep], error)
	ScheduleReminder(ctx context.Context, userID, meetingID uuid.UUID) ([]models.Reminder, error)
	ListReminders(ctx context.Context, userID uuid.UUID, includeSent bool) ([]models.Reminder, error)
}

var _ Assistant = (*assistant.Assistant)(nil)

// SchedulingHandler handles preference, slot, meeting and reminder requests
type SchedulingHandler struct {
	assistant Assistant
	logger    *zap.Logger
}

// NewSchedulingHandler creates a new scheduling handler
func NewSchedulingHandler(a Assistant, logger *zap.Logger) *SchedulingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulingHandler{assistant: a, logger: logger}
}

// RegisterRoutes registers routes on the given router
// The router should already have the /api/v1 prefix
func (h *SchedulingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/preferences", h.GetPreferences).Methods("GET")
	r.HandleFunc("/preferences", h.SetPreferences).Methods("PUT")
	r.HandleFunc("/slots", h.FindSlots).Methods("GET")
	r.HandleFunc("/meetings/{id}/risk", h.PredictNoShow).Methods("POST")
	r.HandleFunc("/meetings/{id}/prep", h.GenerateMeetingPrep).Methods("POST")
	r.HandleFunc("/meetings/{id}/reminders", h.ScheduleReminder).Methods("POST")
	r.HandleFunc("/reminders", h.ListReminders).Methods("GET")
}

// userID returns the authenticated user's ID, writing a 401 when absent
func userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return uuid.Nil, false
	}
	return user.ID, true
}

// meetingID parses the {id} route variable, writing a 400 when malformed
func meetingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "InvalidInput", "Invalid meeting ID")
		return uuid.Nil, false
	}
	return id, true
}

// GetPreferences returns the user's saved preferences
func (h *SchedulingHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	p, err := h.assistant.GetPreferences(r.Context(), uid)
	if err != nil {
		respondAppError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// SetPreferences replaces the user's preferences
func (h *SchedulingHandler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var p models.Preference
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		respondJSONError(w, http.StatusBadRequest, "InvalidInput", "Invalid request body")
		return
	}

	saved, err := h.assistant.SetPreferences(r.Context(), uid, &p)
	if err != nil {
		respondAppError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// parseSlotQuery reads the slot search parameters from the query string
func parseSlotQuery(r *http.Request) (assistant.SlotQuery, error) {
	q := r.URL.Query()
	var query assistant.SlotQuery

	raw := q.Get("duration")
	if raw == "" {
		return query, fmt.Errorf("duration is required")
	}
	duration, err := strconv.Atoi(raw)
	if err != nil {
		return query, fmt.Errorf("duration must be a whole number of minutes")
	}
	query.DurationMinutes = duration

	raw = q.Get("date")
	if raw == "" {
		return query, fmt.Errorf("date is required")
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return query, fmt.Errorf("date must be formatted as YYYY-MM-DD")
	}
	query.Date = date

	query.MeetingType = q.Get("meeting_type")

	if raw = q.Get("top_k"); raw != "" {
		topK, err := strconv.Atoi(raw)
		if err != nil {
			return query, fmt.Errorf("top_k must be a whole number")
		}
		query.TopK = topK
	}

	if raw = q.Get("distinct"); raw != "" {
		distinct, err := strconv.ParseBool(raw)
		if err != nil {
			return query, fmt.Errorf("distinct must be true or false")
		}
		query.Distinct = distinct
	}

	return query, nil
}

// FindSlots ranks candidate slots for a day
func (h *SchedulingHandler) FindSlots(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	query, err := parseSlotQuery(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "InvalidInput", err.Error())
		return
	}

	result, err := h.assistant.FindOptimalSlots(r.Context(), uid, query)
	if err != nil {
		respondAppError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// PredictNoShow computes and stores a no-show prediction for a meeting
func (h *SchedulingHandler) PredictNoShow(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	mid, ok := meetingID(w, r)
	if !ok {
		return
	}
	result, err := h.assistant.PredictNoShow(r.Context(), uid, mid)
	if err != nil {
		respondAppError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GenerateMeetingPrep builds and stores the preparation brief for a meeting
func (h *SchedulingHandler) GenerateMeetingPrep(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	mid, ok := meetingID(w, r)
	if !ok {
		return
	}
	result, err := h.assistant.GenerateMeetingPrep(r.Context(), uid, mid)
	if err != nil {
		respondAppError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ScheduleReminder plans the reminders of a meeting
func (h *SchedulingHandler) ScheduleReminder(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	mid, ok := meetingID(w, r)
	if !ok {
		return
	}
	planned, err := h.assistant.ScheduleReminder(r.Context(), uid, mid)
	if err != nil {
		respondAppError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, planned)
}

// ListReminders lists the user's pending reminders, plus sent ones on request
func (h *SchedulingHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	includeSent := false
	if raw := r.URL.Query().Get("include_sent"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "InvalidInput", "include_sent must be true or false")
			return
		}
		includeSent = v
	}

	list, err := h.assistant.ListReminders(r.Context(), uid, includeSent)
	if err != nil {
		respondAppError(w, r, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, list)
}
