package handlers

import (
	"context"
	"net/http"

	"eJournalAPI/internal/mood"
	"eJournalAPI/middleware"
	"eJournalAPI/services"

	"github.com/gorilla/mux"
)

type MoodHandler struct {
	moodService *services.MoodService
}

func NewMoodHandler(moodService *services.MoodService) *MoodHandler {
	return &MoodHandler{
		moodService: moodService,
	}
}

// moodDay is a stored day plus the scale level of its mood, so clients can
// render the emoji without their own copy of the scale.
type moodDay struct {
	*mood.Day
	Level *mood.Level `json:"level,omitempty"`
}

func withLevel(day *mood.Day) moodDay {
	out := moodDay{Day: day}
	if day.Mood != nil {
		if level, err := mood.LevelFor(*day.Mood); err == nil {
			out.Level = &level
		}
	}
	return out
}

// GetScale lists the mood levels from MinMood to MaxMood.
func GetScale(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, mood.Scale)
}

func (h *MoodHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	q, err := parseMonthQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.moodService.MonthView(ctx, userID, q)
	if err != nil {
		respondWithServiceError(w, err, "Error while getting calendar")
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

func (h *MoodHandler) GetDays(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	days, err := h.moodService.GetDays(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, "Error while getting mood days")
		return
	}

	out := make(map[string]moodDay, len(days))
	for key, day := range days {
		out[key] = withLevel(&day)
	}
	respondWithJSON(w, http.StatusOK, out)
}

func (h *MoodHandler) SetMood(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Mood *int   `json:"mood"`
		Note string `json:"note"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Mood == nil {
		respondWithError(w, http.StatusBadRequest, "mood is required")
		return
	}

	day, err := h.moodService.SetMoodAndNote(ctx, userID, mux.Vars(r)["date"], *req.Mood, req.Note)
	if err != nil {
		respondWithServiceError(w, err, "Failed to save mood")
		return
	}

	respondWithJSON(w, http.StatusOK, withLevel(day))
}

func (h *MoodHandler) SetPeriod(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Period *bool `json:"period"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Period == nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	day, err := h.moodService.SetPeriod(ctx, userID, mux.Vars(r)["date"], *req.Period)
	if err != nil {
		respondWithServiceError(w, err, "Failed to save period")
		return
	}

	respondWithJSON(w, http.StatusOK, withLevel(day))
}

func (h *MoodHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	stats, err := h.moodService.Stats(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, "Error while getting mood stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
