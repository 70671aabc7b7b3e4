package handlers

import (
	"context"
	"net/http"

	"eJournalAPI/middleware"
	"eJournalAPI/services"

	"github.com/gorilla/mux"
)

type StudyHandler struct {
	studyService *services.StudyService
}

func NewStudyHandler(studyService *services.StudyService) *StudyHandler {
	return &StudyHandler{
		studyService: studyService,
	}
}

func (h *StudyHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	subjects, err := h.studyService.ListSubjects(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, "Error while getting subjects")
		return
	}

	respondWithJSON(w, http.StatusOK, subjects)
}

func (h *StudyHandler) AddSubject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Name        string  `json:"name"`
		TargetHours float64 `json:"targetHours"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	subject, err := h.studyService.AddSubject(ctx, userID, req.Name, req.TargetHours)
	if err != nil {
		respondWithServiceError(w, err, "Failed to add subject")
		return
	}

	respondWithJSON(w, http.StatusCreated, subject)
}

func (h *StudyHandler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.studyService.DeleteSubject(ctx, userID, mux.Vars(r)["name"]); err != nil {
		respondWithServiceError(w, err, "Failed to delete subject")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Subject deleted"})
}

func (h *StudyHandler) SetTargetHours(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		TargetHours *float64 `json:"targetHours"`
	}
	if err := decodeJSON(r, &req); err != nil || req.TargetHours == nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	subject, err := h.studyService.SetTargetHours(ctx, userID, mux.Vars(r)["name"], *req.TargetHours)
	if err != nil {
		respondWithServiceError(w, err, "Failed to set target hours")
		return
	}

	respondWithJSON(w, http.StatusOK, subject)
}

func (h *StudyHandler) LogHours(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Hours *float64 `json:"hours"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Hours == nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vars := mux.Vars(r)
	subject, err := h.studyService.LogHours(ctx, userID, vars["name"], vars["date"], *req.Hours)
	if err != nil {
		respondWithServiceError(w, err, "Failed to log study hours")
		return
	}

	respondWithJSON(w, http.StatusOK, subject)
}

func (h *StudyHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
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

	view, err := h.studyService.MonthView(ctx, userID, mux.Vars(r)["name"], q)
	if err != nil {
		respondWithServiceError(w, err, "Error while getting calendar")
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}
