package handlers

import (
	"context"
	"net/http"

	"eJournalAPI/internal/journal"
	"eJournalAPI/middleware"
	"eJournalAPI/services"

	"github.com/gorilla/mux"
)

type JournalHandler struct {
	journalService *services.JournalService
}

func NewJournalHandler(journalService *services.JournalService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
	}
}

// entryResponse carries the prompt text of every field next to the entry.
type entryResponse struct {
	*journal.Entry
	Prompts map[string]string `json:"prompts"`
}

func withPrompts(entry *journal.Entry) entryResponse {
	return entryResponse{Entry: entry, Prompts: journal.Prompts}
}

func (h *JournalHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
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

	view, err := h.journalService.MonthView(ctx, userID, q)
	if err != nil {
		respondWithServiceError(w, err, "Error while getting calendar")
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

func (h *JournalHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entries, err := h.journalService.GetEntries(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, "Error while getting journal entries")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *JournalHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entry, err := h.journalService.GetEntry(ctx, userID, mux.Vars(r)["date"])
	if err != nil {
		respondWithServiceError(w, err, "Error while getting journal entry")
		return
	}

	respondWithJSON(w, http.StatusOK, withPrompts(entry))
}

// SaveEntry stores the morning or evening half of a day. The body maps each
// prompt field to its lines, e.g. {"gratitude": ["coffee", "", ""]}.
func (h *JournalHandler) SaveEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	vars := mux.Vars(r)
	entryType, err := journal.ParseEntryType(vars["type"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Entry type must be morning or evening")
		return
	}

	var section journal.Section
	if err := decodeJSON(r, &section); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.journalService.SaveEntry(ctx, userID, vars["date"], entryType, section)
	if err != nil {
		respondWithServiceError(w, err, "Failed to save journal entry")
		return
	}

	respondWithJSON(w, http.StatusOK, withPrompts(entry))
}
