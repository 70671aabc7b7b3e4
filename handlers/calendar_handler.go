package handlers

import (
	"net/http"

	"eJournalAPI/services"
)

// GetCalendarGrid serves the month layout without any user data, for the
// landing page demo calendar.
func GetCalendarGrid(w http.ResponseWriter, r *http.Request) {
	q, err := parseMonthQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, services.GridOnly(q, now()))
}
