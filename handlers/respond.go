package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"eJournalAPI/internal/auth"
	"eJournalAPI/internal/calendar"
	"eJournalAPI/services"
)

// RequestTimeout bounds the work of a single request. main sets it from the
// config.
var RequestTimeout = 5 * time.Second

var now = time.Now

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

type validationResponse struct {
	Valid bool `json:"valid"`
	*services.ValidationError
}

// respondWithServiceError maps service and provider errors to a status code.
// fallback is the message used for unexpected errors, whose details are only
// logged.
func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithJSON(w, http.StatusUnprocessableEntity, validationResponse{Valid: false, ValidationError: verr})
	case errors.Is(err, calendar.ErrInvalidDate):
		respondWithError(w, http.StatusBadRequest, "Invalid date. Use YYYY-MM-DD")
	case errors.Is(err, services.ErrSubjectExists):
		respondWithError(w, http.StatusConflict, services.ErrSubjectExists.Error())
	case errors.Is(err, services.ErrSubjectNotFound):
		respondWithError(w, http.StatusNotFound, "Subject not found")
	case errors.Is(err, auth.ErrEmailInUse):
		respondWithError(w, http.StatusConflict, auth.FriendlyMessage(err))
	case errors.Is(err, auth.ErrUnsupported):
		respondWithError(w, http.StatusNotImplemented, auth.FriendlyMessage(err))
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrUserDisabled),
		errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, auth.ErrWrongPassword),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		respondWithError(w, http.StatusUnauthorized, auth.FriendlyMessage(err))
	case errors.Is(err, context.DeadlineExceeded):
		respondWithError(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		log.Printf("Handler error: %v", err)
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// parseMonthQuery reads year, month (0-11), delta and selected from the
// query string. Missing year or month default to the current month.
func parseMonthQuery(r *http.Request) (services.MonthQuery, error) {
	q := r.URL.Query()
	cfg := calendar.Today(now())

	if year := q.Get("year"); year != "" {
		n, err := strconv.Atoi(year)
		if err != nil {
			return services.MonthQuery{}, fmt.Errorf("invalid year format")
		}
		cfg.Year = n
	}
	if month := q.Get("month"); month != "" {
		n, err := strconv.Atoi(month)
		if err != nil {
			return services.MonthQuery{}, fmt.Errorf("invalid month format")
		}
		cfg.Month = n
	}
	if err := cfg.Validate(); err != nil {
		return services.MonthQuery{}, err
	}

	if delta := q.Get("delta"); delta != "" {
		n, err := strconv.Atoi(delta)
		if err != nil {
			return services.MonthQuery{}, fmt.Errorf("invalid delta format")
		}
		cfg = calendar.AdvanceMonth(cfg, n)
	}

	selected := q.Get("selected")
	if selected != "" {
		if _, _, err := calendar.ParseDate(selected); err != nil {
			return services.MonthQuery{}, fmt.Errorf("invalid selected date")
		}
	}

	return services.MonthQuery{Config: cfg, Selected: selected}, nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
