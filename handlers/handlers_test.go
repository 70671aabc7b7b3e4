package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eJournalAPI/internal/auth"
	"eJournalAPI/internal/journal"
	"eJournalAPI/internal/mood"
	"eJournalAPI/internal/store"
	caltypes "eJournalAPI/internal/types/calendar"
	"eJournalAPI/middleware"
	"eJournalAPI/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider accepts one account and issues "tok-<email>" tokens.
type fakeProvider struct {
	users map[string]string // email -> password
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) SignUp(ctx context.Context, email, password string) (*auth.Session, error) {
	if _, ok := f.users[email]; ok {
		return nil, auth.ErrEmailInUse
	}
	f.users[email] = password
	return &auth.Session{AccessToken: "tok-" + email, User: auth.User{ID: email, Email: email}}, nil
}

func (f *fakeProvider) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	stored, ok := f.users[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	if stored != password {
		return nil, auth.ErrWrongPassword
	}
	return &auth.Session{AccessToken: "tok-" + email, User: auth.User{ID: email, Email: email}}, nil
}

func (f *fakeProvider) SignOut(ctx context.Context, token string) error { return nil }

func (f *fakeProvider) SendPasswordReset(ctx context.Context, email string) error {
	return auth.ErrUnsupported
}

func (f *fakeProvider) VerifyToken(ctx context.Context, token string) (*auth.User, error) {
	email, ok := strings.CutPrefix(token, "tok-")
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	if _, known := f.users[email]; !known {
		return nil, auth.ErrInvalidToken
	}
	return &auth.User{ID: email, Email: email}, nil
}

const testToken = "tok-ada@example.com"

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	now = func() time.Time { return time.Date(2024, time.December, 11, 9, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	cache := store.NewCache(store.NewMemory())
	provider := &fakeProvider{users: map[string]string{"ada@example.com": "Secret#123"}}
	authService := services.NewAuthService(provider, cache)

	authHandler := NewAuthHandler(authService)
	journalHandler := NewJournalHandler(services.NewJournalService(cache))
	moodHandler := NewMoodHandler(services.NewMoodService(cache))
	studyHandler := NewStudyHandler(services.NewStudyService(cache))

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/signup", authHandler.SignUp).Methods("POST")
	api.HandleFunc("/auth/signin", authHandler.SignIn).Methods("POST")
	api.HandleFunc("/auth/password-reset", authHandler.PasswordReset).Methods("POST")
	api.HandleFunc("/calendar/grid", GetCalendarGrid).Methods("GET")
	api.HandleFunc("/mood/scale", GetScale).Methods("GET")

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(authService))
	protected.HandleFunc("/me", authHandler.Me).Methods("GET")
	protected.HandleFunc("/auth/signout", authHandler.SignOut).Methods("POST")
	protected.HandleFunc("/journal/calendar", journalHandler.GetCalendar).Methods("GET")
	protected.HandleFunc("/journal/entries", journalHandler.GetEntries).Methods("GET")
	protected.HandleFunc("/journal/entries/{date}", journalHandler.GetEntry).Methods("GET")
	protected.HandleFunc("/journal/entries/{date}/{type}", journalHandler.SaveEntry).Methods("PUT")
	protected.HandleFunc("/mood/calendar", moodHandler.GetCalendar).Methods("GET")
	protected.HandleFunc("/mood/days", moodHandler.GetDays).Methods("GET")
	protected.HandleFunc("/mood/days/{date}", moodHandler.SetMood).Methods("PUT")
	protected.HandleFunc("/mood/days/{date}/period", moodHandler.SetPeriod).Methods("PUT")
	protected.HandleFunc("/mood/stats", moodHandler.GetStats).Methods("GET")
	protected.HandleFunc("/study/subjects", studyHandler.ListSubjects).Methods("GET")
	protected.HandleFunc("/study/subjects", studyHandler.AddSubject).Methods("POST")
	protected.HandleFunc("/study/subjects/{name}", studyHandler.DeleteSubject).Methods("DELETE")
	protected.HandleFunc("/study/subjects/{name}/target", studyHandler.SetTargetHours).Methods("PUT")
	protected.HandleFunc("/study/subjects/{name}/hours/{date}", studyHandler.LogHours).Methods("PUT")
	protected.HandleFunc("/study/subjects/{name}/calendar", studyHandler.GetCalendar).Methods("GET")

	return r
}

func do(t *testing.T, r http.Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestGetCalendarGrid(t *testing.T) {
	r := newTestRouter(t)

	rr := do(t, r, "GET", "/api/v1/calendar/grid?year=2025&month=2", "", false)
	require.Equal(t, http.StatusOK, rr.Code)

	view := decode[caltypes.CalendarResponse](t, rr)
	assert.Equal(t, "March, 2025", view.Title)
	assert.Len(t, view.Rows, 6)
	assert.Equal(t, []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}, view.Weekdays)
	// March 2025 starts on a Saturday
	require.NotNil(t, view.Rows[0][6].Day)
	assert.Equal(t, 1, *view.Rows[0][6].Day)
	assert.Equal(t, "2025-03-01", view.Rows[0][6].Date)

	rr = do(t, r, "GET", "/api/v1/calendar/grid?year=2024&month=11&delta=1", "", false)
	require.Equal(t, http.StatusOK, rr.Code)
	view = decode[caltypes.CalendarResponse](t, rr)
	assert.Equal(t, 2025, view.Year)
	assert.Equal(t, 0, view.Month)

	rr = do(t, r, "GET", "/api/v1/calendar/grid", "", false)
	require.Equal(t, http.StatusOK, rr.Code)
	view = decode[caltypes.CalendarResponse](t, rr)
	assert.Equal(t, "December, 2024", view.Title)
	assert.True(t, view.Rows[1][3].IsToday)
}

func TestGetCalendarGrid_BadQuery(t *testing.T) {
	r := newTestRouter(t)

	for _, q := range []string{"month=12", "month=-1", "month=abc", "year=x", "delta=two", "selected=2024-02-30"} {
		t.Run(q, func(t *testing.T) {
			rr := do(t, r, "GET", "/api/v1/calendar/grid?"+q, "", false)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), `"error"`)
		})
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r := newTestRouter(t)

	rr := do(t, r, "GET", "/api/v1/journal/entries", "", false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer tok-nobody@example.com")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthHandler(t *testing.T) {
	r := newTestRouter(t)

	rr := do(t, r, "POST", "/api/v1/auth/signup", `{"email":"bob@example.com","password":"Secret#123","confirmPassword":"Secret#123"}`, false)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "tok-bob@example.com", decode[auth.Session](t, rr).AccessToken)

	rr = do(t, r, "POST", "/api/v1/auth/signup", `{"email":"bob@example.com","password":"Secret#123"}`, false)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"error":"This email is already registered. Please use another email or log in."}`, rr.Body.String())

	rr = do(t, r, "POST", "/api/v1/auth/signup", `{"email":"carol@example.com","password":"short"}`, false)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := decode[map[string]any](t, rr)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, "password", body["field"])

	rr = do(t, r, "POST", "/api/v1/auth/signin", `{"email":"ada@example.com","password":"Wrong#123"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Incorrect password. Please try again."}`, rr.Body.String())

	rr = do(t, r, "POST", "/api/v1/auth/signin", `{"email":"ada@example.com","password":"Secret#123"}`, false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, testToken, decode[auth.Session](t, rr).AccessToken)

	rr = do(t, r, "POST", "/api/v1/auth/signin", `{"email":"ada@example.com","password":"Secret#123","extra":1}`, false)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, r, "POST", "/api/v1/auth/password-reset", `{"email":"ada@example.com"}`, false)
	assert.Equal(t, http.StatusNotImplemented, rr.Code)

	rr = do(t, r, "GET", "/api/v1/me", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":"ada@example.com","email":"ada@example.com","provider":"fake"}`, rr.Body.String())

	rr = do(t, r, "POST", "/api/v1/auth/signout", "", true)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestJournalHandler(t *testing.T) {
	r := newTestRouter(t)

	rr := do(t, r, "GET", "/api/v1/journal/entries/2024-12-05", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	entry := decode[journal.Entry](t, rr)
	require.NotNil(t, entry.Morning)
	assert.Equal(t, []string{"", "", ""}, entry.Morning.Gratitude)

	rr = do(t, r, "PUT", "/api/v1/journal/entries/2024-12-5/morning", `{"gratitude":["coffee"]}`, true)
	require.Equal(t, http.StatusOK, rr.Code)
	entry = decode[journal.Entry](t, rr)
	assert.Equal(t, []string{"coffee", "", ""}, entry.Morning.Gratitude)

	rr = do(t, r, "GET", "/api/v1/journal/entries/2024-12-05", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	prompted := decode[struct {
		Prompts map[string]string `json:"prompts"`
	}](t, rr)
	assert.Equal(t, "I am grateful for ...", prompted.Prompts["gratitude"])
	assert.Equal(t, "How could I have made today better ...", prompted.Prompts["improvements"])

	rr = do(t, r, "GET", "/api/v1/journal/entries", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	entries := decode[map[string]journal.Entry](t, rr)
	assert.Contains(t, entries, "2024-12-05")

	rr = do(t, r, "GET", "/api/v1/journal/calendar?year=2024&month=11&selected=2024-12-05", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[caltypes.CalendarResponse](t, rr)
	assert.Equal(t, "Total journal days: 1", view.Message)
	assert.True(t, view.Rows[0][4].HasEntry)
	assert.True(t, view.Rows[0][4].IsSelected)
}

func TestJournalHandler_Errors(t *testing.T) {
	r := newTestRouter(t)

	rr := do(t, r, "PUT", "/api/v1/journal/entries/2024-12-05/morning", `{"goals":["<b>"]}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := decode[map[string]any](t, rr)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, "<> and {} are not allowed.", body["message"])

	rr = do(t, r, "PUT", "/api/v1/journal/entries/2024-12-05/noon", `{"goals":["x"]}`, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, r, "PUT", "/api/v1/journal/entries/2024-12-05/morning", `not json`, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, r, "GET", "/api/v1/journal/entries/2024-13-01", "", true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid date. Use YYYY-MM-DD"}`, rr.Body.String())
}

func TestMoodScale(t *testing.T) {
	r := newTestRouter(t)

	rr := do(t, r, "GET", "/api/v1/mood/scale", "", false)
	require.Equal(t, http.StatusOK, rr.Code)
	scale := decode[[]mood.Level](t, rr)
	require.Len(t, scale, mood.MaxMood-mood.MinMood+1)
	assert.Equal(t, mood.MinMood, scale[0].Score)
	assert.Equal(t, "Elated", scale[len(scale)-1].Label)
}

func TestMoodHandler(t *testing.T) {
	r := newTestRouter(t)

	rr := do(t, r, "GET", "/api/v1/mood/calendar?year=2024&month=11", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "You haven't logged a mood yet. How are you feeling today?", decode[caltypes.CalendarResponse](t, rr).Message)

	rr = do(t, r, "PUT", "/api/v1/mood/days/2024-12-09", `{"mood":4,"note":"good run"}`, true)
	require.Equal(t, http.StatusOK, rr.Code)
	day := decode[mood.Day](t, rr)
	assert.Equal(t, 4, *day.Mood)
	level := decode[struct {
		Level *mood.Level `json:"level"`
	}](t, rr)
	require.NotNil(t, level.Level)
	assert.Equal(t, "Good", level.Level.Label)

	rr = do(t, r, "PUT", "/api/v1/mood/days/2024-12-09/period", `{"period":true}`, true)
	require.Equal(t, http.StatusOK, rr.Code)
	day = decode[mood.Day](t, rr)
	assert.Equal(t, 4, *day.Mood)
	assert.True(t, *day.Period)

	rr = do(t, r, "PUT", "/api/v1/mood/days/2024-12-10", `{"mood":2}`, true)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, r, "GET", "/api/v1/mood/days", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	days := decode[map[string]struct {
		mood.Day
		Level mood.Level `json:"level"`
	}](t, rr)
	assert.Len(t, days, 2)
	assert.Equal(t, "Sad", days["2024-12-10"].Level.Label)

	rr = do(t, r, "GET", "/api/v1/mood/stats", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[mood.Stats](t, rr)
	assert.Equal(t, 2, stats.NumDays)
	assert.Equal(t, 3.0, stats.AverageMood)

	rr = do(t, r, "PUT", "/api/v1/mood/days/2024-12-10", `{"mood":9}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, r, "PUT", "/api/v1/mood/days/2024-12-10", `{"note":"no mood"}`, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, r, "PUT", "/api/v1/mood/days/2024-12-10/period", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStudyHandler(t *testing.T) {
	r := newTestRouter(t)

	rr := do(t, r, "GET", "/api/v1/study/subjects", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = do(t, r, "POST", "/api/v1/study/subjects", `{"name":"Math","targetHours":10}`, true)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, r, "POST", "/api/v1/study/subjects", `{"name":"Math","targetHours":5}`, true)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"error":"Subject already exists"}`, rr.Body.String())

	rr = do(t, r, "PUT", "/api/v1/study/subjects/Math/hours/2024-12-5", `{"hours":2.5}`, true)
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[services.SubjectView](t, rr)
	assert.Equal(t, 2.5, view.TotalStudyHours)
	assert.Equal(t, 25.0, view.ProgressPercentage)
	assert.Equal(t, map[string]float64{"2024-12-05": 2.5}, view.StudyData)

	rr = do(t, r, "PUT", "/api/v1/study/subjects/Math/target", `{"targetHours":5}`, true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 50.0, decode[services.SubjectView](t, rr).ProgressPercentage)

	rr = do(t, r, "PUT", "/api/v1/study/subjects/Math/hours/2024-12-06", `{"hours":25}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, r, "GET", "/api/v1/study/subjects/Math/calendar?year=2024&month=11", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	cal := decode[caltypes.CalendarResponse](t, rr)
	assert.Equal(t, "Total study days: 1", cal.Message)
	assert.True(t, cal.Rows[0][4].HasEntry)

	rr = do(t, r, "PUT", "/api/v1/study/subjects/Physics/target", `{"targetHours":5}`, true)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, r, "DELETE", "/api/v1/study/subjects/Math", "", true)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, r, "DELETE", "/api/v1/study/subjects/Math", "", true)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRespondWithServiceError_Timeout(t *testing.T) {
	rr := httptest.NewRecorder()
	respondWithServiceError(rr, context.DeadlineExceeded, "unused")
	assert.Equal(t, http.StatusGatewayTimeout, rr.Code)

	rr = httptest.NewRecorder()
	respondWithServiceError(rr, assert.AnError, "Failed to save")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Failed to save"}`, rr.Body.String())
}
