package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eJournalAPI/handlers"
	"eJournalAPI/internal/backends"
	"eJournalAPI/internal/config"
	"eJournalAPI/internal/store"
	"eJournalAPI/middleware"
	"eJournalAPI/services"
)

var (
	cfg            *config.Config
	backend        store.Store
	authService    *services.AuthService
	journalService *services.JournalService
	moodService    *services.MoodService
	studyService   *services.StudyService
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	app, err := backends.Firebase(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize firebase:", err)
	}

	backend, err = backends.OpenStore(ctx, cfg, app)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}

	provider, err := backends.OpenAuth(ctx, cfg, app)
	if err != nil {
		log.Fatal("Failed to initialize auth provider:", err)
	}

	docs := store.NewCache(backend)
	authService = services.NewAuthService(provider, docs)
	journalService = services.NewJournalService(docs)
	moodService = services.NewMoodService(docs)
	studyService = services.NewStudyService(docs)

	handlers.RequestTimeout = cfg.RequestTimeout

	middleware.InitPrometheus(append(store.Collectors(), services.Collectors()...)...)
}

func main() {
	defer func() {
		log.Println("Closing document store...")
		if err := backend.Close(); err != nil {
			log.Printf("Store close error: %v", err)
		}
	}()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	journalHandler := handlers.NewJournalHandler(journalService)
	moodHandler := handlers.NewMoodHandler(moodService)
	studyHandler := handlers.NewStudyHandler(studyService)

	r := mux.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if p, ok := backend.(backends.Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "ejournal-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/signup", authHandler.SignUp).Methods("POST")
	api.HandleFunc("/auth/signin", authHandler.SignIn).Methods("POST")
	api.HandleFunc("/auth/password-reset", authHandler.PasswordReset).Methods("POST")
	api.HandleFunc("/calendar/grid", handlers.GetCalendarGrid).Methods("GET")
	api.HandleFunc("/mood/scale", handlers.GetScale).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
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

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins(cfg.AllowedOrigins),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", middleware.RequestIDHeader}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", middleware.RequestIDHeader}),
		gorilllaHandlers.AllowCredentials(),
	)
	recovery := gorilllaHandlers.RecoveryHandler(gorilllaHandlers.PrintRecoveryStack(true))

	port := ":" + cfg.Port

	server := http.Server{
		Addr:         port,
		Handler:      recovery(corsHandler(r)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s (store: %s, auth: %s)", port, cfg.StoreBackend, cfg.AuthProvider)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
