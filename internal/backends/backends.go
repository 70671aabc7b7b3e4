// Package backends turns a Config into the document store and auth provider
// the server (and the CLI) run against.
package backends

import (
	"context"
	"fmt"
	"log"
	"time"

	"eJournalAPI/internal/auth"
	"eJournalAPI/internal/config"
	"eJournalAPI/internal/firebaseapp"
	"eJournalAPI/internal/store"

	firebase "firebase.google.com/go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pinger is implemented by stores whose connection can be health checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Firebase creates the admin app when the config needs one, nil otherwise.
func Firebase(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	if !cfg.UsesFirebase() {
		return nil, nil
	}
	return firebaseapp.New(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsBase64, cfg.FirebaseCredentialsFile)
}

// OpenStore connects the configured backend. app is only used by the
// firestore backend.
func OpenStore(ctx context.Context, cfg *config.Config, app *firebase.App) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		log.Println("Store: using in-memory documents, data is lost on restart")
		return store.NewMemory(), nil

	case config.StoreDiskv:
		log.Printf("Store: using diskv at %s", cfg.DiskvPath)
		return store.NewDiskv(cfg.DiskvPath), nil

	case config.StorePostgres:
		pg, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil

	case config.StoreFirestore:
		if app == nil {
			return nil, fmt.Errorf("firestore store needs a firebase app")
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("error initializing firestore client: %w", err)
		}
		log.Println("Store: connected to Firestore")
		return store.NewFirestore(client), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func openPostgres(ctx context.Context, dbURL string) (*store.Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pg := store.NewPostgres(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Println("Store: successfully connected to Postgres")
	return pg, nil
}

// OpenAuth builds the configured auth provider. app is only used by the
// firebase provider.
func OpenAuth(ctx context.Context, cfg *config.Config, app *firebase.App) (auth.Provider, error) {
	switch cfg.AuthProvider {
	case config.AuthFirebase:
		if app == nil {
			return nil, fmt.Errorf("firebase auth needs a firebase app")
		}
		client, err := app.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting firebase auth client: %w", err)
		}
		provider, err := auth.NewFirebase(client, cfg.FirebaseWebAPIKey)
		if err != nil {
			return nil, err
		}
		log.Println("Auth: Firebase initialized successfully")
		return provider, nil

	case config.AuthSupabase:
		log.Println("Auth: Supabase initialized successfully")
		return auth.NewSupabase(cfg.SupabaseProjectRef, cfg.SupabaseAnonKey, cfg.SupabaseURL, cfg.SupabaseJWTSecret), nil

	case config.AuthClerk:
		log.Println("Auth: Clerk initialized successfully")
		return auth.NewClerk(cfg.ClerkSecretKey), nil
	}
	return nil, fmt.Errorf("unknown auth provider %q", cfg.AuthProvider)
}
