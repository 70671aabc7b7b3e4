// Package config reads the server settings from the environment, an optional
// .env file and an optional .ejournal.yaml in the working directory.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMemory    = "memory"
	StoreDiskv     = "diskv"
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"

	AuthFirebase = "firebase"
	AuthSupabase = "supabase"
	AuthClerk    = "clerk"
)

type Config struct {
	Port           string
	StoreBackend   string
	AuthProvider   string
	AllowedOrigins []string
	RequestTimeout time.Duration

	DatabaseURL string
	DiskvPath   string

	FirebaseProjectID         string
	FirebaseCredentialsFile   string
	FirebaseCredentialsBase64 string
	FirebaseWebAPIKey         string

	SupabaseProjectRef string
	SupabaseAnonKey    string
	SupabaseURL        string
	SupabaseJWTSecret  string

	ClerkSecretKey string

	MetricsUser string
	MetricsPass string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3333")
	v.SetDefault("store_backend", StoreMemory)
	v.SetDefault("auth_provider", AuthFirebase)
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("request_timeout", "5s")
	v.SetDefault("diskv_path", "./data")
	v.SetDefault("firebase_credentials_file", "./serviceAccountKey.json")
}

// Load reads .env (when present) into the process environment and then
// resolves every setting through viper.
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// LoadStore is Load for tools that only open the document store, so the
// auth provider settings are not required.
func LoadStore() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := errors.Join(cfg.storeErrors()...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	v := viper.New()
	v.SetConfigName(".ejournal") // .yaml is implicit
	v.AddConfigPath("./")
	if override := os.Getenv("EJOURNAL_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return v, nil
}

// FromViper builds a Config from an already prepared viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString("request_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:           v.GetString("port"),
		StoreBackend:   strings.ToLower(v.GetString("store_backend")),
		AuthProvider:   strings.ToLower(v.GetString("auth_provider")),
		AllowedOrigins: splitList(v.GetString("allowed_origins")),
		RequestTimeout: timeout,

		DatabaseURL: v.GetString("database_url"),
		DiskvPath:   v.GetString("diskv_path"),

		FirebaseProjectID:         v.GetString("firebase_project_id"),
		FirebaseCredentialsFile:   v.GetString("firebase_credentials_file"),
		FirebaseCredentialsBase64: v.GetString("firebase_service_account_json"),
		FirebaseWebAPIKey:         v.GetString("firebase_web_api_key"),

		SupabaseProjectRef: v.GetString("supabase_project_ref"),
		SupabaseAnonKey:    v.GetString("supabase_anon_key"),
		SupabaseURL:        v.GetString("supabase_url"),
		SupabaseJWTSecret:  v.GetString("supabase_jwt_secret"),

		ClerkSecretKey: v.GetString("clerk_secret_key"),

		MetricsUser: v.GetString("metrics_user"),
		MetricsPass: v.GetString("metrics_pass"),
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that the selected backend and provider have the settings
// they need.
func (c *Config) Validate() error {
	errs := c.storeErrors()

	switch c.AuthProvider {
	case AuthFirebase:
		if c.FirebaseWebAPIKey == "" {
			errs = append(errs, errors.New("FIREBASE_WEB_API_KEY is required for firebase auth"))
		}
	case AuthSupabase:
		if c.SupabaseProjectRef == "" && c.SupabaseURL == "" {
			errs = append(errs, errors.New("SUPABASE_PROJECT_REF or SUPABASE_URL is required for supabase auth"))
		}
		if c.SupabaseAnonKey == "" {
			errs = append(errs, errors.New("SUPABASE_ANON_KEY is required for supabase auth"))
		}
	case AuthClerk:
		if c.ClerkSecretKey == "" {
			errs = append(errs, errors.New("CLERK_SECRET_KEY environment variable is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider))
	}

	return errors.Join(errs...)
}

func (c *Config) storeErrors() []error {
	var errs []error

	switch c.StoreBackend {
	case StoreMemory:
	case StoreDiskv:
		if c.DiskvPath == "" {
			errs = append(errs, errors.New("DISKV_PATH is required for the diskv store"))
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL environment variable is not set"))
		}
	case StoreFirestore:
		// credentials are checked when the firebase app is created
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	return errs
}

// UsesFirebase is true when either the store or the auth provider needs a
// firebase app.
func (c *Config) UsesFirebase() bool {
	return c.StoreBackend == StoreFirestore || c.AuthProvider == AuthFirebase
}
