package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "clerk")
	t.Setenv("CLERK_SECRET_KEY", "sk_test")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "3333", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, AuthClerk, cfg.AuthProvider)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.UsesFirebase())
}

func TestFromViper_Env(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/ejournal")
	t.Setenv("AUTH_PROVIDER", "supabase")
	t.Setenv("SUPABASE_PROJECT_REF", "abcd")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("ALLOWED_ORIGINS", "https://ejournal.app, http://localhost:3000")
	t.Setenv("REQUEST_TIMEOUT", "2s")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorePostgres, cfg.StoreBackend)
	assert.Equal(t, "postgres://localhost/ejournal", cfg.DatabaseURL)
	assert.Equal(t, []string{"https://ejournal.app", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
}

func TestFromViper_MissingSettings(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("AUTH_PROVIDER", "clerk")

	_, err := FromViper(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "CLERK_SECRET_KEY")
}

func TestFromViper_UnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("AUTH_PROVIDER", "firebase")
	t.Setenv("FIREBASE_WEB_API_KEY", "key")

	_, err := FromViper(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown STORE_BACKEND "mongo"`)
}

func TestFromViper_BadTimeout(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")

	_, err := FromViper(viper.New())
	assert.ErrorContains(t, err, "REQUEST_TIMEOUT")
}

func TestStoreErrors_IgnoreAuth(t *testing.T) {
	t.Setenv("STORE_BACKEND", "diskv")
	t.Setenv("AUTH_PROVIDER", "firebase")

	cfg, err := decode(viper.New())
	require.NoError(t, err)
	assert.Empty(t, cfg.storeErrors())
	assert.ErrorContains(t, cfg.Validate(), "FIREBASE_WEB_API_KEY")
}
