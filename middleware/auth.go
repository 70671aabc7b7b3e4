package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"eJournalAPI/internal/auth"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	EmailKey  contextKey = "email"
	TokenKey  contextKey = "token"
)

// TokenVerifier resolves a bearer token to the signed-in user.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*auth.User, error)
}

func bearerToken(r *http.Request) (string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "Authorization header required"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader || token == "" {
		return "", "Invalid authorization format. Use 'Bearer <token>'"
	}
	return token, ""
}

// WithUser stores the verified user and its token in ctx.
func WithUser(ctx context.Context, user *auth.User, token string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, user.ID)
	ctx = context.WithValue(ctx, EmailKey, user.Email)
	return context.WithValue(ctx, TokenKey, token)
}

// AuthMiddleware validates bearer tokens with the configured provider and
// puts the user into the request context.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, problem := bearerToken(r)
			if problem != "" {
				respondWithError(w, http.StatusUnauthorized, problem)
				return
			}

			user, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				log.Printf("AuthMiddleware: token verification failed (request %s): %v", GetRequestID(r.Context()), err)
				respondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, token)))
		})
	}
}

// OptionalAuthMiddleware allows requests with or without auth.
func OptionalAuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, problem := bearerToken(r); problem == "" {
				if user, err := verifier.VerifyToken(r.Context(), token); err == nil {
					r = r.WithContext(WithUser(r.Context(), user, token))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserID extracts the authenticated user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
