package handlers

import (
	"context"
	"log"
	"net/http"

	"eJournalAPI/middleware"
	"eJournalAPI/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type credentialsRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.authService.SignUp(ctx, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		respondWithServiceError(w, err, "Failed to authenticate. Please try again.")
		return
	}

	respondWithJSON(w, http.StatusCreated, session)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.authService.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, err, "Failed to authenticate. Please try again.")
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	token, _ := middleware.GetToken(ctx)

	if err := h.authService.SignOut(ctx, userID, token); err != nil {
		respondWithServiceError(w, err, "Failed to sign out")
		return
	}

	log.Printf("AuthHandler: user %s signed out", userID)
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

func (h *AuthHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), RequestTimeout)
	defer cancel()

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.SendPasswordReset(ctx, req.Email); err != nil {
		respondWithServiceError(w, err, "Failed to send password reset email")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset email sent. Please check your inbox (or spam folder).",
	})
}

// Me is the current-user lookup the web apps subscribe to.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"id":       userID,
		"email":    middleware.GetEmail(r.Context()),
		"provider": h.authService.ProviderName(),
	})
}
