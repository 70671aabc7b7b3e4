// Package auth wraps the hosted identity services behind one Provider
// interface: Firebase Authentication, Supabase (GoTrue) and Clerk.
package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrUserDisabled       = errors.New("user disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("wrong password")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnsupported        = errors.New("operation not supported by this provider")
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	User         User   `json:"user"`
}

// Provider is a hosted auth service. VerifyToken is the only call made on
// every request; the rest back the sign-in screens.
type Provider interface {
	Name() string
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	SendPasswordReset(ctx context.Context, email string) error
	VerifyToken(ctx context.Context, token string) (*User, error)
}

// FriendlyMessage turns a provider error into the text shown on the login form.
func FriendlyMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidEmail):
		return "Invalid email address. Please check the format."
	case errors.Is(err, ErrUserDisabled):
		return "This user account has been disabled."
	case errors.Is(err, ErrUserNotFound):
		return "No user found with these credentials."
	case errors.Is(err, ErrWrongPassword):
		return "Incorrect password. Please try again."
	case errors.Is(err, ErrInvalidCredentials):
		return "Incorrect email or password. Please try again."
	case errors.Is(err, ErrEmailInUse):
		return "This email is already registered. Please use another email or log in."
	case errors.Is(err, ErrUnsupported):
		return "This sign-in method is not available."
	default:
		return "An error occurred during authentication. Please try again later."
	}
}
