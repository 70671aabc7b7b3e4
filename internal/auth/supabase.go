package auth

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	gotrue "github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// gotrueClient is the part of gotrue.Client used without a user token.
type gotrueClient interface {
	Signup(req types.SignupRequest) (*types.SignupResponse, error)
	SignInWithEmailPassword(email, password string) (*types.TokenResponse, error)
	Recover(req types.RecoverRequest) error
}

// gotrueUserClient is a client bound to one access token.
type gotrueUserClient interface {
	Logout() error
	GetUser() (*types.UserResponse, error)
}

type Supabase struct {
	client    gotrueClient
	withToken func(token string) gotrueUserClient
	jwtSecret []byte
}

// NewSupabase connects to the GoTrue API of a project. With a JWT secret,
// tokens are verified locally; without one every verification asks GoTrue.
func NewSupabase(projectRef, apiKey, customURL, jwtSecret string) *Supabase {
	client := gotrue.New(projectRef, apiKey)
	if customURL != "" {
		client = client.WithCustomGoTrueURL(customURL)
	}
	return &Supabase{
		client:    client,
		withToken: func(token string) gotrueUserClient { return client.WithToken(token) },
		jwtSecret: []byte(jwtSecret),
	}
}

func (s *Supabase) Name() string { return "supabase" }

func (s *Supabase) SignUp(ctx context.Context, email, password string) (*Session, error) {
	resp, err := s.client.Signup(types.SignupRequest{Email: email, Password: password})
	if err != nil {
		return nil, mapGotrueError(err)
	}
	// with email confirmation on, GoTrue answers without a session
	return &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		User:         User{ID: resp.ID.String(), Email: resp.Email},
	}, nil
}

func (s *Supabase) SignIn(ctx context.Context, email, password string) (*Session, error) {
	resp, err := s.client.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, mapGotrueError(err)
	}
	return &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		User:         User{ID: resp.User.ID.String(), Email: resp.User.Email},
	}, nil
}

func (s *Supabase) SignOut(ctx context.Context, token string) error {
	if err := s.withToken(token).Logout(); err != nil {
		return mapGotrueError(err)
	}
	return nil
}

func (s *Supabase) SendPasswordReset(ctx context.Context, email string) error {
	if err := s.client.Recover(types.RecoverRequest{Email: email}); err != nil {
		return mapGotrueError(err)
	}
	return nil
}

func (s *Supabase) VerifyToken(ctx context.Context, token string) (*User, error) {
	if len(s.jwtSecret) == 0 {
		resp, err := s.withToken(token).GetUser()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return &User{ID: resp.ID.String(), Email: resp.Email}, nil
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		log.Printf("Supabase: JWT parse error: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("%w: missing user ID", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)
	return &User{ID: userID, Email: email}, nil
}

// mapGotrueError matches the error text GoTrue returns in the response body.
func mapGotrueError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid login credentials"):
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	case strings.Contains(msg, "already registered"), strings.Contains(msg, "already exists"):
		return fmt.Errorf("%w: %v", ErrEmailInUse, err)
	case strings.Contains(msg, "unable to validate email"), strings.Contains(msg, "invalid email"):
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	case strings.Contains(msg, "user not found"):
		return fmt.Errorf("%w: %v", ErrUserNotFound, err)
	case strings.Contains(msg, "user is banned"):
		return fmt.Errorf("%w: %v", ErrUserDisabled, err)
	}
	return err
}
