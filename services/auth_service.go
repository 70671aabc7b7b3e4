package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"eJournalAPI/internal/auth"
	"eJournalAPI/internal/validation"
)

type AuthService struct {
	provider auth.Provider
	docs     DocumentCache
}

func NewAuthService(provider auth.Provider, docs DocumentCache) *AuthService {
	return &AuthService{provider: provider, docs: docs}
}

func (s *AuthService) ProviderName() string {
	return s.provider.Name()
}

// SignUp checks the email and password rules before the account is created.
// confirm is optional; when given it has to match password.
func (s *AuthService) SignUp(ctx context.Context, email, password, confirm string) (*auth.Session, error) {
	email = strings.TrimSpace(email)
	if res := validation.Email(email); !res.Valid {
		return nil, invalid("email", res.Message)
	}
	if res := validation.Password(password); !res.Valid {
		return nil, invalid("password", res.Message)
	}
	if confirm != "" && confirm != password {
		return nil, invalid("confirmPassword", "Passwords do not match.")
	}

	session, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		log.Printf("AuthService: sign up failed for %s: %v", email, err)
		return nil, err
	}
	return session, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	email = strings.TrimSpace(email)
	if res := validation.Email(email); !res.Valid {
		return nil, invalid("email", res.Message)
	}
	if password == "" {
		return nil, invalid("password", "Please enter your password.")
	}

	session, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		log.Printf("AuthService: sign in failed for %s: %v", email, err)
		return nil, err
	}
	return session, nil
}

// SignOut ends the session at the provider and drops the user's cached
// documents. Providers that keep sessions client side only get the cache
// cleared.
func (s *AuthService) SignOut(ctx context.Context, userID, token string) error {
	s.docs.Invalidate(userID)

	if err := s.provider.SignOut(ctx, token); err != nil && !errors.Is(err, auth.ErrUnsupported) {
		return err
	}
	return nil
}

func (s *AuthService) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email", "Please provide your email to reset the password.")
	}
	if res := validation.Email(email); !res.Valid {
		return invalid("email", res.Message)
	}
	return s.provider.SendPasswordReset(ctx, email)
}

func (s *AuthService) VerifyToken(ctx context.Context, token string) (*auth.User, error) {
	return s.provider.VerifyToken(ctx, token)
}
