package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// firebaseAdmin is the part of *auth.Client the provider uses.
type firebaseAdmin interface {
	CreateUser(ctx context.Context, user *firebaseauth.UserToCreate) (*firebaseauth.UserRecord, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*firebaseauth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// passwordAPI signs users in and sends reset mails. The Admin SDK cannot do
// either, so it goes through the Identity Toolkit REST API with the web key.
type passwordAPI interface {
	VerifyPassword(ctx context.Context, email, password string) (*Session, error)
	SendPasswordResetEmail(ctx context.Context, email string) error
}

type Firebase struct {
	admin    firebaseAdmin
	password passwordAPI
}

func NewFirebase(admin *firebaseauth.Client, webAPIKey string) (*Firebase, error) {
	if webAPIKey == "" {
		return nil, errors.New("firebase web API key is required for password sign-in")
	}
	svc, err := identitytoolkit.NewService(context.Background(), option.WithAPIKey(webAPIKey))
	if err != nil {
		return nil, fmt.Errorf("error creating identity toolkit client: %w", err)
	}
	return &Firebase{admin: admin, password: &identityToolkit{svc: svc}}, nil
}

func (f *Firebase) Name() string { return "firebase" }

func (f *Firebase) SignUp(ctx context.Context, email, password string) (*Session, error) {
	params := (&firebaseauth.UserToCreate{}).Email(email).Password(password)
	if _, err := f.admin.CreateUser(ctx, params); err != nil {
		return nil, mapFirebaseError(err)
	}
	return f.SignIn(ctx, email, password)
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return f.password.VerifyPassword(ctx, email, password)
}

// SignOut revokes every refresh token of the user. ID tokens issued before
// the revocation fail VerifyToken from then on.
func (f *Firebase) SignOut(ctx context.Context, token string) error {
	user, err := f.VerifyToken(ctx, token)
	if err != nil {
		return err
	}
	if err := f.admin.RevokeRefreshTokens(ctx, user.ID); err != nil {
		return mapFirebaseError(err)
	}
	return nil
}

func (f *Firebase) SendPasswordReset(ctx context.Context, email string) error {
	return f.password.SendPasswordResetEmail(ctx, email)
}

func (f *Firebase) VerifyToken(ctx context.Context, token string) (*User, error) {
	t, err := f.admin.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		log.Printf("Firebase: token verification failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	email, _ := t.Claims["email"].(string)
	return &User{ID: t.UID, Email: email}, nil
}

func mapFirebaseError(err error) error {
	switch {
	case firebaseauth.IsEmailAlreadyExists(err):
		return fmt.Errorf("%w: %v", ErrEmailInUse, err)
	case firebaseauth.IsUserNotFound(err):
		return fmt.Errorf("%w: %v", ErrUserNotFound, err)
	}
	return mapIdentityToolkitError(err)
}

// mapIdentityToolkitError reads the upper-case reason the REST API puts in
// the error message, e.g. "INVALID_PASSWORD".
func mapIdentityToolkitError(err error) error {
	msg := err.Error()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg = gerr.Message
	}

	switch {
	case strings.Contains(msg, "INVALID_EMAIL"):
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	case strings.Contains(msg, "USER_DISABLED"):
		return fmt.Errorf("%w: %v", ErrUserDisabled, err)
	case strings.Contains(msg, "EMAIL_NOT_FOUND"):
		return fmt.Errorf("%w: %v", ErrUserNotFound, err)
	case strings.Contains(msg, "INVALID_PASSWORD"):
		return fmt.Errorf("%w: %v", ErrWrongPassword, err)
	case strings.Contains(msg, "INVALID_LOGIN_CREDENTIALS"):
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	case strings.Contains(msg, "EMAIL_EXISTS"):
		return fmt.Errorf("%w: %v", ErrEmailInUse, err)
	}
	return err
}

type identityToolkit struct {
	svc *identitytoolkit.Service
}

func (it *identityToolkit) VerifyPassword(ctx context.Context, email, password string) (*Session, error) {
	resp, err := it.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapIdentityToolkitError(err)
	}
	return &Session{
		AccessToken:  resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    int(resp.ExpiresIn),
		User:         User{ID: resp.LocalId, Email: resp.Email},
	}, nil
}

func (it *identityToolkit) SendPasswordResetEmail(ctx context.Context, email string) error {
	_, err := it.svc.Relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		Email:       email,
		RequestType: "PASSWORD_RESET",
	}).Context(ctx).Do()
	if err != nil {
		return mapIdentityToolkitError(err)
	}
	return nil
}
