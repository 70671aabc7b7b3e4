package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/gotrue-go/types"
)

func TestFriendlyMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrInvalidEmail, "Invalid email address. Please check the format."},
		{ErrUserDisabled, "This user account has been disabled."},
		{ErrUserNotFound, "No user found with these credentials."},
		{ErrWrongPassword, "Incorrect password. Please try again."},
		{ErrEmailInUse, "This email is already registered. Please use another email or log in."},
		{errors.New("boom"), "An error occurred during authentication. Please try again later."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FriendlyMessage(tt.err))
		assert.Equal(t, tt.want, FriendlyMessage(errors.Join(errors.New("wrapped"), tt.err)))
	}
}

func TestMapIdentityToolkitError(t *testing.T) {
	assert.ErrorIs(t, mapIdentityToolkitError(errors.New("googleapi: Error 400: INVALID_PASSWORD, invalid")), ErrWrongPassword)
	assert.ErrorIs(t, mapIdentityToolkitError(errors.New("googleapi: Error 400: EMAIL_NOT_FOUND")), ErrUserNotFound)
	assert.ErrorIs(t, mapIdentityToolkitError(errors.New("googleapi: Error 400: USER_DISABLED")), ErrUserDisabled)
	assert.ErrorIs(t, mapIdentityToolkitError(errors.New("googleapi: Error 400: INVALID_LOGIN_CREDENTIALS")), ErrInvalidCredentials)

	other := errors.New("network down")
	assert.Equal(t, other, mapIdentityToolkitError(other))
}

type fakeFirebaseAdmin struct {
	created []string
	revoked []string
	tokens  map[string]string
}

func (f *fakeFirebaseAdmin) CreateUser(ctx context.Context, user *firebaseauth.UserToCreate) (*firebaseauth.UserRecord, error) {
	f.created = append(f.created, "user")
	return &firebaseauth.UserRecord{}, nil
}

func (f *fakeFirebaseAdmin) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	uid, ok := f.tokens[idToken]
	if !ok {
		return nil, errors.New("ID token has invalid signature")
	}
	return &firebaseauth.Token{UID: uid, Claims: map[string]interface{}{"email": uid + "@example.com"}}, nil
}

func (f *fakeFirebaseAdmin) RevokeRefreshTokens(ctx context.Context, uid string) error {
	f.revoked = append(f.revoked, uid)
	return nil
}

type fakePasswordAPI struct {
	resets []string
}

func (f *fakePasswordAPI) VerifyPassword(ctx context.Context, email, password string) (*Session, error) {
	if password != "Secret#123" {
		return nil, ErrWrongPassword
	}
	return &Session{AccessToken: "tok-" + email, User: User{ID: "uid-1", Email: email}}, nil
}

func (f *fakePasswordAPI) SendPasswordResetEmail(ctx context.Context, email string) error {
	f.resets = append(f.resets, email)
	return nil
}

func TestFirebase(t *testing.T) {
	ctx := context.Background()
	admin := &fakeFirebaseAdmin{tokens: map[string]string{"good": "uid-1"}}
	pw := &fakePasswordAPI{}
	f := &Firebase{admin: admin, password: pw}

	s, err := f.SignUp(ctx, "a@example.com", "Secret#123")
	require.NoError(t, err)
	assert.Equal(t, "tok-a@example.com", s.AccessToken)
	assert.Len(t, admin.created, 1)

	_, err = f.SignIn(ctx, "a@example.com", "nope")
	assert.ErrorIs(t, err, ErrWrongPassword)

	u, err := f.VerifyToken(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, &User{ID: "uid-1", Email: "uid-1@example.com"}, u)

	_, err = f.VerifyToken(ctx, "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, f.SignOut(ctx, "good"))
	assert.Equal(t, []string{"uid-1"}, admin.revoked)

	require.NoError(t, f.SendPasswordReset(ctx, "a@example.com"))
	assert.Equal(t, []string{"a@example.com"}, pw.resets)
}

type fakeGotrue struct {
	users map[string]string
}

func (f *fakeGotrue) Signup(req types.SignupRequest) (*types.SignupResponse, error) {
	if _, ok := f.users[req.Email]; ok {
		return nil, errors.New("response status code 422: {\"msg\":\"User already registered\"}")
	}
	f.users[req.Email] = req.Password
	resp := &types.SignupResponse{}
	resp.User.ID = uuid.New()
	resp.User.Email = req.Email
	return resp, nil
}

func (f *fakeGotrue) SignInWithEmailPassword(email, password string) (*types.TokenResponse, error) {
	if f.users[email] != password {
		return nil, errors.New("response status code 400: {\"error\":\"invalid_grant\",\"error_description\":\"Invalid login credentials\"}")
	}
	resp := &types.TokenResponse{}
	resp.AccessToken = "access"
	resp.User.Email = email
	return resp, nil
}

func (f *fakeGotrue) Recover(req types.RecoverRequest) error { return nil }

func mintSupabaseToken(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": "a@example.com",
		"exp":   exp.Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestSupabase(t *testing.T) {
	ctx := context.Background()
	s := &Supabase{client: &fakeGotrue{users: map[string]string{}}, jwtSecret: []byte("test-secret")}

	sess, err := s.SignUp(ctx, "a@example.com", "Secret#123")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", sess.User.Email)

	_, err = s.SignUp(ctx, "a@example.com", "Secret#123")
	assert.ErrorIs(t, err, ErrEmailInUse)

	_, err = s.SignIn(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err = s.SignIn(ctx, "a@example.com", "Secret#123")
	require.NoError(t, err)
	assert.Equal(t, "access", sess.AccessToken)

	u, err := s.VerifyToken(ctx, mintSupabaseToken(t, "test-secret", "user-1", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)

	_, err = s.VerifyToken(ctx, mintSupabaseToken(t, "other-secret", "user-1", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.VerifyToken(ctx, mintSupabaseToken(t, "test-secret", "user-1", time.Now().Add(-time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.VerifyToken(ctx, mintSupabaseToken(t, "test-secret", "", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClerk(t *testing.T) {
	ctx := context.Background()
	c := &Clerk{verify: func(ctx context.Context, token string) (string, error) {
		if token == "good" {
			return "user_123", nil
		}
		return "", errors.New("invalid signature")
	}}

	u, err := c.VerifyToken(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "user_123", u.ID)

	_, err = c.VerifyToken(ctx, "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = c.SignIn(ctx, "a@example.com", "x")
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.ErrorIs(t, c.SendPasswordReset(ctx, "a@example.com"), ErrUnsupported)
}
