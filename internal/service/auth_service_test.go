package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"station-player/internal/domain"
)

func newAuthSvc(users *fakeUserRepo) AuthService {
	return NewAuthService(users, "test-secret", time.Hour)
}

func TestSignupLogin_RoundTrip(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthSvc(users)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "Maya", "maya", "s3cr3t-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Empty(t, user.Password, "digest must not cross the boundary")

	// The stored record keeps the digest, the returned value never does.
	stored := users.get(user.ID)
	assert.NotEmpty(t, stored.Password)
	assert.NotEqual(t, "s3cr3t-pass", stored.Password)

	loggedIn, err := svc.Login(ctx, "maya", "s3cr3t-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Empty(t, loggedIn.Password)

	_, err = svc.Login(ctx, "maya", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "s3cr3t-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignup_Validation(t *testing.T) {
	svc := newAuthSvc(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Signup(ctx, "", "maya", "pass")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.Signup(ctx, "Maya", "maya", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	svc := newAuthSvc(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Maya", "maya", "pass-one")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "Other Maya", "maya", "pass-two")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginWithGoogle_FederatedIdentityHasNoDigest(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthSvc(users)
	ctx := context.Background()

	user, err := svc.LoginWithGoogle(ctx, "Maya", "maya@example.com", "http://img/maya.jpg")
	require.NoError(t, err)
	assert.Empty(t, users.get(user.ID).Password)

	// No password login path for a federated account.
	_, err = svc.Login(ctx, "maya@example.com", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Second federated login resolves to the same account.
	again, err := svc.LoginWithGoogle(ctx, "Maya", "maya@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestToken_IssueParseRoundTrip(t *testing.T) {
	svc := newAuthSvc(newFakeUserRepo())

	user := &domain.User{
		ID:      "64f0c0ffee0000000000aaaa",
		Name:    "Maya",
		ImgURL:  "http://img/maya.jpg",
		IsAdmin: true,
	}
	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	ident, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, ident.ID)
	assert.Equal(t, user.Name, ident.Name)
	assert.Equal(t, user.ImgURL, ident.ImgURL)
	assert.True(t, ident.IsAdmin)
}

func TestToken_RejectsTamperedAndForeign(t *testing.T) {
	svc := newAuthSvc(newFakeUserRepo())
	other := NewAuthService(newFakeUserRepo(), "other-secret", time.Hour)

	token, err := other.IssueToken(&domain.User{ID: "64f0c0ffee0000000000aaaa", Name: "Maya"})
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_Expires(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "test-secret", -time.Minute)

	token, err := svc.IssueToken(&domain.User{ID: "64f0c0ffee0000000000aaaa", Name: "Maya"})
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
