package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/pkg/jwtutil"
	"docuchat/internal/repository"
)

const testJWTSecret = "test-secret"

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := newTestDB(t)
	return NewAuthService(repository.NewUserRepository(db), testJWTSecret, time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	result, err := svc.Register(RegisterInput{Email: "  Alice@Example.COM ", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.NotEmpty(t, result.User.PasswordHash)
	assert.NotEqual(t, "longenough", result.User.PasswordHash)

	claims, err := jwtutil.ParseToken(testJWTSecret, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	// login is case-insensitive on email
	login, err := svc.Login(LoginInput{Email: "ALICE@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)
	assert.NotEmpty(t, login.Token)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(RegisterInput{Email: "", Password: "longenough"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(RegisterInput{Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(RegisterInput{Email: "a@b.com", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{Email: "A@B.com", Password: "otherpassword"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLoginFailures(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(RegisterInput{Email: "a@b.com", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Login(LoginInput{Email: "a@b.com", Password: "wrongpassword"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = svc.Login(LoginInput{Email: "nobody@b.com", Password: "longenough"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = svc.Login(LoginInput{Email: "", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetUserByID(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.GetUserByID(0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	result, err := svc.Register(RegisterInput{Email: "a@b.com", Password: "longenough"})
	require.NoError(t, err)

	user, err := svc.GetUserByID(result.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "a@b.com", user.Email)

	missing, err := svc.GetUserByID(9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
