package service

import (
	"context"
	"testing"
	"time"

	"stackit/internal/cache"
	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-with-enough-entropy"

func newAuth(t *testing.T) (*AuthService, *env) {
	t.Helper()
	e := newEnv(t)
	return NewAuthService(e.users, testSecret, time.Hour, bcrypt.MinCost), e
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{
		Name:     "John Doe",
		Email:    "John@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotNil(t, res.User.Email)
	assert.Equal(t, "john@example.com", *res.User.Email)
	assert.Equal(t, models.LanguageEnglish, res.User.Language)
	assert.Equal(t, models.DefaultPreferences(), res.User.Preferences)
	assert.True(t, res.User.IsActive)
	assert.NotEqual(t, "password123", res.User.Password)

	claims, err := middleware.ParseToken(testSecret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	login, err := svc.Login(ctx, LoginInput{EmailOrPhone: " JOHN@example.com ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = svc.Login(ctx, LoginInput{EmailOrPhone: "john@example.com", Password: "wrong"})
	assertCode(t, err, models.CodeUnauthorized)
	assert.Equal(t, "Invalid credentials", models.AsAppError(err).Message)

	_, err = svc.Login(ctx, LoginInput{EmailOrPhone: "nobody@example.com", Password: "password123"})
	assertCode(t, err, models.CodeUnauthorized)
}

func TestAuthService_RegisterWithPhone(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{
		Name:     "राहुल कुमार",
		Phone:    "+919876543210",
		Password: "password123",
		Language: models.LanguageHindi,
	})
	require.NoError(t, err)
	assert.Nil(t, res.User.Email)
	assert.Equal(t, models.LanguageHindi, res.User.Language)

	login, err := svc.Login(ctx, LoginInput{EmailOrPhone: "+919876543210", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
}

func TestAuthService_RegisterRejections(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "John", Password: "password123"})
	assertCode(t, err, models.CodeValidation)
	assert.Equal(t, "Either email or phone is required", models.AsAppError(err).Fields[0].Message)

	_, err = svc.Register(ctx, RegisterInput{Name: "John", Email: "john@example.com", Password: "123"})
	assertCode(t, err, models.CodeValidation)

	_, err = svc.Register(ctx, RegisterInput{Name: "John", Phone: "phone", Password: "password123"})
	assertCode(t, err, models.CodeValidation)

	_, err = svc.Register(ctx, RegisterInput{Name: "John", Email: "john@example.com", Password: "password123"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "Johnny", Email: "JOHN@example.com", Password: "password123"})
	assertCode(t, err, models.CodeConflict)
}

func TestAuthService_DeactivatedAccount(t *testing.T) {
	svc, e := newAuth(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", res.User.ID).UpdateColumn("is_active", false).Error)

	_, err = svc.Login(ctx, LoginInput{EmailOrPhone: "jane@example.com", Password: "password123"})
	assertCode(t, err, models.CodeUnauthorized)
	assert.Equal(t, "Account is deactivated", models.AsAppError(err).Message)
}

func TestAuthService_CheckActive(t *testing.T) {
	svc, e := newAuth(t)
	client, mr := testutil.NewTestRedis(t)
	cache.SetClient(client)
	t.Cleanup(func() { cache.SetClient(nil) })
	ctx := context.Background()

	john := testutil.CreateUser(t, e.db, "john")
	require.NoError(t, svc.CheckActive(ctx, john.ID))
	assert.True(t, mr.Exists(cache.UserStatusKey(john.ID)))

	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", john.ID).UpdateColumn("is_active", false).Error)
	cache.InvalidateUser(ctx, john.ID)

	err := svc.CheckActive(ctx, john.ID)
	assertCode(t, err, models.CodeUnauthorized)
	assert.Equal(t, "Account is deactivated", models.AsAppError(err).Message)

	err = svc.CheckActive(ctx, 9999)
	assertCode(t, err, models.CodeUnauthorized)
	assert.Equal(t, "User no longer exists", models.AsAppError(err).Message)
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	svc, _ := newAuth(t)
	client, _ := testutil.NewTestRedis(t)
	cache.SetClient(client)
	t.Cleanup(func() { cache.SetClient(nil) })
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Name: "John", Email: "john@example.com", Password: "password123"})
	require.NoError(t, err)
	claims, err := middleware.ParseToken(testSecret, res.Token)
	require.NoError(t, err)

	assert.False(t, cache.IsRevoked(ctx, claims.JTI))
	require.NoError(t, svc.Logout(ctx, claims))
	assert.True(t, cache.IsRevoked(ctx, claims.JTI))

	require.NoError(t, svc.Logout(ctx, nil))
}
