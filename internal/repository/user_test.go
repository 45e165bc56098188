package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"stackit/internal/models"
	"stackit/internal/testutil"
	"stackit/internal/voting"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		expectedName string
		expectedCode string
		expectedErr  bool
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "name", "email"}).
					AddRow(1, "John Doe", "john@example.com")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
			expectedName: "John Doe",
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.CodeNotFound,
			expectedErr:  true,
		},
		{
			name:   "Database Error",
			userID: 2,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(2, 1).
					WillReturnError(errors.New("connection reset"))
			},
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)
			if tt.expectedErr {
				require.Error(t, err)
				if tt.expectedCode != "" {
					assert.True(t, models.IsCode(err, tt.expectedCode))
				} else {
					assert.False(t, models.IsCode(err, models.CodeNotFound))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedName, user.Name)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: users.email")))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	email := "john@example.com"
	require.NoError(t, f.users.Create(ctx, &models.User{Name: "John", Email: &email, Password: "x", Language: "en"}))

	dup := email
	err := f.users.Create(ctx, &models.User{Name: "Johnny", Email: &dup, Password: "x", Language: "en"})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	exists, err := f.users.ExistsByEmailOrPhone(ctx, email, "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.users.ExistsByEmailOrPhone(ctx, "", "+919876543210")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_GetByLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	phone := "+919876543210"
	require.NoError(t, f.users.Create(ctx, &models.User{Name: "राहुल कुमार", Phone: &phone, Password: "x", Language: "hi"}))
	u := testutil.CreateUser(t, f.db, "jane")

	got, err := f.users.GetByLogin(ctx, "  JANE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	byPhone, err := f.users.GetByLogin(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, "hi", byPhone.Language)

	_, err = f.users.GetByLogin(ctx, "nobody@example.com")
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))
}

func TestUserRepository_MutateSets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "john")

	_, err := f.users.Mutate(ctx, u.ID, UserSetColumns, func(user *models.User) error {
		user.FollowedTags.Add("react")
		user.BlockedUsers.Add(42)
		return nil
	})
	require.NoError(t, err)

	reloaded, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringSet{"react"}, reloaded.FollowedTags)
	assert.Equal(t, models.IDSet{42}, reloaded.BlockedUsers)

	_, err = f.users.Mutate(ctx, 999, UserSetColumns, func(*models.User) error { return nil })
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestUserRepository_MutateWritesOnlyNamedColumns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "john")

	_, err := f.users.Mutate(ctx, u.ID, UserSetColumns, func(user *models.User) error {
		user.FollowedTags.Add("go")
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, f.users.AdjustReputation(ctx, []voting.Delta{{UserID: u.ID, Amount: 10}}))

	_, err = f.users.Mutate(ctx, u.ID, UserProfileColumns, func(user *models.User) error {
		user.Bio = "Gopher"
		user.Preferences.Theme = "dark"
		user.Reputation = 0
		user.FollowedTags = models.StringSet{}
		return nil
	})
	require.NoError(t, err)

	reloaded, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gopher", reloaded.Bio)
	assert.Equal(t, "dark", reloaded.Preferences.Theme)
	assert.Equal(t, 10, reloaded.Reputation)
	assert.Equal(t, models.StringSet{"go"}, reloaded.FollowedTags)
}

func TestUserRepository_AdjustReputationClampsAtZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "john")

	require.NoError(t, f.users.AdjustReputation(ctx, []voting.Delta{{UserID: u.ID, Amount: 12}}))
	require.NoError(t, f.users.AdjustReputation(ctx, []voting.Delta{{UserID: u.ID, Amount: -10}}))
	got, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Reputation)

	require.NoError(t, f.users.AdjustReputation(ctx, []voting.Delta{{UserID: u.ID, Amount: -10}}))
	got, err = f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Reputation)
}

func TestUserRepository_TouchLastSeenAndCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "john")
	other := testutil.CreateUser(t, f.db, "jane")

	q := f.question(t, u, "How to implement authentication in React?")
	f.question(t, u, "Why does my goroutine leak on shutdown?")
	f.answer(t, u, f.question(t, other, "What is the best way to learn Hindi?"))
	_ = q

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, f.users.TouchLastSeen(ctx, u.ID, at))
	got, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.LastSeen.Equal(at))

	questions, answers, err := f.users.CountContributions(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), questions)
	assert.Equal(t, int64(1), answers)
}
