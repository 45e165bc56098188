package repository

import (
	"context"
	"testing"

	"stackit/internal/models"
	"stackit/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

type fixture struct {
	db        *gorm.DB
	users     UserRepository
	questions QuestionRepository
	answers   AnswerRepository
	notes     NotificationRepository
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewTestDB(t)
	return &fixture{
		db:        db,
		users:     NewUserRepository(db),
		questions: NewQuestionRepository(db),
		answers:   NewAnswerRepository(db),
		notes:     NewNotificationRepository(db),
	}
}

func (f *fixture) question(t *testing.T, author *models.User, title string, opts ...func(*models.Question)) *models.Question {
	t.Helper()
	q := &models.Question{
		Title:    title,
		Content:  "Some detailed content describing the problem at hand.",
		AuthorID: author.ID,
		Tags:     models.StringSet{"go"},
		Language: models.LanguageEnglish,
	}
	for _, o := range opts {
		o(q)
	}
	require.NoError(t, f.questions.Create(context.Background(), q))
	return q
}

func (f *fixture) answer(t *testing.T, author *models.User, q *models.Question) *models.Answer {
	t.Helper()
	a := &models.Answer{Content: "A sufficiently long answer body.", AuthorID: author.ID, QuestionID: q.ID}
	_, err := f.answers.Create(context.Background(), a, nil)
	require.NoError(t, err)
	return a
}
