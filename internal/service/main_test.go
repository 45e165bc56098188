package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"stackit/internal/cache"
	"stackit/internal/models"
	"stackit/internal/repository"
	"stackit/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingNotifier captures notifications instead of storing them.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []*models.Notification
}

func (r *recordingNotifier) NotifyAll(_ context.Context, list ...*models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, list...)
}

func (r *recordingNotifier) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

func (r *recordingNotifier) to(userID uint) []*models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

// env wires the services over an in-memory database.
type env struct {
	db        *gorm.DB
	users     repository.UserRepository
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	notes     *recordingNotifier

	questionSvc *QuestionService
	answerSvc   *AnswerService
	userSvc     *UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cache.SetClient(nil)

	db := testutil.NewTestDB(t)
	e := &env{
		db:        db,
		users:     repository.NewUserRepository(db),
		questions: repository.NewQuestionRepository(db),
		answers:   repository.NewAnswerRepository(db),
		notes:     &recordingNotifier{},
	}
	rep := NewReputation(e.users, true)
	e.questionSvc = NewQuestionService(e.questions, e.users, e.notes, rep)
	e.answerSvc = NewAnswerService(e.answers, e.questions, e.users, e.notes, rep)
	e.userSvc = NewUserService(e.users, e.questions)
	return e
}

func (e *env) ask(t *testing.T, author *models.User) *models.Question {
	t.Helper()
	q, err := e.questionSvc.Create(context.Background(), CreateQuestionInput{
		AuthorID: author.ID,
		Title:    "How to implement authentication in React?",
		Content:  "I want to add login and protected routes to my React app.",
		Tags:     []string{"react", "authentication", "javascript"},
	})
	require.NoError(t, err)
	return q
}

func (e *env) answer(t *testing.T, author *models.User, q *models.Question) *models.Answer {
	t.Helper()
	a, err := e.answerSvc.Create(context.Background(), CreateAnswerInput{
		AuthorID:   author.ID,
		QuestionID: q.ID,
		Content:    "Use a context provider that stores the token and wrap your routes.",
	})
	require.NoError(t, err)
	return a
}

func (e *env) reputation(t *testing.T, u *models.User) int {
	t.Helper()
	fresh, err := e.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	return fresh.Reputation
}

// questionRepoStub is a stub for repository.QuestionRepository.
type questionRepoStub struct {
	createFn            func(context.Context, *models.Question) error
	getByIDFn           func(context.Context, uint) (*models.Question, error)
	snapshotFn          func(context.Context, repository.SnapshotFilter) ([]*models.Question, error)
	listByAuthorFn      func(context.Context, uint, int, int) ([]*models.Question, int64, error)
	mutateFn            func(context.Context, uint, []string, func(*models.Question) error) (*models.Question, error)
	mutateWithAnswersFn func(context.Context, uint, func(*models.Question) error) (*models.Question, error)
	incrementViewsFn    func(context.Context, uint) error
	deleteFn            func(context.Context, uint) error
}

func (s *questionRepoStub) Create(ctx context.Context, q *models.Question) error {
	return s.createFn(ctx, q)
}
func (s *questionRepoStub) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	return s.getByIDFn(ctx, id)
}
func (s *questionRepoStub) Snapshot(ctx context.Context, f repository.SnapshotFilter) ([]*models.Question, error) {
	return s.snapshotFn(ctx, f)
}
func (s *questionRepoStub) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Question, int64, error) {
	return s.listByAuthorFn(ctx, authorID, limit, offset)
}
func (s *questionRepoStub) Mutate(ctx context.Context, id uint, columns []string, fn func(*models.Question) error) (*models.Question, error) {
	return s.mutateFn(ctx, id, columns, fn)
}
func (s *questionRepoStub) MutateWithAnswers(ctx context.Context, id uint, fn func(*models.Question) error) (*models.Question, error) {
	return s.mutateWithAnswersFn(ctx, id, fn)
}
func (s *questionRepoStub) IncrementViews(ctx context.Context, id uint) error {
	return s.incrementViewsFn(ctx, id)
}
func (s *questionRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

var errUnexpectedCall = errors.New("unexpected repository call")

func failingQuestionRepo() *questionRepoStub {
	return &questionRepoStub{
		createFn:       func(context.Context, *models.Question) error { return errUnexpectedCall },
		getByIDFn:      func(context.Context, uint) (*models.Question, error) { return nil, errUnexpectedCall },
		snapshotFn:     func(context.Context, repository.SnapshotFilter) ([]*models.Question, error) { return nil, errUnexpectedCall },
		listByAuthorFn: func(context.Context, uint, int, int) ([]*models.Question, int64, error) { return nil, 0, errUnexpectedCall },
		mutateFn: func(context.Context, uint, []string, func(*models.Question) error) (*models.Question, error) {
			return nil, errUnexpectedCall
		},
		mutateWithAnswersFn: func(context.Context, uint, func(*models.Question) error) (*models.Question, error) {
			return nil, errUnexpectedCall
		},
		incrementViewsFn: func(context.Context, uint) error { return errUnexpectedCall },
		deleteFn:         func(context.Context, uint) error { return errUnexpectedCall },
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
}
