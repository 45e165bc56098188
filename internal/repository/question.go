package repository

import (
	"context"

	"stackit/internal/models"
	"stackit/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Columns written back by each kind of question mutation.
var (
	QuestionVoteColumns    = []string{"votes", "upvotes", "downvotes"}
	QuestionFollowColumns  = []string{"followers"}
	QuestionContentColumns = []string{"title", "content", "tags", "language", "images", "is_closed", "updated_at"}
)

// SnapshotFilter narrows the question snapshot in SQL before the query layer runs.
type SnapshotFilter struct {
	// Language restricts to en or hi; empty or "both" keeps every language.
	Language string
	// Search is a case-insensitive substring over title, content and tags.
	Search   string
	AuthorID uint
}

// QuestionRepository defines the interface for question data operations
type QuestionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Snapshot(ctx context.Context, filter SnapshotFilter) ([]*models.Question, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Question, int64, error)
	Mutate(ctx context.Context, id uint, columns []string, fn func(q *models.Question) error) (*models.Question, error)
	MutateWithAnswers(ctx context.Context, id uint, fn func(q *models.Question) error) (*models.Question, error)
	IncrementViews(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

// questionRepository implements QuestionRepository
type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// answerOrder puts the accepted answer first, then the best voted, then the oldest.
func answerOrder(db *gorm.DB) *gorm.DB {
	return db.Order("is_accepted DESC").Order("votes DESC").Order("created_at ASC").Order("id ASC")
}

func (r *questionRepository) Create(ctx context.Context, q *models.Question) error {
	defer observability.TrackQuery("create", "questions")()
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("Author").First(q, q.ID).Error
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	defer observability.TrackQuery("get", "questions")()
	var q models.Question
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Answers", answerOrder).
		Preload("Answers.Author").
		First(&q, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Question", id)
		}
		return nil, err
	}
	return &q, nil
}

func (r *questionRepository) Snapshot(ctx context.Context, filter SnapshotFilter) ([]*models.Question, error) {
	ctx, span := observability.StartSpan(ctx, "repository.question.snapshot",
		attribute.String("language", filter.Language),
		attribute.Bool("search", filter.Search != ""),
	)
	defer observability.TrackQuery("snapshot", "questions")()

	db := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "question_id", "author_id", "is_accepted", "created_at", "updated_at")
		})
	if filter.Language == models.LanguageEnglish || filter.Language == models.LanguageHindi {
		db = db.Where("language = ?", filter.Language)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		db = db.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\' OR LOWER(tags) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern)
	}
	if filter.AuthorID != 0 {
		db = db.Where("author_id = ?", filter.AuthorID)
	}

	var questions []*models.Question
	err := db.Order("created_at DESC").Order("id DESC").Find(&questions).Error
	observability.EndSpan(span, err)
	return questions, err
}

func (r *questionRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Question, int64, error) {
	db := r.db.WithContext(ctx)
	var total int64
	if err := db.Model(&models.Question{}).Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var questions []*models.Question
	err := db.Preload("Author").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "question_id", "author_id", "is_accepted", "created_at", "updated_at")
		}).
		Where("author_id = ?", authorID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&questions).Error
	return questions, total, err
}

// Mutate serializes a read-modify-write of one question. fn sees a freshly read row
// and only the named columns are written back.
func (r *questionRepository) Mutate(ctx context.Context, id uint, columns []string, fn func(q *models.Question) error) (*models.Question, error) {
	unlock := documentLocks.Lock(questionLockKey(id))
	defer unlock()

	ctx, span := observability.StartSpan(ctx, "repository.question.mutate")
	var q models.Question
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Preload("Author").First(&q, id).Error; err != nil {
			if isNotFound(err) {
				return models.NewNotFoundError("Question", id)
			}
			return err
		}
		if err := fn(&q); err != nil {
			return err
		}
		return tx.Model(&q).Select(columns).Updates(&q).Error
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// MutateWithAnswers is Mutate for transitions that touch the question's answers too
// (accept and unaccept). It persists accepted_answer_id and every changed isAccepted flag.
func (r *questionRepository) MutateWithAnswers(ctx context.Context, id uint, fn func(q *models.Question) error) (*models.Question, error) {
	unlock := documentLocks.Lock(questionLockKey(id))
	defer unlock()

	ctx, span := observability.StartSpan(ctx, "repository.question.mutate_with_answers")
	var q models.Question
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Preload("Author").First(&q, id).Error; err != nil {
			if isNotFound(err) {
				return models.NewNotFoundError("Question", id)
			}
			return err
		}
		if err := answerOrder(tx).Preload("Author").Where("question_id = ?", id).Find(&q.Answers).Error; err != nil {
			return err
		}
		before := make(map[uint]bool, len(q.Answers))
		for _, a := range q.Answers {
			before[a.ID] = a.IsAccepted
		}

		if err := fn(&q); err != nil {
			return err
		}

		for _, a := range q.Answers {
			if before[a.ID] == a.IsAccepted {
				continue
			}
			if err := tx.Model(&models.Answer{}).Where("id = ?", a.ID).
				UpdateColumn("is_accepted", a.IsAccepted).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Question{}).Where("id = ?", id).
			UpdateColumn("accepted_answer_id", q.AcceptedAnswerID).Error
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	q.Finalize()
	return &q, nil
}

func (r *questionRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// Delete removes the question, its answers and every notification pointing at them.
func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	unlock := documentLocks.Lock(questionLockKey(id))
	defer unlock()

	ctx, span := observability.StartSpan(ctx, "repository.question.delete")
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var answerIDs []uint
		if err := tx.Model(&models.Answer{}).Where("question_id = ?", id).Pluck("id", &answerIDs).Error; err != nil {
			return err
		}
		if err := deleteRelatedNotifications(tx, models.RelatedQuestion, []uint{id}); err != nil {
			return err
		}
		if err := deleteRelatedNotifications(tx, models.RelatedAnswer, answerIDs); err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Question{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Question", id)
		}
		return nil
	})
	observability.EndSpan(span, err)
	return err
}

func deleteRelatedNotifications(tx *gorm.DB, model string, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("related_model = ? AND related_id IN ?", model, ids).Delete(&models.Notification{}).Error
}
