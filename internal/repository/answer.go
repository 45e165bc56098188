package repository

import (
	"context"

	"stackit/internal/models"
	"stackit/internal/observability"

	"gorm.io/gorm"
)

// Columns written back by each kind of answer mutation.
var (
	AnswerVoteColumns    = []string{"votes", "upvotes", "downvotes"}
	AnswerContentColumns = []string{"content", "images", "updated_at"}
)

// AnswerGuard inspects the locked parent question before an answer is inserted.
// hasAnswered reports whether the author already answered it.
type AnswerGuard func(q *models.Question, hasAnswered bool) error

// AnswerRepository defines the interface for answer data operations
type AnswerRepository interface {
	Create(ctx context.Context, answer *models.Answer, guard AnswerGuard) (*models.Question, error)
	GetByID(ctx context.Context, id uint) (*models.Answer, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Answer, int64, error)
	Mutate(ctx context.Context, id uint, columns []string, fn func(a *models.Answer) error) (*models.Answer, error)
	Delete(ctx context.Context, id uint, guard func(a *models.Answer) error) (*models.Answer, error)
}

// answerRepository implements AnswerRepository
type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository creates a new answer repository
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

// Create inserts answer under its question's lock so the closed check, the
// duplicate check and the insert see one consistent question. It returns the
// parent question (with author) for notification fan-out.
func (r *answerRepository) Create(ctx context.Context, answer *models.Answer, guard AnswerGuard) (*models.Question, error) {
	unlock := documentLocks.Lock(questionLockKey(answer.QuestionID))
	defer unlock()

	ctx, span := observability.StartSpan(ctx, "repository.answer.create")
	var q models.Question
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Preload("Author").First(&q, answer.QuestionID).Error; err != nil {
			if isNotFound(err) {
				return models.NewNotFoundError("Question", answer.QuestionID)
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Answer{}).
			Where("question_id = ? AND author_id = ?", answer.QuestionID, answer.AuthorID).
			Count(&existing).Error; err != nil {
			return err
		}
		if guard != nil {
			if err := guard(&q, existing > 0); err != nil {
				return err
			}
		}

		if err := tx.Create(answer).Error; err != nil {
			if isUniqueViolation(err) {
				return models.NewConflictError("You have already answered this question")
			}
			return err
		}
		return tx.Preload("Author").First(answer, answer.ID).Error
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *answerRepository) GetByID(ctx context.Context, id uint) (*models.Answer, error) {
	var a models.Answer
	err := r.db.WithContext(ctx).Preload("Author").Preload("Question").First(&a, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Answer", id)
		}
		return nil, err
	}
	return &a, nil
}

func (r *answerRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Answer, int64, error) {
	db := r.db.WithContext(ctx)
	var total int64
	if err := db.Model(&models.Answer{}).Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var answers []*models.Answer
	err := db.Preload("Author").
		Preload("Question", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title")
		}).
		Where("author_id = ?", authorID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&answers).Error
	return answers, total, err
}

// Mutate serializes a read-modify-write of one answer, writing back only columns.
func (r *answerRepository) Mutate(ctx context.Context, id uint, columns []string, fn func(a *models.Answer) error) (*models.Answer, error) {
	unlock := documentLocks.Lock(answerLockKey(id))
	defer unlock()

	ctx, span := observability.StartSpan(ctx, "repository.answer.mutate")
	var a models.Answer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Preload("Author").First(&a, id).Error; err != nil {
			if isNotFound(err) {
				return models.NewNotFoundError("Answer", id)
			}
			return err
		}
		if err := fn(&a); err != nil {
			return err
		}
		return tx.Model(&a).Select(columns).Updates(&a).Error
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes an answer after guard approves it, clearing the question's accepted
// pointer and the answer's notifications in the same transaction. It serializes on
// the parent question because the accepted pointer lives there.
func (r *answerRepository) Delete(ctx context.Context, id uint, guard func(a *models.Answer) error) (*models.Answer, error) {
	var probe models.Answer
	if err := r.db.WithContext(ctx).Select("id", "question_id").First(&probe, id).Error; err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Answer", id)
		}
		return nil, err
	}

	unlock := documentLocks.Lock(questionLockKey(probe.QuestionID))
	defer unlock()

	ctx, span := observability.StartSpan(ctx, "repository.answer.delete")
	var a models.Answer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&a, id).Error; err != nil {
			if isNotFound(err) {
				return models.NewNotFoundError("Answer", id)
			}
			return err
		}
		if guard != nil {
			if err := guard(&a); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Question{}).
			Where("id = ? AND accepted_answer_id = ?", a.QuestionID, a.ID).
			UpdateColumn("accepted_answer_id", nil).Error; err != nil {
			return err
		}
		if err := deleteRelatedNotifications(tx, models.RelatedAnswer, []uint{a.ID}); err != nil {
			return err
		}
		return tx.Delete(&models.Answer{}, a.ID).Error
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
