package service

import (
	"context"
	"strings"
	"time"

	"stackit/internal/cache"
	"stackit/internal/models"
	"stackit/internal/observability"
	"stackit/internal/query"
	"stackit/internal/repository"
	"stackit/internal/validation"
	"stackit/internal/voting"
)

type AnswerService struct {
	answerRepo   repository.AnswerRepository
	questionRepo repository.QuestionRepository
	userRepo     repository.UserRepository
	notifier     Notifier
	reputation   *Reputation
	now          func() time.Time
}

type CreateAnswerInput struct {
	AuthorID   uint     `json:"-"`
	QuestionID uint     `json:"questionId" validate:"required"`
	Content    string   `json:"content" validate:"required,min=10,max=10000"`
	Images     []string `json:"images" validate:"omitempty,max=10,dive,url"`
}

type UpdateAnswerInput struct {
	AnswerID uint     `json:"-"`
	ActorID  uint     `json:"-"`
	Content  *string  `json:"content" validate:"omitempty,min=10,max=10000"`
	Images   []string `json:"images" validate:"omitempty,max=10,dive,url"`
}

func NewAnswerService(answerRepo repository.AnswerRepository, questionRepo repository.QuestionRepository, userRepo repository.UserRepository, notifier Notifier, reputation *Reputation) *AnswerService {
	return &AnswerService{
		answerRepo:   answerRepo,
		questionRepo: questionRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		reputation:   reputation,
		now:          time.Now,
	}
}

// Create posts an answer, then tells the question author and its followers.
func (s *AnswerService) Create(ctx context.Context, in CreateAnswerInput) (*models.Answer, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	content, err := validation.SanitizeField("content", in.Content)
	if err != nil {
		return nil, err
	}
	in.Content = content

	answer := &models.Answer{
		Content:    in.Content,
		Images:     models.StringList(in.Images),
		AuthorID:   in.AuthorID,
		QuestionID: in.QuestionID,
	}
	q, err := s.answerRepo.Create(ctx, answer, func(q *models.Question, hasAnswered bool) error {
		if q.IsClosed {
			return models.NewValidationError("Cannot answer a closed question")
		}
		if hasAnswered {
			return models.NewConflictError("You have already answered this question")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateQuestion(ctx, q.ID)

	name := actorName(ctx, s.userRepo, in.AuthorID)
	var notes []*models.Notification
	if q.AuthorID != in.AuthorID {
		notes = append(notes, newAnswerNote(name, q, in.AuthorID))
	}
	for _, follower := range q.Followers {
		if follower == in.AuthorID {
			continue
		}
		notes = append(notes, followedAnswerNote(name, q, follower, in.AuthorID))
	}
	s.notifier.NotifyAll(ctx, notes...)

	answer.Finalize()
	return answer, nil
}

func (s *AnswerService) Update(ctx context.Context, in UpdateAnswerInput) (*models.Answer, error) {
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		in.Content = &content
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Content != nil {
		content, err := validation.SanitizeField("content", *in.Content)
		if err != nil {
			return nil, err
		}
		in.Content = &content
	}

	a, err := s.answerRepo.Mutate(ctx, in.AnswerID, repository.AnswerContentColumns, func(a *models.Answer) error {
		if a.AuthorID != in.ActorID {
			return models.NewForbiddenError("Not authorized to update this answer")
		}
		if in.Content != nil {
			a.Content = *in.Content
		}
		if in.Images != nil {
			a.Images = models.StringList(in.Images)
		}
		a.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateQuestion(ctx, a.QuestionID)
	return a, nil
}

func (s *AnswerService) Delete(ctx context.Context, id, actorID uint) error {
	a, err := s.answerRepo.Delete(ctx, id, func(a *models.Answer) error {
		if a.AuthorID != actorID {
			return models.NewForbiddenError("Not authorized to delete this answer")
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidateQuestion(ctx, a.QuestionID)
	return nil
}

func (s *AnswerService) Vote(ctx context.Context, id, actorID uint, dir models.VoteDirection) (*VoteOutcome, error) {
	if !dir.Valid() {
		return nil, models.NewValidationError("Vote type must be 'up' or 'down'")
	}

	var result voting.VoteResult
	a, err := s.answerRepo.Mutate(ctx, id, repository.AnswerVoteColumns, func(a *models.Answer) error {
		var err error
		result, err = voting.ApplyVote(a, actorID, dir)
		return err
	})
	if err != nil {
		return nil, err
	}
	observability.VotesTotal.WithLabelValues("answer", string(dir)).Inc()
	cache.InvalidateQuestion(ctx, a.QuestionID)

	s.reputation.Apply(ctx, voting.VoteDeltas(a.AuthorID, actorID, result))
	if result.Notify {
		name := actorName(ctx, s.userRepo, actorID)
		s.notifier.NotifyAll(ctx, answerUpvotedNote(name, a, actorID))
	}
	return &VoteOutcome{VoteSet: a.VoteSet, UserVote: result.Current}, nil
}

// Accept makes the answer its question's accepted answer, clearing any previous one.
func (s *AnswerService) Accept(ctx context.Context, id, actorID uint) (*models.Answer, error) {
	target, err := s.answerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var result voting.AcceptResult
	q, err := s.questionRepo.MutateWithAnswers(ctx, target.QuestionID, func(q *models.Question) error {
		var err error
		result, err = voting.AcceptAnswer(q, id, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateQuestion(ctx, q.ID)

	if result.Changed {
		observability.AnswersAccepted.Inc()
	}
	s.reputation.Apply(ctx, voting.AcceptDeltas(actorID, result))
	if result.Notify {
		name := actorName(ctx, s.userRepo, actorID)
		s.notifier.NotifyAll(ctx, answerAcceptedNote(name, q, result.Accepted, actorID))
	}

	accepted := *result.Accepted
	accepted.Finalize()
	return &accepted, nil
}

// Unaccept clears the accepted flag on the answer; no other answer is promoted.
func (s *AnswerService) Unaccept(ctx context.Context, id, actorID uint) (*models.Answer, error) {
	target, err := s.answerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		answer      *models.Answer
		wasAccepted bool
	)
	_, err = s.questionRepo.MutateWithAnswers(ctx, target.QuestionID, func(q *models.Question) error {
		var err error
		answer, wasAccepted, err = voting.UnacceptAnswer(q, id, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateQuestion(ctx, target.QuestionID)
	s.reputation.Apply(ctx, voting.UnacceptDeltas(actorID, answer, wasAccepted))

	out := *answer
	out.Finalize()
	return &out, nil
}

// ListByAuthor returns a page of answers written by authorID, newest first.
func (s *AnswerService) ListByAuthor(ctx context.Context, authorID uint, page, limit int) ([]*models.Answer, *models.Pagination, error) {
	page, limit = query.NormalizePage(page, limit, query.DefaultLimit)
	p := models.NewPagination(page, limit, 0)
	list, total, err := s.answerRepo.ListByAuthor(ctx, authorID, limit, p.Offset())
	if err != nil {
		return nil, nil, err
	}
	if list == nil {
		list = []*models.Answer{}
	}
	return list, models.NewPagination(page, limit, total), nil
}
