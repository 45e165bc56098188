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

type QuestionService struct {
	questionRepo repository.QuestionRepository
	userRepo     repository.UserRepository
	notifier     Notifier
	reputation   *Reputation
	now          func() time.Time
}

type CreateQuestionInput struct {
	AuthorID uint     `json:"-"`
	Title    string   `json:"title" validate:"required,min=10,max=200"`
	Content  string   `json:"content" validate:"required,min=20,max=10000"`
	Tags     []string `json:"tags" validate:"required,min=1,max=5,dive,min=1,max=20"`
	Language string   `json:"language" validate:"omitempty,oneof=en hi"`
	Images   []string `json:"images" validate:"omitempty,max=10,dive,url"`
}

// UpdateQuestionInput carries a partial update; nil fields are left unchanged.
type UpdateQuestionInput struct {
	QuestionID uint     `json:"-"`
	ActorID    uint     `json:"-"`
	Title      *string  `json:"title" validate:"omitempty,min=10,max=200"`
	Content    *string  `json:"content" validate:"omitempty,min=20,max=10000"`
	Tags       []string `json:"tags" validate:"omitempty,max=5,dive,min=1,max=20"`
	Language   *string  `json:"language" validate:"omitempty,oneof=en hi"`
	Images     []string `json:"images" validate:"omitempty,max=10,dive,url"`
	IsClosed   *bool    `json:"isClosed"`
}

type ListQuestionsInput struct {
	Filter   string
	Language string
	Search   string
	Page     int
	Limit    int
	ActorID  uint
}

// VoteOutcome is the vote state returned after a vote.
type VoteOutcome struct {
	models.VoteSet
	UserVote models.VoteDirection `json:"userVote"`
}

type FollowOutcome struct {
	Following      bool `json:"following"`
	FollowersCount int  `json:"followersCount"`
}

func NewQuestionService(questionRepo repository.QuestionRepository, userRepo repository.UserRepository, notifier Notifier, reputation *Reputation) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		reputation:   reputation,
		now:          time.Now,
	}
}

func (s *QuestionService) Create(ctx context.Context, in CreateQuestionInput) (*models.Question, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Tags = validation.NormalizeTags(in.Tags)
	if in.Language == "" {
		in.Language = models.LanguageEnglish
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	content, err := validation.SanitizeField("content", in.Content)
	if err != nil {
		return nil, err
	}
	in.Content = content

	q := &models.Question{
		Title:    in.Title,
		Content:  in.Content,
		Tags:     models.StringSet(in.Tags),
		Language: in.Language,
		Images:   models.StringList(in.Images),
		AuthorID: in.AuthorID,
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	q.Finalize()
	return q, nil
}

// List runs a named listing over the question snapshot and returns one page of it.
func (s *QuestionService) List(ctx context.Context, in ListQuestionsInput) ([]*models.Question, *models.Pagination, error) {
	filter, err := query.ParseFilter(in.Filter)
	if err != nil {
		return nil, nil, err
	}
	language, err := query.ParseLanguage(in.Language)
	if err != nil {
		return nil, nil, err
	}

	if filter.RequiresActor() && in.ActorID == 0 {
		page, limit := query.NormalizePage(in.Page, in.Limit, query.DefaultLimit)
		return []*models.Question{}, models.NewPagination(page, limit, 0), nil
	}

	snapshotFilter := repository.SnapshotFilter{
		Language: language,
		Search:   strings.TrimSpace(in.Search),
	}
	if filter == query.FilterMy {
		snapshotFilter.AuthorID = in.ActorID
	}
	snapshot, err := s.questionRepo.Snapshot(ctx, snapshotFilter)
	if err != nil {
		return nil, nil, err
	}

	ordered := query.Apply(snapshot, query.Options{
		Filter:   filter,
		Language: language,
		ActorID:  in.ActorID,
		Now:      s.now(),
	})
	page := query.Paginate(ordered, in.Page, in.Limit)
	for _, q := range page.Items {
		q.TrimForListing()
	}
	return page.Items, page.Pagination, nil
}

// Get loads a question with its answers. Authenticated reads count as a view;
// anonymous reads are served from the cache.
func (s *QuestionService) Get(ctx context.Context, id, actorID uint) (*models.Question, error) {
	if actorID == 0 {
		var q models.Question
		err := cache.Aside(ctx, cache.QuestionKey(id), &q, cache.QuestionTTL, func() error {
			loaded, err := s.questionRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			q = *loaded
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &q, nil
	}

	if err := s.questionRepo.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	return s.questionRepo.GetByID(ctx, id)
}

func (s *QuestionService) Update(ctx context.Context, in UpdateQuestionInput) (*models.Question, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		in.Content = &content
	}
	if in.Tags != nil {
		in.Tags = validation.NormalizeTags(in.Tags)
		if len(in.Tags) == 0 {
			return nil, models.NewFieldValidationError([]models.FieldError{{Field: "tags", Message: "Tags must have at least 1 item(s)"}})
		}
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

	_, err := s.questionRepo.Mutate(ctx, in.QuestionID, repository.QuestionContentColumns, func(q *models.Question) error {
		if q.AuthorID != in.ActorID {
			return models.NewForbiddenError("Not authorized to update this question")
		}
		if in.Title != nil {
			q.Title = *in.Title
		}
		if in.Content != nil {
			q.Content = *in.Content
		}
		if in.Tags != nil {
			q.Tags = models.StringSet(in.Tags)
		}
		if in.Language != nil {
			q.Language = *in.Language
		}
		if in.Images != nil {
			q.Images = models.StringList(in.Images)
		}
		if in.IsClosed != nil {
			q.IsClosed = *in.IsClosed
		}
		q.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateQuestion(ctx, in.QuestionID)
	return s.questionRepo.GetByID(ctx, in.QuestionID)
}

// Delete removes the question together with its answers and related notifications.
func (s *QuestionService) Delete(ctx context.Context, id, actorID uint) error {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if q.AuthorID != actorID {
		return models.NewForbiddenError("Not authorized to delete this question")
	}
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateQuestion(ctx, id)
	return nil
}

func (s *QuestionService) Vote(ctx context.Context, id, actorID uint, dir models.VoteDirection) (*VoteOutcome, error) {
	if !dir.Valid() {
		return nil, models.NewValidationError("Vote type must be 'up' or 'down'")
	}

	var result voting.VoteResult
	q, err := s.questionRepo.Mutate(ctx, id, repository.QuestionVoteColumns, func(q *models.Question) error {
		var err error
		result, err = voting.ApplyVote(q, actorID, dir)
		return err
	})
	if err != nil {
		return nil, err
	}
	observability.VotesTotal.WithLabelValues("question", string(dir)).Inc()
	cache.InvalidateQuestion(ctx, id)

	s.reputation.Apply(ctx, voting.VoteDeltas(q.AuthorID, actorID, result))
	if result.Notify {
		name := actorName(ctx, s.userRepo, actorID)
		s.notifier.NotifyAll(ctx, questionUpvotedNote(name, q, actorID))
	}
	return &VoteOutcome{VoteSet: q.VoteSet, UserVote: result.Current}, nil
}

// ToggleFollow follows the question, or unfollows it when already following.
func (s *QuestionService) ToggleFollow(ctx context.Context, id, actorID uint) (*FollowOutcome, error) {
	var result voting.FollowResult
	q, err := s.questionRepo.Mutate(ctx, id, repository.QuestionFollowColumns, func(q *models.Question) error {
		result = voting.ToggleFollow(q, actorID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateQuestion(ctx, id)

	if result.Notify {
		name := actorName(ctx, s.userRepo, actorID)
		s.notifier.NotifyAll(ctx, questionFollowedNote(name, q, actorID))
	}
	return &FollowOutcome{Following: result.Following, FollowersCount: q.Followers.Len()}, nil
}
