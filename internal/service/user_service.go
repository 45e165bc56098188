package service

import (
	"context"
	"strings"

	"stackit/internal/cache"
	"stackit/internal/models"
	"stackit/internal/query"
	"stackit/internal/repository"
	"stackit/internal/validation"
)

type UserService struct {
	userRepo     repository.UserRepository
	questionRepo repository.QuestionRepository
}

// PreferencesInput is a partial preferences update; nil fields are left alone.
type PreferencesInput struct {
	ContentLanguage      *string `json:"contentLanguage" validate:"omitempty,oneof=en hi both"`
	EmailNotifications   *bool   `json:"emailNotifications"`
	PushNotifications    *bool   `json:"pushNotifications"`
	MentionNotifications *bool   `json:"mentionNotifications"`
	AnswerNotifications  *bool   `json:"answerNotifications"`
	FollowNotifications  *bool   `json:"followNotifications"`
	Theme                *string `json:"theme" validate:"omitempty,oneof=light dark auto"`
}

type UpdateProfileInput struct {
	UserID      uint              `json:"-"`
	Name        *string           `json:"name" validate:"omitempty,min=2,max=50"`
	Bio         *string           `json:"bio" validate:"omitempty,max=500"`
	Avatar      *string           `json:"avatar" validate:"omitempty,url"`
	Language    *string           `json:"language" validate:"omitempty,oneof=en hi"`
	Preferences *PreferencesInput `json:"preferences"`
}

// ToggleResult reports the state of a set membership after a toggle.
type ToggleResult struct {
	Active bool `json:"active"`
}

func NewUserService(userRepo repository.UserRepository, questionRepo repository.QuestionRepository) *UserService {
	return &UserService{userRepo: userRepo, questionRepo: questionRepo}
}

// GetProfile returns a user with question and answer counts filled in.
func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.QuestionCount, user.AnswerCount, err = s.userRepo.CountContributions(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetPublicProfile returns the contact-free profile of another user.
func (s *UserService) GetPublicProfile(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.UserKey(id), &profile, cache.UserTTL, func() error {
		user, err := s.GetProfile(ctx, id)
		if err != nil {
			return err
		}
		profile = *user.PublicProfile()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.Mutate(ctx, in.UserID, repository.UserProfileColumns, func(u *models.User) error {
		if in.Name != nil && *in.Name != "" {
			u.Name = *in.Name
		}
		if in.Bio != nil {
			u.Bio = strings.TrimSpace(*in.Bio)
		}
		if in.Avatar != nil && *in.Avatar != "" {
			u.Avatar = *in.Avatar
		}
		if in.Language != nil && *in.Language != "" {
			u.Language = *in.Language
		}
		if p := in.Preferences; p != nil {
			applyPreferences(&u.Preferences, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateUser(ctx, user.ID)
	return s.GetProfile(ctx, user.ID)
}

func applyPreferences(dst *models.Preferences, p *PreferencesInput) {
	if p.ContentLanguage != nil && *p.ContentLanguage != "" {
		dst.ContentLanguage = *p.ContentLanguage
	}
	if p.EmailNotifications != nil {
		dst.EmailNotifications = *p.EmailNotifications
	}
	if p.PushNotifications != nil {
		dst.PushNotifications = *p.PushNotifications
	}
	if p.MentionNotifications != nil {
		dst.MentionNotifications = *p.MentionNotifications
	}
	if p.AnswerNotifications != nil {
		dst.AnswerNotifications = *p.AnswerNotifications
	}
	if p.FollowNotifications != nil {
		dst.FollowNotifications = *p.FollowNotifications
	}
	if p.Theme != nil && *p.Theme != "" {
		dst.Theme = *p.Theme
	}
}

// ToggleFollowTag follows tag, or unfollows it when already followed.
func (s *UserService) ToggleFollowTag(ctx context.Context, userID uint, tag string) (*ToggleResult, error) {
	normalized := validation.NormalizeTags([]string{tag})
	if len(normalized) == 0 {
		return nil, models.NewFieldValidationError([]models.FieldError{{Field: "tag", Message: "Tag is required"}})
	}
	tag = normalized[0]
	if len([]rune(tag)) > 20 {
		return nil, models.NewFieldValidationError([]models.FieldError{{Field: "tag", Message: "Tag cannot exceed 20 characters"}})
	}

	var following bool
	_, err := s.userRepo.Mutate(ctx, userID, repository.UserSetColumns, func(u *models.User) error {
		if u.FollowedTags.Remove(tag) {
			following = false
			return nil
		}
		u.FollowedTags.Add(tag)
		following = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateUser(ctx, userID)
	return &ToggleResult{Active: following}, nil
}

// ToggleBlockUser blocks target, or unblocks it when already blocked.
func (s *UserService) ToggleBlockUser(ctx context.Context, userID, target uint) (*ToggleResult, error) {
	if target == 0 {
		return nil, models.NewFieldValidationError([]models.FieldError{{Field: "userId", Message: "User ID is required"}})
	}
	if target == userID {
		return nil, models.NewValidationError("Cannot block yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, target); err != nil {
		return nil, err
	}

	var blocked bool
	_, err := s.userRepo.Mutate(ctx, userID, repository.UserSetColumns, func(u *models.User) error {
		if u.BlockedUsers.Remove(target) {
			blocked = false
			return nil
		}
		u.BlockedUsers.Add(target)
		blocked = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Active: blocked}, nil
}

// ListQuestions returns a page of questions written by authorID, newest first.
func (s *UserService) ListQuestions(ctx context.Context, authorID uint, page, limit int) ([]*models.Question, *models.Pagination, error) {
	page, limit = query.NormalizePage(page, limit, query.DefaultLimit)
	p := models.NewPagination(page, limit, 0)
	list, total, err := s.questionRepo.ListByAuthor(ctx, authorID, limit, p.Offset())
	if err != nil {
		return nil, nil, err
	}
	if list == nil {
		list = []*models.Question{}
	}
	for _, q := range list {
		q.TrimForListing()
	}
	return list, models.NewPagination(page, limit, total), nil
}
