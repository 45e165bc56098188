package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stackit/internal/models"
	"stackit/internal/observability"
	"stackit/internal/voting"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByLogin(ctx context.Context, emailOrPhone string) (*models.User, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	Mutate(ctx context.Context, id uint, columns []string, fn func(user *models.User) error) (*models.User, error)
	TouchLastSeen(ctx context.Context, id uint, at time.Time) error
	AdjustReputation(ctx context.Context, deltas []voting.Delta) error
	CountContributions(ctx context.Context, id uint) (questions, answers int64, err error)
}

// Column groups written by Mutate. Reputation and last_seen are never among
// them; those only change through atomic updates.
var (
	UserSetColumns     = []string{"followed_tags", "blocked_users", "updated_at"}
	UserProfileColumns = []string{
		"name", "bio", "avatar", "language",
		"pref_content_language", "pref_email_notifications", "pref_push_notifications",
		"pref_mention_notifications", "pref_answer_notifications", "pref_follow_notifications",
		"pref_theme", "updated_at",
	}
)

// userRepository implements UserRepository
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if isUniqueViolation(err) {
		return models.NewConflictError("User already exists with this email or phone")
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, err
	}
	return &user, nil
}

// GetByLogin finds a user by email (case-insensitive) or phone.
func (r *userRepository) GetByLogin(ctx context.Context, emailOrPhone string) (*models.User, error) {
	login := strings.TrimSpace(emailOrPhone)
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ? OR phone = ?", strings.ToLower(login), login).
		First(&user).Error
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	switch {
	case email != "" && phone != "":
		q = q.Where("email = ? OR phone = ?", email, phone)
	case email != "":
		q = q.Where("email = ?", email)
	case phone != "":
		q = q.Where("phone = ?", phone)
	default:
		return false, nil
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Mutate re-reads the user under its document lock, applies fn and writes back
// only the named columns.
func (r *userRepository) Mutate(ctx context.Context, id uint, columns []string, fn func(user *models.User) error) (*models.User, error) {
	unlock := documentLocks.Lock(userLockKey(id))
	defer unlock()

	ctx, span := observability.StartSpan(ctx, "repository.user.mutate")
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&user, id).Error; err != nil {
			if isNotFound(err) {
				return models.NewNotFoundError("User", id)
			}
			return err
		}
		if err := fn(&user); err != nil {
			return err
		}
		return tx.Model(&user).Select(columns).Updates(&user).Error
	})
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) TouchLastSeen(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("last_seen", at).Error
}

// AdjustReputation applies every delta atomically, never letting reputation drop below zero.
func (r *userRepository) AdjustReputation(ctx context.Context, deltas []voting.Delta) error {
	if len(deltas) == 0 {
		return nil
	}
	defer observability.TrackQuery("adjust_reputation", "users")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range deltas {
			if d.Amount == 0 {
				continue
			}
			expr := gorm.Expr("CASE WHEN reputation + ? < 0 THEN 0 ELSE reputation + ? END", d.Amount, d.Amount)
			if err := tx.Model(&models.User{}).Where("id = ?", d.UserID).
				UpdateColumn("reputation", expr).Error; err != nil {
				return fmt.Errorf("adjust reputation for user %d: %w", d.UserID, err)
			}
		}
		return nil
	})
}

func (r *userRepository) CountContributions(ctx context.Context, id uint) (int64, int64, error) {
	var questions, answers int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Question{}).Where("author_id = ?", id).Count(&questions).Error; err != nil {
		return 0, 0, err
	}
	if err := db.Model(&models.Answer{}).Where("author_id = ?", id).Count(&answers).Error; err != nil {
		return 0, 0, err
	}
	return questions, answers, nil
}
