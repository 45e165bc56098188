package service

import (
	"context"
	"strings"
	"time"

	"stackit/internal/cache"
	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/repository"
	"stackit/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AuthService registers users and issues their tokens.
type AuthService struct {
	userRepo   repository.UserRepository
	secret     string
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Password string `json:"password" validate:"required,min=6"`
	Language string `json:"language" validate:"omitempty,oneof=en hi"`
}

type LoginInput struct {
	EmailOrPhone string `json:"emailOrPhone" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func NewAuthService(userRepo repository.UserRepository, secret string, ttl time.Duration, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = 12
	}
	return &AuthService{
		userRepo:   userRepo,
		secret:     secret,
		ttl:        ttl,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = validation.NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Email == "" && in.Phone == "" {
		return nil, models.NewFieldValidationError([]models.FieldError{{
			Field:   "email",
			Message: "Either email or phone is required",
		}})
	}

	exists, err := s.userRepo.ExistsByEmailOrPhone(ctx, in.Email, in.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("User already exists with this email or phone")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	language := in.Language
	if language == "" {
		language = models.LanguageEnglish
	}
	now := s.now()
	user := &models.User{
		Name:        in.Name,
		Password:    string(hashed),
		Avatar:      models.DefaultAvatarURL(in.Name),
		Language:    language,
		IsActive:    true,
		JoinDate:    now,
		LastSeen:    now,
		Preferences: models.DefaultPreferences(),
	}
	if in.Email != "" {
		user.Email = &in.Email
	}
	if in.Phone != "" {
		user.Phone = &in.Phone
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.EmailOrPhone = strings.TrimSpace(in.EmailOrPhone)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByLogin(ctx, in.EmailOrPhone)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if !user.IsActive {
		return nil, models.NewUnauthorizedError("Account is deactivated")
	}

	user.LastSeen = s.now()
	if err := s.userRepo.TouchLastSeen(ctx, user.ID, user.LastSeen); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to update last seen", "user_id", user.ID, "error", err)
	}
	return s.issue(user)
}

type accountStatus struct {
	Active bool `json:"active"`
}

// CheckActive fails with 401 when the token's user was removed or deactivated
// after the token was issued.
func (s *AuthService) CheckActive(ctx context.Context, userID uint) error {
	var status accountStatus
	err := cache.Aside(ctx, cache.UserStatusKey(userID), &status, cache.UserStatusTTL, func() error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		status.Active = user.IsActive
		return nil
	})
	if models.IsCode(err, models.CodeNotFound) {
		return models.NewUnauthorizedError("User no longer exists")
	}
	if err != nil {
		return err
	}
	if !status.Active {
		return models.NewUnauthorizedError("Account is deactivated")
	}
	return nil
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// Logout revokes the token identified by claims until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *middleware.TokenClaims) error {
	if claims == nil {
		return nil
	}
	return cache.RevokeToken(ctx, claims.JTI, claims.ExpiresAt)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := middleware.IssueToken(s.secret, user.ID, s.ttl)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
