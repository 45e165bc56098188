// Package service implements the forum use cases on top of the repositories.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"stackit/internal/cache"
	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/repository"
	"stackit/internal/voting"
)

// Notifier receives notifications produced by committed changes.
type Notifier interface {
	NotifyAll(ctx context.Context, list ...*models.Notification)
}

// Reputation applies reputation deltas after a change commits.
type Reputation struct {
	users   repository.UserRepository
	enabled bool
}

// NewReputation returns a Reputation that is a no-op when disabled.
func NewReputation(users repository.UserRepository, enabled bool) *Reputation {
	return &Reputation{users: users, enabled: enabled}
}

// Apply persists deltas. Failures are logged, never returned.
func (r *Reputation) Apply(ctx context.Context, deltas []voting.Delta) {
	if r == nil || !r.enabled || len(deltas) == 0 {
		return
	}
	if err := r.users.AdjustReputation(ctx, deltas); err != nil {
		middleware.Logger.WarnContext(ctx, "reputation update failed",
			slog.Int("deltas", len(deltas)),
			slog.String("error", err.Error()),
		)
		return
	}
	for _, d := range deltas {
		cache.InvalidateUser(ctx, d.UserID)
	}
}

// actorName resolves the display name used in notification messages.
func actorName(ctx context.Context, users repository.UserRepository, id uint) string {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to resolve actor name",
			slog.Uint64("user_id", uint64(id)),
			slog.String("error", err.Error()),
		)
		return "Someone"
	}
	return u.Name
}

func notification(typ models.NotificationType, title, message string, to, from uint, relatedID uint, relatedModel string) *models.Notification {
	origin := from
	return &models.Notification{
		Type:         typ,
		Title:        title,
		Message:      message,
		UserID:       to,
		FromUserID:   &origin,
		RelatedID:    relatedID,
		RelatedModel: relatedModel,
	}
}

func newAnswerNote(name string, q *models.Question, actor uint) *models.Notification {
	return notification(models.NotificationAnswer, "New Answer",
		fmt.Sprintf(`%s answered your question: "%s"`, name, q.Title),
		q.AuthorID, actor, q.ID, models.RelatedQuestion)
}

func followedAnswerNote(name string, q *models.Question, follower, actor uint) *models.Notification {
	return notification(models.NotificationAnswer, "New Answer on Followed Question",
		fmt.Sprintf(`%s answered a question you follow: "%s"`, name, q.Title),
		follower, actor, q.ID, models.RelatedQuestion)
}

func questionUpvotedNote(name string, q *models.Question, actor uint) *models.Notification {
	return notification(models.NotificationVote, "Question Upvoted",
		fmt.Sprintf(`%s upvoted your question: "%s"`, name, q.Title),
		q.AuthorID, actor, q.ID, models.RelatedQuestion)
}

func answerUpvotedNote(name string, a *models.Answer, actor uint) *models.Notification {
	return notification(models.NotificationVote, "Answer Upvoted",
		fmt.Sprintf("%s upvoted your answer", name),
		a.AuthorID, actor, a.ID, models.RelatedAnswer)
}

func questionFollowedNote(name string, q *models.Question, actor uint) *models.Notification {
	return notification(models.NotificationFollow, "Question Followed",
		fmt.Sprintf(`%s started following your question: "%s"`, name, q.Title),
		q.AuthorID, actor, q.ID, models.RelatedQuestion)
}

func answerAcceptedNote(name string, q *models.Question, a *models.Answer, actor uint) *models.Notification {
	return notification(models.NotificationAnswer, "Answer Accepted",
		fmt.Sprintf(`%s accepted your answer to: "%s"`, name, q.Title),
		a.AuthorID, actor, q.ID, models.RelatedQuestion)
}
