// Package notifications provides the pull-based notification inbox.
package notifications

import (
	"context"
	"log/slog"

	"stackit/internal/cache"
	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/observability"
	"stackit/internal/query"
	"stackit/internal/repository"
)

const (
	DefaultListLimit = 20
)

// Outcome labels for stackit_notifications_total.
const (
	outcomeStored  = "stored"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)

// Notifier appends notifications to recipients' inboxes and serves them back.
type Notifier struct {
	repo  repository.NotificationRepository
	users repository.UserRepository
}

// NewNotifier creates a new Notifier backed by the given repositories.
func NewNotifier(repo repository.NotificationRepository, users repository.UserRepository) *Notifier {
	return &Notifier{repo: repo, users: users}
}

// Notify appends n to its recipient's inbox. It reports false without error when the
// notification is suppressed: the recipient is the origin, has blocked the origin,
// or has switched the category off.
func (s *Notifier) Notify(ctx context.Context, n *models.Notification) (bool, error) {
	if n.FromUserID != nil && *n.FromUserID == n.UserID {
		observability.NotificationsTotal.WithLabelValues(string(n.Type), outcomeSkipped).Inc()
		return false, nil
	}

	recipient, err := s.users.GetByID(ctx, n.UserID)
	if err != nil {
		observability.NotificationsTotal.WithLabelValues(string(n.Type), outcomeFailed).Inc()
		return false, err
	}
	if n.FromUserID != nil && recipient.BlockedUsers.Contains(*n.FromUserID) {
		observability.NotificationsTotal.WithLabelValues(string(n.Type), outcomeSkipped).Inc()
		return false, nil
	}
	if !recipient.Preferences.Allows(n.Type) {
		observability.NotificationsTotal.WithLabelValues(string(n.Type), outcomeSkipped).Inc()
		return false, nil
	}

	n.ID = 0
	n.IsRead = false
	if err := s.repo.Create(ctx, n); err != nil {
		observability.NotificationsTotal.WithLabelValues(string(n.Type), outcomeFailed).Inc()
		return false, err
	}
	observability.NotificationsTotal.WithLabelValues(string(n.Type), outcomeStored).Inc()
	cache.InvalidateUnreadCount(ctx, n.UserID)
	return true, nil
}

// NotifyAll delivers every notification, logging failures instead of returning them.
// Side effects of a committed change must not fail the change itself.
func (s *Notifier) NotifyAll(ctx context.Context, list ...*models.Notification) {
	for _, n := range list {
		if _, err := s.Notify(ctx, n); err != nil {
			middleware.Logger.WarnContext(ctx, "notification delivery failed",
				slog.String("type", string(n.Type)),
				slog.Uint64("recipient", uint64(n.UserID)),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Inbox is one page of a user's notifications.
type Inbox struct {
	Notifications []*models.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
	Pagination    *models.Pagination     `json:"-"`
}

// List returns the user's notifications newest first.
func (s *Notifier) List(ctx context.Context, userID uint, page, limit int, unreadOnly bool) (*Inbox, error) {
	page, limit = query.NormalizePage(page, limit, DefaultListLimit)
	p := models.NewPagination(page, limit, 0)

	list, total, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit, p.Offset())
	if err != nil {
		return nil, err
	}
	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Notification{}
	}
	return &Inbox{
		Notifications: list,
		UnreadCount:   unread,
		Pagination:    models.NewPagination(page, limit, total),
	}, nil
}

// UnreadCount returns the number of unread notifications, cached briefly in Redis.
func (s *Notifier) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := cache.Aside(ctx, cache.UnreadCountKey(userID), &count, cache.UnreadCountTTL, func() error {
		var err error
		count, err = s.repo.CountUnread(ctx, userID)
		return err
	})
	return count, err
}

// owned loads notification id and checks that userID is its recipient.
func (s *Notifier) owned(ctx context.Context, id, userID uint) (*models.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, models.NewForbiddenError("Not authorized to access this notification")
	}
	return n, nil
}

// MarkRead flags one notification as read.
func (s *Notifier) MarkRead(ctx context.Context, id, userID uint) (*models.Notification, error) {
	n, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !n.IsRead {
		if err := s.repo.MarkRead(ctx, id); err != nil {
			return nil, err
		}
		n.IsRead = true
		cache.InvalidateUnreadCount(ctx, userID)
	}
	return n, nil
}

// MarkAllRead flags every unread notification of userID as read.
func (s *Notifier) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	cache.InvalidateUnreadCount(ctx, userID)
	return n, nil
}

// Delete removes one of userID's notifications.
func (s *Notifier) Delete(ctx context.Context, id, userID uint) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateUnreadCount(ctx, userID)
	return nil
}

// ClearAll removes every notification of userID.
func (s *Notifier) ClearAll(ctx context.Context, userID uint) (int64, error) {
	n, err := s.repo.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	cache.InvalidateUnreadCount(ctx, userID)
	return n, nil
}
