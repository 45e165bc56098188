package server

import (
	"stackit/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
// @Summary Inbox
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (>= 1)"
// @Param limit query int false "Page size (1-50, default 20)"
// @Param unreadOnly query bool false "Only unread"
// @Success 200 {object} models.Envelope{data=notifications.Inbox}
// @Router /notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return nil
	}

	inbox, err := s.notifier.List(c.UserContext(), currentUserID(c), page.Page, page.Limit, c.QueryBool("unreadOnly", false))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.Envelope{
		Success:    true,
		Data:       inbox,
		Pagination: inbox.Pagination,
	})
}

// GetUnreadCount handles GET /api/notifications/unread-count
// @Summary Unread count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=object{unreadCount=int}}
// @Router /notifications/unread-count [get]
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.notifier.UnreadCount(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "", fiber.Map{"unreadCount": count})
}

// MarkNotificationRead handles PUT /api/notifications/:id/read
// @Summary Mark one notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} models.Envelope{data=models.Notification}
// @Failure 403 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /notifications/{id}/read [put]
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	n, err := s.notifier.MarkRead(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Notification marked as read", n)
}

// MarkAllNotificationsRead handles PUT /api/notifications/mark-all-read
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=object{updated=int}}
// @Router /notifications/mark-all-read [put]
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	n, err := s.notifier.MarkAllRead(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "All notifications marked as read", fiber.Map{"updated": n})
}

// DeleteNotification handles DELETE /api/notifications/:id
// @Summary Delete one notification
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /notifications/{id} [delete]
func (s *Server) DeleteNotification(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notifier.Delete(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Notification deleted", nil)
}

// ClearNotifications handles DELETE /api/notifications/clear-all
// @Summary Delete all notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=object{deleted=int}}
// @Router /notifications/clear-all [delete]
func (s *Server) ClearNotifications(c *fiber.Ctx) error {
	n, err := s.notifier.ClearAll(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "All notifications cleared", fiber.Map{"deleted": n})
}
