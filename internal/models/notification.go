package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationAnswer  NotificationType = "answer"
	NotificationMention NotificationType = "mention"
	NotificationComment NotificationType = "comment"
	NotificationVote    NotificationType = "vote"
	NotificationFollow  NotificationType = "follow"
	NotificationBadge   NotificationType = "badge"
)

// Related model names a notification can point at.
const (
	RelatedQuestion = "Question"
	RelatedAnswer   = "Answer"
	RelatedComment  = "Comment"
)

// Notification is one entry in a user's pull-based inbox.
type Notification struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	Type         NotificationType `gorm:"size:20;not null" json:"type"`
	Title        string           `gorm:"size:100;not null" json:"title"`
	Message      string           `gorm:"size:500;not null" json:"message"`
	UserID       uint             `gorm:"not null;index:idx_notifications_user_read" json:"userId"`
	FromUserID   *uint            `json:"fromUserId,omitempty"`
	FromUser     *User            `gorm:"foreignKey:FromUserID" json:"-"`
	RelatedID    uint             `gorm:"index:idx_notifications_related" json:"relatedId"`
	RelatedModel string           `gorm:"size:20;index:idx_notifications_related" json:"relatedModel"`
	IsRead       bool             `gorm:"not null;default:false;index:idx_notifications_user_read" json:"isRead"`
	IsEmailSent  bool             `gorm:"not null;default:false" json:"isEmailSent"`
	CreatedAt    time.Time        `gorm:"index" json:"createdAt"`

	FromUserCard *Summary `gorm:"-" json:"fromUser,omitempty"`
}

// AfterFind fills the origin user's card when it was preloaded.
func (n *Notification) AfterFind(_ *gorm.DB) error {
	if n.FromUser != nil {
		n.FromUserCard = n.FromUser.Summary()
	}
	return nil
}

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationAnswer, NotificationMention, NotificationComment,
		NotificationVote, NotificationFollow, NotificationBadge:
		return true
	}
	return false
}
