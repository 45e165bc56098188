package models

import (
	"fmt"
	"net/url"
	"time"
)

// Language codes supported for content and UI.
const (
	LanguageEnglish = "en"
	LanguageHindi   = "hi"
	LanguageBoth    = "both"
)

// Preferences holds per-user display and notification settings.
type Preferences struct {
	ContentLanguage      string `gorm:"size:4;not null" json:"contentLanguage"`
	EmailNotifications   bool   `json:"emailNotifications"`
	PushNotifications    bool   `json:"pushNotifications"`
	MentionNotifications bool   `json:"mentionNotifications"`
	AnswerNotifications  bool   `json:"answerNotifications"`
	FollowNotifications  bool   `json:"followNotifications"`
	Theme                string `gorm:"size:5;not null" json:"theme"`
}

// DefaultPreferences returns the settings a fresh account starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		ContentLanguage:      LanguageBoth,
		EmailNotifications:   true,
		PushNotifications:    true,
		MentionNotifications: true,
		AnswerNotifications:  true,
		FollowNotifications:  true,
		Theme:                "light",
	}
}

// Allows reports whether notifications of type t are enabled.
// Types without a dedicated toggle are always delivered.
func (p Preferences) Allows(t NotificationType) bool {
	switch t {
	case NotificationAnswer:
		return p.AnswerNotifications
	case NotificationFollow:
		return p.FollowNotifications
	case NotificationMention:
		return p.MentionNotifications
	default:
		return true
	}
}

// User is a registered forum member. Either Email or Phone is set.
type User struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"size:50;not null" json:"name"`
	Email        *string     `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Phone        *string     `gorm:"size:20;uniqueIndex" json:"phone,omitempty"`
	Password     string      `gorm:"size:255;not null" json:"-"`
	Avatar       string      `gorm:"size:500" json:"avatar"`
	Bio          string      `gorm:"size:500" json:"bio,omitempty"`
	Language     string      `gorm:"size:2;not null" json:"language"`
	Reputation   int         `gorm:"not null;default:0" json:"reputation"`
	IsVerified   bool        `json:"isVerified"`
	IsActive     bool        `json:"isActive"`
	JoinDate     time.Time   `json:"joinDate"`
	LastSeen     time.Time   `json:"lastSeen"`
	Preferences  Preferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	FollowedTags StringSet   `gorm:"type:text" json:"followedTags"`
	BlockedUsers IDSet       `gorm:"type:text" json:"blockedUsers"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`

	QuestionCount int64 `gorm:"-" json:"questionCount,omitempty"`
	AnswerCount   int64 `gorm:"-" json:"answerCount,omitempty"`
}

// DefaultAvatarURL builds the generated initials avatar for name.
func DefaultAvatarURL(name string) string {
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=3B82F6&color=fff&size=200",
		url.QueryEscape(name))
}

// Summary is the author card embedded in questions and answers.
type Summary struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	Reputation int    `json:"reputation"`
	IsVerified bool   `json:"isVerified"`
}

// Summary returns the public author card for u.
func (u *User) Summary() *Summary {
	if u == nil {
		return nil
	}
	return &Summary{
		ID:         u.ID,
		Name:       u.Name,
		Avatar:     u.Avatar,
		Reputation: u.Reputation,
		IsVerified: u.IsVerified,
	}
}

// Profile is the public view of a user shown to other members.
type Profile struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Avatar        string    `json:"avatar"`
	Bio           string    `json:"bio,omitempty"`
	Language      string    `json:"language"`
	Reputation    int       `json:"reputation"`
	IsVerified    bool      `json:"isVerified"`
	JoinDate      time.Time `json:"joinDate"`
	LastSeen      time.Time `json:"lastSeen"`
	FollowedTags  StringSet `json:"followedTags"`
	QuestionCount int64     `json:"questionCount"`
	AnswerCount   int64     `json:"answerCount"`
}

// PublicProfile strips contact details and settings from u.
func (u *User) PublicProfile() *Profile {
	if u == nil {
		return nil
	}
	return &Profile{
		ID:            u.ID,
		Name:          u.Name,
		Avatar:        u.Avatar,
		Bio:           u.Bio,
		Language:      u.Language,
		Reputation:    u.Reputation,
		IsVerified:    u.IsVerified,
		JoinDate:      u.JoinDate,
		LastSeen:      u.LastSeen,
		FollowedTags:  u.FollowedTags,
		QuestionCount: u.QuestionCount,
		AnswerCount:   u.AnswerCount,
	}
}
