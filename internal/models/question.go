package models

import (
	"time"

	"gorm.io/gorm"
)

// VoteDirection is the side of a vote set a user sits on.
type VoteDirection string

const (
	VoteNone VoteDirection = ""
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Valid reports whether d names a castable direction.
func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// VoteSet records who voted on an item. Upvotes and Downvotes are disjoint and
// Votes caches |Upvotes| - |Downvotes|.
type VoteSet struct {
	Votes     int   `gorm:"not null;default:0;index" json:"votes"`
	Upvotes   IDSet `gorm:"type:text" json:"upvotes"`
	Downvotes IDSet `gorm:"type:text" json:"downvotes"`
}

// DirectionOf returns which side userID currently votes on.
func (v *VoteSet) DirectionOf(userID uint) VoteDirection {
	switch {
	case v.Upvotes.Contains(userID):
		return VoteUp
	case v.Downvotes.Contains(userID):
		return VoteDown
	default:
		return VoteNone
	}
}

// Recount refreshes the cached score from the sets.
func (v *VoteSet) Recount() {
	v.Votes = v.Upvotes.Len() - v.Downvotes.Len()
}

// Question is a forum question. It owns its answers.
type Question struct {
	VoteSet

	ID               uint       `gorm:"primaryKey" json:"id"`
	Title            string     `gorm:"size:200;not null" json:"title"`
	Content          string     `gorm:"type:text;not null" json:"content"`
	Images           StringList `gorm:"type:text" json:"images"`
	AuthorID         uint       `gorm:"not null;index" json:"authorId"`
	Author           *User      `gorm:"foreignKey:AuthorID" json:"-"`
	Tags             StringSet  `gorm:"type:text" json:"tags"`
	Language         string     `gorm:"size:2;not null;index" json:"language"`
	Followers        IDSet      `gorm:"type:text" json:"followers"`
	Views            int        `gorm:"not null;default:0" json:"views"`
	IsModerated      bool       `json:"isModerated"`
	IsPinned         bool       `json:"isPinned"`
	IsClosed         bool       `json:"isClosed"`
	AcceptedAnswerID *uint      `json:"acceptedAnswer"`
	Answers          []Answer   `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	CreatedAt        time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	AuthorCard  *Summary `gorm:"-" json:"author,omitempty"`
	AnswerCount int      `gorm:"-" json:"answerCount"`
}

// AfterFind fills the derived author card and answer count from preloaded associations.
func (q *Question) AfterFind(_ *gorm.DB) error {
	q.Finalize()
	return nil
}

// Finalize recomputes derived fields after associations change in memory.
func (q *Question) Finalize() {
	if q.Author != nil {
		q.AuthorCard = q.Author.Summary()
	}
	q.AnswerCount = len(q.Answers)
}

// TrimForListing drops the loaded answers and keeps their count. Listings only
// load the answer columns that filtering needs.
func (q *Question) TrimForListing() {
	q.AnswerCount = len(q.Answers)
	q.Answers = nil
}

// Tally returns the question's vote set.
func (q *Question) Tally() *VoteSet { return &q.VoteSet }

// OwnerID returns the author.
func (q *Question) OwnerID() uint { return q.AuthorID }

// LastActivity is the latest update across the question and its answers.
func (q *Question) LastActivity() time.Time {
	latest := q.UpdatedAt
	for i := range q.Answers {
		if q.Answers[i].UpdatedAt.After(latest) {
			latest = q.Answers[i].UpdatedAt
		}
	}
	return latest
}

// AnswerByID returns the answer with id from the loaded answers.
func (q *Question) AnswerByID(id uint) *Answer {
	for i := range q.Answers {
		if q.Answers[i].ID == id {
			return &q.Answers[i]
		}
	}
	return nil
}
