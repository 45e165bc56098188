package models

import (
	"time"

	"gorm.io/gorm"
)

// Answer is a reply to a question. A user answers a given question at most once.
type Answer struct {
	VoteSet

	ID         uint       `gorm:"primaryKey" json:"id"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Images     StringList `gorm:"type:text" json:"images"`
	AuthorID   uint       `gorm:"not null;uniqueIndex:idx_answers_question_author;index" json:"authorId"`
	Author     *User      `gorm:"foreignKey:AuthorID" json:"-"`
	QuestionID uint       `gorm:"not null;uniqueIndex:idx_answers_question_author" json:"questionId"`
	Question   *Question  `gorm:"foreignKey:QuestionID" json:"-"`
	IsAccepted bool       `gorm:"not null;default:false" json:"isAccepted"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	AuthorCard    *Summary `gorm:"-" json:"author,omitempty"`
	QuestionTitle string   `gorm:"-" json:"questionTitle,omitempty"`
}

// AfterFind fills the derived author card and question title from preloaded associations.
func (a *Answer) AfterFind(_ *gorm.DB) error {
	a.Finalize()
	return nil
}

// Finalize recomputes derived fields from loaded associations.
func (a *Answer) Finalize() {
	if a.Author != nil {
		a.AuthorCard = a.Author.Summary()
	}
	if a.Question != nil {
		a.QuestionTitle = a.Question.Title
	}
}

// Tally returns the answer's vote set.
func (a *Answer) Tally() *VoteSet { return &a.VoteSet }

// OwnerID returns the author.
func (a *Answer) OwnerID() uint { return a.AuthorID }
