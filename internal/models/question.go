package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

func (d DifficultyLevel) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// NormalizeDifficulty lower-cases the input and falls back to easy when empty.
func NormalizeDifficulty(s string) DifficultyLevel {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DifficultyEasy
	}
	return DifficultyLevel(s)
}

type Question struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Text       string          `json:"question_text" gorm:"column:question_text;type:text;not null"`
	Subject    string          `json:"subject" gorm:"size:100;index"`
	Topic      string          `json:"topic" gorm:"size:100;index"`
	Difficulty DifficultyLevel `json:"difficulty" gorm:"size:10;not null;default:easy;index"`

	// Author is cleared when the account is removed
	AuthorID *uint    `json:"author_id" gorm:"index"`
	Author   *Account `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL"`
	// AuthorName is the only author field served to clients
	AuthorName string `json:"author,omitempty" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// SetAuthor attaches the author and the public name derived from it.
func (q *Question) SetAuthor(author *Account) {
	q.Author = author
	q.AuthorName = ""
	if author != nil {
		q.AuthorName = author.Username
	}
}

// AfterFind runs after preloads, so a loaded Author is already present.
func (q *Question) AfterFind(tx *gorm.DB) error {
	q.SetAuthor(q.Author)
	return nil
}
