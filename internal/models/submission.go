package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionState is derived from the graded flag; submitted -> graded is one-way.
type SubmissionState string

const (
	SubmissionSubmitted SubmissionState = "submitted"
	SubmissionGraded    SubmissionState = "graded"
)

type Submission struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	StudentID  uint   `json:"student_id" gorm:"not null;index"`
	AnswerText string `json:"answer_text" gorm:"type:text"`

	// Grading
	Graded     bool       `json:"graded" gorm:"not null;default:false;index"`
	Score      *int       `json:"score"`
	Feedback   string     `json:"feedback" gorm:"type:text"`
	GradedAt   *time.Time `json:"graded_at"`
	GradedByID *uint      `json:"graded_by_id" gorm:"index"`

	// User agent and remote address captured when the answer was taken
	ClientInfo datatypes.JSON `json:"client_info,omitempty" gorm:"type:jsonb"`

	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime;index"`

	// Relations
	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	Student  *Account  `json:"student,omitempty" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	GradedBy *Account  `json:"graded_by,omitempty" gorm:"foreignKey:GradedByID;constraint:OnDelete:SET NULL"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (s *Submission) State() SubmissionState {
	if s.Graded {
		return SubmissionGraded
	}
	return SubmissionSubmitted
}

// ApplyGrade moves the submission into the graded state. Grading an already
// graded submission overwrites the previous score and feedback.
func (s *Submission) ApplyGrade(score int, feedback string, graderID uint, at time.Time) {
	s.Graded = true
	s.Score = &score
	s.Feedback = feedback
	s.GradedAt = &at
	s.GradedByID = &graderID
}

// SubmissionRecord is the flattened projection the reports are computed from.
type SubmissionRecord struct {
	SubmissionID    uint      `json:"submission_id"`
	QuestionID      uint      `json:"question_id"`
	StudentID       uint      `json:"student_id"`
	StudentUsername string    `json:"student_username"`
	Graded          bool      `json:"graded"`
	Score           *int      `json:"score"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// QuestionAuthorship pairs a question with its author's username, if any.
type QuestionAuthorship struct {
	QuestionID     uint    `json:"question_id"`
	AuthorUsername *string `json:"author_username"`
}
