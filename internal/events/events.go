// Package events carries domain events over watermill, backed by Kafka when
// brokers are configured and by an in-process channel otherwise.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "exam-service"
	EventVersion = "1.0"
)

// Topics
const (
	TopicAccounts    = "exam.accounts"
	TopicSubmissions = "exam.submissions"
)

// Event types
const (
	TypeAccountRegistered     = "account.registered"
	TypeVerificationRequested = "account.verification_requested"
	TypeAccountVerified       = "account.verified"
	TypeSubmissionCreated     = "submission.created"
	TypeSubmissionGraded      = "submission.graded"
)

// Event is the envelope written to every topic.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func NewEvent(eventType string, data interface{}) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	}, nil
}

// Decode unmarshals the payload into dest.
func (e *Event) Decode(dest interface{}) error {
	if err := json.Unmarshal(e.Data, dest); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

type AccountRegistered struct {
	AccountID uint   `json:"account_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
}

// VerificationRequested asks the mail consumer to deliver a verification link.
type VerificationRequested struct {
	AccountID uint   `json:"account_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Link      string `json:"link"`
}

type AccountVerified struct {
	AccountID uint `json:"account_id"`
}

type SubmissionCreated struct {
	SubmissionID uint `json:"submission_id"`
	QuestionID   uint `json:"question_id"`
	StudentID    uint `json:"student_id"`
}

type SubmissionGraded struct {
	SubmissionID uint      `json:"submission_id"`
	QuestionID   uint      `json:"question_id"`
	StudentID    uint      `json:"student_id"`
	Score        int       `json:"score"`
	GradedBy     uint      `json:"graded_by"`
	GradedAt     time.Time `json:"graded_at"`
}
