package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories/memory"
	"github.com/SAP-F-2025/exam-service/internal/validator"
	"github.com/SAP-F-2025/exam-service/internal/verification"
)

const testPassword = "s3cret-pass"

type fixture struct {
	repo       *memory.Repository
	events     *events.MockEventPublisher
	tokens     *verification.TokenGenerator
	accounts   AccountService
	questions  QuestionService
	submission SubmissionService
	reports    ReportService
	dashboards DashboardService
	clock      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.New()
	publisher := events.NewMockEventPublisher()
	v := validator.New()

	f := &fixture{
		repo:   repo,
		events: publisher,
		clock:  time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	// every read of the clock advances it so submission order is deterministic
	repo.SetClock(func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	})

	f.tokens = verification.NewTokenGenerator("test-secret", 72*time.Hour)
	f.accounts = NewAccountService(repo, publisher, f.tokens, "http://localhost:8080", logger, v)
	f.questions = NewQuestionService(repo, logger, v)
	f.submission = NewSubmissionService(repo, publisher, logger, v)
	f.reports = NewReportService(repo, logger)
	f.dashboards = NewDashboardService(repo, f.reports, logger)
	return f
}

func (f *fixture) account(t *testing.T, username string, role models.UserRole) *models.Account {
	t.Helper()
	a := &models.Account{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, a.SetPassword(testPassword))
	require.NoError(t, f.repo.Account().Create(context.Background(), nil, a))
	return a
}

func (f *fixture) question(t *testing.T, author *models.Account, text string) *models.Question {
	t.Helper()
	q, err := f.questions.Create(context.Background(), author, &models.QuestionCreateRequest{Text: text, Subject: "Math", Topic: "Algebra"})
	require.NoError(t, err)
	return q
}

func (f *fixture) take(t *testing.T, student *models.Account, q *models.Question) *models.Submission {
	t.Helper()
	sub, err := f.submission.Take(context.Background(), student, q.ID, &models.TakeQuestionRequest{AnswerText: "answer"}, ClientInfo{})
	require.NoError(t, err)
	return sub
}

func (f *fixture) grade(t *testing.T, grader *models.Account, sub *models.Submission, score int) {
	t.Helper()
	_, err := f.submission.Grade(context.Background(), grader, sub.ID, &models.GradeSubmissionRequest{Score: &score})
	require.NoError(t, err)
}
