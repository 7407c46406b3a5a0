package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/models"
)

func TestSubmissionService_Take(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.account(t, "tina", models.RoleTeacher)
	student := f.account(t, "ana", models.RoleStudent)
	q := f.question(t, teacher, "What is 2+2?")

	sub, err := f.submission.Take(ctx, student, q.ID, &models.TakeQuestionRequest{AnswerText: "4"},
		ClientInfo{UserAgent: "test-agent", RemoteAddr: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionSubmitted, sub.State())
	assert.Nil(t, sub.Score)

	var info ClientInfo
	require.NoError(t, json.Unmarshal(sub.ClientInfo, &info))
	assert.Equal(t, "test-agent", info.UserAgent)

	// answering again creates a second submission
	f.take(t, student, q)
	own, err := f.submission.ListOwn(ctx, student)
	require.NoError(t, err)
	assert.Len(t, own, 2)
	assert.Len(t, f.events.OfType(events.TypeSubmissionCreated), 2)

	_, err = f.submission.Take(ctx, student, 999, &models.TakeQuestionRequest{}, ClientInfo{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmissionService_GradeAndRegrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.account(t, "tina", models.RoleTeacher)
	student := f.account(t, "ana", models.RoleStudent)
	sub := f.take(t, student, f.question(t, teacher, "Explain recursion"))

	score := 85
	graded, err := f.submission.Grade(ctx, teacher, sub.ID, &models.GradeSubmissionRequest{Score: &score, Feedback: "Good"})
	require.NoError(t, err)
	assert.True(t, graded.Graded)
	require.NotNil(t, graded.Score)
	assert.Equal(t, 85, *graded.Score)
	assert.Equal(t, "Good", graded.Feedback)
	assert.NotNil(t, graded.GradedAt)
	require.NotNil(t, graded.GradedByID)
	assert.Equal(t, teacher.ID, *graded.GradedByID)

	regrade := 70
	_, err = f.submission.Grade(ctx, teacher, sub.ID, &models.GradeSubmissionRequest{Score: &regrade, Feedback: "Revised"})
	require.NoError(t, err)

	stored, err := f.repo.Submission().GetByID(ctx, nil, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, *stored.Score)
	assert.Equal(t, "Revised", stored.Feedback)

	// one submission, still one row in every report
	rows, err := f.reports.PerformanceRows(ctx, teacher)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Len(t, f.events.OfType(events.TypeSubmissionGraded), 2)
}

func TestSubmissionService_GradeDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.account(t, "tina", models.RoleTeacher)
	student := f.account(t, "ana", models.RoleStudent)
	sub := f.take(t, student, f.question(t, teacher, "q"))

	graded, err := f.submission.Grade(ctx, teacher, sub.ID, &models.GradeSubmissionRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, *graded.Score)

	// no clamping
	high := 1000
	graded, err = f.submission.Grade(ctx, teacher, sub.ID, &models.GradeSubmissionRequest{Score: &high})
	require.NoError(t, err)
	assert.Equal(t, 1000, *graded.Score)
}

func TestSubmissionService_GradeAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.account(t, "tina", models.RoleTeacher)
	admin := f.account(t, "root", models.RoleAdmin)
	student := f.account(t, "ana", models.RoleStudent)
	sub := f.take(t, student, f.question(t, teacher, "q"))

	score := 10
	_, err := f.submission.Grade(ctx, student, sub.ID, &models.GradeSubmissionRequest{Score: &score})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.submission.Grade(ctx, admin, sub.ID, &models.GradeSubmissionRequest{Score: &score})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.submission.Grade(ctx, nil, sub.ID, &models.GradeSubmissionRequest{Score: &score})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.submission.Grade(ctx, teacher, 999, &models.GradeSubmissionRequest{Score: &score})
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := f.repo.Submission().GetByID(ctx, nil, sub.ID)
	require.NoError(t, err)
	assert.False(t, stored.Graded)
}

func TestSubmissionService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.account(t, "tina", models.RoleTeacher)
	ana := f.account(t, "ana", models.RoleStudent)
	bob := f.account(t, "bob", models.RoleStudent)
	q := f.question(t, teacher, "q")

	first := f.take(t, ana, q)
	second := f.take(t, bob, q)

	all, err := f.submission.List(ctx, teacher)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")
	assert.Equal(t, first.ID, all[1].ID)
	assert.Equal(t, "bob", all[0].Student.Username)

	_, err = f.submission.List(ctx, ana)
	assert.ErrorIs(t, err, ErrForbidden)

	own, err := f.submission.ListOwn(ctx, ana)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, first.ID, own[0].ID)
}
