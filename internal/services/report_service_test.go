package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

// seedScenario creates student A with scores 10, 20 and an ungraded answer,
// and student B with two graded 50s.
func seedScenario(t *testing.T, f *fixture) (teacher *models.Account) {
	t.Helper()
	teacher = f.account(t, "tina", models.RoleTeacher)
	a := f.account(t, "alice", models.RoleStudent)
	b := f.account(t, "bruno", models.RoleStudent)
	q1 := f.question(t, teacher, "q1")
	q2 := f.question(t, teacher, "q2")

	f.grade(t, teacher, f.take(t, a, q1), 10)
	f.grade(t, teacher, f.take(t, a, q2), 20)
	f.take(t, a, q1)
	f.grade(t, teacher, f.take(t, b, q1), 50)
	f.grade(t, teacher, f.take(t, b, q2), 50)
	return teacher
}

func TestReportService_Leaderboard(t *testing.T) {
	f := newFixture(t)
	seedScenario(t, f)

	board, err := f.reports.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 2)

	assert.Equal(t, "bruno", board[0].Student)
	assert.Equal(t, 100, board[0].Total)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, "alice", board[1].Student)
	assert.Equal(t, 30, board[1].Total)
	assert.Equal(t, 2, board[1].Attempts, "the ungraded answer is not an attempt on the leaderboard")
}

func TestReportService_TeacherReports(t *testing.T) {
	f := newFixture(t)
	teacher := seedScenario(t, f)
	ctx := context.Background()

	report, err := f.reports.TeacherReports(ctx, teacher)
	require.NoError(t, err)

	require.Len(t, report.ByStudent, 2)
	assert.Equal(t, "bruno", report.ByStudent[0].Student)
	assert.Equal(t, "alice", report.ByStudent[1].Student)
	assert.Equal(t, 3, report.ByStudent[1].Attempts)
	assert.Equal(t, 30, report.ByStudent[1].Total)

	require.Len(t, report.ByQuestion, 2)
	assert.Equal(t, 3, report.ByQuestion[0].Attempts)

	student, err := f.repo.Account().GetByUsername(ctx, nil, "alice")
	require.NoError(t, err)
	_, err = f.reports.TeacherReports(ctx, student)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReportService_PerformanceRows(t *testing.T) {
	f := newFixture(t)
	teacher := seedScenario(t, f)
	ctx := context.Background()

	rows, err := f.reports.PerformanceRows(ctx, teacher)
	require.NoError(t, err)

	count, err := f.repo.Submission().Count(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, count, len(rows))

	var ungraded int
	for _, r := range rows {
		if !r.Graded {
			ungraded++
			assert.Equal(t, 0, r.Score)
		}
	}
	assert.Equal(t, 1, ungraded)
}

func TestReportService_AdminActivity(t *testing.T) {
	f := newFixture(t)
	seedScenario(t, f)
	ctx := context.Background()
	admin := f.account(t, "root", models.RoleAdmin)

	activity, err := f.reports.AdminActivity(ctx, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 2, activity.QuestionCount)
	assert.EqualValues(t, 5, activity.SubmissionCount)
	require.Len(t, activity.ByAuthor, 1)
	assert.Equal(t, "tina", *activity.ByAuthor[0].Author)
	require.Len(t, activity.ByStudent, 2)
	assert.Equal(t, "alice", activity.ByStudent[0].Student, "most submissions first")

	teacher, err := f.repo.Account().GetByUsername(ctx, nil, "tina")
	require.NoError(t, err)
	_, err = f.reports.AdminActivity(ctx, teacher)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDashboardService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.account(t, "tina", models.RoleTeacher)
	student := f.account(t, "ana", models.RoleStudent)
	admin := f.account(t, "root", models.RoleAdmin)
	q := f.question(t, teacher, "q")

	for i := 0; i < LatestSubmissionsSize+2; i++ {
		f.take(t, student, q)
	}

	td, err := f.dashboards.Teacher(ctx, teacher)
	require.NoError(t, err)
	assert.Len(t, td.LatestSubmissions, LatestSubmissionsSize)

	sd, err := f.dashboards.Student(ctx, student)
	require.NoError(t, err)
	assert.Len(t, sd.Questions, 1)

	ad, err := f.dashboards.Admin(ctx, admin)
	require.NoError(t, err)
	assert.EqualValues(t, LatestSubmissionsSize+2, ad.Activity.SubmissionCount)

	// the question list is open to every signed in role
	sd, err = f.dashboards.Student(ctx, teacher)
	require.NoError(t, err)
	assert.Len(t, sd.Questions, 1)
	_, err = f.dashboards.Student(ctx, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.dashboards.Teacher(ctx, admin)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.dashboards.Admin(ctx, student)
	assert.ErrorIs(t, err, ErrForbidden)
}
