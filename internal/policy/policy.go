// Package policy holds the static role table gating every entry point.
package policy

import "github.com/SAP-F-2025/exam-service/internal/models"

type Operation string

const (
	QuestionBrowse Operation = "question.browse"
	QuestionTake   Operation = "question.take"
	QuestionCreate Operation = "question.create"
	QuestionEdit   Operation = "question.edit"
	QuestionDelete Operation = "question.delete"
	MockTest       Operation = "question.mock_test"

	SubmissionList    Operation = "submission.list"
	SubmissionGrade   Operation = "submission.grade"
	OwnSubmissions    Operation = "submission.own"
	Leaderboard       Operation = "report.leaderboard"
	PerformanceExport Operation = "report.performance_export"
	TeacherReports    Operation = "report.teacher"
	AdminActivity     Operation = "report.admin_activity"

	AccountList   Operation = "account.list"
	AccountCreate Operation = "account.create"
	AccountDelete Operation = "account.delete"

	StudentDashboard Operation = "dashboard.student"
	TeacherDashboard Operation = "dashboard.teacher"
	AdminDashboard   Operation = "dashboard.admin"
)

type roleSet struct {
	admin, teacher, student bool
}

var (
	anyone      = roleSet{admin: true, teacher: true, student: true}
	authors     = roleSet{admin: true, teacher: true}
	teacherOnly = roleSet{teacher: true}
	adminOnly   = roleSet{admin: true}
)

var table = map[Operation]roleSet{
	QuestionBrowse: anyone,
	QuestionTake:   anyone,
	MockTest:       anyone,
	Leaderboard:    anyone,
	OwnSubmissions: anyone,

	StudentDashboard: anyone,

	QuestionCreate: authors,
	QuestionEdit:   authors,
	QuestionDelete: authors,

	SubmissionList:    teacherOnly,
	SubmissionGrade:   teacherOnly,
	PerformanceExport: teacherOnly,
	TeacherReports:    teacherOnly,
	TeacherDashboard:  teacherOnly,

	AccountList:    adminOnly,
	AccountCreate:  adminOnly,
	AccountDelete:  adminOnly,
	AdminActivity:  adminOnly,
	AdminDashboard: adminOnly,
}

// Allows reports whether role may perform op. Unknown roles and unknown
// operations are always denied.
func Allows(role models.UserRole, op Operation) bool {
	set, ok := table[op]
	if !ok {
		return false
	}
	switch role {
	case models.RoleAdmin:
		return set.admin
	case models.RoleTeacher:
		return set.teacher
	case models.RoleStudent:
		return set.student
	default:
		return false
	}
}

// Operations lists every operation in the table.
func Operations() []Operation {
	ops := make([]Operation, 0, len(table))
	for op := range table {
		ops = append(ops, op)
	}
	return ops
}

// CanDeleteAccount forbids deleting one's own account, whatever the role.
func CanDeleteAccount(actor *models.Account, targetID uint) bool {
	if actor == nil || actor.ID == targetID {
		return false
	}
	return Allows(actor.Role, AccountDelete)
}
