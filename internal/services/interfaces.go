package services

import (
	"context"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/reports"
)

// ===== REQUEST/RESPONSE DTOs =====

// LoginResult is returned on a successful login.
type LoginResult struct {
	Account    *models.Account `json:"account"`
	RedirectTo string          `json:"redirect_to"`
}

// ClientInfo is recorded alongside a submission.
type ClientInfo struct {
	UserAgent  string `json:"user_agent,omitempty"`
	RemoteAddr string `json:"remote_addr,omitempty"`
}

type TeacherReport struct {
	ByStudent  []reports.StudentSummary  `json:"by_student"`
	ByQuestion []reports.QuestionSummary `json:"by_question"`
}

type StudentDashboard struct {
	Questions []*models.Question `json:"questions"`
}

type TeacherDashboard struct {
	LatestSubmissions []*models.Submission `json:"latest_submissions"`
}

type AdminDashboard struct {
	Activity reports.Activity `json:"activity"`
}

// ===== SERVICE INTERFACES =====

type AccountService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.Account, error)
	Login(ctx context.Context, req *models.LoginRequest) (*LoginResult, error)
	// Authenticate loads the account behind a session. Missing or inactive
	// accounts yield ErrUnauthorized.
	Authenticate(ctx context.Context, accountID uint) (*models.Account, error)
	VerifyEmail(ctx context.Context, uidb64, token string) (*models.Account, error)
	// ResendVerification never reports whether the identifier matched.
	ResendVerification(ctx context.Context, identifier string) error

	List(ctx context.Context, actor *models.Account) ([]*models.Account, error)
	Create(ctx context.Context, actor *models.Account, req *models.AccountCreateRequest) (*models.Account, error)
	// Delete reports whether an account was removed. Self-deletion and unknown
	// ids are silent no-ops.
	Delete(ctx context.Context, actor *models.Account, targetID uint) (bool, error)
}

type QuestionService interface {
	Create(ctx context.Context, actor *models.Account, req *models.QuestionCreateRequest) (*models.Question, error)
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, actor *models.Account, id uint, req *models.QuestionUpdateRequest) (*models.Question, error)
	Delete(ctx context.Context, actor *models.Account, id uint) error
	List(ctx context.Context, req *models.QuestionFilterRequest) ([]*models.Question, error)
	MockTest(ctx context.Context) ([]*models.Question, error)
}

type SubmissionService interface {
	Take(ctx context.Context, student *models.Account, questionID uint, req *models.TakeQuestionRequest, client ClientInfo) (*models.Submission, error)
	List(ctx context.Context, actor *models.Account) ([]*models.Submission, error)
	ListOwn(ctx context.Context, student *models.Account) ([]*models.Submission, error)
	Grade(ctx context.Context, grader *models.Account, submissionID uint, req *models.GradeSubmissionRequest) (*models.Submission, error)
}

type ReportService interface {
	Leaderboard(ctx context.Context) ([]reports.LeaderboardEntry, error)
	TeacherReports(ctx context.Context, actor *models.Account) (*TeacherReport, error)
	AdminActivity(ctx context.Context, actor *models.Account) (*reports.Activity, error)
	PerformanceRows(ctx context.Context, actor *models.Account) ([]reports.PerformanceRow, error)
}

type DashboardService interface {
	Student(ctx context.Context, actor *models.Account) (*StudentDashboard, error)
	Teacher(ctx context.Context, actor *models.Account) (*TeacherDashboard, error)
	Admin(ctx context.Context, actor *models.Account) (*AdminDashboard, error)
}

// ServiceManager owns every service and their shared dependencies
type ServiceManager interface {
	Account() AccountService
	Question() QuestionService
	Submission() SubmissionService
	Report() ReportService
	Dashboard() DashboardService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
