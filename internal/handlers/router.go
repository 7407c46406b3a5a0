package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-service/internal/policy"
	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
)

type HandlerManager struct {
	serviceManager    services.ServiceManager
	accountHandler    *AccountHandler
	questionHandler   *QuestionHandler
	submissionHandler *SubmissionHandler
	reportHandler     *ReportHandler
	dashboardHandler  *DashboardHandler
	authMiddleware    *SessionAuthMiddleware
	logger            utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	authMiddleware *SessionAuthMiddleware,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		serviceManager:    serviceManager,
		accountHandler:    NewAccountHandler(serviceManager.Account(), authMiddleware, logger),
		questionHandler:   NewQuestionHandler(serviceManager.Question(), serviceManager.Submission(), logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), logger),
		reportHandler:     NewReportHandler(serviceManager.Report(), logger),
		dashboardHandler:  NewDashboardHandler(serviceManager.Dashboard(), logger),
		authMiddleware:    authMiddleware,
		logger:            logger,
	}
}

// SetupRoutes sets up all routes. Every request passes through the session
// loader; each protected route names the operation it performs.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	auth := hm.authMiddleware
	allow := auth.RequireOperation

	router.GET("/health", hm.HealthCheck)

	r := router.Group("/")
	r.Use(auth.LoadSession())
	{
		r.GET("/", hm.dashboardHandler.Home)

		// Authentication - public
		r.POST("/register/", hm.accountHandler.Register)
		r.POST("/login/", hm.accountHandler.Login)
		r.POST("/logout/", hm.accountHandler.Logout)
		r.GET("/verify-email/:uidb64/:token/", hm.accountHandler.VerifyEmail)
		r.POST("/resend-verification/", hm.accountHandler.ResendVerification)

		dashboard := r.Group("/dashboard")
		{
			dashboard.GET("/", hm.dashboardHandler.Dashboard)
			dashboard.GET("/student/", allow(policy.StudentDashboard), hm.dashboardHandler.StudentDashboard)
			dashboard.GET("/teacher/", allow(policy.TeacherDashboard), hm.dashboardHandler.TeacherDashboard)
			dashboard.GET("/admin/", allow(policy.AdminDashboard), hm.dashboardHandler.AdminDashboard)
		}

		// Administration - admins only
		admin := r.Group("/admin")
		{
			admin.GET("/users/", allow(policy.AccountList), hm.accountHandler.ListAccounts)
			admin.POST("/users/create/", allow(policy.AccountCreate), hm.accountHandler.CreateAccount)
			admin.POST("/users/delete/:id/", allow(policy.AccountDelete), hm.accountHandler.DeleteAccount)
			admin.GET("/activity/", allow(policy.AdminActivity), hm.reportHandler.AdminActivity)
		}

		r.GET("/teacher/reports/", allow(policy.TeacherReports), hm.reportHandler.TeacherReports)

		questions := r.Group("/questions")
		{
			questions.GET("/", allow(policy.QuestionBrowse), hm.questionHandler.ListQuestions)
			questions.POST("/add/", allow(policy.QuestionCreate), hm.questionHandler.CreateQuestion)
			questions.POST("/edit/:id/", allow(policy.QuestionEdit), hm.questionHandler.UpdateQuestion)
			questions.POST("/delete/:id/", allow(policy.QuestionDelete), hm.questionHandler.DeleteQuestion)
			questions.GET("/take/:id/", allow(policy.QuestionTake), hm.questionHandler.GetQuestion)
			questions.POST("/take/:id/", allow(policy.QuestionTake), hm.questionHandler.TakeQuestion)
			questions.GET("/mock-test/", allow(policy.MockTest), hm.questionHandler.MockTest)

			// Submissions & grading
			questions.GET("/submissions/", allow(policy.SubmissionList), hm.submissionHandler.ListSubmissions)
			questions.POST("/grade/:id/", allow(policy.SubmissionGrade), hm.submissionHandler.GradeSubmission)
			questions.GET("/me/submissions/", allow(policy.OwnSubmissions), hm.submissionHandler.MySubmissions)

			// Reports
			questions.GET("/leaderboard/", allow(policy.Leaderboard), hm.reportHandler.Leaderboard)
			questions.GET("/export/performance.csv", allow(policy.PerformanceExport), hm.reportHandler.ExportCSV)
			questions.GET("/export/performance.xlsx", allow(policy.PerformanceExport), hm.reportHandler.ExportXLSX)
		}
	}
}

// HealthCheck reports whether the backing stores are reachable.
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		utils.FromContext(c.Request.Context(), hm.logger).Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
