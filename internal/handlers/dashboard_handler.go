package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== DASHBOARD ENDPOINTS =====

// Home is the public landing page.
func (h *DashboardHandler) Home(c *gin.Context) {
	body := gin.H{"message": "Online exam platform"}
	if account := currentAccount(c); account != nil {
		body["account"] = account
		body["dashboard"] = account.Role.DashboardPath()
	}
	c.JSON(http.StatusOK, body)
}

// Dashboard sends the caller to the dashboard of their role
// @Summary Role dashboard redirect
// @Tags dashboard
// @Success 302
// @Router /dashboard/ [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	account := currentAccount(c)
	if account == nil {
		redirect(c, LoginPath)
		return
	}
	redirect(c, account.Role.DashboardPath())
}

// StudentDashboard lists the questions a student can take
// @Summary Student dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.StudentDashboard}
// @Router /dashboard/student/ [get]
func (h *DashboardHandler) StudentDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting student dashboard")

	dashboard, err := h.service.Student(c.Request.Context(), currentAccount(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: dashboard})
}

// TeacherDashboard shows the latest submissions
// @Summary Teacher dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.TeacherDashboard}
// @Router /dashboard/teacher/ [get]
func (h *DashboardHandler) TeacherDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting teacher dashboard")

	dashboard, err := h.service.Teacher(c.Request.Context(), currentAccount(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: dashboard})
}

func (h *DashboardHandler) AdminDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting admin dashboard")

	dashboard, err := h.service.Admin(c.Request.Context(), currentAccount(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: dashboard})
}
