package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
)

type SubmissionHandler struct {
	BaseHandler
	service services.SubmissionService
}

func NewSubmissionHandler(service services.SubmissionService, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListSubmissions lists every submission, newest first
// @Summary List submissions
// @Tags submissions
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.Submission}
// @Router /questions/submissions/ [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	h.LogRequest(c, "Listing submissions")

	submissions, err := h.service.List(c.Request.Context(), currentAccount(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: submissions})
}

// GradeSubmission stores score and feedback and marks the submission graded
// @Summary Grade submission
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Success 200 {object} SuccessResponse{data=models.Submission}
// @Failure 404 {object} ErrorResponse
// @Router /questions/grade/{id}/ [post]
func (h *SubmissionHandler) GradeSubmission(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Grading submission", "submission_id", id)

	var req models.GradeSubmissionRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	submission, err := h.service.Grade(c.Request.Context(), currentAccount(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Submission graded", Data: submission})
}

func (h *SubmissionHandler) MySubmissions(c *gin.Context) {
	submissions, err := h.service.ListOwn(c.Request.Context(), currentAccount(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: submissions})
}
