package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	service     services.QuestionService
	submissions services.SubmissionService
}

func NewQuestionHandler(service services.QuestionService, submissions services.SubmissionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		submissions: submissions,
	}
}

// ListQuestions lists questions, newest first
// @Summary Browse questions
// @Tags questions
// @Produce json
// @Param subject query string false "Subject, case-insensitive"
// @Param topic query string false "Topic, case-insensitive"
// @Param difficulty query string false "easy, medium or hard"
// @Param q query string false "Text search"
// @Success 200 {object} SuccessResponse{data=[]models.Question}
// @Router /questions/ [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	var req models.QuestionFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.LogRequest(c, "Listing questions", "subject", req.Subject, "topic", req.Topic, "difficulty", req.Difficulty)

	questions, err := h.service.List(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: questions})
}

// CreateQuestion
// @Summary Create question
// @Tags questions
// @Accept json
// @Produce json
// @Success 201 {object} SuccessResponse{data=models.Question}
// @Failure 400 {object} ErrorResponse
// @Router /questions/add/ [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	var req models.QuestionCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	question, err := h.service.Create(c.Request.Context(), currentAccount(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: question})
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Updating question", "question_id", id)

	var req models.QuestionUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	question, err := h.service.Update(c.Request.Context(), currentAccount(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: question})
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Deleting question", "question_id", id)

	if err := h.service.Delete(c.Request.Context(), currentAccount(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}

// GetQuestion returns a question for answering.
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	question, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: question})
}

// TakeQuestion records an answer
// @Summary Submit an answer
// @Tags questions
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Success 201 {object} SuccessResponse{data=models.Submission}
// @Failure 404 {object} ErrorResponse
// @Router /questions/take/{id}/ [post]
func (h *QuestionHandler) TakeQuestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Taking question", "question_id", id)

	var req models.TakeQuestionRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	client := services.ClientInfo{
		UserAgent:  c.Request.UserAgent(),
		RemoteAddr: c.ClientIP(),
	}

	submission, err := h.submissions.Take(c.Request.Context(), currentAccount(c), id, &req, client)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: submission})
}

func (h *QuestionHandler) MockTest(c *gin.Context) {
	questions, err := h.service.MockTest(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: questions})
}
