package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
	"github.com/SAP-F-2025/exam-service/internal/validator"
)

// Paths every deny or unauthenticated request is sent to.
const (
	LandingPath = "/"
	LoginPath   = "/login/"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the logger and the shared error mapping.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.FromContext(c.Request.Context(), h.logger)
}

// LogRequest writes a debug line tagged with the current account, if any.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	if id, ok := c.Get(ContextUserID); ok {
		args = append(args, "user_id", id)
	}
	h.log(c).Debug(msg, args...)
}

// currentAccount returns the account set by the session middleware.
func currentAccount(c *gin.Context) *models.Account {
	if v, ok := c.Get(ContextUser); ok {
		if account, ok := v.(*models.Account); ok {
			return account
		}
	}
	return nil
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Not found"})
		return 0, false
	}
	return uint(id), true
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// handleServiceError maps service errors onto responses. Authorization
// failures never explain themselves: they redirect.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	var fe *services.FormError

	switch {
	case errors.Is(err, services.ErrUnauthorized):
		redirect(c, LoginPath)
	case errors.Is(err, services.ErrForbidden):
		h.log(c).Info("Access denied", "path", c.FullPath())
		redirect(c, LandingPath)
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: ve})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Not found"})
	case errors.Is(err, services.ErrVerificationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Verification link is invalid or has expired."})
	case errors.As(err, &fe):
		h.handleFormError(c, fe)
	default:
		h.log(c).Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}

func (h *BaseHandler) handleFormError(c *gin.Context, fe *services.FormError) {
	resp := ErrorResponse{Message: fe.Message}
	if fe.Field != "" {
		resp.Details = gin.H{"field": fe.Field}
	}

	switch {
	case errors.Is(fe, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, resp)
	case errors.Is(fe, services.ErrInactiveAccount):
		resp.Details = gin.H{"resend_available": true}
		c.JSON(http.StatusForbidden, resp)
	case errors.Is(fe, services.ErrRoleMismatch):
		c.JSON(http.StatusForbidden, resp)
	case errors.Is(fe, services.ErrRegistrationFailed):
		c.JSON(http.StatusInternalServerError, resp)
	default:
		c.JSON(http.StatusBadRequest, resp)
	}
}

func (h *BaseHandler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
}
