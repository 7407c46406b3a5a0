package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
)

type AccountHandler struct {
	BaseHandler
	service services.AccountService
	auth    *SessionAuthMiddleware
}

func NewAccountHandler(service services.AccountService, auth *SessionAuthMiddleware, logger utils.Logger) *AccountHandler {
	return &AccountHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		auth:        auth,
	}
}

// ===== AUTHENTICATION =====

// Register creates an inactive account and mails a verification link
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} SuccessResponse{data=models.Account}
// @Failure 400 {object} ErrorResponse
// @Router /register/ [post]
func (h *AccountHandler) Register(c *gin.Context) {
	h.LogRequest(c, "Registering account")

	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	account, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Registration successful. Check " + account.Email + " for a verification link.",
		Data:    account,
	})
}

// Login checks credentials and starts a session
// @Summary Login with username or email
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.LoginResult}
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 403 {object} ErrorResponse "Unverified account or role mismatch"
// @Router /login/ [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if err := h.auth.StartSession(c, result.Account); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: result})
}

func (h *AccountHandler) Logout(c *gin.Context) {
	h.auth.EndSession(c)
	redirect(c, LoginPath)
}

// VerifyEmail activates the account named by the link
// @Summary Verify email address
// @Tags auth
// @Produce json
// @Param uidb64 path string true "Encoded account id"
// @Param token path string true "Verification token"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /verify-email/{uidb64}/{token}/ [get]
func (h *AccountHandler) VerifyEmail(c *gin.Context) {
	h.LogRequest(c, "Verifying email")

	if _, err := h.service.VerifyEmail(c.Request.Context(), c.Param("uidb64"), c.Param("token")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Email verified. You can now log in."})
}

func (h *AccountHandler) ResendVerification(c *gin.Context) {
	var req models.ResendVerificationRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.service.ResendVerification(c.Request.Context(), req.UsernameOrEmail); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "If an unverified account matches, a new verification email has been sent.",
	})
}

// ===== ADMINISTRATION =====

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	h.LogRequest(c, "Listing accounts")

	accounts, err := h.service.List(c.Request.Context(), currentAccount(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: accounts})
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	h.LogRequest(c, "Creating account")

	var req models.AccountCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	account, err := h.service.Create(c.Request.Context(), currentAccount(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: account})
}

// DeleteAccount removes an account and returns to the account list.
// Self-deletion and unknown ids fall through silently.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Deleting account", "target_id", id)

	if _, err := h.service.Delete(c.Request.Context(), currentAccount(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	redirect(c, "/admin/users/")
}
