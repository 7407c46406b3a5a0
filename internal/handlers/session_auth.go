package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-service/internal/cache"
	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/policy"
	"github.com/SAP-F-2025/exam-service/internal/services"
	"github.com/SAP-F-2025/exam-service/internal/utils"
)

// Gin context keys set for authenticated requests
const (
	ContextUserID   = "user_id"
	ContextUser     = "user"
	ContextUserRole = "user_role"
)

const SessionCookie = "sessionid"

// SessionAuthMiddleware resolves the session cookie to an account
type SessionAuthMiddleware struct {
	sessions     *cache.SessionStore
	accounts     services.AccountService
	secureCookie bool
	logger       utils.Logger
}

func NewSessionAuthMiddleware(sessions *cache.SessionStore, accounts services.AccountService, secureCookie bool, logger utils.Logger) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{
		sessions:     sessions,
		accounts:     accounts,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// LoadSession attaches the account behind a valid session cookie. Requests
// without one continue anonymously.
func (m *SessionAuthMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || id == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		sess, err := m.sessions.Get(ctx, id)
		if err != nil {
			if !errors.Is(err, cache.ErrSessionNotFound) {
				utils.FromContext(ctx, m.logger).Warn("Session lookup failed", "error", err)
			}
			c.Next()
			return
		}

		account, err := m.accounts.Authenticate(ctx, sess.AccountID)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthorized) {
				utils.FromContext(ctx, m.logger).Warn("Session account lookup failed", "error", err)
			}
			c.Next()
			return
		}

		c.Set(ContextUserID, account.ID)
		c.Set(ContextUser, account)
		c.Set(ContextUserRole, account.Role)
		c.Next()
	}
}

// RequireAuth sends anonymous requests to the login page.
func (m *SessionAuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentAccount(c) == nil {
			redirect(c, LoginPath)
			return
		}
		c.Next()
	}
}

// RequireOperation checks the role table and sends denied requests to the
// landing page.
func (m *SessionAuthMiddleware) RequireOperation(op policy.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := currentAccount(c)
		if account == nil {
			redirect(c, LoginPath)
			return
		}
		if !policy.Allows(account.Role, op) {
			utils.FromContext(c.Request.Context(), m.logger).Info("Access denied",
				"user_id", account.ID,
				"role", account.Role,
				"operation", op)
			redirect(c, LandingPath)
			return
		}
		c.Next()
	}
}

// StartSession creates a session for account and sets the cookie.
func (m *SessionAuthMiddleware) StartSession(c *gin.Context, account *models.Account) error {
	id, err := m.sessions.Create(c.Request.Context(), account.ID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, int(m.sessions.TTL().Seconds()), "/", "", m.secureCookie, true)
	return nil
}

// EndSession drops the session and expires the cookie.
func (m *SessionAuthMiddleware) EndSession(c *gin.Context) {
	if id, err := c.Cookie(SessionCookie); err == nil {
		if err := m.sessions.Delete(c.Request.Context(), id); err != nil {
			utils.FromContext(c.Request.Context(), m.logger).Warn("Failed to delete session", "error", err)
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", m.secureCookie, true)
}
