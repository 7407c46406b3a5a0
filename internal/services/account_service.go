package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/policy"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"github.com/SAP-F-2025/exam-service/internal/validator"
	"github.com/SAP-F-2025/exam-service/internal/verification"
)

// ErrRegistrationFailed hides unexpected failures during sign up.
var ErrRegistrationFailed = errors.New("registration failed")

const (
	msgUsernameRequired  = "Username is required."
	msgEmailRequired     = "Email is required for verification."
	msgPasswordRequired  = "Password is required."
	msgRoleRequired      = "Please select a role."
	msgUsernameTaken     = "Username already exists."
	msgEmailTaken        = "Email already registered."
	msgInvalidLogin      = "Invalid credentials."
	msgVerifyFirst       = "Please verify your email first. Check your inbox or resend verification."
	msgRegistrationError = "Registration failed."
)

var roleMismatchMessages = map[models.UserRole]string{
	models.RoleAdmin:   "Not an admin account.",
	models.RoleTeacher: "Not a teacher account.",
	models.RoleStudent: "Not a student account.",
}

type accountService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	tokens    *verification.TokenGenerator
	baseURL   string
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewAccountService(repo repositories.Repository, publisher events.EventPublisher, tokens *verification.TokenGenerator, baseURL string, logger *slog.Logger, validator *validator.Validator) AccountService {
	return &accountService{
		repo:      repo,
		publisher: publisher,
		tokens:    tokens,
		baseURL:   baseURL,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// ===== REGISTRATION & VERIFICATION =====

func (s *accountService) Register(ctx context.Context, req *models.RegisterRequest) (*models.Account, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	switch {
	case username == "":
		return nil, formError("username", msgUsernameRequired)
	case email == "":
		return nil, formError("email", msgEmailRequired)
	case req.Password == "":
		return nil, formError("password", msgPasswordRequired)
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, formError("user_type", msgRoleRequired)
	}

	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	account := &models.Account{
		Username: username,
		Email:    email,
		Role:     role,
		IsActive: false,
	}
	if err := s.createAccount(ctx, account, req.Password); err != nil {
		var fe *FormError
		if errors.As(err, &fe) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Registration failed", "username", username, "error", err)
		return nil, &FormError{Message: msgRegistrationError, Kind: ErrRegistrationFailed}
	}

	s.logger.InfoContext(ctx, "Account registered", "account_id", account.ID, "role", account.Role)
	s.publish(ctx, events.TopicAccounts, events.TypeAccountRegistered, events.AccountRegistered{
		AccountID: account.ID,
		Username:  account.Username,
		Role:      string(account.Role),
		Active:    account.IsActive,
	})
	s.requestVerification(ctx, account)

	return account, nil
}

func (s *accountService) VerifyEmail(ctx context.Context, uidb64, token string) (*models.Account, error) {
	id, err := verification.DecodeUID(uidb64)
	if err != nil {
		return nil, ErrVerificationFailed
	}

	account, err := s.repo.Account().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrVerificationFailed
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := s.tokens.Check(account, token); err != nil {
		s.logger.InfoContext(ctx, "Verification rejected", "account_id", account.ID, "reason", err)
		return nil, ErrVerificationFailed
	}

	if err := s.repo.Account().SetActive(ctx, nil, account.ID, true); err != nil {
		return nil, fmt.Errorf("failed to activate account: %w", err)
	}
	account.IsActive = true

	s.logger.InfoContext(ctx, "Account verified", "account_id", account.ID)
	s.publish(ctx, events.TopicAccounts, events.TypeAccountVerified, events.AccountVerified{AccountID: account.ID})

	return account, nil
}

func (s *accountService) ResendVerification(ctx context.Context, identifier string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil
	}

	account, err := s.repo.Account().GetByUsernameOrEmail(ctx, nil, identifier)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			s.logger.WarnContext(ctx, "Resend lookup failed", "error", err)
		}
		return nil
	}
	if account.IsActive {
		return nil
	}

	s.requestVerification(ctx, account)
	return nil
}

// ===== LOGIN =====

func (s *accountService) Login(ctx context.Context, req *models.LoginRequest) (*LoginResult, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	invalid := &FormError{Message: msgInvalidLogin, Kind: ErrInvalidCredentials}

	account, err := s.repo.Account().GetByUsernameOrEmail(ctx, nil, strings.TrimSpace(req.Identifier))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}
	if !account.CheckPassword(req.Password) {
		return nil, invalid
	}

	if !account.IsActive {
		return nil, &FormError{Message: msgVerifyFirst, Kind: ErrInactiveAccount}
	}

	if req.Role != "" {
		asserted, err := models.ParseRole(req.Role)
		if err != nil {
			return nil, formError("role", msgRoleRequired)
		}
		if asserted != account.Role {
			return nil, &FormError{Field: "role", Message: roleMismatchMessages[asserted], Kind: ErrRoleMismatch}
		}
	}

	now := s.now().UTC()
	if err := s.repo.Account().TouchLastLogin(ctx, nil, account.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	account.LastLoginAt = &now

	s.logger.InfoContext(ctx, "Account logged in", "account_id", account.ID, "role", account.Role)
	return &LoginResult{Account: account, RedirectTo: account.Role.DashboardPath()}, nil
}

func (s *accountService) Authenticate(ctx context.Context, accountID uint) (*models.Account, error) {
	account, err := s.repo.Account().GetByID(ctx, nil, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load session account: %w", err)
	}
	if !account.IsActive {
		return nil, ErrUnauthorized
	}
	return account, nil
}

// ===== ADMINISTRATION =====

func (s *accountService) List(ctx context.Context, actor *models.Account) ([]*models.Account, error) {
	if err := authorize(actor, policy.AccountList); err != nil {
		return nil, err
	}
	accounts, err := s.repo.Account().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *accountService) Create(ctx context.Context, actor *models.Account, req *models.AccountCreateRequest) (*models.Account, error) {
	if err := authorize(actor, policy.AccountCreate); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	role := models.RoleStudent
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			return nil, formError("user_type", msgRoleRequired)
		}
		role = parsed
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	account := &models.Account{
		Username: username,
		Email:    email,
		Role:     role,
		IsActive: true,
	}
	if err := s.createAccount(ctx, account, req.Password); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Account created by admin", "account_id", account.ID, "admin_id", actor.ID)
	s.publish(ctx, events.TopicAccounts, events.TypeAccountRegistered, events.AccountRegistered{
		AccountID: account.ID,
		Username:  account.Username,
		Role:      string(account.Role),
		Active:    account.IsActive,
	})
	return account, nil
}

func (s *accountService) Delete(ctx context.Context, actor *models.Account, targetID uint) (bool, error) {
	if err := authorize(actor, policy.AccountDelete); err != nil {
		return false, err
	}
	if !policy.CanDeleteAccount(actor, targetID) {
		s.logger.WarnContext(ctx, "Refused account self-deletion", "account_id", actor.ID)
		return false, nil
	}

	if err := s.repo.Account().Delete(ctx, nil, targetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete account: %w", err)
	}

	s.logger.InfoContext(ctx, "Account deleted", "account_id", targetID, "admin_id", actor.ID)
	return true, nil
}

// ===== HELPERS =====

func (s *accountService) ensureAvailable(ctx context.Context, username, email string) error {
	taken, err := s.repo.Account().ExistsByUsername(ctx, nil, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return formError("username", msgUsernameTaken)
	}

	taken, err = s.repo.Account().ExistsByEmail(ctx, nil, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return formError("email", msgEmailTaken)
	}
	return nil
}

func (s *accountService) createAccount(ctx context.Context, account *models.Account, password string) error {
	if err := account.SetPassword(password); err != nil {
		return err
	}
	if err := s.repo.Account().Create(ctx, nil, account); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// lost a race with a concurrent sign up
			if ferr := s.ensureAvailable(ctx, account.Username, account.Email); ferr != nil {
				return ferr
			}
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *accountService) requestVerification(ctx context.Context, account *models.Account) {
	if account.Email == "" {
		return
	}
	token := s.tokens.Make(account)
	s.publish(ctx, events.TopicAccounts, events.TypeVerificationRequested, events.VerificationRequested{
		AccountID: account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Link:      verification.Link(s.baseURL, account, token),
	})
}

// publish is fire-and-forget: failures are logged only.
func (s *accountService) publish(ctx context.Context, topic, eventType string, data interface{}) {
	if err := s.publisher.Publish(ctx, topic, eventType, data); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event", "type", eventType, "error", err)
	}
}
