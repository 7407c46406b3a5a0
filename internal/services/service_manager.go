package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/config"
	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"github.com/SAP-F-2025/exam-service/internal/validator"
	"github.com/SAP-F-2025/exam-service/internal/verification"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	BaseURL             string
	SecretKey           string
	VerificationTimeout time.Duration
	DefaultTimeout      time.Duration
}

// ServiceManagerConfigFrom derives the service settings from the process config.
func ServiceManagerConfigFrom(cfg *config.Config) ServiceManagerConfig {
	return ServiceManagerConfig{
		BaseURL:             cfg.BaseURL,
		SecretKey:           cfg.SecretKey,
		VerificationTimeout: time.Duration(cfg.VerificationTokenDays) * 24 * time.Hour,
		DefaultTimeout:      30 * time.Second,
	}
}

// Validate checks the service manager configuration
func (c ServiceManagerConfig) Validate() error {
	var errs []string
	if c.SecretKey == "" {
		errs = append(errs, "secret key is required")
	}
	if c.VerificationTimeout <= 0 {
		errs = append(errs, "verification timeout must be positive")
	}
	if c.DefaultTimeout <= 0 {
		errs = append(errs, "default timeout must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}
	return nil
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	accountService    AccountService
	questionService   QuestionService
	submissionService SubmissionService
	reportService     ReportService
	dashboardService  DashboardService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.config.Validate(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	tokens := verification.NewTokenGenerator(sm.config.SecretKey, sm.config.VerificationTimeout)

	sm.accountService = NewAccountService(sm.repo, sm.publisher, tokens, sm.config.BaseURL, sm.logger, sm.validator)
	sm.questionService = NewQuestionService(sm.repo, sm.logger, sm.validator)
	sm.submissionService = NewSubmissionService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.reportService = NewReportService(sm.repo, sm.logger)
	sm.dashboardService = NewDashboardService(sm.repo, sm.reportService, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Account() AccountService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.accountService
}

func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.questionService
}

func (sm *serviceManager) Submission() SubmissionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.submissionService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.reportService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.dashboardService
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	ctx, cancel := context.WithTimeout(ctx, sm.config.DefaultTimeout)
	defer cancel()

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
