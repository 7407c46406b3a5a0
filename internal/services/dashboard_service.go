package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/policy"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
)

// LatestSubmissionsSize bounds the teacher dashboard snapshot.
const LatestSubmissionsSize = 10

type dashboardService struct {
	repo    repositories.Repository
	reports ReportService
	logger  *slog.Logger
}

func NewDashboardService(repo repositories.Repository, reports ReportService, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:    repo,
		reports: reports,
		logger:  logger,
	}
}

// Student lists every question, newest first.
func (s *dashboardService) Student(ctx context.Context, actor *models.Account) (*StudentDashboard, error) {
	if err := authorize(actor, policy.StudentDashboard); err != nil {
		return nil, err
	}

	questions, err := s.repo.Question().List(ctx, nil, repositories.QuestionFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	return &StudentDashboard{Questions: questions}, nil
}

func (s *dashboardService) Teacher(ctx context.Context, actor *models.Account) (*TeacherDashboard, error) {
	if err := authorize(actor, policy.TeacherDashboard); err != nil {
		return nil, err
	}

	latest, err := s.repo.Submission().List(ctx, nil, repositories.SubmissionFilters{Limit: LatestSubmissionsSize})
	if err != nil {
		return nil, fmt.Errorf("failed to load latest submissions: %w", err)
	}
	return &TeacherDashboard{LatestSubmissions: latest}, nil
}

func (s *dashboardService) Admin(ctx context.Context, actor *models.Account) (*AdminDashboard, error) {
	if err := authorize(actor, policy.AdminDashboard); err != nil {
		return nil, err
	}

	activity, err := s.reports.AdminActivity(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &AdminDashboard{Activity: *activity}, nil
}
