package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/policy"
	"github.com/SAP-F-2025/exam-service/internal/reports"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
)

// reportService recomputes every report from the current rows on each call.
type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

func (s *reportService) Leaderboard(ctx context.Context) ([]reports.LeaderboardEntry, error) {
	rows, err := s.records(ctx, repositories.RecordFilters{GradedOnly: true})
	if err != nil {
		return nil, err
	}
	return reports.Leaderboard(rows), nil
}

func (s *reportService) TeacherReports(ctx context.Context, actor *models.Account) (*TeacherReport, error) {
	if err := authorize(actor, policy.TeacherReports); err != nil {
		return nil, err
	}

	rows, err := s.records(ctx, repositories.RecordFilters{})
	if err != nil {
		return nil, err
	}

	return &TeacherReport{
		ByStudent:  reports.ByStudent(rows),
		ByQuestion: reports.ByQuestion(rows),
	}, nil
}

func (s *reportService) AdminActivity(ctx context.Context, actor *models.Account) (*reports.Activity, error) {
	if err := authorize(actor, policy.AdminActivity); err != nil {
		return nil, err
	}

	questionCount, err := s.repo.Question().Count(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	submissionCount, err := s.repo.Submission().Count(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	authorships, err := s.repo.Question().ListAuthorships(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load question authors: %w", err)
	}
	rows, err := s.records(ctx, repositories.RecordFilters{})
	if err != nil {
		return nil, err
	}

	activity := reports.AdminActivity(questionCount, submissionCount, authorships, rows)
	return &activity, nil
}

func (s *reportService) PerformanceRows(ctx context.Context, actor *models.Account) ([]reports.PerformanceRow, error) {
	if err := authorize(actor, policy.PerformanceExport); err != nil {
		return nil, err
	}

	rows, err := s.records(ctx, repositories.RecordFilters{})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Performance export", "actor_id", actor.ID, "rows", len(rows))
	return reports.PerformanceRows(rows), nil
}

func (s *reportService) records(ctx context.Context, filters repositories.RecordFilters) ([]models.SubmissionRecord, error) {
	rows, err := s.repo.Submission().Records(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission records: %w", err)
	}
	return rows, nil
}
