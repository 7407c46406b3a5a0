package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/exam-service/internal/events"
	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/policy"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"github.com/SAP-F-2025/exam-service/internal/validator"
)

type submissionService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewSubmissionService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) SubmissionService {
	return &submissionService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// Take records an answer. A student may answer the same question any number of times.
func (s *submissionService) Take(ctx context.Context, student *models.Account, questionID uint, req *models.TakeQuestionRequest, client ClientInfo) (*models.Submission, error) {
	if err := authorize(student, policy.QuestionTake); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		return nil, notFound("get question", err)
	}

	info, err := json.Marshal(client)
	if err != nil {
		return nil, fmt.Errorf("failed to encode client info: %w", err)
	}

	submission := &models.Submission{
		QuestionID: question.ID,
		StudentID:  student.ID,
		AnswerText: req.AnswerText,
		ClientInfo: datatypes.JSON(info),
	}
	if err := s.repo.Submission().Create(ctx, nil, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	submission.Question = question
	submission.Student = student

	s.logger.InfoContext(ctx, "Submission created",
		"submission_id", submission.ID,
		"question_id", question.ID,
		"student_id", student.ID)

	if err := s.publisher.Publish(ctx, events.TopicSubmissions, events.TypeSubmissionCreated, events.SubmissionCreated{
		SubmissionID: submission.ID,
		QuestionID:   question.ID,
		StudentID:    student.ID,
	}); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish submission event", "submission_id", submission.ID, "error", err)
	}

	return submission, nil
}

func (s *submissionService) List(ctx context.Context, actor *models.Account) ([]*models.Submission, error) {
	if err := authorize(actor, policy.SubmissionList); err != nil {
		return nil, err
	}
	return s.list(ctx, repositories.SubmissionFilters{})
}

func (s *submissionService) ListOwn(ctx context.Context, student *models.Account) ([]*models.Submission, error) {
	if err := authorize(student, policy.OwnSubmissions); err != nil {
		return nil, err
	}
	return s.list(ctx, repositories.SubmissionFilters{StudentID: &student.ID})
}

func (s *submissionService) list(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, error) {
	submissions, err := s.repo.Submission().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

// Grade moves a submission to graded. Regrading overwrites the previous
// score and feedback. An omitted score counts as zero.
func (s *submissionService) Grade(ctx context.Context, grader *models.Account, submissionID uint, req *models.GradeSubmissionRequest) (*models.Submission, error) {
	if err := authorize(grader, policy.SubmissionGrade); err != nil {
		return nil, err
	}

	score := 0
	if req.Score != nil {
		score = *req.Score
	}

	var graded *models.Submission
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		submission, err := tx.Submission().GetByID(ctx, nil, submissionID)
		if err != nil {
			return err
		}

		wasGraded := submission.Graded
		submission.ApplyGrade(score, req.Feedback, grader.ID, s.now().UTC())
		if err := tx.Submission().SaveGrade(ctx, nil, submission); err != nil {
			return err
		}

		if wasGraded {
			s.logger.InfoContext(ctx, "Overwriting previous grade", "submission_id", submission.ID)
		}
		graded = submission
		return nil
	})
	if err != nil {
		return nil, notFound("grade submission", err)
	}

	s.logger.InfoContext(ctx, "Submission graded",
		"submission_id", graded.ID,
		"grader_id", grader.ID,
		"score", score)

	if err := s.publisher.Publish(ctx, events.TopicSubmissions, events.TypeSubmissionGraded, events.SubmissionGraded{
		SubmissionID: graded.ID,
		QuestionID:   graded.QuestionID,
		StudentID:    graded.StudentID,
		Score:        score,
		GradedBy:     grader.ID,
		GradedAt:     *graded.GradedAt,
	}); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish grade event", "submission_id", graded.ID, "error", err)
	}

	return graded, nil
}
