package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/policy"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
	"github.com/SAP-F-2025/exam-service/internal/validator"
)

// MockTestSize is the number of random questions in a mock test.
const MockTestSize = 5

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *questionService) Create(ctx context.Context, actor *models.Account, req *models.QuestionCreateRequest) (*models.Question, error) {
	if err := authorize(actor, policy.QuestionCreate); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	question := &models.Question{
		Text:       req.Text,
		Subject:    strings.TrimSpace(req.Subject),
		Topic:      strings.TrimSpace(req.Topic),
		Difficulty: models.NormalizeDifficulty(req.Difficulty),
		AuthorID:   &actor.ID,
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	question.SetAuthor(actor)

	s.logger.InfoContext(ctx, "Question created", "question_id", question.ID, "author_id", actor.ID)
	return question, nil
}

func (s *questionService) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound("get question", err)
	}
	return question, nil
}

func (s *questionService) Update(ctx context.Context, actor *models.Account, id uint, req *models.QuestionUpdateRequest) (*models.Question, error) {
	if err := authorize(actor, policy.QuestionEdit); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound("get question", err)
	}

	applyQuestionUpdates(question, req)

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, notFound("update question", err)
	}

	s.logger.InfoContext(ctx, "Question updated", "question_id", id, "editor_id", actor.ID)
	return question, nil
}

func (s *questionService) Delete(ctx context.Context, actor *models.Account, id uint) error {
	if err := authorize(actor, policy.QuestionDelete); err != nil {
		return err
	}

	if err := s.repo.Question().Delete(ctx, nil, id); err != nil {
		return notFound("delete question", err)
	}

	s.logger.InfoContext(ctx, "Question deleted", "question_id", id, "actor_id", actor.ID)
	return nil
}

// ===== LISTING =====

func (s *questionService) List(ctx context.Context, req *models.QuestionFilterRequest) ([]*models.Question, error) {
	filters := repositories.QuestionFilters{}
	if req != nil {
		filters.Subject = strings.TrimSpace(req.Subject)
		filters.Topic = strings.TrimSpace(req.Topic)
		filters.Difficulty = strings.ToLower(strings.TrimSpace(req.Difficulty))
		filters.Query = strings.TrimSpace(req.Query)
	}

	questions, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (s *questionService) MockTest(ctx context.Context) ([]*models.Question, error) {
	questions, err := s.repo.Question().GetRandom(ctx, nil, MockTestSize)
	if err != nil {
		return nil, fmt.Errorf("failed to pick mock test questions: %w", err)
	}
	return questions, nil
}

func applyQuestionUpdates(question *models.Question, req *models.QuestionUpdateRequest) {
	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.Subject != nil {
		question.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Topic != nil {
		question.Topic = strings.TrimSpace(*req.Topic)
	}
	if req.Difficulty != nil {
		question.Difficulty = models.NormalizeDifficulty(*req.Difficulty)
	}
}
