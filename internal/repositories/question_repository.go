package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

// QuestionRepository interface for question-specific operations
type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// List returns matching questions, newest first
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, error)
	GetRandom(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Question, error)

	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	ListAuthorships(ctx context.Context, tx *gorm.DB) ([]models.QuestionAuthorship, error)
}
