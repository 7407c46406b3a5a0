package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

// SubmissionRepository persists student answers and their grades
type SubmissionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error)
	SaveGrade(ctx context.Context, tx *gorm.DB, submission *models.Submission) error

	// List preloads student and question, newest first
	List(ctx context.Context, tx *gorm.DB, filters SubmissionFilters) ([]*models.Submission, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)

	// Records returns one flattened row per submission ordered by submission time
	Records(ctx context.Context, tx *gorm.DB, filters RecordFilters) ([]models.SubmissionRecord, error)
}
