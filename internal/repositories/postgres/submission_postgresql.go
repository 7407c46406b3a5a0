package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s *SubmissionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	db := getDB(s.db, tx)
	return wrapErr("create submission", db.WithContext(ctx).Omit("Question", "Student", "GradedBy").Create(submission).Error)
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	db := getDB(s.db, tx)
	var submission models.Submission
	err := db.WithContext(ctx).
		Preload("Question").
		Preload("Student").
		First(&submission, id).Error
	if err != nil {
		return nil, wrapErr("get submission", err)
	}
	return &submission, nil
}

// SaveGrade writes only the grading columns.
func (s *SubmissionPostgreSQL) SaveGrade(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	db := getDB(s.db, tx)
	res := db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", submission.ID).
		Updates(map[string]interface{}{
			"graded":       submission.Graded,
			"score":        submission.Score,
			"feedback":     submission.Feedback,
			"graded_at":    submission.GradedAt,
			"graded_by_id": submission.GradedByID,
		})
	if res.Error != nil {
		return wrapErr("save grade", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("save grade", gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *SubmissionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.Submission, error) {
	db := getDB(s.db, tx)
	query := db.WithContext(ctx).
		Preload("Question").
		Preload("Student").
		Order("submitted_at DESC").
		Order("id DESC")

	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.QuestionID != nil {
		query = query.Where("question_id = ?", *filters.QuestionID)
	}
	if filters.Graded != nil {
		query = query.Where("graded = ?", *filters.Graded)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var submissions []*models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, wrapErr("list submissions", err)
	}
	return submissions, nil
}

func (s *SubmissionPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := getDB(s.db, tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Submission{}).Count(&count).Error; err != nil {
		return 0, wrapErr("count submissions", err)
	}
	return count, nil
}

func (s *SubmissionPostgreSQL) Records(ctx context.Context, tx *gorm.DB, filters repositories.RecordFilters) ([]models.SubmissionRecord, error) {
	db := getDB(s.db, tx)
	query := db.WithContext(ctx).
		Table("submissions").
		Select(`submissions.id AS submission_id,
			submissions.question_id,
			submissions.student_id,
			accounts.username AS student_username,
			submissions.graded,
			submissions.score,
			submissions.submitted_at`).
		Joins("JOIN accounts ON accounts.id = submissions.student_id").
		Order("submissions.submitted_at ASC").
		Order("submissions.id ASC")

	if filters.GradedOnly {
		query = query.Where("submissions.graded = ?", true)
	}

	var rows []models.SubmissionRecord
	if err := query.Scan(&rows).Error; err != nil {
		return nil, wrapErr("load submission records", err)
	}
	return rows, nil
}
