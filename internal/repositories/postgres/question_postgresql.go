package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := getDB(q.db, tx)
	return wrapErr("create question", db.WithContext(ctx).Create(question).Error)
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := getDB(q.db, tx)
	var question models.Question
	if err := db.WithContext(ctx).Preload("Author").First(&question, id).Error; err != nil {
		return nil, wrapErr("get question", err)
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := getDB(q.db, tx)
	err := db.WithContext(ctx).
		Model(question).
		Select("question_text", "subject", "topic", "difficulty", "updated_at").
		Updates(question).Error
	return wrapErr("update question", err)
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(q.db, tx)
	res := db.WithContext(ctx).Delete(&models.Question{}, id)
	if res.Error != nil {
		return wrapErr("delete question", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("delete question", gorm.ErrRecordNotFound)
	}
	return nil
}

func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, error) {
	db := getDB(q.db, tx)
	query := q.applyFilters(db.WithContext(ctx).Model(&models.Question{}), filters).
		Preload("Author").
		Order("created_at DESC").
		Order("id DESC")

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var questions []*models.Question
	if err := query.Find(&questions).Error; err != nil {
		return nil, wrapErr("list questions", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if s := strings.TrimSpace(filters.Subject); s != "" {
		query = query.Where("LOWER(subject) = LOWER(?)", s)
	}
	if t := strings.TrimSpace(filters.Topic); t != "" {
		query = query.Where("LOWER(topic) = LOWER(?)", t)
	}
	if d := strings.TrimSpace(filters.Difficulty); d != "" {
		query = query.Where("difficulty = ?", strings.ToLower(d))
	}
	if text := strings.TrimSpace(filters.Query); text != "" {
		query = query.Where("question_text ILIKE ?", containsPattern(text))
	}
	if filters.AuthorID != nil {
		query = query.Where("author_id = ?", *filters.AuthorID)
	}
	return query
}

func (q *QuestionPostgreSQL) GetRandom(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Question, error) {
	db := getDB(q.db, tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).Order("RANDOM()").Limit(limit).Find(&questions).Error; err != nil {
		return nil, wrapErr("get random questions", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := getDB(q.db, tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Question{}).Count(&count).Error; err != nil {
		return 0, wrapErr("count questions", err)
	}
	return count, nil
}

func (q *QuestionPostgreSQL) ListAuthorships(ctx context.Context, tx *gorm.DB) ([]models.QuestionAuthorship, error) {
	db := getDB(q.db, tx)
	var rows []models.QuestionAuthorship
	err := db.WithContext(ctx).
		Table("questions").
		Select("questions.id AS question_id, accounts.username AS author_username").
		Joins("LEFT JOIN accounts ON accounts.id = questions.author_id").
		Order("questions.id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapErr("list question authors", err)
	}
	return rows, nil
}
