package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

// AccountRepository persists accounts
type AccountRepository interface {
	Create(ctx context.Context, tx *gorm.DB, account *models.Account) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Account, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.Account, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Account, error)
	// GetByUsernameOrEmail prefers a username match over an email match.
	GetByUsernameOrEmail(ctx context.Context, tx *gorm.DB, identifier string) (*models.Account, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Account, error)

	ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)

	SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error
	TouchLastLogin(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}
