package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
)

type AccountPostgreSQL struct {
	db *gorm.DB
}

func NewAccountPostgreSQL(db *gorm.DB) repositories.AccountRepository {
	return &AccountPostgreSQL{db: db}
}

func (r *AccountPostgreSQL) Create(ctx context.Context, tx *gorm.DB, account *models.Account) error {
	db := getDB(r.db, tx)
	return wrapErr("create account", db.WithContext(ctx).Create(account).Error)
}

func (r *AccountPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Account, error) {
	db := getDB(r.db, tx)
	var account models.Account
	if err := db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, wrapErr("get account by id", err)
	}
	return &account, nil
}

func (r *AccountPostgreSQL) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.Account, error) {
	db := getDB(r.db, tx)
	var account models.Account
	if err := db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		return nil, wrapErr("get account by username", err)
	}
	return &account, nil
}

func (r *AccountPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Account, error) {
	db := getDB(r.db, tx)
	var account models.Account
	if err := db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&account).Error; err != nil {
		return nil, wrapErr("get account by email", err)
	}
	return &account, nil
}

func (r *AccountPostgreSQL) GetByUsernameOrEmail(ctx context.Context, tx *gorm.DB, identifier string) (*models.Account, error) {
	db := getDB(r.db, tx)
	var account models.Account
	err := db.WithContext(ctx).
		Where("username = ? OR LOWER(email) = LOWER(?)", identifier, identifier).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN username = ? THEN 0 ELSE 1 END",
			Vars:               []interface{}{identifier},
			WithoutParentheses: true,
		}}).
		First(&account).Error
	if err != nil {
		return nil, wrapErr("resolve account", err)
	}
	return &account, nil
}

func (r *AccountPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Account, error) {
	db := getDB(r.db, tx)
	var accounts []*models.Account
	if err := db.WithContext(ctx).Order("username ASC").Find(&accounts).Error; err != nil {
		return nil, wrapErr("list accounts", err)
	}
	return accounts, nil
}

func (r *AccountPostgreSQL) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	return r.exists(ctx, tx, "username = ?", username)
}

func (r *AccountPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	return r.exists(ctx, tx, "LOWER(email) = LOWER(?)", email)
}

func (r *AccountPostgreSQL) exists(ctx context.Context, tx *gorm.DB, cond string, arg interface{}) (bool, error) {
	db := getDB(r.db, tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Account{}).Where(cond, arg).Limit(1).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return count > 0, nil
}

func (r *AccountPostgreSQL) SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error {
	db := getDB(r.db, tx)
	res := db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return wrapErr("update account status", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("update account status", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *AccountPostgreSQL) TouchLastLogin(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error {
	db := getDB(r.db, tx)
	err := db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Update("last_login_at", at).Error
	return wrapErr("update last login", err)
}

func (r *AccountPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(r.db, tx)
	res := db.WithContext(ctx).Delete(&models.Account{}, id)
	if res.Error != nil {
		return wrapErr("delete account", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("delete account", gorm.ErrRecordNotFound)
	}
	return nil
}
