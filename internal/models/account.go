package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// AllRoles lists every role in a stable order.
var AllRoles = []UserRole{RoleAdmin, RoleTeacher, RoleStudent}

// ParseRole maps user input onto a known role. Unknown values are rejected.
func ParseRole(s string) (UserRole, error) {
	switch UserRole(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleTeacher:
		return RoleTeacher, nil
	case RoleStudent:
		return RoleStudent, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r UserRole) IsValid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// DashboardPath is where a freshly logged in account lands.
func (r UserRole) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/dashboard/admin/"
	case RoleTeacher:
		return "/dashboard/teacher/"
	case RoleStudent:
		return "/dashboard/student/"
	default:
		return "/"
	}
}

type Account struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"uniqueIndex;not null;size:150"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null;size:254"`
	PasswordHash string     `json:"-" gorm:"not null;size:255"`
	Role         UserRole   `json:"role" gorm:"not null;size:16;default:student;index"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:false"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	DateJoined time.Time `json:"date_joined" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// SetPassword stores a bcrypt hash of the given plain text password.
func (a *Account) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	a.PasswordHash = string(hash)
	return nil
}

func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
