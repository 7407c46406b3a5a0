package postgres

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-service/internal/repositories"
)

func TestWrapErr(t *testing.T) {
	assert.NoError(t, wrapErr("noop", nil))

	err := wrapErr("get question", gorm.ErrRecordNotFound)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
	assert.Equal(t, "failed to get question: record not found", err.Error())

	err = wrapErr("create account", gorm.ErrDuplicatedKey)
	assert.True(t, errors.Is(err, repositories.ErrDuplicate))

	boom := errors.New("boom")
	err = wrapErr("list", boom)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, repositories.ErrNotFound))
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%algebra%", containsPattern("algebra"))
	assert.Equal(t, `%100\%%`, containsPattern("100%"))
	assert.Equal(t, `%snake\_case%`, containsPattern("snake_case"))
}
