package repository

import (
	"errors"
	"fmt"
	"testing"

	"yatube/internal/models"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: users.username")))
	assert.False(t, IsUniqueViolation(errors.New("disk I/O error")))
}

func TestNotFoundOr(t *testing.T) {
	assert.NoError(t, notFoundOr(nil, "Post", 1))
	assert.True(t, models.IsNotFound(notFoundOr(gorm.ErrRecordNotFound, "Post", 1)))
	assert.True(t, models.HasCode(notFoundOr(errors.New("boom"), "Post", 1), models.CodeInternal))
}
