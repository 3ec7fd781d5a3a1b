// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/observability"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// IsUniqueViolation reports whether err is a unique-constraint failure from
// postgres or sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// notFoundOr maps gorm.ErrRecordNotFound onto a NOT_FOUND AppError and
// anything else onto INTERNAL_ERROR.
func notFoundOr(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

func internal(err error) error {
	if err == nil {
		return nil
	}
	return models.NewInternalError(err)
}

func startSpan(ctx context.Context, table, method string) (context.Context, trace.Span) {
	return observability.StartRepositorySpan(ctx, table, method)
}

func logWrite(ctx context.Context, table, operation string, id uint) {
	middleware.Logger.DebugContext(ctx, "repository "+operation,
		"table", table,
		"operation", operation,
		"id", id,
	)
}
