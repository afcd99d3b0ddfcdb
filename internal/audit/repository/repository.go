// Package repository persists audit log entries in Postgres.
package repository

import (
	"context"

	"github.com/monok8i/users-service/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	// Save persists the audit log. The entry must have ID set.
	Save(ctx context.Context, a *domain.AuditLog) error
	// ListByUser returns audit logs for the user, newest first, paginated.
	ListByUser(ctx context.Context, userID int64, limit, offset int32) ([]*domain.AuditLog, error)
}
