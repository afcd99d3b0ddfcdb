package repository

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/monok8i/users-service/internal/audit/domain"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns an audit log repository that uses the given pool for persistence.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save persists the audit log. The entry must have ID set.
func (r *PostgresRepository) Save(ctx context.Context, a *domain.AuditLog) error {
	uid := sql.NullInt64{Int64: a.UserID, Valid: a.UserID != 0}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_log (id, user_id, action, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, uid, a.Action, a.IP, a.Metadata, a.CreatedAt)
	return err
}

// ListByUser returns audit logs for the user, newest first, paginated.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, action, ip, metadata, created_at
		 FROM audit_log
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		var uid sql.NullInt64
		if err := rows.Scan(&a.ID, &uid, &a.Action, &a.IP, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.UserID = uid.Int64
		out = append(out, &a)
	}
	return out, rows.Err()
}
