// Package audit records a best-effort trail of auth events.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/monok8i/users-service/internal/audit/domain"
	auditrepo "github.com/monok8i/users-service/internal/audit/repository"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// Recorder writes a single audit event. Used by the auth code paths.
// Record is best-effort: failures are logged and do not affect the caller.
type Recorder interface {
	Record(ctx context.Context, userID int64, action, metadata string)
}

// Logger implements Recorder using the audit repository and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	logger      *zap.Logger
}

// NewLogger returns a Recorder that persists to repo and uses ipExtractor for
// the client IP. ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor, logger *zap.Logger) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor, logger: logger.Named("audit")}
}

// Record writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) Record(ctx context.Context, userID int64, action, metadata string) {
	if l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		if v := l.ipExtractor(ctx); v != "" {
			ip = v
		}
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Save(ctx, entry); err != nil {
		l.logger.Warn("failed to record audit event",
			zap.String("action", action), zap.Error(err))
	}
}

// NopRecorder discards audit events. Used in tests and when auditing is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, userID int64, action, metadata string) {}
