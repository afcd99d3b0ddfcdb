package domain

import "time"

// Auth actions recorded in the audit trail.
const (
	ActionLogin       = "login"
	ActionLoginFailed = "login_failed"
	ActionRefresh     = "refresh"
	ActionLogout      = "logout"
)

// AuditLog is one recorded auth event. UserID is 0 when the actor could not be
// resolved (e.g. a failed login for an unknown email).
type AuditLog struct {
	ID        string
	UserID    int64
	Action    string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
