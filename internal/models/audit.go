package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Audit actions recorded for writes.
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// AuditLog is one recorded write against a scheduling resource.
type AuditLog struct {
	ID         string         `db:"id" json:"id"`
	UserID     *string        `db:"user_id" json:"user_id,omitempty"`
	Action     string         `db:"action" json:"action"`
	Resource   string         `db:"resource" json:"resource"`
	ResourceID *string        `db:"resource_id" json:"resource_id,omitempty"`
	ScheduleID *string        `db:"schedule_id" json:"schedule_id,omitempty"`
	Details    types.JSONText `db:"details" json:"details,omitempty"`
	IPAddress  string         `db:"ip_address" json:"ip_address"`
	UserAgent  string         `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// AuditLogFilter describes query params for browsing the audit trail.
type AuditLogFilter struct {
	Resource   string
	ResourceID string
	UserID     string
	Page       int
	PageSize   int
}
