package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusError   = "error"
)

// SyncRun is the audit record of one orchestration pass. Created when the pass
// starts, finalized exactly once when it ends, and never read back by the
// pipeline itself.
type SyncRun struct {
	ID           uuid.UUID  `db:"id"            json:"id"`
	AccountID    uuid.UUID  `db:"account_id"    json:"account_id"`
	StartedAt    time.Time  `db:"started_at"    json:"started_at"`
	CompletedAt  *time.Time `db:"completed_at"  json:"completed_at,omitempty"`
	Status       string     `db:"status"        json:"status"`
	MessagesRead int        `db:"messages_read" json:"messages_read"`
	RecordsNew   int        `db:"records_new"   json:"records_new"`
	ErrorSummary *string    `db:"error_summary" json:"error_summary,omitempty"`
}
