package models

import (
	"time"

	"github.com/google/uuid"
)

// Checkpoint records ingestion progress for one account: the identifier of the
// last message of the last fully persisted batch. It only moves forward, and only
// after every message of the batch has been durably upserted.
type Checkpoint struct {
	AccountID     uuid.UUID `db:"account_id"      json:"account_id"`
	LastMessageID string    `db:"last_message_id" json:"last_message_id"`
	LastSyncedAt  time.Time `db:"last_synced_at"  json:"last_synced_at"`
}
