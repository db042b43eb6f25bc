package store

import (
	"context"
	"errors"
	"time"

	"github.com/Revenn0/trackwatch/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)

	// UpsertAlert inserts a parsed alert. A collision on the
	// (account_id, source_message_id) unique key is success-no-op: the method
	// reports inserted=false and the existing row is left untouched, lifecycle
	// fields included. Safe to call concurrently and to retry.
	UpsertAlert(ctx context.Context, alert *models.Alert) (inserted bool, err error)
	ListAlerts(ctx context.Context, filter AlertFilter) ([]*models.Alert, int, error)
	ListAlertsByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.Alert, error)
	CountAlertsByType(ctx context.Context, filter AlertFilter) (map[string]int, error)
	CountAlertsByFlag(ctx context.Context, filter AlertFilter) (unread, acknowledged int, err error)

	GetCheckpoint(ctx context.Context, accountID uuid.UUID) (*models.Checkpoint, error)
	// AdvanceCheckpoint upserts the account's checkpoint. Callers must invoke it
	// only after every message of the batch has been durably upserted.
	AdvanceCheckpoint(ctx context.Context, accountID uuid.UUID, lastMessageID string, syncedAt time.Time) error

	CreateSyncRun(ctx context.Context, run *models.SyncRun) error
	FinalizeSyncRun(ctx context.Context, id uuid.UUID, status string, messagesRead, recordsNew int, errorSummary *string) error
	ListSyncRuns(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.SyncRun, error)
}

// AlertFilter narrows alert queries. Zero values mean "no constraint".
type AlertFilter struct {
	AccountID uuid.UUID
	Category  string
	Since     time.Time
	Until     time.Time
	Page      int
	Limit     int
}
