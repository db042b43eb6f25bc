package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Revenn0/trackwatch/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Accounts ---

func (s *PostgresStore) CreateAccount(ctx context.Context, account *models.Account) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (id, name, mailbox_address, created_at) VALUES ($1, $2, $3, $4)`,
		account.ID, account.Name, account.MailboxAddress, account.CreatedAt)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var a models.Account
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, mailbox_address, created_at FROM accounts WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.MailboxAddress, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, mailbox_address, created_at FROM accounts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.MailboxAddress, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

// --- Alerts ---

const alertColumns = `id, account_id, source_message_id, alert_type, alert_time, location,
	latitude, longitude, device_serial, device_name, account_name, raw_body,
	status, acknowledged, acknowledged_at, acknowledged_by, notes, assigned_to, favorite, created_at`

// UpsertAlert inserts one alert in its own implicit transaction. A duplicate
// (account_id, source_message_id) leaves the existing row byte-identical and
// reports inserted=false.
func (s *PostgresStore) UpsertAlert(ctx context.Context, alert *models.Alert) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO alerts (id, account_id, source_message_id, alert_type, alert_time, location,
		   latitude, longitude, device_serial, device_name, account_name, raw_body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (account_id, source_message_id) DO NOTHING`,
		alert.ID, alert.AccountID, alert.SourceMessageID, alert.AlertType, alert.AlertTime,
		alert.Location, alert.Latitude, alert.Longitude, alert.DeviceSerial, alert.DeviceName,
		alert.AccountName, alert.RawBody, alert.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("upsert alert: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) ListAlerts(ctx context.Context, filter AlertFilter) ([]*models.Alert, int, error) {
	where, args := buildAlertWhere(filter)
	argIdx := len(args) + 1

	var total int
	countQuery := "SELECT COUNT(*) FROM alerts WHERE " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count alerts: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	dataQuery := fmt.Sprintf(
		`SELECT %s FROM alerts WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		alertColumns, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	alerts, err := scanAlerts(rows)
	if err != nil {
		return nil, 0, err
	}
	return alerts, total, rows.Err()
}

func (s *PostgresStore) ListAlertsByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.Alert, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM alerts WHERE account_id = $1 ORDER BY created_at`, alertColumns),
		accountID)
	if err != nil {
		return nil, fmt.Errorf("list alerts by account: %w", err)
	}
	defer rows.Close()

	alerts, err := scanAlerts(rows)
	if err != nil {
		return nil, err
	}
	return alerts, rows.Err()
}

func (s *PostgresStore) CountAlertsByType(ctx context.Context, filter AlertFilter) (map[string]int, error) {
	where, args := buildAlertWhere(filter)

	rows, err := s.pool.Query(ctx,
		"SELECT alert_type, COUNT(*) FROM alerts WHERE "+where+" GROUP BY alert_type", args...)
	if err != nil {
		return nil, fmt.Errorf("count alerts by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var alertType string
		var count int
		if err := rows.Scan(&alertType, &count); err != nil {
			return nil, fmt.Errorf("scan alert type count: %w", err)
		}
		counts[alertType] = count
	}
	return counts, rows.Err()
}

func (s *PostgresStore) CountAlertsByFlag(ctx context.Context, filter AlertFilter) (int, int, error) {
	where, args := buildAlertWhere(filter)

	var unread, acknowledged int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE NOT acknowledged),
		        COUNT(*) FILTER (WHERE acknowledged)
		 FROM alerts WHERE `+where, args...,
	).Scan(&unread, &acknowledged)
	if err != nil {
		return 0, 0, fmt.Errorf("count alerts by flag: %w", err)
	}
	return unread, acknowledged, nil
}

// buildAlertWhere builds the WHERE clause shared by the alert queries.
func buildAlertWhere(filter AlertFilter) (string, []any) {
	conditions := []string{"account_id = $1"}
	args := []any{filter.AccountID}
	argIdx := 2

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("alert_type = $%d", argIdx))
		args = append(args, filter.Category)
		argIdx++
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, filter.Since)
		argIdx++
	}
	if !filter.Until.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", argIdx))
		args = append(args, filter.Until)
		argIdx++
	}

	return strings.Join(conditions, " AND "), args
}

func scanAlerts(rows pgx.Rows) ([]*models.Alert, error) {
	var alerts []*models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.AccountID, &a.SourceMessageID, &a.AlertType, &a.AlertTime,
			&a.Location, &a.Latitude, &a.Longitude, &a.DeviceSerial, &a.DeviceName,
			&a.AccountName, &a.RawBody, &a.Status, &a.Acknowledged, &a.AcknowledgedAt,
			&a.AcknowledgedBy, &a.Notes, &a.AssignedTo, &a.Favorite, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, &a)
	}
	return alerts, nil
}

// --- Checkpoints ---

func (s *PostgresStore) GetCheckpoint(ctx context.Context, accountID uuid.UUID) (*models.Checkpoint, error) {
	var c models.Checkpoint
	err := s.pool.QueryRow(ctx,
		`SELECT account_id, last_message_id, last_synced_at FROM sync_checkpoints WHERE account_id = $1`,
		accountID,
	).Scan(&c.AccountID, &c.LastMessageID, &c.LastSyncedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) AdvanceCheckpoint(ctx context.Context, accountID uuid.UUID, lastMessageID string, syncedAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sync_checkpoints (account_id, last_message_id, last_synced_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (account_id) DO UPDATE SET
		   last_message_id = EXCLUDED.last_message_id,
		   last_synced_at = EXCLUDED.last_synced_at`,
		accountID, lastMessageID, syncedAt)
	if err != nil {
		return fmt.Errorf("advance checkpoint: %w", err)
	}
	return nil
}

// --- Sync runs ---

func (s *PostgresStore) CreateSyncRun(ctx context.Context, run *models.SyncRun) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sync_runs (id, account_id, started_at, status, messages_read, records_new)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.AccountID, run.StartedAt, run.Status, run.MessagesRead, run.RecordsNew)
	if err != nil {
		return fmt.Errorf("create sync run: %w", err)
	}
	return nil
}

// FinalizeSyncRun closes a running pass exactly once; a run that is already
// finalized is left untouched.
func (s *PostgresStore) FinalizeSyncRun(ctx context.Context, id uuid.UUID, status string, messagesRead, recordsNew int, errorSummary *string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sync_runs
		 SET status = $2, messages_read = $3, records_new = $4, error_summary = $5, completed_at = NOW()
		 WHERE id = $1 AND status = $6`,
		id, status, messagesRead, recordsNew, errorSummary, models.SyncRunStatusRunning)
	if err != nil {
		return fmt.Errorf("finalize sync run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListSyncRuns(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, account_id, started_at, completed_at, status, messages_read, records_new, error_summary
		 FROM sync_runs WHERE account_id = $1 ORDER BY started_at DESC LIMIT $2`,
		accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		var r models.SyncRun
		if err := rows.Scan(&r.ID, &r.AccountID, &r.StartedAt, &r.CompletedAt, &r.Status,
			&r.MessagesRead, &r.RecordsNew, &r.ErrorSummary); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
