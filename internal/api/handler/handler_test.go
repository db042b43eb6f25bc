package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Revenn0/trackwatch/internal/store"
	"github.com/Revenn0/trackwatch/internal/syncer"
	"github.com/Revenn0/trackwatch/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// --- mock store ---

// mockStore implements store.Store with per-method function fields. Methods
// with a nil field return zero values so tests only wire what they exercise.
type mockStore struct {
	getAccountFn          func(ctx context.Context, id uuid.UUID) (*models.Account, error)
	createAccountFn       func(ctx context.Context, account *models.Account) error
	listAccountsFn        func(ctx context.Context) ([]*models.Account, error)
	listAlertsFn          func(ctx context.Context, filter store.AlertFilter) ([]*models.Alert, int, error)
	listAlertsByAccountFn func(ctx context.Context, accountID uuid.UUID) ([]*models.Alert, error)
	countByTypeFn         func(ctx context.Context, filter store.AlertFilter) (map[string]int, error)
	countByFlagFn         func(ctx context.Context, filter store.AlertFilter) (int, int, error)
	listSyncRunsFn        func(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.SyncRun, error)
}

func (m *mockStore) Ping(ctx context.Context) error { return nil }

func (m *mockStore) CreateAccount(ctx context.Context, account *models.Account) error {
	if m.createAccountFn != nil {
		return m.createAccountFn(ctx, account)
	}
	return nil
}

func (m *mockStore) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if m.getAccountFn != nil {
		return m.getAccountFn(ctx, id)
	}
	return &models.Account{ID: id, Name: "default"}, nil
}

func (m *mockStore) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	if m.listAccountsFn != nil {
		return m.listAccountsFn(ctx)
	}
	return nil, nil
}

func (m *mockStore) UpsertAlert(ctx context.Context, alert *models.Alert) (bool, error) {
	return false, nil
}

func (m *mockStore) ListAlerts(ctx context.Context, filter store.AlertFilter) ([]*models.Alert, int, error) {
	if m.listAlertsFn != nil {
		return m.listAlertsFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockStore) ListAlertsByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.Alert, error) {
	if m.listAlertsByAccountFn != nil {
		return m.listAlertsByAccountFn(ctx, accountID)
	}
	return nil, nil
}

func (m *mockStore) CountAlertsByType(ctx context.Context, filter store.AlertFilter) (map[string]int, error) {
	if m.countByTypeFn != nil {
		return m.countByTypeFn(ctx, filter)
	}
	return map[string]int{}, nil
}

func (m *mockStore) CountAlertsByFlag(ctx context.Context, filter store.AlertFilter) (int, int, error) {
	if m.countByFlagFn != nil {
		return m.countByFlagFn(ctx, filter)
	}
	return 0, 0, nil
}

func (m *mockStore) GetCheckpoint(ctx context.Context, accountID uuid.UUID) (*models.Checkpoint, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) AdvanceCheckpoint(ctx context.Context, accountID uuid.UUID, lastMessageID string, syncedAt time.Time) error {
	return nil
}

func (m *mockStore) CreateSyncRun(ctx context.Context, run *models.SyncRun) error { return nil }

func (m *mockStore) FinalizeSyncRun(ctx context.Context, id uuid.UUID, status string, messagesRead, recordsNew int, errorSummary *string) error {
	return nil
}

func (m *mockStore) ListSyncRuns(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.SyncRun, error) {
	if m.listSyncRunsFn != nil {
		return m.listSyncRunsFn(ctx, accountID, limit)
	}
	return nil, nil
}

var _ store.Store = (*mockStore)(nil)

// --- mock cache ---

type mockCache struct {
	data    map[string][]byte
	deleted []string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (c *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *mockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mockCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *mockCache) Ping(ctx context.Context) error { return nil }

func (c *mockCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	return 1, nil
}

// --- mock batch runner ---

type mockRunner struct {
	fn func(ctx context.Context, accountID uuid.UUID, limit int) (*syncer.Progress, error)
}

func (m *mockRunner) RunBatch(ctx context.Context, accountID uuid.UUID, limit int) (*syncer.Progress, error) {
	return m.fn(ctx, accountID, limit)
}

// --- helpers ---

// serve mounts the handler on a chi route so URL parameters resolve.
func serve(method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Data
}

func decodeErrCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Error.Code
}

func deviceAlert(accountID uuid.UUID, device, alertType string, at time.Time) *models.Alert {
	return &models.Alert{
		ID:              uuid.New(),
		AccountID:       accountID,
		SourceMessageID: uuid.NewString(),
		AlertType:       alertType,
		DeviceName:      device,
		CreatedAt:       at,
	}
}
