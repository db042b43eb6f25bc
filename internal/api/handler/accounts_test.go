package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Revenn0/trackwatch/pkg/models"
	"github.com/google/uuid"
)

func TestCreateAccountHandler_Success(t *testing.T) {
	var created *models.Account
	s := &mockStore{createAccountFn: func(ctx context.Context, account *models.Account) error {
		created = account
		return nil
	}}

	body := []byte(`{"name": "fleet-ops", "mailbox_address": "fleet@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := serve(http.MethodPost, "/accounts", NewCreateAccountHandler(s), req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if created == nil {
		t.Fatal("expected account to be persisted")
	}
	if created.Name != "fleet-ops" || created.MailboxAddress != "fleet@example.com" {
		t.Errorf("unexpected account: %+v", created)
	}
	if created.ID == uuid.Nil {
		t.Error("expected a generated account id")
	}

	data := decodeData(t, rec)
	if data["name"] != "fleet-ops" {
		t.Errorf("expected created account in response, got %v", data)
	}
}

func TestCreateAccountHandler_MissingName(t *testing.T) {
	s := &mockStore{createAccountFn: func(ctx context.Context, account *models.Account) error {
		t.Fatal("store must not be called")
		return nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader([]byte(`{}`)))
	rec := serve(http.MethodPost, "/accounts", NewCreateAccountHandler(s), req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateAccountHandler_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader([]byte(`{not json`)))
	rec := serve(http.MethodPost, "/accounts", NewCreateAccountHandler(&mockStore{}), req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListAccountsHandler(t *testing.T) {
	s := &mockStore{listAccountsFn: func(ctx context.Context) ([]*models.Account, error) {
		return []*models.Account{
			{ID: uuid.New(), Name: "default", CreatedAt: time.Now().UTC()},
			{ID: uuid.New(), Name: "fleet-ops", CreatedAt: time.Now().UTC()},
		}, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	rec := serve(http.MethodGet, "/accounts", NewListAccountsHandler(s), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var env struct {
		Data []models.Account `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 2 {
		t.Errorf("expected 2 accounts, got %d", len(env.Data))
	}
}

func TestListAccountsHandler_EmptyIsArray(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	rec := serve(http.MethodGet, "/accounts", NewListAccountsHandler(&mockStore{}), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(env.Data) != "[]" {
		t.Errorf("expected empty JSON array, got %s", env.Data)
	}
}

func TestListSyncRunsHandler(t *testing.T) {
	accountID := uuid.New()
	var gotLimit int
	s := &mockStore{listSyncRunsFn: func(ctx context.Context, id uuid.UUID, limit int) ([]*models.SyncRun, error) {
		gotLimit = limit
		return []*models.SyncRun{
			{ID: uuid.New(), AccountID: id, Status: models.SyncRunStatusSuccess},
		}, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/syncs?limit=5", nil)
	rec := serve(http.MethodGet, "/accounts/{accountID}/syncs", NewListSyncRunsHandler(s), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotLimit != 5 {
		t.Errorf("expected limit 5, got %d", gotLimit)
	}
	var env struct {
		Data []models.SyncRun `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 1 {
		t.Errorf("expected 1 run, got %d", len(env.Data))
	}
}
