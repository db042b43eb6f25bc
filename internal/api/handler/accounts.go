package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Revenn0/trackwatch/internal/api/response"
	"github.com/Revenn0/trackwatch/internal/store"
	"github.com/Revenn0/trackwatch/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AccountGetter resolves account ids; every per-account handler checks the
// account exists before doing work.
type AccountGetter interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// accountFromRequest parses the accountID route parameter and verifies the
// account exists, writing the error response itself when it does not.
func accountFromRequest(w http.ResponseWriter, r *http.Request, accounts AccountGetter) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "accountID must be a UUID", nil)
		return uuid.Nil, false
	}

	if _, err := accounts.GetAccount(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Account not found", nil)
			return uuid.Nil, false
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
		return uuid.Nil, false
	}

	return id, true
}

// NewCreateAccountHandler returns the handler for POST /api/v1/accounts.
func NewCreateAccountHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name           string `json:"name"`
			MailboxAddress string `json:"mailbox_address"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}

		account := &models.Account{
			ID:             uuid.New(),
			Name:           req.Name,
			MailboxAddress: req.MailboxAddress,
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.CreateAccount(r.Context(), account); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account", nil)
			return
		}

		response.Created(w, account)
	}
}

// NewListAccountsHandler returns the handler for GET /api/v1/accounts.
func NewListAccountsHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := s.ListAccounts(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list accounts", nil)
			return
		}
		if accounts == nil {
			accounts = []*models.Account{}
		}
		response.JSON(w, accounts)
	}
}
