package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Revenn0/trackwatch/internal/api/response"
	"github.com/Revenn0/trackwatch/internal/cache"
	"github.com/Revenn0/trackwatch/internal/mailbox"
	"github.com/Revenn0/trackwatch/internal/rollup"
	"github.com/Revenn0/trackwatch/internal/syncer"
	"github.com/google/uuid"
)

// BatchRunner is the orchestration interface the sync handler depends on.
type BatchRunner interface {
	RunBatch(ctx context.Context, accountID uuid.UUID, limit int) (*syncer.Progress, error)
}

// NewSyncHandler returns the handler for POST /api/v1/accounts/{accountID}/sync.
// One request runs exactly one batch; the caller loops until completed=true.
// Every well-formed request gets a well-formed progress object or a structured
// error — never an unhandled fault.
func NewSyncHandler(accounts AccountGetter, runner BatchRunner, c cache.Cache, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := accountFromRequest(w, r, accounts)
		if !ok {
			return
		}

		limit := defaultLimit
		var req struct {
			Limit int `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Limit > 0 {
			limit = req.Limit
		}
		if limit > 100 {
			limit = 100
		}

		progress, err := runner.RunBatch(r.Context(), accountID, limit)
		if err != nil {
			switch {
			case errors.Is(err, mailbox.ErrRelayTimeout):
				response.Error(w, http.StatusGatewayTimeout, "MAILBOX_TIMEOUT",
					"The mail relay took too long to respond", nil)
			case errors.Is(err, mailbox.ErrRelayUnreachable), errors.Is(err, mailbox.ErrRelayQueryError):
				response.Error(w, http.StatusBadGateway, "MAILBOX_UNAVAILABLE",
					"The mail relay is not available", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		if progress.NewAlerts > 0 {
			dropRollupCache(r.Context(), c, accountID)
		}

		response.JSON(w, progress)
	}
}

// dropRollupCache invalidates every cached sort variant of the account's device
// rollups after new alerts landed. Failures only shorten cache freshness, so
// they are logged and ignored.
func dropRollupCache(ctx context.Context, c cache.Cache, accountID uuid.UUID) {
	for _, mode := range rollup.SortModes {
		if err := c.Delete(ctx, cache.DeviceRollupKey(accountID, mode)); err != nil {
			slog.Warn("rollup cache invalidation failed", "account_id", accountID, "error", err)
			return
		}
	}
}
