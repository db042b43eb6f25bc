package handler

import (
	"net/http"

	"github.com/Revenn0/trackwatch/internal/api/response"
	"github.com/Revenn0/trackwatch/internal/store"
	"github.com/Revenn0/trackwatch/pkg/models"
)

// NewListSyncRunsHandler returns the handler for
// GET /api/v1/accounts/{accountID}/syncs, newest runs first.
func NewListSyncRunsHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := accountFromRequest(w, r, s)
		if !ok {
			return
		}

		limit := intParam(r.URL.Query().Get("limit"), 20)
		if limit > 100 {
			limit = 100
		}

		runs, err := s.ListSyncRuns(r.Context(), accountID, limit)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list sync runs", nil)
			return
		}
		if runs == nil {
			runs = []*models.SyncRun{}
		}

		response.JSON(w, runs)
	}
}
