package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/Revenn0/trackwatch/internal/api/response"
	"github.com/Revenn0/trackwatch/internal/cache"
	"github.com/Revenn0/trackwatch/internal/classify"
	"github.com/Revenn0/trackwatch/internal/rollup"
	"github.com/Revenn0/trackwatch/internal/store"
	"github.com/Revenn0/trackwatch/pkg/models"
)

const rollupCacheTTL = 30 * time.Second

type deviceListResponse struct {
	Devices []models.DeviceRollup `json:"devices"`
	Total   int                   `json:"total"`
}

// NewDeviceRollupsHandler returns the handler for
// GET /api/v1/accounts/{accountID}/devices. Rollups are cached per account
// and sort mode; the cache is invalidated by the sync handler when new
// alerts land.
func NewDeviceRollupsHandler(s store.Store, c cache.Cache, rules classify.Rules) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := accountFromRequest(w, r, s)
		if !ok {
			return
		}

		sortMode := r.URL.Query().Get("sort")
		if sortMode == "" {
			sortMode = rollup.SortPriority
		}
		if !slices.Contains(rollup.SortModes, sortMode) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Unknown sort mode: "+sortMode, nil)
			return
		}

		cacheKey := cache.DeviceRollupKey(accountID, sortMode)
		if cached, found, err := c.Get(r.Context(), cacheKey); err == nil && found {
			var resp deviceListResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				response.JSON(w, resp)
				return
			}
		}

		alerts, err := s.ListAlertsByAccount(r.Context(), accountID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load alerts", nil)
			return
		}

		devices := rollup.Aggregate(alerts, rules)
		rollup.SortBy(devices, sortMode)
		if devices == nil {
			devices = []models.DeviceRollup{}
		}
		resp := deviceListResponse{Devices: devices, Total: len(devices)}

		if payload, err := json.Marshal(resp); err == nil {
			if err := c.Set(r.Context(), cacheKey, payload, rollupCacheTTL); err != nil {
				slog.Warn("failed to cache device rollups", "error", err)
			}
		}

		response.JSON(w, resp)
	}
}
