package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Revenn0/trackwatch/internal/api/response"
	"github.com/Revenn0/trackwatch/internal/classify"
	"github.com/Revenn0/trackwatch/internal/rollup"
	"github.com/Revenn0/trackwatch/internal/store"
	"github.com/Revenn0/trackwatch/pkg/models"
)

const dateLayout = "2006-01-02"

// AlertStats is the summary block returned alongside an alert listing.
type AlertStats struct {
	Total         int            `json:"total"`
	Unread        int            `json:"unread"`
	Acknowledged  int            `json:"acknowledged"`
	Categories    map[string]int `json:"categories"`
	HighPriority  int            `json:"high_priority"`
	CrashDetected int            `json:"crash_detected"`
}

type alertListResponse struct {
	Alerts []*models.Alert `json:"alerts"`
	Stats  AlertStats      `json:"stats"`
}

// NewListAlertsHandler returns the handler for
// GET /api/v1/accounts/{accountID}/alerts. Filters: category, start_date,
// end_date (both YYYY-MM-DD, end exclusive at midnight the following day),
// page, limit. The stats block includes device-level severity counts computed
// through the one classifier rule set.
func NewListAlertsHandler(s store.Store, rules classify.Rules) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := accountFromRequest(w, r, s)
		if !ok {
			return
		}

		filter := store.AlertFilter{AccountID: accountID}
		q := r.URL.Query()

		if category := q.Get("category"); category != "" && category != "All" {
			filter.Category = category
		}
		if raw := q.Get("start_date"); raw != "" {
			start, err := time.Parse(dateLayout, raw)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"start_date must be YYYY-MM-DD", nil)
				return
			}
			filter.Since = start
		}
		if raw := q.Get("end_date"); raw != "" {
			end, err := time.Parse(dateLayout, raw)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"end_date must be YYYY-MM-DD", nil)
				return
			}
			filter.Until = end.AddDate(0, 0, 1)
		}
		filter.Page = intParam(q.Get("page"), 1)
		filter.Limit = intParam(q.Get("limit"), 50)

		alerts, total, err := s.ListAlerts(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list alerts", nil)
			return
		}
		if alerts == nil {
			alerts = []*models.Alert{}
		}

		stats, err := buildStats(r, s, filter, total, rules)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to compute alert stats", nil)
			return
		}

		limit := filter.Limit
		if limit <= 0 {
			limit = 50
		}
		response.Collection(w, alertListResponse{Alerts: alerts, Stats: stats}, response.PaginationMeta{
			Page:    filter.Page,
			Limit:   limit,
			Total:   total,
			HasNext: filter.Page*limit < total,
		})
	}
}

func buildStats(r *http.Request, s store.Store, filter store.AlertFilter, total int, rules classify.Rules) (AlertStats, error) {
	stats := AlertStats{Total: total}

	categories, err := s.CountAlertsByType(r.Context(), filter)
	if err != nil {
		return stats, err
	}
	stats.Categories = categories

	stats.Unread, stats.Acknowledged, err = s.CountAlertsByFlag(r.Context(), filter)
	if err != nil {
		return stats, err
	}

	// Device-level severity counts: group the account's alerts by device and
	// classify each device's distinct type set.
	accountAlerts, err := s.ListAlertsByAccount(r.Context(), filter.AccountID)
	if err != nil {
		return stats, err
	}
	for _, device := range rollup.Aggregate(accountAlerts, rules) {
		switch device.Severity {
		case classify.SeverityCrashDetected:
			stats.CrashDetected++
		case classify.SeverityHigh:
			stats.HighPriority++
		}
	}

	return stats, nil
}

func intParam(raw string, defaultVal int) int {
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return defaultVal
	}
	return v
}
