// Package rollup groups persisted alerts by device into derived rollup views for
// presentation. Rollups are computed on demand from the current record set and
// never stored.
package rollup

import (
	"sort"
	"strings"
	"time"

	"github.com/Revenn0/trackwatch/internal/classify"
	"github.com/Revenn0/trackwatch/pkg/models"
)

// UnknownDevice is the grouping bucket for alerts whose body carried no tracker
// name.
const UnknownDevice = "Unknown"

// Sort modes accepted by SortBy.
const (
	SortPriority = "priority"
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortDevice   = "device"
	SortCount    = "count"
)

// SortModes lists every mode SortBy accepts.
var SortModes = []string{SortPriority, SortNewest, SortOldest, SortDevice, SortCount}

// Aggregate groups alerts by device name and derives one rollup per device:
// alert count, distinct alert types, the most recent alert by alert time (ties
// broken by input order), and the severity of the distinct type set. The sum of
// all rollup counts always equals len(alerts). Returns an empty slice for empty
// input, never nil.
func Aggregate(alerts []*models.Alert, rules classify.Rules) []models.DeviceRollup {
	if len(alerts) == 0 {
		return []models.DeviceRollup{}
	}

	type deviceState struct {
		serial    string
		count     int
		types     map[string]bool
		typeOrder []string
		latest    *models.Alert
	}

	groups := make(map[string]*deviceState)
	order := make([]string, 0)

	for _, a := range alerts {
		name := a.DeviceName
		if name == "" {
			name = UnknownDevice
		}

		ds, exists := groups[name]
		if !exists {
			ds = &deviceState{types: make(map[string]bool)}
			groups[name] = ds
			order = append(order, name)
		}

		ds.count++
		if a.DeviceSerial != "" {
			ds.serial = a.DeviceSerial
		}
		if a.AlertType != "" && !ds.types[a.AlertType] {
			ds.types[a.AlertType] = true
			ds.typeOrder = append(ds.typeOrder, a.AlertType)
		}
		if newerThan(a, ds.latest) {
			ds.latest = a
		}
	}

	rollups := make([]models.DeviceRollup, 0, len(groups))
	for _, name := range order {
		ds := groups[name]
		r := models.DeviceRollup{
			DeviceName:   name,
			DeviceSerial: ds.serial,
			AlertCount:   ds.count,
			AlertTypes:   ds.typeOrder,
			LatestAlert:  ds.latest,
			Severity:     rules.Classify(ds.types),
		}
		if ds.latest != nil && ds.latest.AlertTime != nil {
			r.LatestAt = ds.latest.AlertTime
		}
		rollups = append(rollups, r)
	}

	return rollups
}

// newerThan reports whether candidate should replace current as the latest
// alert. Alerts without a parsed time never displace one that has a time, and
// on equal times the earlier-seen alert wins.
func newerThan(candidate, current *models.Alert) bool {
	if current == nil {
		return true
	}
	switch {
	case candidate.AlertTime == nil:
		return false
	case current.AlertTime == nil:
		return true
	default:
		return candidate.AlertTime.After(*current.AlertTime)
	}
}

// SortBy orders rollups in place by the given mode. All sorts are stable over
// the same rollup list; an unrecognized mode falls back to priority order.
func SortBy(rollups []models.DeviceRollup, mode string) {
	switch mode {
	case SortNewest:
		sort.SliceStable(rollups, func(i, j int) bool {
			return laterTime(rollups[i]).After(laterTime(rollups[j]))
		})
	case SortOldest:
		sort.SliceStable(rollups, func(i, j int) bool {
			return laterTime(rollups[i]).Before(laterTime(rollups[j]))
		})
	case SortDevice:
		sort.SliceStable(rollups, func(i, j int) bool {
			return strings.ToLower(rollups[i].DeviceName) < strings.ToLower(rollups[j].DeviceName)
		})
	case SortCount:
		sort.SliceStable(rollups, func(i, j int) bool {
			return rollups[i].AlertCount > rollups[j].AlertCount
		})
	default:
		sort.SliceStable(rollups, func(i, j int) bool {
			if rollups[i].Severity != rollups[j].Severity {
				return classify.MoreSevere(rollups[i].Severity, rollups[j].Severity)
			}
			return rollups[i].AlertCount > rollups[j].AlertCount
		})
	}
}

func laterTime(r models.DeviceRollup) time.Time {
	if r.LatestAt != nil {
		return *r.LatestAt
	}
	return time.Time{}
}
