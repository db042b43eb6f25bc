package models

import "time"

// DeviceRollup is a derived, non-persisted aggregate of one device's alerts.
// Recomputed on every read so severity always reflects the current record set.
type DeviceRollup struct {
	DeviceName   string     `json:"device_name"`
	DeviceSerial string     `json:"device_serial"`
	AlertCount   int        `json:"alert_count"`
	AlertTypes   []string   `json:"alert_types"`
	LatestAlert  *Alert     `json:"latest_alert,omitempty"`
	LatestAt     *time.Time `json:"latest_at,omitempty"`
	Severity     string     `json:"severity"`
}
