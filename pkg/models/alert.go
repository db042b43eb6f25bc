package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AlertStatusNew          = "new"
	AlertStatusInProgress   = "in_progress"
	AlertStatusResolved     = "resolved"
	AlertStatusFalsePositive = "false_positive"
)

// Alert is one parsed tracker event. The pair (AccountID, SourceMessageID) is
// globally unique; re-ingesting the same message is a no-op, never a duplicate row.
// Extracted fields are independently optional: a field that failed to parse is nil
// or empty, never guessed.
type Alert struct {
	ID              uuid.UUID  `db:"id"                json:"id"`
	AccountID       uuid.UUID  `db:"account_id"        json:"account_id"`
	SourceMessageID string     `db:"source_message_id" json:"source_message_id"`
	AlertType       string     `db:"alert_type"        json:"alert_type"`
	AlertTime       *time.Time `db:"alert_time"        json:"alert_time,omitempty"`
	Location        string     `db:"location"          json:"location"`
	Latitude        *float64   `db:"latitude"          json:"latitude,omitempty"`
	Longitude       *float64   `db:"longitude"         json:"longitude,omitempty"`
	DeviceSerial    string     `db:"device_serial"     json:"device_serial"`
	DeviceName      string     `db:"device_name"       json:"device_name"`
	AccountName     string     `db:"account_name"      json:"account_name"`
	RawBody         string     `db:"raw_body"          json:"raw_body"`

	// Lifecycle fields owned by the presentation layer once the row exists.
	// Ingestion writes their defaults at insert and never overwrites them.
	Status         string     `db:"status"          json:"status"`
	Acknowledged   bool       `db:"acknowledged"    json:"acknowledged"`
	AcknowledgedAt *time.Time `db:"acknowledged_at" json:"acknowledged_at,omitempty"`
	AcknowledgedBy *string    `db:"acknowledged_by" json:"acknowledged_by,omitempty"`
	Notes          *string    `db:"notes"           json:"notes,omitempty"`
	AssignedTo     *string    `db:"assigned_to"     json:"assigned_to,omitempty"`
	Favorite       bool       `db:"favorite"        json:"favorite"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
