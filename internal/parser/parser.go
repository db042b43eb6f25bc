// Package parser extracts structured fields from the semi-structured bodies of
// tracker alert messages. Every field is independently optional: a line that does
// not match its pattern simply leaves the field unset. Parse never fails.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Field patterns compiled once at package init. Bodies are "Label: value" lines
// in no guaranteed order, with inconsistent casing and whitespace.
var (
	reAlertType    = regexp.MustCompile(`(?i)Alert type:\s*(.+)`)
	reTime         = regexp.MustCompile(`(?i)Time:\s*([^(\r\n]+)`)
	reLocation     = regexp.MustCompile(`(?i)Location:\s*(.+)`)
	reCoords       = regexp.MustCompile(`(?i)Latitude,\s*Longitude:\s*(-?[\d.]+)\s*,\s*(-?[\d.]+)`)
	reDeviceSerial = regexp.MustCompile(`(?i)Device Serial Number:\s*(.+)`)
	reTrackerName  = regexp.MustCompile(`(?i)Tracker Name:\s*(.+)`)
	reAccountName  = regexp.MustCompile(`(?i)Account name:\s*(.+)`)
)

// timeLayout is the single timestamp format the tracker vendor emits. Anything
// else is left null rather than guessed.
const timeLayout = "2006-01-02 15:04:05"

// Fields is the result of parsing one message body. Pointer fields are nil when
// the corresponding line was missing or malformed.
type Fields struct {
	AlertType    string
	AlertTime    *time.Time
	Location     string
	Latitude     *float64
	Longitude    *float64
	DeviceSerial string
	DeviceName   string
	AccountName  string
}

// Parse extracts all known fields from a raw message body.
func Parse(body string) Fields {
	var f Fields

	if m := reAlertType.FindStringSubmatch(body); m != nil {
		f.AlertType = strings.TrimSpace(m[1])
	}
	if m := reTime.FindStringSubmatch(body); m != nil {
		if ts, err := time.ParseInLocation(timeLayout, strings.TrimSpace(m[1]), time.UTC); err == nil {
			f.AlertTime = &ts
		}
	}
	if m := reLocation.FindStringSubmatch(body); m != nil {
		f.Location = strings.TrimSpace(m[1])
	}
	if m := reCoords.FindStringSubmatch(body); m != nil {
		// Coordinates are all-or-nothing: a lone latitude would corrupt map
		// pins downstream, so both are discarded unless both parse.
		lat, latErr := strconv.ParseFloat(m[1], 64)
		lon, lonErr := strconv.ParseFloat(m[2], 64)
		if latErr == nil && lonErr == nil {
			f.Latitude = &lat
			f.Longitude = &lon
		}
	}
	if m := reDeviceSerial.FindStringSubmatch(body); m != nil {
		f.DeviceSerial = strings.TrimSpace(m[1])
	}
	if m := reTrackerName.FindStringSubmatch(body); m != nil {
		f.DeviceName = strings.TrimSpace(m[1])
	}
	if m := reAccountName.FindStringSubmatch(body); m != nil {
		f.AccountName = strings.TrimSpace(m[1])
	}

	return f
}
