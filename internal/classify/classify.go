// Package classify derives a severity for a device from the set of distinct
// alert types it has accumulated. Classification is a pure function recomputed
// on every read, never stored.
package classify

import "github.com/Revenn0/trackwatch/internal/parser"

// Severity tiers, lowest to highest.
const (
	SeverityNormal        = "normal"
	SeverityHigh          = "high"
	SeverityCrashDetected = "crash_detected"
)

// Rules is the severity predicate applied to a device's alert-type set.
// CrashPair are the two types that must both be present for the crash tier;
// Critical is the subset where any single member raises the device to high.
type Rules struct {
	CrashPair [2]string
	Critical  []string
}

// DefaultRules returns the current production rule set: a crash is Over-turn
// together with Heavy Impact, and any of Over-turn, Heavy Impact, or
// No Communication alone is high priority.
func DefaultRules() Rules {
	return Rules{
		CrashPair: [2]string{parser.CategoryOverTurn, parser.CategoryHeavyImpact},
		Critical: []string{
			parser.CategoryOverTurn,
			parser.CategoryHeavyImpact,
			parser.CategoryNoCommunication,
		},
	}
}

// WithCrashPair returns a copy of r with the crash pair replaced.
func (r Rules) WithCrashPair(pair [2]string) Rules {
	r.CrashPair = pair
	return r
}

// Classify maps a set of distinct alert types to a severity. The empty set is
// normal.
func (r Rules) Classify(alertTypes map[string]bool) string {
	if alertTypes[r.CrashPair[0]] && alertTypes[r.CrashPair[1]] {
		return SeverityCrashDetected
	}
	for _, critical := range r.Critical {
		if alertTypes[critical] {
			return SeverityHigh
		}
	}
	return SeverityNormal
}

// ClassifySlice is Classify over a slice of alert types, deduplicating first.
func (r Rules) ClassifySlice(alertTypes []string) string {
	set := make(map[string]bool, len(alertTypes))
	for _, t := range alertTypes {
		set[t] = true
	}
	return r.Classify(set)
}

// rank orders severities for sorting; higher is more urgent.
func rank(severity string) int {
	switch severity {
	case SeverityCrashDetected:
		return 2
	case SeverityHigh:
		return 1
	default:
		return 0
	}
}

// MoreSevere reports whether severity a outranks severity b.
func MoreSevere(a, b string) bool {
	return rank(a) > rank(b)
}
