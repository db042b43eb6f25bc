package parser

import "strings"

// Alert categories in display order. CategoryOther is the passthrough bucket for
// vendor strings no rule recognizes.
const (
	CategoryCrashDetected   = "Crash Detected"
	CategoryHeavyImpact     = "Heavy Impact"
	CategoryLightSensor     = "Light Sensor"
	CategoryOutOfCountry    = "Out Of Country"
	CategoryNoCommunication = "No Communication"
	CategoryOverTurn        = "Over-turn"
	CategoryTamperAlert     = "Tamper Alert"
	CategoryLowBattery      = "Low Battery"
	CategoryMotion          = "Motion"
	CategoryNewPositions    = "New Positions"
	CategoryHighRiskArea    = "High Risk Area"
	CategoryCustomGeoFence  = "Custom GeoFence"
	CategoryRotationStop    = "Rotation Stop"
	CategoryTemperature     = "Temperature"
	CategoryPressure        = "Pressure"
	CategoryHumidity        = "Humidity"
	CategoryOther           = "Other"
)

// Categories lists every known category, in the order the presentation layer
// displays them.
var Categories = []string{
	CategoryCrashDetected,
	CategoryHeavyImpact,
	CategoryLightSensor,
	CategoryOutOfCountry,
	CategoryNoCommunication,
	CategoryOverTurn,
	CategoryTamperAlert,
	CategoryLowBattery,
	CategoryMotion,
	CategoryNewPositions,
	CategoryHighRiskArea,
	CategoryCustomGeoFence,
	CategoryRotationStop,
	CategoryTemperature,
	CategoryPressure,
	CategoryHumidity,
	CategoryOther,
}

// categoryRules maps lowercase substrings of the vendor's alert-type strings to
// canonical categories. Order matters: the first match wins.
var categoryRules = []struct {
	substr   string
	category string
}{
	// Heavy Impact alone is not a crash; the crash rule needs Over-turn too
	// and lives in the classify package.
	{"heavy impact", CategoryHeavyImpact},
	{"light sensor", CategoryLightSensor},
	{"out of country", CategoryOutOfCountry},
	{"no communication", CategoryNoCommunication},
	{"over-turn", CategoryOverTurn},
	{"overturn", CategoryOverTurn},
	{"tamper", CategoryTamperAlert},
	{"low battery", CategoryLowBattery},
	{"motion", CategoryMotion},
	{"new position", CategoryNewPositions},
	{"high risk", CategoryHighRiskArea},
	{"geofence", CategoryCustomGeoFence},
	{"rotation", CategoryRotationStop},
	{"temperature", CategoryTemperature},
	{"pressure", CategoryPressure},
	{"humidity", CategoryHumidity},
}

// Categorize maps a raw vendor alert-type string to its canonical category.
func Categorize(alertType string) string {
	lower := strings.ToLower(alertType)
	for _, rule := range categoryRules {
		if strings.Contains(lower, rule.substr) {
			return rule.category
		}
	}
	return CategoryOther
}
