package services

import (
	"strconv"
	"strings"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
)

// EvaluateVitalSigns derives per-family indicators from raw vital-sign
// strings. It is a pure function: malformed or absent values contribute
// nothing and never produce an error, because intake forms are free text and
// a typo in a vital must not block detection.
func EvaluateVitalSigns(vitals *entities.VitalSigns) entities.VitalIndicators {
	indicators := entities.VitalIndicators{}
	if vitals.Empty() {
		return indicators
	}

	temperature, hasTemperature := parseVital(vitals.Temperature)
	pulse, hasPulse := parseVital(vitals.Pulse)
	respiratoryRate, hasRespiratoryRate := parseVital(vitals.RespiratoryRate)
	systolic, diastolic, hasBloodPressure := parseBloodPressure(vitals.BloodPressure)

	if hasTemperature && temperature > 37.5 {
		indicators.Febrile = true
	}
	if hasPulse && pulse > 80 {
		indicators.Febrile = true
		indicators.Respiratory = true
		indicators.Gastrointestinal = true
	}
	if hasRespiratoryRate && respiratoryRate > 20 {
		indicators.Respiratory = true
	}
	if hasPulse && (pulse > 100 || pulse < 60) {
		indicators.Cardiovascular = true
	}
	if hasBloodPressure {
		if systolic > 140 || systolic < 90 || diastolic > 90 || diastolic < 60 {
			indicators.Cardiovascular = true
		}
		if systolic < 110 {
			indicators.Gastrointestinal = true
		}
	}

	return indicators
}

// parseVital coerces a free-text measurement into a number, tolerating
// trailing units such as "38.2 C" or "88bpm".
func parseVital(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}

	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// parseBloodPressure splits a "systolic/diastolic" reading. Both halves must
// parse for the reading to count.
func parseBloodPressure(raw string) (systolic, diastolic float64, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(raw), "/", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	systolic, sysOK := parseVital(parts[0])
	diastolic, diaOK := parseVital(parts[1])
	if !sysOK || !diaOK {
		return 0, 0, false
	}
	return systolic, diastolic, true
}
