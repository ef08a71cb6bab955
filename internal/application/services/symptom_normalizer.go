package services

import (
	"strconv"
	"strings"

	"github.com/careband/postop-triage/internal/domain/entities"
)

// Synonym tables for each normalized field. The first present, non-null key
// wins; flat keys are checked before the symptoms/postop sub-objects.
var (
	patientIDKeys  = []string{"patient_id", "patientId", "patient", "id"}
	painKeys       = []string{"pain_scale", "painScale", "pain", "pain_level"}
	bleedingKeys   = []string{"bleeding_status", "bleedingStatus", "bleeding"}
	tempKeys       = []string{"temperature_c", "temperatureC", "temperature", "temp", "fever_c"}
	purulenceKeys  = []string{"purulence", "pus", "discharge"}
	breathingKeys  = []string{"breathing_difficulty", "breathingDifficulty", "dyspnea", "short_of_breath"}
	daysPostOpKeys = []string{"days_post_op", "daysPostOp", "days_since_surgery", "post_op_day"}
	freeTextKeys   = []string{"free_text", "freeText", "notes", "message", "description", "symptom_text"}
	languageKeys   = []string{"language", "lang"}

	nestedKeys = []string{"symptoms", "postop"}
)

// affirmativeTokens are string values treated as a positive boolean signal
var affirmativeTokens = map[string]bool{
	"yes": true, "true": true, "y": true, "1": true,
	"active": true, "present": true, "co": true, "có": true,
}

// activeBleedingTokens escalate bleeding from present to active
var activeBleedingTokens = map[string]bool{
	"active": true, "heavy": true, "continuous": true,
	"severe": true, "nhiều": true,
}

// NormalizeReport coerces a raw report into NormalizedSignals. It is a
// best-effort extraction, not a validator: any combination of missing,
// extra, or misnamed fields yields defaults rather than an error, and an
// empty report normalizes to the all-defaults signal set.
func NormalizeReport(raw entities.RawReport) entities.NormalizedSignals {
	signals := entities.NormalizedSignals{
		Bleeding: entities.BleedingNone,
		Language: "en",
	}

	if raw == nil {
		return signals
	}

	signals.PatientID = coerceString(resolve(raw, patientIDKeys))
	signals.PainScale = clampFloat(coerceFloat(resolve(raw, painKeys)), 0, 10)
	signals.Bleeding = coerceBleeding(resolve(raw, bleedingKeys))
	signals.Purulence = coerceBool(resolve(raw, purulenceKeys))
	signals.BreathingDifficulty = coerceBool(resolve(raw, breathingKeys))

	if days := coerceFloat(resolve(raw, daysPostOpKeys)); days > 0 {
		signals.DaysPostOp = days
	}

	if v := resolve(raw, tempKeys); v != nil {
		if temp, ok := coerceFloatStrict(v); ok {
			signals.TemperatureC = &temp
		}
	}

	signals.FreeText = strings.ToLower(strings.TrimSpace(coerceString(resolve(raw, freeTextKeys))))

	if lang := strings.ToLower(coerceString(resolve(raw, languageKeys))); lang == "vi" {
		signals.Language = "vi"
	}

	return signals
}

// resolve returns the first present, non-null value for any of the synonym
// keys, checking the flat map first and then the nested sub-objects.
func resolve(raw entities.RawReport, keys []string) interface{} {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
	}
	for _, nested := range nestedKeys {
		sub, ok := raw[nested].(map[string]interface{})
		if !ok {
			continue
		}
		for _, key := range keys {
			if v, ok := sub[key]; ok && v != nil {
				return v
			}
		}
	}
	return nil
}

func coerceString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// coerceFloat parses a numeric value, returning 0 on failure or absence
func coerceFloat(v interface{}) float64 {
	f, _ := coerceFloatStrict(v)
	return f
}

// coerceFloatStrict parses a numeric value and reports whether it was usable
func coerceFloatStrict(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func coerceBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return affirmativeTokens[strings.ToLower(strings.TrimSpace(b))]
	case float64:
		return b != 0
	default:
		return false
	}
}

func coerceBleeding(v interface{}) entities.BleedingStatus {
	switch b := v.(type) {
	case bool:
		if b {
			return entities.BleedingPresent
		}
	case string:
		token := strings.ToLower(strings.TrimSpace(b))
		if activeBleedingTokens[token] {
			return entities.BleedingActive
		}
		if affirmativeTokens[token] {
			return entities.BleedingPresent
		}
	case float64:
		if b != 0 {
			return entities.BleedingPresent
		}
	}
	return entities.BleedingNone
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
