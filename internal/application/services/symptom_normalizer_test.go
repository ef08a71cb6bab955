package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/careband/postop-triage/internal/domain/entities"
)

func TestNormalizeReport_EmptyReport(t *testing.T) {
	signals := NormalizeReport(entities.RawReport{})

	assert.Empty(t, signals.PatientID)
	assert.Zero(t, signals.PainScale)
	assert.Equal(t, entities.BleedingNone, signals.Bleeding)
	assert.Nil(t, signals.TemperatureC)
	assert.False(t, signals.Purulence)
	assert.False(t, signals.BreathingDifficulty)
	assert.Zero(t, signals.DaysPostOp)
	assert.Empty(t, signals.FreeText)
	assert.Equal(t, "en", signals.Language)
}

func TestNormalizeReport_NilReport(t *testing.T) {
	signals := NormalizeReport(nil)
	assert.Equal(t, entities.BleedingNone, signals.Bleeding)
	assert.Equal(t, "en", signals.Language)
}

func TestNormalizeReport_SynonymKeysYieldSameSignals(t *testing.T) {
	canonical := NormalizeReport(entities.RawReport{
		"patient_id":   "BN-042",
		"pain_scale":   float64(6),
		"bleeding":     "yes",
		"temperature":  37.8,
		"days_post_op": float64(4),
		"free_text":    "Some swelling around the wound",
	})

	synonyms := NormalizeReport(entities.RawReport{
		"patientId": "BN-042",
		"pain":      "6",
		"symptoms": map[string]interface{}{
			"bleeding_status": "true",
			"temp":            "37.8",
			"post_op_day":     4,
		},
		"notes": "Some swelling around the wound",
	})

	assert.Equal(t, canonical, synonyms)
}

func TestNormalizeReport_FlatKeyWinsOverNested(t *testing.T) {
	signals := NormalizeReport(entities.RawReport{
		"pain": float64(3),
		"symptoms": map[string]interface{}{
			"pain_scale": float64(9),
		},
	})

	assert.Equal(t, float64(3), signals.PainScale)
}

func TestNormalizeReport_ClampsAndDefaults(t *testing.T) {
	signals := NormalizeReport(entities.RawReport{
		"pain_scale":   float64(14),
		"days_post_op": float64(-2),
		"temperature":  "not-a-number",
		"bleeding":     "maybe",
	})

	assert.Equal(t, float64(10), signals.PainScale)
	assert.Zero(t, signals.DaysPostOp)
	assert.Nil(t, signals.TemperatureC)
	assert.Equal(t, entities.BleedingNone, signals.Bleeding)
}

func TestNormalizeReport_BleedingCoercion(t *testing.T) {
	tests := []struct {
		value interface{}
		want  entities.BleedingStatus
	}{
		{"active", entities.BleedingActive},
		{"heavy", entities.BleedingActive},
		{"yes", entities.BleedingPresent},
		{"TRUE", entities.BleedingPresent},
		{true, entities.BleedingPresent},
		{"no", entities.BleedingNone},
		{nil, entities.BleedingNone},
	}

	for _, tt := range tests {
		signals := NormalizeReport(entities.RawReport{"bleeding": tt.value})
		assert.Equal(t, tt.want, signals.Bleeding, "bleeding=%v", tt.value)
	}
}

func TestNormalizeReport_FreeTextLowercased(t *testing.T) {
	signals := NormalizeReport(entities.RawReport{
		"description": "  SEVERE Pain near the incision ",
	})

	assert.Equal(t, "severe pain near the incision", signals.FreeText)
}

func TestNormalizeReport_LanguageSelection(t *testing.T) {
	assert.Equal(t, "vi", NormalizeReport(entities.RawReport{"lang": "vi"}).Language)
	assert.Equal(t, "en", NormalizeReport(entities.RawReport{"lang": "fr"}).Language)
	assert.Equal(t, "en", NormalizeReport(entities.RawReport{}).Language)
}

func TestNormalizeReport_NumericStrings(t *testing.T) {
	signals := NormalizeReport(entities.RawReport{
		"pain":        "7.5",
		"temperature": "38.2",
		"purulence":   "yes",
		"dyspnea":     "true",
	})

	assert.Equal(t, 7.5, signals.PainScale)
	if assert.NotNil(t, signals.TemperatureC) {
		assert.Equal(t, 38.2, *signals.TemperatureC)
	}
	assert.True(t, signals.Purulence)
	assert.True(t, signals.BreathingDifficulty)
}
