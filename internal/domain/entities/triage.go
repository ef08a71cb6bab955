package entities

import "time"

// RawReport is the loosely-typed payload posted by the reporting client.
// Keys are unvalidated and may use any of several synonyms; only the
// symptom normalizer is allowed to read it.
type RawReport map[string]interface{}

// SeverityLevel is the ordered triage classification
type SeverityLevel string

const (
	SeverityRoutine   SeverityLevel = "routine"
	SeverityReview    SeverityLevel = "review"
	SeverityUrgent    SeverityLevel = "urgent"
	SeverityEmergency SeverityLevel = "emergency"
)

// Rank returns the ordinal position of the level, lowest severity first
func (s SeverityLevel) Rank() int {
	switch s {
	case SeverityReview:
		return 1
	case SeverityUrgent:
		return 2
	case SeverityEmergency:
		return 3
	default:
		return 0
	}
}

// RequiresStaffAttention reports whether the level is at or above the
// second-highest tier and should page clinical staff.
func (s SeverityLevel) RequiresStaffAttention() bool {
	return s.Rank() >= SeverityUrgent.Rank()
}

// BleedingStatus describes the reported bleeding state
type BleedingStatus string

const (
	BleedingNone    BleedingStatus = "none"
	BleedingPresent BleedingStatus = "present"
	BleedingActive  BleedingStatus = "active"
)

// NormalizedSignals is the clamped, defaulted view of a raw report.
// All numeric fields are already inside their valid ranges; absent or
// unparseable inputs carry their no-signal value instead of an error.
type NormalizedSignals struct {
	PatientID           string
	PainScale           float64 // [0,10]
	Bleeding            BleedingStatus
	TemperatureC        *float64 // nil when not reported
	Purulence           bool
	BreathingDifficulty bool
	DaysPostOp          float64 // >= 0
	FreeText            string  // lowercased
	Language            string  // "en" or "vi"
}

// TriageResult is the classification output for one report
type TriageResult struct {
	Score          int // [0,100]
	Level          SeverityLevel
	PatientMessage string
}

// AlertChannel identifies a configured outbound notification channel
type AlertChannel string

const (
	ChannelTelegram AlertChannel = "telegram"
	ChannelEmail    AlertChannel = "email"
)

// AlertPayload is the bounded staff-facing notification content
type AlertPayload struct {
	ReportID  string
	PatientID string
	Level     SeverityLevel
	Score     int
	Excerpt   string
	Timestamp time.Time
}

// AlertDecision is the per-request dispatch decision. It is computed once
// from the triage result and handed to the dispatcher, never persisted.
type AlertDecision struct {
	ShouldAlert bool
	Channels    []AlertChannel
	Payload     AlertPayload
}

// TriageRecord mirrors the insert-only triage_reports table
type TriageRecord struct {
	ID                  string
	PatientID           string
	PainScale           float64
	Bleeding            string
	TemperatureC        *float64
	Purulence           bool
	BreathingDifficulty bool
	DaysPostOp          float64
	FreeText            string
	Score               int
	Level               string
	Alerted             bool
	CreatedAt           time.Time
}
