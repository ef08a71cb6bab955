package services

import (
	"math"
	"strings"

	"github.com/careband/postop-triage/internal/domain/entities"
)

// Rule weights. Tunable, but documented and stable: a single severe signal
// (active bleeding, breathing difficulty, high fever) must be enough to
// reach the top tier on its own, which the hard overrides guarantee.
const (
	weightPain      = 0.25 // max 25 points at pain 10/10
	weightBleeding  = 0.30 // active bleeding, 30 points
	weightFever     = 0.20 // max 20 points at >= 40.0 C
	weightPurulence = 0.15 // fixed 15 points when present
	weightDaysPost  = 0.05 // max 5 points at >= 30 days

	bleedingPresentPoints = 12 // non-active bleeding
	feverBoostPoints      = 10 // any temperature >= feverOverrideC
	feverBaselineC        = 36.0
	feverRangeC           = 4.0
	feverOverrideC        = 38.0
	painOverrideScale     = 8.0
	daysPostOpCapDays     = 30.0
)

// Classification thresholds, highest first
const (
	urgentThreshold = 70
	reviewThreshold = 40
)

// keywordGroup is one row of the canonical free-text signal table. Phrases
// are literal lowercase substrings covering English and Vietnamese terms.
// Groups are additive with the structured contributions and with each other;
// duplicate evidence intentionally reinforces the score. At most one hit per
// group counts.
type keywordGroup struct {
	name    string
	points  float64
	phrases []string
}

// keywordTable is the single source of truth for textual signal weights
var keywordTable = []keywordGroup{
	{"dyspnea", 30, []string{
		"shortness of breath", "difficulty breathing", "can't breathe",
		"cannot breathe", "trouble breathing", "khó thở", "kho tho", "thở gấp",
	}},
	{"bleeding", 20, []string{
		"bleeding", "blood won't stop", "blood wont stop", "chảy máu", "chay mau", "ra máu",
	}},
	{"severe_pain", 20, []string{
		"severe pain", "unbearable pain", "worst pain", "đau dữ dội", "dau du doi", "rất đau",
	}},
	{"fever", 15, []string{
		"fever", "high temperature", "chills", "sốt", "sot cao", "ớn lạnh",
	}},
	{"purulence", 15, []string{
		"pus", "yellow discharge", "foul discharge", "mủ", "chảy mủ", "chay mu",
	}},
	{"swelling", 10, []string{
		"swelling", "swollen", "sưng", "sung to", "phù nề",
	}},
	{"numbness", 10, []string{
		"numbness", "numb", "tingling", "tê", "mất cảm giác", "mat cam giac",
	}},
}

// overridePhrases force the top tier when matched: airway-adjacent symptoms
// are unsafe to under-triage even when the weighted sum lands low.
var overridePhrases = []string{
	"shortness of breath", "difficulty breathing", "can't breathe",
	"cannot breathe", "trouble breathing", "difficulty swallowing",
	"khó thở", "kho tho", "khó nuốt", "kho nuot",
}

// Classify maps normalized signals to a triage score, severity level and
// patient-facing message. Pure and deterministic: no I/O, no clock, no
// randomness; identical signals always yield an identical result.
func Classify(signals entities.NormalizedSignals) entities.TriageResult {
	score := clampScore(scoreSignals(signals))

	level := levelForScore(score)
	if hasOverride(signals) {
		level = entities.SeverityEmergency
	}

	return entities.TriageResult{
		Score:          score,
		Level:          level,
		PatientMessage: patientMessage(level, signals.Language),
	}
}

// scoreSignals sums the independent rule contributions
func scoreSignals(signals entities.NormalizedSignals) float64 {
	total := signals.PainScale / 10 * 100 * weightPain

	switch signals.Bleeding {
	case entities.BleedingActive:
		total += 100 * weightBleeding
	case entities.BleedingPresent:
		total += bleedingPresentPoints
	}

	if signals.TemperatureC != nil {
		temp := *signals.TemperatureC
		frac := clampFloat((temp-feverBaselineC)/feverRangeC, 0, 1)
		total += frac * 100 * weightFever
		if temp >= feverOverrideC {
			total += feverBoostPoints
		}
	}

	if signals.Purulence {
		total += 100 * weightPurulence
	}

	total += math.Min(signals.DaysPostOp/daysPostOpCapDays, 1) * 100 * weightDaysPost

	for _, group := range keywordTable {
		if matchesAny(signals.FreeText, group.phrases) {
			total += group.points
		}
	}

	return total
}

// hasOverride reports whether any hard signal forces the top tier
func hasOverride(signals entities.NormalizedSignals) bool {
	if signals.BreathingDifficulty || signals.Bleeding == entities.BleedingActive {
		return true
	}
	if signals.PainScale >= painOverrideScale {
		return true
	}
	if signals.TemperatureC != nil && *signals.TemperatureC >= feverOverrideC {
		return true
	}
	return matchesAny(signals.FreeText, overridePhrases)
}

func levelForScore(score int) entities.SeverityLevel {
	switch {
	case score >= urgentThreshold:
		return entities.SeverityUrgent
	case score >= reviewThreshold:
		return entities.SeverityReview
	default:
		return entities.SeverityRoutine
	}
}

func matchesAny(text string, phrases []string) bool {
	if text == "" {
		return false
	}
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func clampScore(total float64) int {
	score := int(math.Round(total))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// patientMessages holds one fixed advisory per severity level and language.
// Emergency messages must instruct escalation to emergency services.
var patientMessages = map[entities.SeverityLevel]map[string]string{
	entities.SeverityRoutine: {
		"en": "Your symptoms look like a normal part of recovery. Keep the wound clean and dry, take your prescribed medication, and report again if anything changes.",
		"vi": "Các triệu chứng của bạn có vẻ là một phần bình thường của quá trình hồi phục. Giữ vết mổ sạch và khô, uống thuốc theo đơn, và báo lại nếu có thay đổi.",
	},
	entities.SeverityReview: {
		"en": "Some of your symptoms should be looked at. Please book a follow-up with your clinic within the next few days and keep monitoring the wound.",
		"vi": "Một số triệu chứng của bạn cần được kiểm tra. Vui lòng đặt lịch tái khám với phòng khám trong vài ngày tới và tiếp tục theo dõi vết mổ.",
	},
	entities.SeverityUrgent: {
		"en": "Your symptoms need prompt attention. Please contact your clinic today; our staff have been notified and may reach out to you.",
		"vi": "Các triệu chứng của bạn cần được chú ý sớm. Vui lòng liên hệ phòng khám ngay hôm nay; nhân viên y tế đã được thông báo và có thể liên hệ với bạn.",
	},
	entities.SeverityEmergency: {
		"en": "Your symptoms may be serious. Call emergency services or go to the nearest emergency department now. Do not wait for the clinic to contact you.",
		"vi": "Các triệu chứng của bạn có thể nghiêm trọng. Hãy gọi cấp cứu hoặc đến khoa cấp cứu gần nhất ngay bây giờ. Đừng chờ phòng khám liên hệ với bạn.",
	},
}

// patientMessage selects the advisory by direct lookup on level and language
func patientMessage(level entities.SeverityLevel, language string) string {
	messages, ok := patientMessages[level]
	if !ok {
		messages = patientMessages[entities.SeverityRoutine]
	}
	if msg, ok := messages[language]; ok {
		return msg
	}
	return messages["en"]
}
