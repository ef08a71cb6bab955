package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/careband/postop-triage/internal/domain/entities"
)

const alertExcerptLimit = 240

// MessageSender delivers a staff alert over a messaging channel
type MessageSender interface {
	SendAlert(ctx context.Context, text string) error
}

// EmailSender delivers a staff alert over a transactional email channel
type EmailSender interface {
	SendAlert(ctx context.Context, subject, body string) error
}

// AlertThrottle suppresses repeat alerts for the same patient and level
// inside a cooldown window. Allow reports whether this alert may go out.
type AlertThrottle interface {
	Allow(ctx context.Context, patientID string, level entities.SeverityLevel) (bool, error)
}

// AlertDispatcher decides whether staff are notified for a triage result and
// performs the best-effort fan-out. Sends run detached from the request:
// their outcome is logged, never returned, and never fails the response.
type AlertDispatcher struct {
	messaging   MessageSender // nil disables the channel
	email       EmailSender   // nil disables the channel
	throttle    AlertThrottle // nil disables throttling
	sendTimeout time.Duration
}

// NewAlertDispatcher creates a dispatcher over the configured channels
func NewAlertDispatcher(messaging MessageSender, email EmailSender, throttle AlertThrottle, sendTimeout time.Duration) *AlertDispatcher {
	if sendTimeout <= 0 {
		sendTimeout = 20 * time.Second
	}
	return &AlertDispatcher{
		messaging:   messaging,
		email:       email,
		throttle:    throttle,
		sendTimeout: sendTimeout,
	}
}

// Decide computes the alert decision for a triage result. Pure: shouldAlert
// is true for every level at or above the second-highest tier, channels are
// the configured channels, and the free-text excerpt is truncated to bound
// transport size.
func (d *AlertDispatcher) Decide(result entities.TriageResult, reportID, patientID, freeText string, now time.Time) entities.AlertDecision {
	return entities.AlertDecision{
		ShouldAlert: result.Level.RequiresStaffAttention(),
		Channels:    d.configuredChannels(),
		Payload: entities.AlertPayload{
			ReportID:  reportID,
			PatientID: patientID,
			Level:     result.Level,
			Score:     result.Score,
			Excerpt:   truncate(freeText, alertExcerptLimit),
			Timestamp: now,
		},
	}
}

// Dispatch sends the alert to every decided channel and reports whether a
// dispatch was actually launched. The throttle is consulted synchronously
// (failing open on errors); the sends themselves run in a detached goroutine
// with an independent timeout so that a cancelled or completed request never
// interrupts an in-flight notification.
func (d *AlertDispatcher) Dispatch(ctx context.Context, decision entities.AlertDecision) bool {
	if !decision.ShouldAlert || len(decision.Channels) == 0 {
		return false
	}

	if d.throttle != nil {
		allowed, err := d.throttle.Allow(ctx, decision.Payload.PatientID, decision.Payload.Level)
		if err != nil {
			log.Warn().Err(err).Str("report_id", decision.Payload.ReportID).
				Msg("alert throttle unavailable, dispatching anyway")
		} else if !allowed {
			log.Info().Str("report_id", decision.Payload.ReportID).
				Str("level", string(decision.Payload.Level)).
				Msg("alert suppressed by cooldown window")
			return false
		}
	}

	go d.send(decision)
	return true
}

// send fans out to each channel, isolating failures: one channel failing
// must not suppress the other channel's attempt.
func (d *AlertDispatcher) send(decision entities.AlertDecision) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	text := formatAlertText(decision.Payload)

	for _, channel := range decision.Channels {
		var err error
		switch channel {
		case entities.ChannelTelegram:
			if d.messaging != nil {
				err = d.messaging.SendAlert(ctx, text)
			}
		case entities.ChannelEmail:
			if d.email != nil {
				err = d.email.SendAlert(ctx, formatAlertSubject(decision.Payload), text)
			}
		}

		if err != nil {
			log.Error().Err(err).
				Str("channel", string(channel)).
				Str("report_id", decision.Payload.ReportID).
				Msg("alert delivery failed")
			continue
		}
		log.Info().
			Str("channel", string(channel)).
			Str("report_id", decision.Payload.ReportID).
			Str("level", string(decision.Payload.Level)).
			Msg("alert delivered")
	}
}

func (d *AlertDispatcher) configuredChannels() []entities.AlertChannel {
	var channels []entities.AlertChannel
	if d.messaging != nil {
		channels = append(channels, entities.ChannelTelegram)
	}
	if d.email != nil {
		channels = append(channels, entities.ChannelEmail)
	}
	return channels
}

func formatAlertSubject(payload entities.AlertPayload) string {
	return fmt.Sprintf("[%s] post-op triage alert — patient %s", payload.Level, orUnknown(payload.PatientID))
}

func formatAlertText(payload entities.AlertPayload) string {
	text := fmt.Sprintf(
		"Post-op triage alert\nPatient: %s\nLevel: %s (score %d)\nReport: %s\nTime: %s",
		orUnknown(payload.PatientID), payload.Level, payload.Score,
		payload.ReportID, payload.Timestamp.Format(time.RFC3339),
	)
	if payload.Excerpt != "" {
		text += "\nSymptoms: " + payload.Excerpt
	}
	return text
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// truncate bounds the excerpt without splitting a multi-byte rune
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
