package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/careband/postop-triage/internal/domain/entities"
	"github.com/careband/postop-triage/internal/domain/repositories"
)

// TriageOutcome is what the HTTP layer returns to the reporting client.
// AlertSent reflects the dispatch decision after throttling, not delivery
// confirmation: sends are fire-and-forget.
type TriageOutcome struct {
	ReportID  string
	Result    entities.TriageResult
	AlertSent bool
	Channels  []entities.AlertChannel
}

// TriageService runs the full per-request pipeline: normalize, classify,
// decide, dispatch, persist. Stateless across requests.
type TriageService struct {
	dispatcher *AlertDispatcher
	records    repositories.TriageRecordRepository // nil disables persistence
}

// NewTriageService creates a new triage service
func NewTriageService(dispatcher *AlertDispatcher, records repositories.TriageRecordRepository) *TriageService {
	return &TriageService{
		dispatcher: dispatcher,
		records:    records,
	}
}

// ProcessReport triages one raw report. It cannot fail: normalization and
// classification are total functions, and the alert and persistence side
// effects are best-effort and never surface to the caller.
func (s *TriageService) ProcessReport(ctx context.Context, raw entities.RawReport) TriageOutcome {
	reportID := uuid.New().String()

	signals := NormalizeReport(raw)
	result := Classify(signals)

	decision := s.dispatcher.Decide(result, reportID, signals.PatientID, signals.FreeText, time.Now().UTC())
	sent := s.dispatcher.Dispatch(ctx, decision)

	log.Info().
		Str("report_id", reportID).
		Str("patient_id", orUnknown(signals.PatientID)).
		Int("score", result.Score).
		Str("level", string(result.Level)).
		Bool("alert_sent", sent).
		Msg("report triaged")

	if s.records != nil {
		go s.persist(buildRecord(reportID, signals, result, sent))
	}

	return TriageOutcome{
		ReportID:  reportID,
		Result:    result,
		AlertSent: sent,
		Channels:  decision.Channels,
	}
}

// persist writes the audit record detached from the request lifetime.
// Failure is logged and swallowed: persistence must never block or break
// the triage response.
func (s *TriageService) persist(record *entities.TriageRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.records.Create(ctx, record); err != nil {
		log.Error().Err(err).Str("report_id", record.ID).Msg("failed to persist triage record")
	}
}

func buildRecord(reportID string, signals entities.NormalizedSignals, result entities.TriageResult, alerted bool) *entities.TriageRecord {
	return &entities.TriageRecord{
		ID:                  reportID,
		PatientID:           signals.PatientID,
		PainScale:           signals.PainScale,
		Bleeding:            string(signals.Bleeding),
		TemperatureC:        signals.TemperatureC,
		Purulence:           signals.Purulence,
		BreathingDifficulty: signals.BreathingDifficulty,
		DaysPostOp:          signals.DaysPostOp,
		FreeText:            signals.FreeText,
		Score:               result.Score,
		Level:               string(result.Level),
		Alerted:             alerted,
		CreatedAt:           time.Now().UTC(),
	}
}
