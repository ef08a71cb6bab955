package handlers

import (
	"crypto/hmac"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/careband/postop-triage/internal/application/services"
	"github.com/careband/postop-triage/internal/domain/entities"
	"github.com/careband/postop-triage/internal/infrastructure/observability"
)

const maxReportBodyBytes = 1 << 20 // 1 MiB

// SymptomReportHandler handles the post-operative symptom report webhook
type SymptomReportHandler struct {
	service   *services.TriageService
	authToken string
	metrics   *observability.Metrics
}

// NewSymptomReportHandler creates a new symptom report handler
func NewSymptomReportHandler(service *services.TriageService, authToken string, metrics *observability.Metrics) *SymptomReportHandler {
	return &SymptomReportHandler{
		service:   service,
		authToken: authToken,
		metrics:   metrics,
	}
}

// alertStatus reports the dispatch decision, not delivery confirmation:
// sends are best-effort and detached from the request.
type alertStatus struct {
	Sent     bool     `json:"sent"`
	Channels []string `json:"channels"`
}

// reportResponse is the stable 200 response shape
type reportResponse struct {
	ReportID       string      `json:"report_id"`
	Score          int         `json:"score"`
	Level          string      `json:"level"`
	PatientMessage string      `json:"patient_message"`
	Alert          alertStatus `json:"alert"`
}

// HandleReport processes POST /api/v1/reports.
//
// Body policy is strict: an unreadable, empty, or non-JSON body is a 400.
// A syntactically valid but empty object is accepted and triages to the
// all-defaults signal set.
func (h *SymptomReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Fail closed: without a configured server secret the endpoint is down,
	// it never degrades to accepting unauthenticated reports.
	if h.authToken == "" {
		logger := observability.LoggerFromContext(ctx)
		logger.Error().Msg("WEBHOOK_AUTH_TOKEN is not configured, refusing request")
		writeError(w, http.StatusInternalServerError, "service misconfigured")
		return
	}

	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "invalid or missing credential")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxReportBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "empty body")
		return
	}

	var raw entities.RawReport
	if err := json.Unmarshal(body, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	ctx, span := observability.StartSpan(ctx, "triage.process_report")
	outcome := h.service.ProcessReport(ctx, raw)
	span.End()

	if h.metrics != nil {
		observability.RecordTriageMetric(ctx, h.metrics, string(outcome.Result.Level), outcome.AlertSent)
	}

	channels := make([]string, 0, len(outcome.Channels))
	if outcome.AlertSent {
		for _, channel := range outcome.Channels {
			channels = append(channels, string(channel))
		}
	}

	writeJSON(w, http.StatusOK, reportResponse{
		ReportID:       outcome.ReportID,
		Score:          outcome.Result.Score,
		Level:          string(outcome.Result.Level),
		PatientMessage: outcome.Result.PatientMessage,
		Alert: alertStatus{
			Sent:     outcome.AlertSent,
			Channels: channels,
		},
	})
}

// authorized compares the bearer token against the pre-shared secret in
// constant time.
func (h *SymptomReportHandler) authorized(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return hmac.Equal([]byte(token), []byte(h.authToken))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
