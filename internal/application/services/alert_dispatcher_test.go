package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/careband/postop-triage/internal/domain/entities"
)

type stubMessageSender struct {
	err   error
	calls chan string
}

func (s *stubMessageSender) SendAlert(ctx context.Context, text string) error {
	s.calls <- text
	return s.err
}

type stubEmailSender struct {
	err   error
	calls chan string
}

func (s *stubEmailSender) SendAlert(ctx context.Context, subject, body string) error {
	s.calls <- subject
	return s.err
}

type stubThrottle struct {
	allow bool
	err   error
}

func (s *stubThrottle) Allow(ctx context.Context, patientID string, level entities.SeverityLevel) (bool, error) {
	return s.allow, s.err
}

func waitForCall(t *testing.T, calls chan string) string {
	t.Helper()
	select {
	case call := <-calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("expected a send within 2s")
		return ""
	}
}

func urgentResult() entities.TriageResult {
	return entities.TriageResult{Score: 75, Level: entities.SeverityUrgent, PatientMessage: "m"}
}

func TestDecide_AlertSetIsUrgentAndAbove(t *testing.T) {
	d := NewAlertDispatcher(&stubMessageSender{calls: make(chan string, 1)}, nil, nil, time.Second)
	now := time.Now().UTC()

	tests := []struct {
		level entities.SeverityLevel
		want  bool
	}{
		{entities.SeverityRoutine, false},
		{entities.SeverityReview, false},
		{entities.SeverityUrgent, true},
		{entities.SeverityEmergency, true},
	}

	for _, tt := range tests {
		decision := d.Decide(entities.TriageResult{Level: tt.level}, "r1", "p1", "", now)
		assert.Equal(t, tt.want, decision.ShouldAlert, "level %s", tt.level)
	}
}

func TestDecide_ChannelsReflectConfiguration(t *testing.T) {
	now := time.Now().UTC()

	both := NewAlertDispatcher(
		&stubMessageSender{calls: make(chan string, 1)},
		&stubEmailSender{calls: make(chan string, 1)},
		nil, time.Second,
	)
	decision := both.Decide(urgentResult(), "r1", "p1", "", now)
	assert.Equal(t, []entities.AlertChannel{entities.ChannelTelegram, entities.ChannelEmail}, decision.Channels)

	none := NewAlertDispatcher(nil, nil, nil, time.Second)
	decision = none.Decide(urgentResult(), "r1", "p1", "", now)
	assert.Empty(t, decision.Channels)
}

func TestDecide_TruncatesExcerpt(t *testing.T) {
	d := NewAlertDispatcher(nil, nil, nil, time.Second)
	long := strings.Repeat("đau ", 100)

	decision := d.Decide(urgentResult(), "r1", "p1", long, time.Now().UTC())

	assert.Equal(t, alertExcerptLimit, len([]rune(decision.Payload.Excerpt)))
	assert.True(t, strings.HasPrefix(long, decision.Payload.Excerpt))
}

func TestDispatch_SendsToAllChannels(t *testing.T) {
	messaging := &stubMessageSender{calls: make(chan string, 1)}
	email := &stubEmailSender{calls: make(chan string, 1)}
	d := NewAlertDispatcher(messaging, email, nil, time.Second)

	decision := d.Decide(urgentResult(), "r1", "BN-042", "chảy máu nhiều", time.Now().UTC())
	sent := d.Dispatch(context.Background(), decision)

	assert.True(t, sent)
	text := waitForCall(t, messaging.calls)
	assert.Contains(t, text, "BN-042")
	assert.Contains(t, text, "urgent")
	assert.Contains(t, text, "chảy máu nhiều")

	subject := waitForCall(t, email.calls)
	assert.Contains(t, subject, "urgent")
}

func TestDispatch_ChannelFailureIsIsolated(t *testing.T) {
	messaging := &stubMessageSender{err: errors.New("telegram down"), calls: make(chan string, 1)}
	email := &stubEmailSender{calls: make(chan string, 1)}
	d := NewAlertDispatcher(messaging, email, nil, time.Second)

	decision := d.Decide(urgentResult(), "r1", "p1", "", time.Now().UTC())
	sent := d.Dispatch(context.Background(), decision)

	assert.True(t, sent)
	waitForCall(t, messaging.calls)
	waitForCall(t, email.calls) // email still attempted after telegram failed
}

func TestDispatch_NoAlertForRoutine(t *testing.T) {
	messaging := &stubMessageSender{calls: make(chan string, 1)}
	d := NewAlertDispatcher(messaging, nil, nil, time.Second)

	decision := d.Decide(entities.TriageResult{Level: entities.SeverityRoutine}, "r1", "p1", "", time.Now().UTC())
	sent := d.Dispatch(context.Background(), decision)

	assert.False(t, sent)
	assert.Empty(t, messaging.calls)
}

func TestDispatch_ThrottleSuppressesRepeat(t *testing.T) {
	messaging := &stubMessageSender{calls: make(chan string, 1)}
	d := NewAlertDispatcher(messaging, nil, &stubThrottle{allow: false}, time.Second)

	decision := d.Decide(urgentResult(), "r1", "p1", "", time.Now().UTC())
	sent := d.Dispatch(context.Background(), decision)

	assert.False(t, sent)
	assert.Empty(t, messaging.calls)
}

func TestDispatch_ThrottleFailureFailsOpen(t *testing.T) {
	messaging := &stubMessageSender{calls: make(chan string, 1)}
	d := NewAlertDispatcher(messaging, nil, &stubThrottle{err: errors.New("redis unreachable")}, time.Second)

	decision := d.Decide(urgentResult(), "r1", "p1", "", time.Now().UTC())
	sent := d.Dispatch(context.Background(), decision)

	assert.True(t, sent)
	waitForCall(t, messaging.calls)
}
