package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/careband/postop-triage/internal/domain/entities"
)

const alertThrottleKeyPrefix = "triage:alert:"

// AlertThrottle suppresses repeat staff alerts for the same patient and
// severity level inside a cooldown window, backed by a Redis TTL key.
type AlertThrottle struct {
	client   *redis.Client
	cooldown time.Duration
}

// NewAlertThrottle creates a new alert throttle
func NewAlertThrottle(client *redis.Client, cooldown time.Duration) *AlertThrottle {
	return &AlertThrottle{
		client:   client,
		cooldown: cooldown,
	}
}

// Allow reports whether an alert for this patient and level may go out.
// The first caller inside a window wins the SETNX and alerts; subsequent
// callers are suppressed until the key expires. Reports without a patient
// identifier are never throttled against each other beyond a shared bucket.
func (t *AlertThrottle) Allow(ctx context.Context, patientID string, level entities.SeverityLevel) (bool, error) {
	if patientID == "" {
		patientID = "unknown"
	}
	key := alertThrottleKeyPrefix + patientID + ":" + string(level)

	return t.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), t.cooldown).Result()
}
