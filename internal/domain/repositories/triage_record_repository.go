package repositories

import (
	"context"

	"github.com/careband/postop-triage/internal/domain/entities"
)

// TriageRecordRepository persists triage outcomes. Insert-only: records are
// an audit trail, never read back or mutated by the request path.
type TriageRecordRepository interface {
	Create(ctx context.Context, record *entities.TriageRecord) error
}
