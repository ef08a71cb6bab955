package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"github.com/careband/postop-triage/internal/domain/entities"
	"github.com/careband/postop-triage/internal/domain/repositories"
	apperrors "github.com/careband/postop-triage/pkg/errors"
)

// TriageRecordAdapter implements the TriageRecordRepository interface
type TriageRecordAdapter struct {
	conn *sqlx.DB
	db   *goqu.Database
}

// NewTriageRecordAdapter creates a new triage record adapter
func NewTriageRecordAdapter(conn *sqlx.DB) repositories.TriageRecordRepository {
	return &TriageRecordAdapter{
		conn: conn,
		db:   goqu.New("postgres", conn.DB),
	}
}

// Create inserts a triage record. Records are append-only audit rows.
func (a *TriageRecordAdapter) Create(ctx context.Context, record *entities.TriageRecord) error {
	row := goqu.Record{
		"id":                   record.ID,
		"patient_id":           record.PatientID,
		"pain_scale":           record.PainScale,
		"bleeding":             record.Bleeding,
		"temperature_c":        record.TemperatureC,
		"purulence":            record.Purulence,
		"breathing_difficulty": record.BreathingDifficulty,
		"days_post_op":         record.DaysPostOp,
		"free_text":            record.FreeText,
		"score":                record.Score,
		"level":                record.Level,
		"alerted":              record.Alerted,
		"created_at":           record.CreatedAt,
	}

	query, args, err := a.db.Insert("triage_reports").Rows(row).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.conn.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create triage record", err)
	}

	return nil
}
