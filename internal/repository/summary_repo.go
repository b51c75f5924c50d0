package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agribuddy/internal/model"
)

// ErrSummaryNotFound is returned when no daily summary exists yet
var ErrSummaryNotFound = errors.New("no summary available")

// SummaryRepo stores the AI-generated daily agronomy summaries
type SummaryRepo struct {
	db *sql.DB
}

// NewSummaryRepo creates the repository
func NewSummaryRepo(db *sql.DB) *SummaryRepo {
	return &SummaryRepo{db: db}
}

// Latest returns the most recent summary
func (r *SummaryRepo) Latest(ctx context.Context) (*model.DailySummary, error) {
	var s model.DailySummary
	err := r.db.QueryRowContext(ctx,
		`SELECT to_char(summary_date, 'YYYY-MM-DD'), avg_temperature, avg_humidity, avg_ph,
                avg_light_intensity, plant_status, diagnosis, recommendation, created_at
         FROM daily_summaries
         ORDER BY summary_date DESC
         LIMIT 1`,
	).Scan(&s.SummaryDate, &s.AvgTemperature, &s.AvgHumidity, &s.AvgPH,
		&s.AvgLightIntensity, &s.PlantStatus, &s.Diagnosis, &s.Recommendation, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest summary: %w", err)
	}
	return &s, nil
}

// Upsert writes the summary for its date, replacing an earlier run
func (r *SummaryRepo) Upsert(ctx context.Context, s *model.DailySummary) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO daily_summaries
            (summary_date, avg_temperature, avg_humidity, avg_ph, avg_light_intensity,
             plant_status, diagnosis, recommendation)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         ON CONFLICT (summary_date) DO UPDATE SET
            avg_temperature = EXCLUDED.avg_temperature,
            avg_humidity = EXCLUDED.avg_humidity,
            avg_ph = EXCLUDED.avg_ph,
            avg_light_intensity = EXCLUDED.avg_light_intensity,
            plant_status = EXCLUDED.plant_status,
            diagnosis = EXCLUDED.diagnosis,
            recommendation = EXCLUDED.recommendation`,
		s.SummaryDate, s.AvgTemperature, s.AvgHumidity, s.AvgPH, s.AvgLightIntensity,
		s.PlantStatus, s.Diagnosis, s.Recommendation)
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}
