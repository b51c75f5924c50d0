package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"agribuddy/internal/ai"
	"agribuddy/internal/model"
)

// SummaryProvider runs a prompt with JSON output forced
type SummaryProvider interface {
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// SummaryStore persists daily summaries
type SummaryStore interface {
	Latest(ctx context.Context) (*model.DailySummary, error)
	Upsert(ctx context.Context, s *model.DailySummary) error
}

// DashboardService generates the daily agronomy summary from averaged
// sensor readings. Until the sensor ingestion pipeline lands, the
// averages are simulated the way the dashboard always has.
type DashboardService struct {
	provider SummaryProvider
	store    SummaryStore
}

// NewDashboardService creates the service
func NewDashboardService(provider SummaryProvider, store SummaryStore) *DashboardService {
	return &DashboardService{provider: provider, store: store}
}

// Latest returns the most recent stored summary
func (s *DashboardService) Latest(ctx context.Context) (*model.DailySummary, error) {
	return s.store.Latest(ctx)
}

// analysis is the JSON shape the provider is instructed to return
type analysis struct {
	PlantStatus    string `json:"plant_status"`
	Diagnosis      string `json:"diagnosis"`
	Recommendation string `json:"recommendation"`
}

// Generate asks the text provider for an agronomy analysis of today's
// averages and upserts it under today's date. The provider output is
// parsed defensively: a malformed payload is a provider error, never a
// crash.
func (s *DashboardService) Generate(ctx context.Context) (*model.DailySummary, error) {
	summary := &model.DailySummary{
		SummaryDate:       time.Now().Format("2006-01-02"),
		AvgTemperature:    round2(rand.Float64()*5 + 26),
		AvgHumidity:       round2(rand.Float64()*15 + 65),
		AvgPH:             round2(rand.Float64()*0.5 + 6.0),
		AvgLightIntensity: rand.Intn(2000) + 12000,
	}

	raw, err := s.provider.CompleteJSON(ctx, summaryPrompt(summary))
	if err != nil {
		log.Error().Err(err).Msg("daily summary generation failed")
		return nil, err
	}

	var a analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		log.Error().Err(err).Msg("daily summary payload is not valid JSON")
		return nil, fmt.Errorf("%w: malformed summary payload: %v", ai.ErrProvider, err)
	}
	if a.PlantStatus == "" || a.Diagnosis == "" || a.Recommendation == "" {
		return nil, fmt.Errorf("%w: summary payload missing fields", ai.ErrProvider)
	}

	summary.PlantStatus = a.PlantStatus
	summary.Diagnosis = a.Diagnosis
	summary.Recommendation = a.Recommendation

	if err := s.store.Upsert(ctx, summary); err != nil {
		log.Error().Err(err).Msg("failed to store daily summary")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return summary, nil
}

func summaryPrompt(s *model.DailySummary) string {
	return fmt.Sprintf(`Anda adalah seorang ahli agronomi. Berdasarkan data sensor harian dari sebuah kebun cabai berikut:
- Rata-rata Suhu: %.2f°C
- Rata-rata Kelembapan: %.2f%%
- Rata-rata pH Tanah: %.2f
- Rata-rata Intensitas Cahaya: %d lux

Berikan analisis dalam format JSON. JANGAN tambahkan markdown atau teks lain di luar JSON.
Isi "plant_status" dengan 1-3 kata (contoh: "Tumbuh Optimal", "Sedikit Stres Panas", "Risiko Jamur").
Isi "diagnosis" dengan penjelasan singkat (1-2 kalimat) mengenai kondisi saat ini.
Isi "recommendation" dengan 1-2 tindakan konkret yang bisa dilakukan petani.`,
		s.AvgTemperature, s.AvgHumidity, s.AvgPH, s.AvgLightIntensity)
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}
