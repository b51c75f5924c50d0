package service

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"agribuddy/internal/ai"
	"agribuddy/internal/model"
)

type fakeSummaryProvider struct {
	payload    string
	err        error
	lastPrompt string
}

func (f *fakeSummaryProvider) CompleteJSON(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.payload, f.err
}

type fakeSummaryStore struct {
	latest    *model.DailySummary
	upserted  *model.DailySummary
	upsertErr error
}

func (f *fakeSummaryStore) Latest(context.Context) (*model.DailySummary, error) {
	return f.latest, nil
}

func (f *fakeSummaryStore) Upsert(_ context.Context, s *model.DailySummary) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = s
	return nil
}

func TestDashboardGenerate(t *testing.T) {
	Convey("DashboardService.Generate", t, func() {
		ctx := context.Background()
		provider := &fakeSummaryProvider{
			payload: `{"plant_status":"Tumbuh Optimal","diagnosis":"Kondisi lingkungan mendukung pertumbuhan.","recommendation":"Pertahankan jadwal penyiraman."}`,
		}
		store := &fakeSummaryStore{}
		svc := NewDashboardService(provider, store)

		Convey("a valid payload is parsed and upserted under today's date", func() {
			sum, err := svc.Generate(ctx)
			So(err, ShouldBeNil)
			So(sum.PlantStatus, ShouldEqual, "Tumbuh Optimal")
			So(sum.Diagnosis, ShouldNotBeEmpty)
			So(sum.Recommendation, ShouldNotBeEmpty)
			So(sum.SummaryDate, ShouldNotBeEmpty)
			So(store.upserted, ShouldEqual, sum)
			So(provider.lastPrompt, ShouldContainSubstring, "format JSON")
		})

		Convey("a non-JSON payload is a provider error, not a crash", func() {
			provider.payload = "maaf, saya tidak bisa membantu"
			_, err := svc.Generate(ctx)
			So(errors.Is(err, ai.ErrProvider), ShouldBeTrue)
			So(store.upserted, ShouldBeNil)
		})

		Convey("a payload with missing fields is rejected", func() {
			provider.payload = `{"plant_status":"Tumbuh Optimal"}`
			_, err := svc.Generate(ctx)
			So(errors.Is(err, ai.ErrProvider), ShouldBeTrue)
		})

		Convey("provider failures propagate", func() {
			provider.err = errors.New("timeout")
			_, err := svc.Generate(ctx)
			So(err, ShouldNotBeNil)
			So(store.upserted, ShouldBeNil)
		})

		Convey("store failures surface as persistence errors", func() {
			store.upsertErr = errors.New("connection reset")
			_, err := svc.Generate(ctx)
			So(errors.Is(err, ErrPersistence), ShouldBeTrue)
		})
	})
}
