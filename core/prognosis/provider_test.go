package prognosis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alderwick/gridsched/core/grid"
	"github.com/alderwick/gridsched/core/solveerr"
	"github.com/alderwick/gridsched/core/units"
)

func TestSamplerSample(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g, err := grid.New(base, 4, time.Hour)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	price := ProviderFunc[units.EuroPerWh](func(_ context.Context, start, _ time.Time) (units.EuroPerWh, error) {
		if start.Hour() < 2 {
			return units.EuroPerWh(10), nil
		}
		return units.EuroPerWh(1), nil
	})
	s := Sampler{Price: price}
	sampled, err := s.Sample(context.Background(), g)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	want := []units.EuroPerWh{10, 10, 1, 1}
	for i, w := range want {
		if sampled.Price[i] != w {
			t.Fatalf("price[%d] = %v, want %v", i, sampled.Price[i], w)
		}
		if sampled.Generation[i] != 0 {
			t.Fatalf("generation[%d] = %v, want 0", i, sampled.Generation[i])
		}
	}
}

func TestSamplerSamplePropagatesFailure(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g, _ := grid.New(base, 2, time.Hour)
	boom := errors.New("boom")
	price := ProviderFunc[units.EuroPerWh](func(context.Context, time.Time, time.Time) (units.EuroPerWh, error) {
		return 0, boom
	})
	s := Sampler{Price: price}
	_, err := s.Sample(context.Background(), g)
	if !errors.Is(err, solveerr.ErrPrognosisUnavailable) {
		t.Fatalf("expected ErrPrognosisUnavailable, got %v", err)
	}
}
