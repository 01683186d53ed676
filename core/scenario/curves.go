package scenario

import (
	"context"
	"math"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/alderwick/gridsched/core/prognosis"
	"github.com/alderwick/gridsched/core/units"
)

// decodeConf fills out, from conf's json-tagged fields, also accepting
// RFC3339 timestamps and Go duration strings for time.Time/time.Duration
// fields, since factory.Decode's plain mapstructure.Decode does not.
func decodeConf(conf map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(conf)
}

type constantPriceConf struct {
	ValueEuroPerWh float64 `json:"value_euro_per_wh"`
}

func newConstantPriceProvider(conf map[string]any) (prognosis.PriceProvider, error) {
	var c constantPriceConf
	if err := decodeConf(conf, &c); err != nil {
		return nil, err
	}
	v := units.EuroPerWh(c.ValueEuroPerWh)
	return prognosis.ProviderFunc[units.EuroPerWh](
		func(context.Context, time.Time, time.Time) (units.EuroPerWh, error) {
			return v, nil
		}), nil
}

type stepPriceConf struct {
	Reference  time.Time     `json:"reference"`
	StepPeriod time.Duration `json:"step_period"`
	Low        float64       `json:"low_euro_per_wh"`
	High       float64       `json:"high_euro_per_wh"`
	HighFrom   time.Duration `json:"high_from"` // offset within a period
	HighUntil  time.Duration `json:"high_until"`
}

// newStepPriceProvider builds a price curve that alternates between a low
// and a high rate within each StepPeriod-long cycle, measured from
// Reference, e.g. a day-ahead two-tier tariff.
func newStepPriceProvider(conf map[string]any) (prognosis.PriceProvider, error) {
	var c stepPriceConf
	if err := decodeConf(conf, &c); err != nil {
		return nil, err
	}
	if c.StepPeriod <= 0 {
		c.StepPeriod = 24 * time.Hour
	}
	low := units.EuroPerWh(c.Low)
	high := units.EuroPerWh(c.High)
	return prognosis.ProviderFunc[units.EuroPerWh](
		func(_ context.Context, start, _ time.Time) (units.EuroPerWh, error) {
			offset := start.Sub(c.Reference) % c.StepPeriod
			if offset < 0 {
				offset += c.StepPeriod
			}
			if offset >= c.HighFrom && offset < c.HighUntil {
				return high, nil
			}
			return low, nil
		}), nil
}

type constantGenerationConf struct {
	ValueWatt float64 `json:"value_watt"`
}

func newConstantGenerationProvider(conf map[string]any) (prognosis.GenerationProvider, error) {
	var c constantGenerationConf
	if err := decodeConf(conf, &c); err != nil {
		return nil, err
	}
	watt := units.Watt(c.ValueWatt)
	return prognosis.ProviderFunc[units.WattHour](
		func(_ context.Context, start, end time.Time) (units.WattHour, error) {
			return watt.Over(end.Sub(start)), nil
		}), nil
}

type sineGenerationConf struct {
	Reference  time.Time     `json:"reference"`
	Period     time.Duration `json:"period"`
	PeakWatt   float64       `json:"peak_watt"`
}

// newSineGenerationProvider models a diurnal solar-generation curve: a
// clipped sinusoid peaking at PeakWatt half a Period after Reference
// (solar noon when Reference is a midnight) and zero over the half
// Period centred on Reference, used to give a scenario an on-site
// generation forecast without requiring real data.
func newSineGenerationProvider(conf map[string]any) (prognosis.GenerationProvider, error) {
	var c sineGenerationConf
	if err := decodeConf(conf, &c); err != nil {
		return nil, err
	}
	if c.Period <= 0 {
		c.Period = 24 * time.Hour
	}
	peak := c.PeakWatt
	return prognosis.ProviderFunc[units.WattHour](
		func(_ context.Context, start, end time.Time) (units.WattHour, error) {
			mid := start.Add(end.Sub(start) / 2)
			phase := float64(mid.Sub(c.Reference)%c.Period) / float64(c.Period)
			w := -peak * math.Cos(2*math.Pi*phase)
			if w < 0 {
				w = 0
			}
			return units.Watt(w).Over(end.Sub(start)), nil
		}), nil
}
