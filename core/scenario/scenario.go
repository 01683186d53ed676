// Package scenario loads a complete solve input (loads, batteries, and
// synthetic price/generation curves) from a configuration document,
// using the same factory.Registry pattern the teacher uses to
// instantiate pluggable connectors from a type name and raw config.
package scenario

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/go-viper/mapstructure/v2"

	"github.com/alderwick/gridsched/core/factory"
	"github.com/alderwick/gridsched/core/model"
	"github.com/alderwick/gridsched/core/prognosis"
	"github.com/alderwick/gridsched/core/solvectx"
)

// priceProviders and generationProviders hold the built-in curve types.
// Additional types can be registered by callers before Document.Build
// runs.
var (
	priceProviders      = factory.NewRegistry[prognosis.PriceProvider]()
	generationProviders = factory.NewRegistry[prognosis.GenerationProvider]()
)

func init() {
	mustRegisterPrice("constant", newConstantPriceProvider)
	mustRegisterPrice("step", newStepPriceProvider)
	mustRegisterGeneration("constant", newConstantGenerationProvider)
	mustRegisterGeneration("sine", newSineGenerationProvider)
}

func mustRegisterPrice(name string, f factory.Factory[prognosis.PriceProvider]) {
	if err := priceProviders.Register(name, f); err != nil {
		panic(err)
	}
}

func mustRegisterGeneration(name string, f factory.Factory[prognosis.GenerationProvider]) {
	if err := generationProviders.Register(name, f); err != nil {
		panic(err)
	}
}

// RegisterPriceProvider adds a custom price curve type, keyed by name,
// for use in a Document's "type" field.
func RegisterPriceProvider(name string, f factory.Factory[prognosis.PriceProvider]) error {
	return priceProviders.Register(name, f)
}

// RegisterGenerationProvider adds a custom generation curve type.
func RegisterGenerationProvider(name string, f factory.Factory[prognosis.GenerationProvider]) error {
	return generationProviders.Register(name, f)
}

// Document is the on-disk shape of a scenario file: a start time, a
// timestep, the decision-variable entities, and the price/generation
// curve to sample against.
type Document struct {
	Start time.Time     `json:"start"`
	Delta time.Duration `json:"delta"`
	// End is the horizon end. Required for a battery- or past-action-only
	// scenario, since neither carries a window Document.Build can derive
	// one from; optional otherwise.
	End time.Time `json:"end,omitempty"`

	ConstantActions []model.ConstantAction     `json:"constant_actions"`
	VariableActions []model.VariableAction     `json:"variable_actions"`
	Batteries       []model.Battery            `json:"batteries"`
	PastActions     []model.PastConstantAction `json:"past_actions"`

	Price      factory.ModuleConfig  `json:"price"`
	Generation *factory.ModuleConfig `json:"generation,omitempty"`
}

// Load reads a scenario Document from a YAML or JSON file at path, the
// same layered loading approach config.Load uses for the solver's own
// configuration.
func Load(path string) (Document, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return Document{}, fmt.Errorf("scenario: unsupported format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return Document{}, err
	}
	var doc Document
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:  &doc,
			TagName: "json",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToTimeHookFunc(time.RFC3339),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &doc, unmarshalConf); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Build resolves a Document into a validated solvectx.Context.
func (d Document) Build() (solvectx.Context, error) {
	price, err := priceProviders.Create(d.Price)
	if err != nil {
		return solvectx.Context{}, fmt.Errorf("scenario: price provider: %w", err)
	}

	b := solvectx.New(d.Start, d.Delta).WithPrices(price)
	if !d.End.IsZero() {
		b = b.WithHorizonEnd(d.End)
	}

	if d.Generation != nil {
		gen, err := generationProviders.Create(*d.Generation)
		if err != nil {
			return solvectx.Context{}, fmt.Errorf("scenario: generation provider: %w", err)
		}
		b = b.WithGeneration(gen)
	}

	for _, a := range d.ConstantActions {
		b = b.AddConstantAction(a)
	}
	for _, a := range d.VariableActions {
		b = b.AddVariableAction(a)
	}
	for _, bat := range d.Batteries {
		b = b.AddBattery(bat)
	}
	for _, a := range d.PastActions {
		b = b.AddPastAction(a)
	}

	return b.Build()
}
