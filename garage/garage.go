// Package garage reads pilot loadouts and match rules from YAML documents.
package garage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plus3/acsim/arena"
)

// Validation failures wrap the arena sentinels so callers can match either name.
var (
	ErrTooFewPilots   = arena.ErrTooFewPilots
	ErrDuplicatePilot = arena.ErrDuplicatePilot
	ErrNegativeStat   = arena.ErrNegativeStat
	ErrUnknownSlot    = arena.ErrUnknownSlot
)

type RulesSpec struct {
	MaxWins   int    `yaml:"max_wins"`
	MaxTurns  int    `yaml:"max_turns"`
	MaxRounds int    `yaml:"max_rounds"`
	Seed      uint64 `yaml:"seed"`
}

type PartSpec struct {
	Slot     string `yaml:"slot"`
	Name     string `yaml:"name"`
	Armor    int    `yaml:"armor"`
	Weight   int    `yaml:"weight"`
	Speed    int    `yaml:"speed"`
	Accuracy int    `yaml:"accuracy"`
	Damage   int    `yaml:"damage"`
	Firerate int    `yaml:"firerate"`
}

type PilotSpec struct {
	Name  string     `yaml:"name"`
	Parts []PartSpec `yaml:"parts"`
}

// Garage is a loadout document: the rules of the match and the pilots entering it.
type Garage struct {
	Rules  RulesSpec   `yaml:"rules"`
	Pilots []PilotSpec `yaml:"pilots"`
}

// Load reads a garage document from path. An empty path loads the embedded default.
func Load(path string) (*Garage, error) {
	if path == "" {
		g, err := Parse(defaultGarage)
		if err != nil {
			return nil, fmt.Errorf("garage: default: %w", err)
		}
		return g, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("garage: load %s: %w", path, err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("garage: %s: %w", path, err)
	}
	return g, nil
}

// Parse decodes a garage document. Unknown keys are rejected.
func Parse(data []byte) (*Garage, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var g Garage
	if err := dec.Decode(&g); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &g, nil
}

// Config converts the document into an arena configuration. Rule values left at
// zero are filled by arena.Config.WithDefaults.
func (g *Garage) Config() arena.Config {
	cfg := arena.Config{
		Rules: arena.GameRules{
			MaxWins:   g.Rules.MaxWins,
			MaxTurns:  g.Rules.MaxTurns,
			MaxRounds: g.Rules.MaxRounds,
			Seed:      g.Rules.Seed,
		},
		Pilots: make([]arena.PilotConfig, 0, len(g.Pilots)),
	}
	for _, pilot := range g.Pilots {
		pc := arena.PilotConfig{Name: pilot.Name, Parts: make([]arena.PartSpec, 0, len(pilot.Parts))}
		for _, part := range pilot.Parts {
			pc.Parts = append(pc.Parts, arena.PartSpec{
				Slot:     arena.Slot(part.Slot),
				Name:     part.Name,
				Armor:    part.Armor,
				Weight:   part.Weight,
				Speed:    part.Speed,
				Accuracy: part.Accuracy,
				Damage:   part.Damage,
				Firerate: part.Firerate,
			})
		}
		cfg.Pilots = append(cfg.Pilots, pc)
	}
	return cfg
}

// Validate checks the document the same way arena.New will.
func (g *Garage) Validate() error {
	if err := g.Config().WithDefaults().Validate(); err != nil {
		return fmt.Errorf("garage: %w", err)
	}
	return nil
}
