package arena

import (
	"errors"
	"fmt"
)

var (
	ErrTooFewPilots   = errors.New("at least two pilots are required")
	ErrDuplicatePilot = errors.New("duplicate pilot name")
	ErrEmptyName      = errors.New("pilot name is empty")
	ErrNegativeStat   = errors.New("part attribute is negative")
	ErrUnknownSlot    = errors.New("unknown part slot")
	ErrInvalidRules   = errors.New("invalid rules")
)

const (
	DefaultMaxWins  = 2
	DefaultMaxTurns = 100
)

// PilotConfig names a pilot and the parts their AC is built from.
type PilotConfig struct {
	Name  string
	Parts []PartSpec
}

// Config is everything needed to build a Simulation.
type Config struct {
	Rules  GameRules
	Pilots []PilotConfig
}

// WithDefaults fills zero rule values. MaxRounds defaults to enough rounds for one
// pilot to reach MaxWins even if every other round is drawn.
func (c Config) WithDefaults() Config {
	if c.Rules.MaxWins == 0 {
		c.Rules.MaxWins = DefaultMaxWins
	}
	if c.Rules.MaxTurns == 0 {
		c.Rules.MaxTurns = DefaultMaxTurns
	}
	if c.Rules.MaxRounds == 0 {
		c.Rules.MaxRounds = 2*c.Rules.MaxWins*len(c.Pilots) + 1
	}
	return c
}

// Validate checks the configuration. The returned error wraps one of the package's
// Err values.
func (c Config) Validate() error {
	if c.Rules.MaxWins < 1 {
		return fmt.Errorf("%w: max wins %d", ErrInvalidRules, c.Rules.MaxWins)
	}
	if c.Rules.MaxTurns < 1 {
		return fmt.Errorf("%w: max turns %d", ErrInvalidRules, c.Rules.MaxTurns)
	}
	if c.Rules.MaxRounds < 1 {
		return fmt.Errorf("%w: max rounds %d", ErrInvalidRules, c.Rules.MaxRounds)
	}
	if len(c.Pilots) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewPilots, len(c.Pilots))
	}

	seen := make(map[string]bool, len(c.Pilots))
	for _, pilot := range c.Pilots {
		if pilot.Name == "" {
			return ErrEmptyName
		}
		if seen[pilot.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicatePilot, pilot.Name)
		}
		seen[pilot.Name] = true

		for i, part := range pilot.Parts {
			if !part.Slot.Valid() {
				return fmt.Errorf("pilot %q part %d: %w: %q", pilot.Name, i, ErrUnknownSlot, part.Slot)
			}
			if part.Armor < 0 || part.Weight < 0 || part.Speed < 0 ||
				part.Accuracy < 0 || part.Damage < 0 || part.Firerate < 0 {
				return fmt.Errorf("pilot %q part %d (%s): %w", pilot.Name, i, part.Slot, ErrNegativeStat)
			}
		}
	}
	return nil
}
