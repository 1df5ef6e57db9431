package arena

import "math/rand/v2"

// GameRules is fixed once the simulation starts.
type GameRules struct {
	// MaxWins is the number of round wins that makes a pilot the survivor.
	MaxWins int
	// MaxTurns ends a round that has not produced a single standing pilot.
	MaxTurns int
	// MaxRounds ends the simulation; the pilot with the most wins survives.
	MaxRounds int
	Seed      uint64
}

// GameState is the shared round bookkeeping mutated by the frame systems.
type GameState struct {
	CurrentRound   int
	Turn           int
	SurvivingPilot string
	HasSurvivor    bool
	RoundOver      bool
	RoundActive    bool
	// Finished is set when the round cap is hit without a survivor.
	Finished bool
}

// RoundResult records how a round ended.
type RoundResult struct {
	Round  int
	Winner string
	Draw   bool
	Turns  int
}

// History is the list of finished rounds.
type History struct {
	Rounds []RoundResult
}

// Dice is the seeded random source used for hit rolls and part targeting.
type Dice struct {
	rng *rand.Rand
}

func NewDice(seed uint64) Dice {
	return Dice{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Percent returns a roll in [0, 100).
func (d *Dice) Percent() int {
	return d.rng.IntN(100)
}

// Pick returns an index in [0, n).
func (d *Dice) Pick(n int) int {
	return d.rng.IntN(n)
}

// CombatFormula holds the formula used by the combat system.
type CombatFormula struct {
	Formula Formula
}
