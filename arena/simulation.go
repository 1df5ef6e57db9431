package arena

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"time"

	"github.com/plus3/acsim/ecs"
)

// Option configures a Simulation.
type Option func(*Simulation)

// WithOutput sets where the round and result lines are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Simulation) { s.out = w }
}

// WithLogger sets the diagnostics logger. Defaults to a logger that discards.
func WithLogger(l *log.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// WithFormula replaces the DefaultFormula.
func WithFormula(f Formula) Option {
	return func(s *Simulation) { s.formula = f }
}

// Standing is a pilot's win count at the end of a run.
type Standing struct {
	Name string
	Wins int
}

// Result summarises a run.
type Result struct {
	Survivor    string
	HasSurvivor bool
	Rounds      int
	Frames      uint64
	History     []RoundResult
	Standings   []Standing
}

// Simulation wires the arena systems onto an ECS scheduler.
type Simulation struct {
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	rules     GameRules
	out       io.Writer
	log       *log.Logger
	formula   Formula
}

// New validates cfg (after filling defaults) and builds a ready-to-run Simulation.
func New(cfg Config, opts ...Option) (*Simulation, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("arena: %w", err)
	}

	sim := &Simulation{
		rules:   cfg.Rules,
		out:     os.Stdout,
		log:     log.New(io.Discard, "", 0),
		formula: DefaultFormula{},
	}
	for _, opt := range opts {
		opt(sim)
	}

	sim.storage = ecs.NewStorage(NewRegistry())
	ecs.NewSingleton(sim.storage, CombatFormula{Formula: sim.formula})

	sim.scheduler = ecs.NewScheduler(sim.storage)
	sim.scheduler.RegisterStartup(&StartupSystem{rules: cfg.Rules, pilots: cfg.Pilots, log: sim.log})
	sim.scheduler.Register(&SpawnLoadoutSystem{log: sim.log})
	sim.scheduler.Register(&NewRoundSystem{out: sim.out, log: sim.log})
	sim.scheduler.Register(&CombatSystem{log: sim.log})
	sim.scheduler.Register(&RoundSummarySystem{out: sim.out, log: sim.log})
	sim.scheduler.Register(&ScoreCheckSystem{log: sim.log})
	sim.scheduler.Register(&SimulationOverSystem{out: sim.out})
	return sim, nil
}

// Step runs a single frame and reports whether the simulation wants more.
func (s *Simulation) Step() bool {
	if s.scheduler.ExitRequested() {
		return false
	}
	s.scheduler.Once(0)
	return !s.scheduler.ExitRequested()
}

// Run steps the simulation until it finishes or ctx is cancelled. A zero interval
// runs frames back to back. The partial result is returned alongside ctx.Err().
func (s *Simulation) Run(ctx context.Context, interval time.Duration) (Result, error) {
	s.log.Printf("running with max wins %d, max turns %d, max rounds %d, seed %d",
		s.rules.MaxWins, s.rules.MaxTurns, s.rules.MaxRounds, s.rules.Seed)
	err := s.scheduler.Run(ctx, interval)
	return s.Result(), err
}

// Result reports the current outcome. It may be called mid-run.
func (s *Simulation) Result() Result {
	result := Result{Frames: s.scheduler.Frame()}

	var state *GameState
	if s.storage.ReadSingleton(&state) {
		result.Survivor = state.SurvivingPilot
		result.HasSurvivor = state.HasSurvivor
		result.Rounds = state.CurrentRound
	}
	var history *History
	if s.storage.ReadSingleton(&history) {
		result.History = slices.Clone(history.Rounds)
	}

	for pilot := range ecs.NewView[struct{ *Pilot }](s.storage).Values() {
		result.Standings = append(result.Standings, Standing{Name: pilot.Name, Wins: pilot.Wins})
	}
	slices.SortFunc(result.Standings, func(a, b Standing) int { return cmp.Compare(a.Name, b.Name) })
	return result
}

// Stats returns the scheduler's per-system timings.
func (s *Simulation) Stats() *ecs.SchedulerStats {
	return s.scheduler.GetStats()
}

// Storage exposes the underlying ECS storage.
func (s *Simulation) Storage() *ecs.Storage {
	return s.storage
}
