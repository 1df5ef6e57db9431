package arena

import (
	"cmp"
	"fmt"
	"io"
	"log"
	"reflect"
	"slices"

	"github.com/plus3/acsim/ecs"
)

// NewRoundSystem starts the next round once the previous one is over and every
// pilot is equipped. All part armor is restored.
type NewRoundSystem struct {
	State  ecs.Singleton[GameState]
	Pilots ecs.Query[struct {
		*Pilot
		Children *ecs.Children `ecs:"optional"`
	}]
	Parts ecs.Query[struct {
		ecs.EntityId
		*Armor
		Destroyed *Destroyed `ecs:"optional"`
	}]
	out io.Writer
	log *log.Logger
}

func (s *NewRoundSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	if state == nil || !state.RoundOver || state.HasSurvivor || state.Finished {
		return
	}
	if s.Pilots.Count() == 0 {
		return
	}
	for pilot := range s.Pilots.Values() {
		if pilot.Children == nil {
			return
		}
	}

	for part := range s.Parts.Values() {
		part.Armor.Value = part.Armor.Max
		if part.Destroyed != nil {
			frame.Commands.RemoveComponent(part.EntityId, reflect.TypeFor[Destroyed]())
		}
	}

	state.CurrentRound++
	state.Turn = 0
	state.RoundOver = false
	state.RoundActive = true
	fmt.Fprintf(s.out, "Begin round %d\n", state.CurrentRound)
	s.log.Printf("round %d: repaired %d parts", state.CurrentRound, s.Parts.Count())
}

// RoundSummarySystem ends the round when at most one pilot is standing or the turn
// cap is hit, credits the winner and prints every pilot's standing.
type RoundSummarySystem struct {
	Rules   ecs.Singleton[GameRules]
	State   ecs.Singleton[GameState]
	History ecs.Singleton[History]
	Pilots  ecs.Query[equippedPilot]
	out     io.Writer
	log     *log.Logger
}

func (s *RoundSummarySystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	if state == nil || !state.RoundActive {
		return
	}

	fighters := collectFighters(frame.Storage, &s.Pilots)
	var standing []*fighter
	for i := range fighters {
		if fighters[i].totals.Armor > 0 {
			standing = append(standing, &fighters[i])
		}
	}
	timedOut := state.Turn >= s.Rules.Get().MaxTurns
	if len(standing) > 1 && !timedOut {
		return
	}

	result := RoundResult{Round: state.CurrentRound, Turns: state.Turn}
	if winner := roundWinner(standing); winner != nil {
		winner.pilot.Wins++
		result.Winner = winner.pilot.Name
		fmt.Fprintf(s.out, "Round %d won by %s\n", result.Round, result.Winner)
	} else {
		result.Draw = true
		fmt.Fprintf(s.out, "Round %d ended in a draw\n", result.Round)
	}
	if timedOut && len(standing) > 1 {
		s.log.Printf("round %d hit the turn cap of %d", result.Round, state.Turn)
	}

	state.RoundActive = false
	state.RoundOver = true
	if history := s.History.Get(); history != nil {
		history.Rounds = append(history.Rounds, result)
	}

	for _, f := range fighters {
		fmt.Fprintf(s.out, "Pilot %s with %d wins\n", f.pilot.Name, f.pilot.Wins)
		fmt.Fprintf(s.out, "Armor: %d\n", f.totals.Armor)
		fmt.Fprintf(s.out, "Weight: %d\n", f.totals.Weight)
		fmt.Fprintf(s.out, "Speed: %d\n", f.totals.Speed)
	}
}

// roundWinner picks the sole standing pilot, or on a timeout the one with the
// largest share of armor left. Nobody standing or a tie is a draw.
func roundWinner(standing []*fighter) *fighter {
	switch len(standing) {
	case 0:
		return nil
	case 1:
		return standing[0]
	}

	best := slices.MaxFunc(standing, func(a, b *fighter) int {
		return cmp.Compare(a.totals.ArmorPermille(), b.totals.ArmorPermille())
	})
	for _, f := range standing {
		if f != best && f.totals.ArmorPermille() == best.totals.ArmorPermille() {
			return nil
		}
	}
	return best
}

// ScoreCheckSystem declares a survivor once a pilot reaches MaxWins. When the round
// cap is reached the leader survives; a shared lead finishes without a survivor.
type ScoreCheckSystem struct {
	Rules  ecs.Singleton[GameRules]
	State  ecs.Singleton[GameState]
	Pilots ecs.Query[struct{ *Pilot }]
	log    *log.Logger
}

func (s *ScoreCheckSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	if state == nil || state.HasSurvivor || state.Finished {
		return
	}
	rules := s.Rules.Get()

	var pilots []*Pilot
	for p := range s.Pilots.Values() {
		pilots = append(pilots, p.Pilot)
	}
	if len(pilots) == 0 {
		return
	}
	slices.SortFunc(pilots, func(a, b *Pilot) int { return cmp.Compare(a.Name, b.Name) })

	for _, p := range pilots {
		if p.Wins >= rules.MaxWins {
			state.SurvivingPilot = p.Name
			state.HasSurvivor = true
			return
		}
	}

	if !state.RoundOver || state.CurrentRound < rules.MaxRounds {
		return
	}
	leader := slices.MaxFunc(pilots, func(a, b *Pilot) int { return cmp.Compare(a.Wins, b.Wins) })
	for _, p := range pilots {
		if p != leader && p.Wins == leader.Wins {
			s.log.Printf("round cap %d reached with a shared lead of %d wins", rules.MaxRounds, leader.Wins)
			state.Finished = true
			return
		}
	}
	state.SurvivingPilot = leader.Name
	state.HasSurvivor = true
}

// SimulationOverSystem announces the outcome and stops the scheduler.
type SimulationOverSystem struct {
	State ecs.Singleton[GameState]
	out   io.Writer
}

func (s *SimulationOverSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	if state == nil {
		return
	}
	switch {
	case state.HasSurvivor:
		fmt.Fprintf(s.out, "%s survived.\n", state.SurvivingPilot)
	case state.Finished:
		fmt.Fprintln(s.out, "No pilot survived.")
	default:
		return
	}
	frame.Exit()
}
