package arena

import (
	"cmp"
	"log"
	"slices"

	"github.com/plus3/acsim/ecs"
)

// CombatSystem plays one turn per frame while a round is active. Pilots act in
// order of speed (fastest first, ties by name); each attacks the next standing
// opponent after it in that order.
type CombatSystem struct {
	State   ecs.Singleton[GameState]
	Dice    ecs.Singleton[Dice]
	Formula ecs.Singleton[CombatFormula]
	Pilots  ecs.Query[equippedPilot]
	log     *log.Logger
}

func (s *CombatSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	if state == nil || !state.RoundActive {
		return
	}
	state.Turn++

	fighters := collectFighters(frame.Storage, &s.Pilots)
	fighters = slices.DeleteFunc(fighters, func(f fighter) bool { return f.totals.Armor <= 0 })
	slices.SortStableFunc(fighters, func(a, b fighter) int {
		return cmp.Compare(b.totals.Speed, a.totals.Speed)
	})

	for i := range fighters {
		attacker := &fighters[i]
		if attacker.totals.Armor <= 0 {
			continue
		}
		defender := nextTarget(fighters, i)
		if defender == nil {
			break
		}
		s.attack(frame, attacker, defender)
	}
}

func nextTarget(fighters []fighter, attacker int) *fighter {
	for step := 1; step < len(fighters); step++ {
		candidate := &fighters[(attacker+step)%len(fighters)]
		if candidate.totals.Armor > 0 {
			return candidate
		}
	}
	return nil
}

func (s *CombatSystem) formula() Formula {
	if f := s.Formula.Get(); f != nil && f.Formula != nil {
		return f.Formula
	}
	return DefaultFormula{}
}

func (s *CombatSystem) attack(frame *ecs.UpdateFrame, attacker, defender *fighter) {
	exchange, err := s.formula().Resolve(attacker.totals, defender.totals)
	if err != nil {
		s.log.Printf("formula failed for %s -> %s, using default: %v", attacker.pilot.Name, defender.pilot.Name, err)
		exchange, _ = DefaultFormula{}.Resolve(attacker.totals, defender.totals)
	}

	dice := s.Dice.Get()
	for range attacker.totals.Shots() {
		if defender.totals.Armor <= 0 {
			return
		}
		if dice.Percent() >= exchange.HitChance {
			continue
		}
		defender.totals.Armor -= s.hit(frame, defender, exchange.Damage, dice)
	}
}

// hit applies damage to a random part of the defender that still has armor and
// returns the armor removed.
func (s *CombatSystem) hit(frame *ecs.UpdateFrame, defender *fighter, damage int, dice *Dice) int {
	var targets []ecs.EntityId
	for _, part := range frame.Storage.ChildrenOf(defender.id) {
		if armor := ecs.ReadComponent[Armor](frame.Storage, part); armor != nil && armor.Value > 0 {
			targets = append(targets, part)
		}
	}
	if len(targets) == 0 {
		return 0
	}

	part := targets[dice.Pick(len(targets))]
	armor := ecs.ReadComponent[Armor](frame.Storage, part)
	dealt := min(damage, armor.Value)
	armor.Value -= dealt

	if armor.Value == 0 {
		frame.Commands.AddComponent(part, Destroyed{})
		if p := ecs.ReadComponent[Part](frame.Storage, part); p != nil {
			s.log.Printf("%s lost %s (%s)", defender.pilot.Name, p.Name, p.Slot)
		}
	}
	return dealt
}
