package arena

import "github.com/plus3/acsim/ecs"

// Pilot is a competitor. Its AC parts are attached as children.
type Pilot struct {
	Name string
	Wins int
}

// Weight affects the movement of the AC, in kilos.
type Weight struct {
	Value int
}

// Armor is the damage a part can absorb. Max is restored at the start of each round.
type Armor struct {
	Value int
	Max   int
}

type Damage struct {
	Value int
}

// Firerate is rounds per ten turns; a pilot fires ceil(Firerate/10) shots per turn.
type Firerate struct {
	Value int
}

type Accuracy struct {
	Value int
}

type Speed struct {
	Value int
}

// Slot names the body position a part occupies.
type Slot string

const (
	SlotCore   Slot = "core"
	SlotHead   Slot = "head"
	SlotArms   Slot = "arms"
	SlotLegs   Slot = "legs"
	SlotWeapon Slot = "weapon"
)

// Slots lists the body slots in assembly order.
var Slots = []Slot{SlotCore, SlotHead, SlotArms, SlotLegs, SlotWeapon}

// Valid reports whether s is one of the known slots.
func (s Slot) Valid() bool {
	for _, known := range Slots {
		if s == known {
			return true
		}
	}
	return false
}

// Part tags a child entity as an AC body part.
type Part struct {
	Slot Slot
	Name string
}

// Destroyed tags a part whose armor has been shot down to zero this round.
type Destroyed struct{}

// Loadout holds the parts a pilot will be equipped with.
type Loadout struct {
	Parts []PartSpec
}

// Weapon bundles the firing attributes of a weapon part.
type Weapon struct {
	Damage   Damage
	Firerate Firerate
	Accuracy Accuracy
}

// Components flattens the bundle for spawning.
func (w Weapon) Components() []any {
	return []any{w.Damage, w.Firerate, w.Accuracy}
}

// PartSpec describes one part before it is spawned. Zero attributes are left off
// the spawned entity, except that a weapon always carries the full Weapon bundle.
type PartSpec struct {
	Slot     Slot
	Name     string
	Armor    int
	Weight   int
	Speed    int
	Accuracy int
	Damage   int
	Firerate int
}

// Bundle returns the components to spawn for the part.
func (p PartSpec) Bundle() []any {
	bundle := []any{Part{Slot: p.Slot, Name: p.Name}}
	if p.Armor > 0 {
		bundle = append(bundle, Armor{Value: p.Armor, Max: p.Armor})
	}
	if p.Weight > 0 {
		bundle = append(bundle, Weight{Value: p.Weight})
	}
	if p.Speed > 0 {
		bundle = append(bundle, Speed{Value: p.Speed})
	}

	if p.Slot == SlotWeapon {
		weapon := Weapon{
			Damage:   Damage{Value: p.Damage},
			Firerate: Firerate{Value: p.Firerate},
			Accuracy: Accuracy{Value: p.Accuracy},
		}
		return append(bundle, weapon.Components()...)
	}

	if p.Accuracy > 0 {
		bundle = append(bundle, Accuracy{Value: p.Accuracy})
	}
	if p.Damage > 0 {
		bundle = append(bundle, Damage{Value: p.Damage})
	}
	if p.Firerate > 0 {
		bundle = append(bundle, Firerate{Value: p.Firerate})
	}
	return bundle
}

// NewRegistry registers every component the simulation spawns.
func NewRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Pilot](registry)
	ecs.RegisterComponent[Loadout](registry)
	ecs.RegisterComponent[Part](registry)
	ecs.RegisterComponent[Armor](registry)
	ecs.RegisterComponent[Weight](registry)
	ecs.RegisterComponent[Speed](registry)
	ecs.RegisterComponent[Accuracy](registry)
	ecs.RegisterComponent[Damage](registry)
	ecs.RegisterComponent[Firerate](registry)
	ecs.RegisterComponent[Destroyed](registry)
	return registry
}
