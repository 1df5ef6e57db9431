package arena

import (
	"cmp"
	"slices"

	"github.com/plus3/acsim/ecs"
)

// Aggregate sums the attributes of every part attached to the pilot entity.
// A pilot with no parts has all-zero totals.
func Aggregate(storage *ecs.Storage, pilot ecs.EntityId) Totals {
	var t Totals
	for _, part := range storage.ChildrenOf(pilot) {
		t.Parts++
		if armor := ecs.ReadComponent[Armor](storage, part); armor != nil {
			t.Armor += armor.Value
			t.MaxArmor += armor.Max
		}
		if weight := ecs.ReadComponent[Weight](storage, part); weight != nil {
			t.Weight += weight.Value
		}
		if speed := ecs.ReadComponent[Speed](storage, part); speed != nil {
			t.Speed += speed.Value
		}
		if accuracy := ecs.ReadComponent[Accuracy](storage, part); accuracy != nil {
			t.Accuracy += accuracy.Value
		}
		if damage := ecs.ReadComponent[Damage](storage, part); damage != nil {
			t.Damage += damage.Value
		}
		if firerate := ecs.ReadComponent[Firerate](storage, part); firerate != nil {
			t.Firerate += firerate.Value
		}
	}
	return t
}

// fighter is a pilot with its totals as of the current turn.
type fighter struct {
	id     ecs.EntityId
	pilot  *Pilot
	totals Totals
}

type equippedPilot = struct {
	ecs.EntityId
	*Pilot
	*ecs.Children
}

// collectFighters aggregates every equipped pilot, ordered by name.
func collectFighters(storage *ecs.Storage, pilots *ecs.Query[equippedPilot]) []fighter {
	fighters := make([]fighter, 0, pilots.Count())
	for pilot := range pilots.Values() {
		fighters = append(fighters, fighter{
			id:     pilot.EntityId,
			pilot:  pilot.Pilot,
			totals: Aggregate(storage, pilot.EntityId),
		})
	}
	slices.SortFunc(fighters, func(a, b fighter) int {
		return cmp.Compare(a.pilot.Name, b.pilot.Name)
	})
	return fighters
}
