package arena_test

import "github.com/plus3/acsim/arena"

func blueRain() arena.PilotConfig {
	return arena.PilotConfig{
		Name: "Blue Rain",
		Parts: []arena.PartSpec{
			{Slot: arena.SlotCore, Name: "CR-C90U3", Armor: 3000, Weight: 1000},
			{Slot: arena.SlotHead, Name: "CR-H69S", Armor: 500, Weight: 500, Accuracy: 1000},
			{Slot: arena.SlotArms, Name: "CR-A69S", Armor: 1000, Weight: 1000},
			{Slot: arena.SlotLegs, Name: "CR-LH89F", Armor: 1500, Weight: 1500, Speed: 4500},
			{Slot: arena.SlotWeapon, Name: "CR-WR93RL", Weight: 1000, Accuracy: 1000, Damage: 100, Firerate: 100},
		},
	}
}

func ninebreaker() arena.PilotConfig {
	return arena.PilotConfig{
		Name: "Ninebreaker",
		Parts: []arena.PartSpec{
			{Slot: arena.SlotCore, Name: "XCA-B500", Armor: 5000, Weight: 5000},
			{Slot: arena.SlotHead, Name: "XHD-09", Armor: 700, Weight: 700, Accuracy: 500},
			{Slot: arena.SlotArms, Name: "XA-A77", Armor: 2000, Weight: 2000},
			{Slot: arena.SlotLegs, Name: "XL-L15", Armor: 3500, Weight: 3500, Speed: 7500},
			{Slot: arena.SlotWeapon, Name: "XWG-MG880", Weight: 1000, Accuracy: 1000, Damage: 750, Firerate: 17},
		},
	}
}

func duel() arena.Config {
	return arena.Config{
		Rules:  arena.GameRules{MaxWins: 2, Seed: 7},
		Pilots: []arena.PilotConfig{blueRain(), ninebreaker()},
	}
}

// alwaysHit lands every shot for enough damage to strip any part in one hit.
type alwaysHit struct{}

func (alwaysHit) Resolve(attacker, defender arena.Totals) (arena.Exchange, error) {
	return arena.Exchange{HitChance: 100, Damage: 1_000_000}, nil
}
