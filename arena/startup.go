package arena

import (
	"log"

	"github.com/plus3/acsim/ecs"
)

// StartupSystem installs the shared resources and spawns one entity per pilot.
// Parts are spawned a frame later by SpawnLoadoutSystem.
type StartupSystem struct {
	rules  GameRules
	pilots []PilotConfig
	log    *log.Logger
}

func (s *StartupSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Storage.AddSingleton(s.rules)
	frame.Storage.AddSingleton(NewDice(s.rules.Seed))
	frame.Storage.AddSingleton(History{})
	// The first frame sees a finished round zero and begins round one.
	frame.Storage.AddSingleton(GameState{RoundOver: true})

	for _, pilot := range s.pilots {
		frame.Commands.Spawn(Pilot{Name: pilot.Name}, Loadout{Parts: pilot.Parts})
		s.log.Printf("pilot %s enters with %d parts", pilot.Name, len(pilot.Parts))
	}
}

// SpawnLoadoutSystem attaches the parts of every pilot that has not been equipped
// yet. A pilot with an empty loadout still gets an (empty) Children component.
type SpawnLoadoutSystem struct {
	Pilots ecs.Query[struct {
		ecs.EntityId
		*Pilot
		*Loadout
		Children *ecs.Children `ecs:"without"`
	}]
	log *log.Logger
}

func (s *SpawnLoadoutSystem) Execute(frame *ecs.UpdateFrame) {
	for pilot := range s.Pilots.Values() {
		bundles := make([][]any, 0, len(pilot.Loadout.Parts))
		for _, part := range pilot.Loadout.Parts {
			bundles = append(bundles, part.Bundle())
		}
		frame.Commands.SpawnChildren(pilot.EntityId, bundles...)
		s.log.Printf("equipping %s with %d parts", pilot.Pilot.Name, len(bundles))
	}
}
