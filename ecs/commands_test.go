package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/acsim/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type equipSystem struct {
	Bare ecs.Query[struct {
		ecs.EntityId
		*Callsign
		Children *ecs.Children `ecs:"without"`
	}]
	equipped int
}

func (s *equipSystem) Execute(frame *ecs.UpdateFrame) {
	for pilot := range s.Bare.Values() {
		s.equipped++
		frame.Commands.SpawnChildren(pilot.EntityId,
			[]any{Plating{Value: 3000}, Mass{Kilos: 1000}},
			[]any{Plating{Value: 500}, Mass{Kilos: 500}},
			[]any{Ammo(100), Mass{Kilos: 1000}},
		)
	}
}

func TestCommandsDeferStructuralChanges(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Plating{Value: 1}, Overheated{})
	victim := storage.Spawn(Plating{Value: 2})
	victimRef := storage.CreateEntityRef(victim)

	frame := &ecs.UpdateFrame{Commands: &ecs.Commands{}, Storage: storage}
	frame.Commands.RemoveComponent(id, reflect.TypeFor[Overheated]())
	frame.Commands.AddComponent(id, Mass{Kilos: 10})
	frame.Commands.Delete(victim)
	frame.Commands.Spawn(Callsign{Value: "new"})

	var order []string
	frame.Commands.Defer(func() { order = append(order, "defer") })
	frame.Commands.SpawnWith(func(ecs.EntityId) { order = append(order, "spawned") }, Plating{Value: 3})

	assert.Equal(t, 6, frame.Commands.Len())
	assert.True(t, storage.Alive(victim))
	assert.True(t, storage.HasComponent(id, reflect.TypeFor[Overheated]()))

	ref := storage.CreateEntityRef(id)
	frame.Commands.Flush(storage)

	assert.Equal(t, 0, frame.Commands.Len())
	assert.False(t, victimRef.Valid())
	assert.False(t, storage.HasComponent(ref.Id, reflect.TypeFor[Overheated]()))
	assert.Equal(t, 10, ecs.ReadComponent[Mass](storage, ref.Id).Kilos)
	assert.Equal(t, []string{"spawned", "defer"}, order)
	assert.Equal(t, 3, storage.Len())
}

func TestCommandsSkipDeletedEntities(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Plating{Value: 1})

	commands := &ecs.Commands{}
	commands.Delete(id)
	commands.AddComponent(id, Mass{Kilos: 1})
	commands.RemoveComponent(id, reflect.TypeFor[Plating]())
	commands.SpawnChildren(id, []any{Plating{Value: 2}})
	commands.Flush(storage)

	assert.Equal(t, 0, storage.Len())
}

func TestCommandsSpawnChildren(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	equip := &equipSystem{}
	scheduler.Register(equip)

	storage.Spawn(Callsign{Value: "Blue Rain"})
	storage.Spawn(Callsign{Value: "Ninebreaker"})

	scheduler.Once(0)
	assert.Equal(t, 2, equip.equipped)

	scheduler.Once(0)
	assert.Equal(t, 2, equip.equipped, "equipped pilots no longer match the without filter")

	pilots := ecs.NewQuery[struct {
		ecs.EntityId
		*Callsign
		*ecs.Children
	}](storage)
	pilots.Execute()
	require.Equal(t, 2, pilots.Count())

	for pilot := range pilots.Values() {
		children := storage.ChildrenOf(pilot.EntityId)
		require.Len(t, children, 3)

		total := 0
		for _, child := range children {
			total += ecs.ReadComponent[Mass](storage, child).Kilos
			parent, ok := storage.ParentOf(child)
			assert.True(t, ok)
			assert.Equal(t, pilot.EntityId, parent)
		}
		assert.Equal(t, 2500, total)
		assert.Equal(t, 3000, ecs.ReadComponent[Plating](storage, children[0]).Value)
	}
}

func TestCommandsDeleteRecursive(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	pilot := storage.Spawn(Callsign{Value: "gone"})

	commands := &ecs.Commands{}
	commands.SpawnChildren(pilot, []any{Plating{Value: 1}}, []any{Plating{Value: 2}})
	commands.Flush(storage)
	assert.Equal(t, 3, storage.Len())

	var id ecs.EntityId
	for pid, item := range ecs.NewView[struct{ *Callsign }](storage).Iter() {
		if item.Callsign.Value == "gone" {
			id = pid
		}
	}

	commands.DeleteRecursive(id)
	commands.Flush(storage)
	assert.Equal(t, 0, storage.Len())
}
