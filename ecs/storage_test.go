package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/acsim/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityIdEncoding(t *testing.T) {
	id := ecs.NewEntityId(0xDEADBEEF, 42)
	assert.Equal(t, uint32(0xDEADBEEF), id.ArchetypeId())
	assert.Equal(t, uint32(42), id.Index())
	assert.Equal(t, "deadbeef:42", id.String())
}

func TestSpawnAndGetComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Plating{Value: 3000}, &Mass{Kilos: 1000})

	plating := ecs.ReadComponent[Plating](storage, id)
	require.NotNil(t, plating)
	assert.Equal(t, 3000, plating.Value)

	mass := ecs.ReadComponent[Mass](storage, id)
	require.NotNil(t, mass)
	assert.Equal(t, 1000, mass.Kilos)

	assert.Nil(t, ecs.ReadComponent[Boost](storage, id))
	assert.True(t, storage.HasComponent(id, reflect.TypeFor[Plating]()))
	assert.False(t, storage.HasComponent(id, reflect.TypeFor[Boost]()))
	assert.Equal(t, 1, storage.Len())
}

func TestSpawnPanics(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { storage.Spawn() })
	assert.Panics(t, func() { storage.Spawn(map[string]int{}) })
	assert.Panics(t, func() { storage.Spawn(struct{ Unregistered int }{}) })
}

func TestComponentTypeOrderIndependence(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	a := storage.Spawn(Plating{Value: 1}, Mass{Kilos: 2})
	b := storage.Spawn(Mass{Kilos: 3}, Plating{Value: 4})

	assert.Equal(t, a.ArchetypeId(), b.ArchetypeId())
	assert.Same(t, storage.GetArchetype(Plating{}, Mass{}), storage.GetArchetype(Mass{}, Plating{}))
}

func TestDeleteReusesSlot(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	first := storage.Spawn(Plating{Value: 1})
	second := storage.Spawn(Plating{Value: 2})

	storage.Delete(first)
	assert.False(t, storage.Alive(first))
	assert.True(t, storage.Alive(second))
	assert.Nil(t, ecs.ReadComponent[Plating](storage, first))

	third := storage.Spawn(Plating{Value: 3})
	assert.Equal(t, first.Index(), third.Index())
	assert.Equal(t, 3, ecs.ReadComponent[Plating](storage, third).Value)
	assert.Equal(t, 2, ecs.ReadComponent[Plating](storage, second).Value)
}

func TestComponentPointersSurviveGrowth(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Plating{Value: 7})
	plating := ecs.ReadComponent[Plating](storage, id)

	for i := 0; i < 500; i++ {
		storage.Spawn(Plating{Value: i})
	}

	plating.Value = 99
	assert.Equal(t, 99, ecs.ReadComponent[Plating](storage, id).Value)
	assert.Equal(t, 501, storage.Len())
}

func TestAddComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Plating{Value: 500})
	ref := storage.CreateEntityRef(id)

	newId := storage.AddComponent(id, Boost{Thrust: 4500})
	assert.NotEqual(t, id, newId)
	assert.False(t, storage.Alive(id))
	assert.Equal(t, newId, ref.Id)

	assert.Equal(t, 500, ecs.ReadComponent[Plating](storage, newId).Value)
	assert.Equal(t, 4500, ecs.ReadComponent[Boost](storage, newId).Thrust)
}

func TestAddExistingComponentReplacesInPlace(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Plating{Value: 500}, Overheated{})

	assert.Equal(t, id, storage.AddComponent(id, Plating{Value: 250}))
	assert.Equal(t, id, storage.AddComponent(id, Overheated{}))
	assert.Equal(t, 250, ecs.ReadComponent[Plating](storage, id).Value)
}

func TestAddComponentToDeadEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Plating{Value: 1})
	storage.Delete(id)

	assert.Equal(t, ecs.EntityId(0), storage.AddComponent(id, Mass{Kilos: 1}))
	assert.Equal(t, ecs.EntityId(0), storage.RemoveComponent(id, reflect.TypeFor[Plating]()))
}

func TestRemoveComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Plating{Value: 10}, Overheated{})
	ref := storage.CreateEntityRef(id)

	newId := storage.RemoveComponent(id, reflect.TypeFor[Overheated]())
	assert.Equal(t, newId, ref.Id)
	assert.False(t, storage.HasComponent(newId, reflect.TypeFor[Overheated]()))
	assert.Equal(t, 10, ecs.ReadComponent[Plating](storage, newId).Value)

	// Removing a component the entity lacks is a no-op.
	assert.Equal(t, newId, storage.RemoveComponent(newId, reflect.TypeFor[Boost]()))

	// Removing the last component deletes the entity.
	assert.Equal(t, ecs.EntityId(0), storage.RemoveComponent(newId, reflect.TypeFor[Plating]()))
	assert.False(t, ref.Valid())
	assert.Equal(t, 0, storage.Len())
}

func TestPrimitiveComponents(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Ammo(120), Callsign{Value: "Blue Rain"})

	ammo := ecs.ReadComponent[Ammo](storage, id)
	require.NotNil(t, ammo)
	*ammo -= 20
	assert.Equal(t, Ammo(100), *ecs.ReadComponent[Ammo](storage, id))
}

func TestEntityRefLifecycle(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Callsign{Value: "Ninebreaker"})
	ref := storage.CreateEntityRef(id)
	require.NotNil(t, ref)
	assert.Same(t, ref, storage.CreateEntityRef(id))

	resolved, ok := storage.ResolveEntityRef(ref)
	assert.True(t, ok)
	assert.Equal(t, id, resolved)

	assert.True(t, storage.InvalidateEntityRef(ref))
	assert.False(t, storage.InvalidateEntityRef(ref))
	_, ok = storage.ResolveEntityRef(ref)
	assert.False(t, ok)
	assert.True(t, storage.Alive(id))

	other := storage.CreateEntityRef(id)
	storage.Delete(id)
	assert.False(t, other.Valid())
	assert.Nil(t, storage.CreateEntityRef(id))
}

func TestArchetypeCompactKeepsRefs(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	ids := make([]ecs.EntityId, 0, 10)
	for i := 0; i < 10; i++ {
		ids = append(ids, storage.Spawn(Plating{Value: i}))
	}
	keep := storage.CreateEntityRef(ids[9])
	for _, id := range ids[:5] {
		storage.Delete(id)
	}

	archetype := storage.GetArchetype(Plating{})
	archetype.Compact()

	assert.Equal(t, 5, archetype.Len())
	assert.Equal(t, uint32(4), keep.Id.Index())
	assert.Equal(t, 9, ecs.ReadComponent[Plating](storage, keep.Id).Value)
}

func TestSingletons(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	type Rules struct {
		MaxWins int
	}

	var rules *Rules
	assert.False(t, storage.ReadSingleton(&rules))

	accessor := ecs.NewSingleton[Rules](storage, Rules{MaxWins: 2})
	require.True(t, storage.ReadSingleton(&rules))
	assert.Equal(t, 2, rules.MaxWins)

	// Re-adding overwrites in place so existing accessors see the change.
	storage.AddSingleton(Rules{MaxWins: 3})
	assert.Equal(t, 3, accessor.Get().MaxWins)
	assert.Same(t, rules, accessor.Get())

	assert.Panics(t, func() { storage.ReadSingleton(rules) })
}
