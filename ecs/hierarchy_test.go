package ecs_test

import (
	"testing"

	"github.com/plus3/acsim/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddChildren(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	pilot := storage.Spawn(Callsign{Value: "Blue Rain"})
	core := storage.Spawn(Plating{Value: 3000}, Mass{Kilos: 1000})
	legs := storage.Spawn(Plating{Value: 1500}, Boost{Thrust: 4500})

	pilot = storage.AddChildren(pilot, core, legs)
	require.NotZero(t, pilot)

	children := storage.ChildrenOf(pilot)
	require.Len(t, children, 2)
	assert.Equal(t, 3000, ecs.ReadComponent[Plating](storage, children[0]).Value)
	assert.Equal(t, 4500, ecs.ReadComponent[Boost](storage, children[1]).Thrust)

	for _, child := range children {
		parent, ok := storage.ParentOf(child)
		assert.True(t, ok)
		assert.Equal(t, pilot, parent)
	}
}

func TestAddChildrenAppendsAndReparents(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	first := storage.Spawn(Callsign{Value: "first"})
	second := storage.Spawn(Callsign{Value: "second"})
	part := storage.Spawn(Plating{Value: 1})
	partRef := storage.CreateEntityRef(part)

	first = storage.AddChildren(first, part)
	firstRef := storage.CreateEntityRef(first)
	second = storage.AddChildren(second, partRef.Id)

	assert.Empty(t, storage.ChildrenOf(firstRef.Id))
	assert.Equal(t, []ecs.EntityId{partRef.Id}, storage.ChildrenOf(second))

	parent, ok := storage.ParentOf(partRef.Id)
	assert.True(t, ok)
	assert.Equal(t, second, parent)

	extra := storage.Spawn(Plating{Value: 2})
	second = storage.AddChildren(second, extra)
	assert.Len(t, storage.ChildrenOf(second), 2)
}

func TestAddChildrenEmpty(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	pilot := storage.AddChildren(storage.Spawn(Callsign{Value: "bare"}))
	children := ecs.ReadComponent[ecs.Children](storage, pilot)
	require.NotNil(t, children)
	assert.Equal(t, 0, children.Len())
	assert.Empty(t, storage.ChildrenOf(pilot))
}

func TestAddChildrenToSelfPanics(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Callsign{Value: "loop"})
	assert.Panics(t, func() { storage.AddChildren(id, id) })
}

func TestDeleteRecursive(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	root := storage.Spawn(Callsign{Value: "root"})
	arm := storage.Spawn(Plating{Value: 1000})
	weapon := storage.Spawn(Ammo(100))
	armRef := storage.CreateEntityRef(arm)

	arm = storage.AddChildren(arm, weapon)
	root = storage.AddChildren(root, armRef.Id)
	rootRef := storage.CreateEntityRef(root)

	sibling := storage.Spawn(Plating{Value: 5})
	root = storage.AddChildren(root, sibling)

	storage.DeleteRecursive(armRef.Id)

	assert.False(t, armRef.Valid())
	assert.True(t, rootRef.Valid())
	assert.Len(t, storage.ChildrenOf(rootRef.Id), 1)
	assert.Equal(t, 2, storage.Len())

	storage.DeleteRecursive(rootRef.Id)
	assert.Equal(t, 0, storage.Len())
}
