package ecs_test

import (
	"testing"

	"github.com/plus3/acsim/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewGet(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Plating{Value: 700}, Mass{Kilos: 700})
	bare := storage.Spawn(Plating{Value: 1})

	view := ecs.NewView[struct {
		*Plating
		*Mass
	}](storage)

	item := view.Get(id)
	require.NotNil(t, item)
	assert.Equal(t, 700, item.Plating.Value)
	assert.Equal(t, 700, item.Mass.Kilos)

	item.Plating.Value = 0
	assert.Equal(t, 0, ecs.ReadComponent[Plating](storage, id).Value)

	assert.Nil(t, view.Get(bare))
	assert.Nil(t, view.Get(ecs.NewEntityId(12345, 0)))
}

func TestViewEntityIdField(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	a := storage.Spawn(Callsign{Value: "a"})
	b := storage.Spawn(Callsign{Value: "b"}, Mass{Kilos: 1})

	view := ecs.NewView[struct {
		ecs.EntityId
		*Callsign
	}](storage)

	seen := map[string]ecs.EntityId{}
	for id, item := range view.Iter() {
		assert.Equal(t, id, item.EntityId)
		seen[item.Callsign.Value] = item.EntityId
	}
	assert.Equal(t, map[string]ecs.EntityId{"a": a, "b": b}, seen)

	named := ecs.NewView[struct {
		Self ecs.EntityId
		*Callsign
	}](storage)
	assert.Equal(t, b, named.Get(b).Self)
}

func TestViewOptional(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	withBoost := storage.Spawn(Plating{Value: 1500}, Boost{Thrust: 4500})
	without := storage.Spawn(Plating{Value: 3000})

	view := ecs.NewView[struct {
		*Plating
		Boost *Boost `ecs:"optional"`
	}](storage)

	item := view.Get(withBoost)
	require.NotNil(t, item)
	require.NotNil(t, item.Boost)
	assert.Equal(t, 4500, item.Boost.Thrust)

	item = view.Get(without)
	require.NotNil(t, item)
	assert.Nil(t, item.Boost)

	count := 0
	for range view.Values() {
		count++
	}
	assert.Equal(t, 2, count)
}

func TestViewWithout(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	cool := storage.Spawn(Plating{Value: 1})
	hot := storage.Spawn(Plating{Value: 2}, Overheated{})

	view := ecs.NewView[struct {
		*Plating
		Overheated *Overheated `ecs:"without"`
	}](storage)

	assert.NotNil(t, view.Get(cool))
	assert.Nil(t, view.Get(hot))

	var values []int
	for item := range view.Values() {
		assert.Nil(t, item.Overheated)
		values = append(values, item.Plating.Value)
	}
	assert.Equal(t, []int{1}, values)
}

func TestViewGetRef(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Plating{Value: 5})
	ref := storage.CreateEntityRef(id)

	view := ecs.NewView[struct{ *Plating }](storage)

	storage.AddComponent(id, Mass{Kilos: 9})
	item := view.GetRef(ref)
	require.NotNil(t, item)
	assert.Equal(t, 5, item.Plating.Value)

	storage.Delete(ref.Id)
	assert.Nil(t, view.GetRef(ref))
}

func TestViewIterEarlyBreak(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	for i := 0; i < 10; i++ {
		storage.Spawn(Plating{Value: i})
	}

	view := ecs.NewView[struct{ *Plating }](storage)
	count := 0
	for range view.Iter() {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestViewSpawn(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	view := ecs.NewView[struct {
		ecs.EntityId
		*Plating
		Mass *Mass `ecs:"optional"`
	}](storage)

	id := view.Spawn(struct {
		ecs.EntityId
		*Plating
		Mass *Mass `ecs:"optional"`
	}{Plating: &Plating{Value: 42}})

	item := view.Get(id)
	require.NotNil(t, item)
	assert.Equal(t, 42, item.Plating.Value)
	assert.Nil(t, item.Mass)

	assert.Panics(t, func() {
		view.Spawn(struct {
			ecs.EntityId
			*Plating
			Mass *Mass `ecs:"optional"`
		}{})
	})
}

func TestViewInvalidDefinitions(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { ecs.NewView[int](storage) })
	assert.Panics(t, func() { ecs.NewView[struct{ Plating }](storage) })
	assert.Panics(t, func() {
		ecs.NewView[struct {
			Plating *Plating `ecs:"sometimes"`
		}](storage)
	})
	assert.Panics(t, func() {
		ecs.NewView[struct {
			ecs.EntityId
			Plating *Plating `ecs:"optional"`
		}](storage)
	})
}

func TestQueryCaching(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(Plating{Value: 1})

	query := ecs.NewQuery[struct{ *Plating }](storage)
	assert.Panics(t, func() {
		for range query.Iter() {
		}
	})

	query.Execute()
	assert.Equal(t, 1, query.Count())

	storage.Spawn(Plating{Value: 2}, Mass{Kilos: 1})
	assert.Equal(t, 1, query.Count())

	query.Execute()
	assert.Equal(t, 2, query.Count())

	total := 0
	for item := range query.Values() {
		total += item.Plating.Value
	}
	assert.Equal(t, 3, total)
}
