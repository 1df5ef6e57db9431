package ecs

import (
	"reflect"
	"slices"
	"weak"

	"github.com/kamstrup/intmap"
)

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// Archetype represents a unique combination of component types.
// All storages of an archetype grow and shrink together, so a slot index
// addresses the same entity in each of them.
type Archetype struct {
	id       uint32
	types    []reflect.Type
	storages []iComponentStorage
	refs     *intmap.Map[EntityId, weak.Pointer[EntityRef]]
}

// NewArchetype creates a new archetype with the given ID and sorted component types
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:       id,
		types:    types,
		storages: make([]iComponentStorage, len(types)),
		refs:     intmap.New[EntityId, weak.Pointer[EntityRef]](64),
	}

	for idx, typ := range types {
		factory := registry.getFactory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.storages[idx] = factory()
	}

	return a
}

func (a *Archetype) indexOf(compType reflect.Type) int {
	return slices.Index(a.types, compType)
}

// Spawn creates a new entity in this archetype with the given components.
// The components must match the archetype's types one to one.
func (a *Archetype) Spawn(components []any) uint32 {
	storagePos := -1
	for _, comp := range components {
		idx := a.indexOf(componentType(comp))
		if idx == -1 {
			panic("component type " + componentType(comp).String() + " does not belong to archetype")
		}
		pos := a.storages[idx].Append(comp)
		if storagePos != -1 && pos != storagePos {
			panic("archetype storages out of step")
		}
		storagePos = pos
	}

	return uint32(storagePos)
}

// GetComponent returns a pointer to the component of the given type for the entity at
// entityIndex, or nil when the archetype lacks the type or the slot is empty.
func (a *Archetype) GetComponent(entityIndex uint32, compType reflect.Type) any {
	idx := a.indexOf(compType)
	if idx == -1 {
		return nil
	}
	return a.storages[idx].Get(int(entityIndex))
}

// Alive reports whether the slot holds a live entity.
func (a *Archetype) Alive(entityIndex uint32) bool {
	if len(a.storages) == 0 {
		return false
	}
	return a.storages[0].Has(int(entityIndex))
}

// Delete empties the entity's slot and invalidates any EntityRef pointing at it.
// Indices of other entities remain stable.
func (a *Archetype) Delete(entityIndex uint32) {
	entityId := NewEntityId(a.id, entityIndex)

	if weakPtr, ok := a.refs.Get(entityId); ok {
		if ref := weakPtr.Value(); ref != nil {
			ref.Id = 0
			ref.Archetype = nil
		}
		a.refs.Del(entityId)
	}

	for _, storage := range a.storages {
		storage.Delete(int(entityIndex))
	}
}

// HasComponent checks if this archetype has the given component type
func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return a.indexOf(compType) != -1
}

// ID returns the archetype's unique identifier
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the sorted component types for this archetype
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of live entities in the archetype.
func (a *Archetype) Len() int {
	if len(a.storages) == 0 {
		return 0
	}
	return a.storages[0].Len()
}

// Compact reorganizes all component storage to eliminate empty slots.
// EntityRefs remain valid and are updated to the new indices; raw EntityIds do not.
func (a *Archetype) Compact() {
	if len(a.storages) == 0 {
		return
	}

	indexMap := a.storages[0].Compact()
	for i := 1; i < len(a.storages); i++ {
		a.storages[i].Compact()
	}

	moved := make(map[EntityId]weak.Pointer[EntityRef], len(indexMap))
	for oldIdx, newIdx := range indexMap {
		weakPtr, ok := a.refs.Get(NewEntityId(a.id, uint32(oldIdx)))
		if !ok {
			continue
		}
		if ref := weakPtr.Value(); ref != nil {
			newId := NewEntityId(a.id, uint32(newIdx))
			ref.Id = newId
			moved[newId] = weakPtr
		}
	}

	a.refs.Clear()
	for id, weakPtr := range moved {
		a.refs.Put(id, weakPtr)
	}
}

// Iter returns an iterator over all valid EntityIds in this archetype
func (a *Archetype) Iter() func(yield func(EntityId) bool) {
	return func(yield func(EntityId) bool) {
		if len(a.storages) == 0 {
			return
		}

		for index := range a.storages[0].Iter() {
			if !yield(NewEntityId(a.id, uint32(index))) {
				return
			}
		}
	}
}
