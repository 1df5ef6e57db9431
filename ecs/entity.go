package ecs

import "fmt"

// EntityId encodes both the archetype ID (upper 32 bits) and the entity index (lower 32 bits).
// An id changes whenever the entity moves between archetypes; hold an EntityRef to follow it.
type EntityId uint64

// NewEntityId creates an EntityId from an archetype ID and entity index
func NewEntityId(archetypeId uint32, index uint32) EntityId {
	return EntityId(uint64(archetypeId)<<32 | uint64(index))
}

// ArchetypeId extracts the archetype ID from the entity ID
func (e EntityId) ArchetypeId() uint32 {
	return uint32(e >> 32)
}

// Index extracts the entity index from the entity ID
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

func (e EntityId) String() string {
	return fmt.Sprintf("%08x:%d", e.ArchetypeId(), e.Index())
}

// EntityRef is a stable reference to an entity. Storage keeps Id current across
// archetype moves and zeroes it when the entity is deleted.
type EntityRef struct {
	Id        EntityId
	Archetype *Archetype
}

// Valid reports whether the referenced entity is still alive.
func (r *EntityRef) Valid() bool {
	return r != nil && r.Id != 0
}
