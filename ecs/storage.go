package ecs

import (
	"reflect"
	"sort"
	"unsafe"
	"weak"
)

// Storage is the main ECS storage: archetypes hold entities, singletons hold
// world-wide resources.
type Storage struct {
	archetypes map[uint32]*Archetype
	singletons map[reflect.Type]*singletonEntry
	registry   *ComponentRegistry
}

// NewStorage creates a new ECS storage system with the given component registry
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: make(map[uint32]*Archetype),
		singletons: make(map[reflect.Type]*singletonEntry),
		registry:   registry,
	}
}

// Registry returns the component registry backing the storage.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// Alive reports whether id addresses a live entity.
func (s *Storage) Alive(id EntityId) bool {
	archetype := s.archetypes[id.ArchetypeId()]
	return archetype != nil && archetype.Alive(id.Index())
}

// Len returns the number of live entities.
func (s *Storage) Len() int {
	total := 0
	for _, archetype := range s.archetypes {
		total += archetype.Len()
	}
	return total
}

// CreateEntityRef returns the stable reference for id, creating it if needed.
// Returns nil when id does not address a live entity.
func (s *Storage) CreateEntityRef(id EntityId) *EntityRef {
	archetype := s.archetypes[id.ArchetypeId()]
	if archetype == nil || !archetype.Alive(id.Index()) {
		return nil
	}

	if weakPtr, ok := archetype.refs.Get(id); ok {
		if ref := weakPtr.Value(); ref != nil {
			return ref
		}
		archetype.refs.Del(id)
	}

	ref := &EntityRef{
		Id:        id,
		Archetype: archetype,
	}
	archetype.refs.Put(id, weak.Make(ref))

	return ref
}

// ResolveEntityRef returns the current id of the referenced entity.
func (s *Storage) ResolveEntityRef(ref *EntityRef) (EntityId, bool) {
	if !ref.Valid() {
		return 0, false
	}
	return ref.Id, true
}

// InvalidateEntityRef detaches ref from its entity without deleting the entity.
func (s *Storage) InvalidateEntityRef(ref *EntityRef) bool {
	if !ref.Valid() {
		return false
	}

	if archetype := s.archetypes[ref.Id.ArchetypeId()]; archetype != nil {
		archetype.refs.Del(ref.Id)
	}

	ref.Id = 0
	ref.Archetype = nil
	return true
}

// GetArchetype returns an archetype storage (if one exists)
func (s *Storage) GetArchetype(components ...any) *Archetype {
	types := extractComponentTypes(components)
	return s.archetypes[hashTypesToUint32(types)]
}

// GetArchetypeByTypes returns an archetype storage (if one exists) based on reflect.Type
func (s *Storage) GetArchetypeByTypes(types []reflect.Type) *Archetype {
	sorted := append([]reflect.Type(nil), types...)
	sort.Sort(byTypeName(sorted))
	return s.archetypes[hashTypesToUint32(sorted)]
}

// Archetypes calls fn for every archetype in the storage.
func (s *Storage) Archetypes(fn func(*Archetype)) {
	for _, archetype := range s.archetypes {
		fn(archetype)
	}
}

func (s *Storage) archetypeFor(types []reflect.Type) *Archetype {
	archetypeId := hashTypesToUint32(types)
	archetype, exists := s.archetypes[archetypeId]
	if !exists {
		archetype = NewArchetype(archetypeId, types, s.registry)
		s.archetypes[archetypeId] = archetype
	}
	return archetype
}

// Spawn creates a new entity with the provided components
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	archetype := s.archetypeFor(extractComponentTypes(components))
	entityIndex := archetype.Spawn(components)
	return NewEntityId(archetype.id, entityIndex)
}

// Delete removes all data related to the entity ID
func (s *Storage) Delete(id EntityId) {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return
	}
	archetype.Delete(id.Index())
}

// move re-spawns the entity's components in the archetype for newTypes, carrying
// its EntityRef along, and frees the old slot.
func (s *Storage) move(id EntityId, oldArchetype *Archetype, newTypes []reflect.Type, extra any) EntityId {
	newArchetype := s.archetypeFor(newTypes)
	extraType := componentType(extra)

	components := make([]any, 0, len(newTypes))
	for _, typ := range newTypes {
		if extra != nil && typ == extraType {
			components = append(components, extra)
			continue
		}
		components = append(components, oldArchetype.GetComponent(id.Index(), typ))
	}

	newId := NewEntityId(newArchetype.id, newArchetype.Spawn(components))

	if weakPtr, ok := oldArchetype.refs.Get(id); ok {
		oldArchetype.refs.Del(id)
		if ref := weakPtr.Value(); ref != nil {
			ref.Id = newId
			ref.Archetype = newArchetype
			newArchetype.refs.Put(newId, weakPtr)
		}
	}

	oldArchetype.Delete(id.Index())
	return newId
}

// AddComponent attaches component to the entity and returns its new id.
// If the entity already has a component of that type the value is replaced in place
// and the id is unchanged. Returns 0 when the entity is not alive.
func (s *Storage) AddComponent(id EntityId, component any) EntityId {
	oldArchetype := s.archetypes[id.ArchetypeId()]
	if oldArchetype == nil || !oldArchetype.Alive(id.Index()) {
		return 0
	}

	compType := componentType(component)
	if existing := oldArchetype.GetComponent(id.Index(), compType); existing != nil {
		reflect.ValueOf(existing).Elem().Set(reflect.Indirect(reflect.ValueOf(component)))
		return id
	}

	newTypes := make([]reflect.Type, 0, len(oldArchetype.types)+1)
	newTypes = append(newTypes, oldArchetype.types...)
	newTypes = append(newTypes, compType)
	sort.Sort(byTypeName(newTypes))

	return s.move(id, oldArchetype, newTypes, component)
}

// RemoveComponent detaches the component type from the entity and returns its new id.
// Removing the last component deletes the entity and returns 0.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) EntityId {
	oldArchetype := s.archetypes[id.ArchetypeId()]
	if oldArchetype == nil || !oldArchetype.Alive(id.Index()) {
		return 0
	}
	if !oldArchetype.HasComponent(compType) {
		return id
	}

	newTypes := make([]reflect.Type, 0, len(oldArchetype.types)-1)
	for _, typ := range oldArchetype.types {
		if typ != compType {
			newTypes = append(newTypes, typ)
		}
	}

	if len(newTypes) == 0 {
		oldArchetype.Delete(id.Index())
		return 0
	}

	return s.move(id, oldArchetype, newTypes, nil)
}

// GetComponent returns the component for the given entity ID and component type
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return nil
	}
	return archetype.GetComponent(id.Index(), compType)
}

// HasComponent checks if an entity has a specific component type
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok || !archetype.Alive(id.Index()) {
		return false
	}
	return archetype.HasComponent(compType)
}

func componentType(component any) reflect.Type {
	if component == nil {
		return nil
	}
	t := reflect.TypeOf(component)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// extractComponentTypes extracts and sorts component types from a slice of components
func extractComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		compType := componentType(comp)

		// Components are value types; pointers are only accepted as a way to pass one.
		switch compType.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
			panic("components cannot be pointers, maps, channels, or functions")
		}

		types = append(types, compType)
	}
	sort.Sort(byTypeName(types))
	return types
}

// eface mirrors the runtime layout of an interface value.
type eface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

// hashTypesToUint32 generates a uint32 FNV-1a hash for a sorted slice of types
func hashTypesToUint32(types []reflect.Type) uint32 {
	var h uint32 = 2166136261
	const prime uint32 = 16777619

	for _, t := range types {
		// The type descriptor pointer is unique per type.
		ptr := uintptr((*eface)(unsafe.Pointer(&t)).data)
		val := uint32(ptr)
		if unsafe.Sizeof(uintptr(0)) == 8 {
			val ^= uint32(uint64(ptr) >> 32)
		}

		h ^= val
		h *= prime
	}

	return h
}

// ComponentReader is satisfied by Storage and anything that can look up components by id.
type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the entity's component of type T, or nil if it has none.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	comp, _ := reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
	return comp
}
