package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

type fieldMode uint8

const (
	fieldRequired fieldMode = iota
	fieldOptional
	fieldWithout
	fieldEntityId
)

var entityIdType = reflect.TypeFor[EntityId]()

type viewField struct {
	typ    reflect.Type
	offset uintptr
	mode   fieldMode
}

// View represents a query for entities with a specific combination of components.
// The type T must be a struct whose fields are pointers to component types:
//
//   - embedded pointer fields are required;
//   - named pointer fields may be tagged `ecs:"optional"` (nil when absent) or
//     `ecs:"without"` (the entity must not have the component; always nil);
//   - a field of type EntityId, embedded or named, receives the entity's id.
type View[T any] struct {
	storage *Storage
	fields  []viewField
}

// NewView creates a new view for the given struct type
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	fields := make([]viewField, 0, structType.NumField())
	required := 0
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Type == entityIdType {
			fields = append(fields, viewField{typ: entityIdType, offset: field.Offset, mode: fieldEntityId})
			continue
		}

		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types or EntityId")
		}

		mode := fieldRequired
		if !field.Anonymous {
			switch tag := field.Tag.Get("ecs"); tag {
			case "":
			case "optional":
				mode = fieldOptional
			case "without":
				mode = fieldWithout
			default:
				panic("invalid ecs tag value: \"" + tag + "\" (expected \"optional\" or \"without\")")
			}
		}
		if mode == fieldRequired {
			required++
		}

		fields = append(fields, viewField{typ: field.Type.Elem(), offset: field.Offset, mode: mode})
	}

	if required == 0 {
		panic("View struct must have at least one required component")
	}

	return &View[T]{
		storage: storage,
		fields:  fields,
	}
}

// Fill populates the provided struct pointer with component data for the given entity.
// Returns false if the entity is missing a required component or has an excluded one.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	archetype, ok := v.storage.archetypes[id.ArchetypeId()]
	if !ok || !v.matchesArchetype(archetype) {
		return false
	}
	return v.populateResult(unsafe.Pointer(ptr), archetype, int(id.Index()), v.buildStorageIndices(archetype))
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't match the view
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// GetRef returns a populated view struct for the given entity ref, or nil if invalid
func (v *View[T]) GetRef(ref *EntityRef) *T {
	entityId, ok := v.storage.ResolveEntityRef(ref)
	if !ok {
		return nil
	}
	return v.Get(entityId)
}

// matchesArchetype checks required components are present and excluded ones absent.
func (v *View[T]) matchesArchetype(archetype *Archetype) bool {
	for _, f := range v.fields {
		switch f.mode {
		case fieldRequired:
			if !archetype.HasComponent(f.typ) {
				return false
			}
		case fieldWithout:
			if archetype.HasComponent(f.typ) {
				return false
			}
		}
	}
	return true
}

func (v *View[T]) buildStorageIndices(archetype *Archetype) []int {
	storageIndices := make([]int, len(v.fields))
	for i, f := range v.fields {
		storageIndices[i] = -1
		if f.mode == fieldRequired || f.mode == fieldOptional {
			storageIndices[i] = archetype.indexOf(f.typ)
		}
	}
	return storageIndices
}

func (v *View[T]) populateResult(resultPtr unsafe.Pointer, archetype *Archetype, entityIndex int, storageIndices []int) bool {
	for i, f := range v.fields {
		fieldPtr := unsafe.Add(resultPtr, f.offset)

		switch f.mode {
		case fieldEntityId:
			*(*EntityId)(fieldPtr) = NewEntityId(archetype.id, uint32(entityIndex))
			continue
		case fieldWithout:
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		var component any
		if storageIndices[i] != -1 {
			component = archetype.storages[storageIndices[i]].Get(entityIndex)
		}
		if component == nil {
			if f.mode == fieldOptional {
				*(*unsafe.Pointer)(fieldPtr) = nil
				continue
			}
			return false
		}

		*(*unsafe.Pointer)(fieldPtr) = (*eface)(unsafe.Pointer(&component)).data
	}
	return true
}

// iterArchetype yields matching entities of a single archetype.
func (v *View[T]) iterArchetype(archetype *Archetype) iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		if len(archetype.storages) == 0 {
			return
		}

		storageIndices := v.buildStorageIndices(archetype)

		var result T
		resultPtr := unsafe.Pointer(&result)

		for entityIndex := range archetype.storages[0].Iter() {
			if !v.populateResult(resultPtr, archetype, entityIndex, storageIndices) {
				continue
			}
			if !yield(NewEntityId(archetype.id, uint32(entityIndex)), result) {
				return
			}
		}
	}
}

// Iter returns an iterator over all entities matching the view.
// Archetype order is unspecified; within an archetype entities come in slot order.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		for _, archetype := range v.storage.archetypes {
			if !v.matchesArchetype(archetype) {
				continue
			}
			for id, item := range v.iterArchetype(archetype) {
				if !yield(id, item) {
					return
				}
			}
		}
	}
}

// Values returns an iterator over just the view structs (without entity IDs)
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Spawn creates a new entity from the non-nil component pointers in data.
// EntityId and `without` fields are ignored.
func (v *View[T]) Spawn(data T) EntityId {
	structPtr := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.fields))
	for _, f := range v.fields {
		if f.mode == fieldEntityId || f.mode == fieldWithout {
			continue
		}

		componentPtr := *(*unsafe.Pointer)(unsafe.Add(structPtr, f.offset))
		if componentPtr == nil {
			if f.mode == fieldRequired {
				panic("required component is nil in View.Spawn")
			}
			continue
		}

		components = append(components, reflect.NewAt(f.typ, componentPtr).Elem().Interface())
	}

	return v.storage.Spawn(components...)
}
