package ecs

import (
	"reflect"
	"unsafe"
)

type singletonEntry struct {
	value   reflect.Value // pointer to the heap copy
	dataPtr unsafe.Pointer
}

// Singleton provides efficient access to a single component instance
// that is not associated with any entity. Use this for global game state,
// configuration, or other singleton data.
type Singleton[T any] struct {
	storage       *Storage
	componentPtr  unsafe.Pointer
	componentType reflect.Type
}

// NewSingleton creates a new Singleton accessor for the given storage.
// If initializer is provided and the singleton doesn't exist in storage,
// it will be created with the initializer value. Otherwise, a zero value is used.
// This guarantees the singleton exists in storage after the call.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	componentType := reflect.TypeFor[T]()

	entry := storage.getSingletonEntry(componentType)
	if entry == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		entry = storage.putSingleton(componentType, reflect.ValueOf(&value).Elem())
	}

	return &Singleton[T]{
		storage:       storage,
		componentPtr:  entry.dataPtr,
		componentType: componentType,
	}
}

// Init initializes the Singleton with a storage reference.
// This is called automatically by the Scheduler during system registration.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.componentType = reflect.TypeFor[T]()
	s.updateCache()
}

// Get returns a pointer to the singleton component.
// Returns nil if the singleton has not been added to storage.
func (s *Singleton[T]) Get() *T {
	if s.componentPtr == nil {
		s.updateCache()
	}
	if s.componentPtr == nil {
		return nil
	}
	return (*T)(s.componentPtr)
}

// updateCache refreshes the cached pointer from storage
func (s *Singleton[T]) updateCache() {
	if s.storage == nil {
		return
	}
	if entry := s.storage.getSingletonEntry(s.componentType); entry != nil {
		s.componentPtr = entry.dataPtr
	} else {
		s.componentPtr = nil
	}
}

// Exists returns true if the singleton component has been added to storage
func (s *Singleton[T]) Exists() bool {
	if s.componentPtr == nil {
		s.updateCache()
	}
	return s.componentPtr != nil
}

// AddSingleton stores value as the singleton for its dynamic type. Adding a value
// for a type that already has one overwrites it in place, so existing accessors
// keep pointing at live data.
func (s *Storage) AddSingleton(value any) {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	s.putSingleton(v.Type(), v)
}

func (s *Storage) putSingleton(t reflect.Type, v reflect.Value) *singletonEntry {
	if entry, ok := s.singletons[t]; ok {
		entry.value.Elem().Set(v)
		return entry
	}

	ptr := reflect.New(t)
	ptr.Elem().Set(v)
	entry := &singletonEntry{
		value:   ptr,
		dataPtr: ptr.UnsafePointer(),
	}
	s.singletons[t] = entry
	return entry
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

// ReadSingleton fills target, which must be a **T, with the stored singleton of type T.
// Returns false if no such singleton exists.
func (s *Storage) ReadSingleton(target any) bool {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton target must be a pointer to a pointer")
	}

	entry := s.getSingletonEntry(rv.Elem().Type().Elem())
	if entry == nil {
		return false
	}
	rv.Elem().Set(entry.value)
	return true
}
