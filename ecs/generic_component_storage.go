package ecs

import (
	"iter"
	"math/bits"
	"reflect"
)

// iComponentStorage is one archetype column, type-erased so archetypes can hold
// columns of different component types side by side.
type iComponentStorage interface {
	Append(item any) int
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Len() int
	Compact() map[int]int
	Iter() iter.Seq[int]
}

// ComponentRegistry manages component type registration for an ECS instance.
// Each Storage instance has its own ComponentRegistry, allowing multiple
// independent ECS systems to coexist without interference.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

// NewComponentRegistry creates a new component registry. The hierarchy
// components Parent and Children are always registered.
func NewComponentRegistry() *ComponentRegistry {
	r := &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
	RegisterComponent[Parent](r)
	RegisterComponent[Children](r)
	return r
}

// RegisterComponent registers a new component type with the given registry.
// This must be called for each component type before it can be used.
func RegisterComponent[T any](r *ComponentRegistry) {
	r.factories[reflect.TypeFor[T]()] = func() iComponentStorage {
		return &genericComponentStorage[T]{}
	}
}

// IsRegistered reports whether a component type has been registered.
func (r *ComponentRegistry) IsRegistered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

// getFactory returns the factory function for a given component type.
// Returns nil if the type is not registered.
func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

const genericBlockSize = 64

// componentBlock holds a fixed run of slots plus an occupancy mask.
// Blocks are heap allocated individually so component pointers handed out by
// Get stay valid while the storage grows.
type componentBlock[T any] struct {
	items  [genericBlockSize]T
	filled uint64
}

// genericComponentStorage stores components of a single type `T` in blocks.
type genericComponentStorage[T any] struct {
	blocks    []*componentBlock[T]
	freeSlots []int
	nextIndex int
	count     int
}

func (cs *genericComponentStorage[T]) locate(index int) (*componentBlock[T], uint64, bool) {
	if index < 0 || index >= cs.nextIndex {
		return nil, 0, false
	}
	block := cs.blocks[index/genericBlockSize]
	return block, uint64(1) << (index % genericBlockSize), true
}

// Append adds a component to storage and returns its index.
func (cs *genericComponentStorage[T]) Append(item any) int {
	var concrete T
	switch v := item.(type) {
	case *T:
		concrete = *v
	case T:
		concrete = v
	default:
		return -1
	}

	var index int
	if n := len(cs.freeSlots); n > 0 {
		index = cs.freeSlots[n-1]
		cs.freeSlots = cs.freeSlots[:n-1]
	} else {
		index = cs.nextIndex
		cs.nextIndex++
		if index/genericBlockSize >= len(cs.blocks) {
			cs.blocks = append(cs.blocks, &componentBlock[T]{})
		}
	}

	block := cs.blocks[index/genericBlockSize]
	block.items[index%genericBlockSize] = concrete
	block.filled |= uint64(1) << (index % genericBlockSize)
	cs.count++
	return index
}

// Get returns a pointer to the component at the given index, or nil.
func (cs *genericComponentStorage[T]) Get(index int) any {
	block, mask, ok := cs.locate(index)
	if !ok || block.filled&mask == 0 {
		return nil
	}
	return &block.items[index%genericBlockSize]
}

// Delete marks a component slot as empty.
func (cs *genericComponentStorage[T]) Delete(index int) {
	block, mask, ok := cs.locate(index)
	if !ok || block.filled&mask == 0 {
		return
	}
	var zero T
	block.filled &^= mask
	block.items[index%genericBlockSize] = zero
	cs.freeSlots = append(cs.freeSlots, index)
	cs.count--
}

// Has checks if a component exists at the given index.
func (cs *genericComponentStorage[T]) Has(index int) bool {
	block, mask, ok := cs.locate(index)
	return ok && block.filled&mask != 0
}

// Len returns the number of live components.
func (cs *genericComponentStorage[T]) Len() int {
	return cs.count
}

// Compact moves live components to the front and returns the old->new index mapping.
// Pointers previously returned by Get are invalidated.
func (cs *genericComponentStorage[T]) Compact() map[int]int {
	indexMap := make(map[int]int, cs.count)
	if cs.count == 0 {
		cs.blocks = nil
		cs.freeSlots = nil
		cs.nextIndex = 0
		return indexMap
	}

	numBlocks := (cs.count + genericBlockSize - 1) / genericBlockSize
	newBlocks := make([]*componentBlock[T], numBlocks)
	for i := range newBlocks {
		newBlocks[i] = &componentBlock[T]{}
	}

	writePos := 0
	for readIdx := range cs.Iter() {
		src := cs.blocks[readIdx/genericBlockSize]
		dst := newBlocks[writePos/genericBlockSize]
		dst.items[writePos%genericBlockSize] = src.items[readIdx%genericBlockSize]
		dst.filled |= uint64(1) << (writePos % genericBlockSize)
		indexMap[readIdx] = writePos
		writePos++
	}

	cs.blocks = newBlocks
	cs.freeSlots = nil
	cs.nextIndex = writePos
	return indexMap
}

// Iter yields the indices of live components in ascending order.
func (cs *genericComponentStorage[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for b, block := range cs.blocks {
			filled := block.filled
			for filled != 0 {
				slot := bits.TrailingZeros64(filled)
				filled &^= uint64(1) << slot
				index := b*genericBlockSize + slot
				if index >= cs.nextIndex {
					return
				}
				if !yield(index) {
					return
				}
			}
		}
	}
}
