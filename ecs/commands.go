package ecs

import "reflect"

// Commands provides a buffer for deferred ECS operations that are executed at the end of a frame.
// This prevents structural changes to the ECS storage during system execution.
//
// Flush applies deletes, removes, adds, child links, spawns and deferred functions, in
// that order. Every entity named by a queued command is pinned with an EntityRef before
// anything is applied, so ids that move during the flush are still honoured.
type Commands struct {
	spawns   []spawnCommand
	deletes  []deleteCommand
	adds     []addComponentCommand
	removes  []removeComponentCommand
	children []childrenCommand
	defers   []func()
}

func newCommands() *Commands {
	return &Commands{}
}

type spawnCommand struct {
	components []any
	then       func(EntityId)
}

type deleteCommand struct {
	entity    EntityId
	recursive bool
}

type addComponentCommand struct {
	entity    EntityId
	component any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

type childrenCommand struct {
	parent   EntityId
	existing []EntityId
	bundles  [][]any
}

// Defer queues a function to run after every other command has been applied.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// SpawnWith queues a spawn and calls then with the new entity's id once it exists.
func (c *Commands) SpawnWith(then func(EntityId), components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components, then: then})
}

// Delete queues an entity deletion operation.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, deleteCommand{entity: entity})
}

// DeleteRecursive queues deletion of an entity and all of its descendants.
func (c *Commands) DeleteRecursive(entity EntityId) {
	c.deletes = append(c.deletes, deleteCommand{entity: entity, recursive: true})
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// AddChildren queues attaching existing entities to parent.
func (c *Commands) AddChildren(parent EntityId, children ...EntityId) {
	c.children = append(c.children, childrenCommand{parent: parent, existing: children})
}

// SpawnChildren queues spawning one child per bundle and attaching them to parent in
// bundle order. With no bundles the parent still receives an empty Children component.
func (c *Commands) SpawnChildren(parent EntityId, bundles ...[]any) {
	c.children = append(c.children, childrenCommand{parent: parent, bundles: bundles})
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.deletes) + len(c.adds) + len(c.removes) + len(c.children) + len(c.defers)
}

// Flush applies all commands to the provided storage, resetting the buffer state
func (c *Commands) Flush(storage *Storage) {
	pins := make(map[EntityId]*EntityRef)
	pin := func(id EntityId) {
		if _, ok := pins[id]; !ok {
			pins[id] = storage.CreateEntityRef(id)
		}
	}
	for _, cmd := range c.deletes {
		pin(cmd.entity)
	}
	for _, cmd := range c.removes {
		pin(cmd.entity)
	}
	for _, cmd := range c.adds {
		pin(cmd.entity)
	}
	for _, cmd := range c.children {
		pin(cmd.parent)
		for _, child := range cmd.existing {
			pin(child)
		}
	}
	resolve := func(id EntityId) (EntityId, bool) {
		return storage.ResolveEntityRef(pins[id])
	}

	for _, cmd := range c.deletes {
		id, ok := resolve(cmd.entity)
		if !ok {
			continue
		}
		if cmd.recursive {
			storage.DeleteRecursive(id)
		} else {
			storage.Delete(id)
		}
	}

	for _, cmd := range c.removes {
		if id, ok := resolve(cmd.entity); ok {
			storage.RemoveComponent(id, cmd.compType)
		}
	}

	for _, cmd := range c.adds {
		if id, ok := resolve(cmd.entity); ok {
			storage.AddComponent(id, cmd.component)
		}
	}

	for _, cmd := range c.children {
		parent, ok := resolve(cmd.parent)
		if !ok {
			continue
		}
		ids := make([]EntityId, 0, len(cmd.existing)+len(cmd.bundles))
		for _, child := range cmd.existing {
			if id, ok := resolve(child); ok {
				ids = append(ids, id)
			}
		}
		// Pin freshly spawned children too: linking earlier ones may move them.
		fresh := make([]*EntityRef, 0, len(cmd.bundles))
		for _, bundle := range cmd.bundles {
			fresh = append(fresh, storage.CreateEntityRef(storage.Spawn(bundle...)))
		}
		for _, ref := range fresh {
			ids = append(ids, ref.Id)
		}
		storage.AddChildren(parent, ids...)
	}

	for _, cmd := range c.spawns {
		id := storage.Spawn(cmd.components...)
		if cmd.then != nil {
			cmd.then(id)
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.children = c.children[:0]
	c.defers = c.defers[:0]
}
