package ecs

import "slices"

// Parent links a child entity to the entity that owns it.
type Parent struct {
	Ref *EntityRef
}

// Children lists the entities owned by a parent, in attachment order.
type Children struct {
	Refs []*EntityRef
}

// Len returns the number of child references, including stale ones.
func (c *Children) Len() int {
	return len(c.Refs)
}

// AddChildren attaches children to parent, re-parenting any that already have a parent.
// Both sides may move archetypes; the parent's current id is returned, or 0 if the
// parent is not alive. Calling it with no children still gives the parent an empty
// Children component.
func (s *Storage) AddChildren(parent EntityId, children ...EntityId) EntityId {
	parentRef := s.CreateEntityRef(parent)
	if parentRef == nil {
		return 0
	}

	refs := make([]*EntityRef, 0, len(children))
	for _, child := range children {
		if child == parent {
			panic("entity cannot be its own child")
		}
		childRef := s.CreateEntityRef(child)
		if childRef == nil {
			continue
		}

		if link := ReadComponent[Parent](s, childRef.Id); link != nil {
			if link.Ref == parentRef {
				continue
			}
			s.detach(link.Ref, childRef)
			link.Ref = parentRef
		} else {
			s.AddComponent(childRef.Id, Parent{Ref: parentRef})
		}
		refs = append(refs, childRef)
	}

	if existing := ReadComponent[Children](s, parentRef.Id); existing != nil {
		existing.Refs = append(existing.Refs, refs...)
	} else {
		s.AddComponent(parentRef.Id, Children{Refs: refs})
	}

	return parentRef.Id
}

// detach drops childRef from the Children list of the entity behind parentRef.
func (s *Storage) detach(parentRef, childRef *EntityRef) {
	if !parentRef.Valid() {
		return
	}
	if children := ReadComponent[Children](s, parentRef.Id); children != nil {
		children.Refs = slices.DeleteFunc(children.Refs, func(r *EntityRef) bool {
			return r == childRef
		})
	}
}

// ChildrenOf returns the current ids of the entity's live children.
func (s *Storage) ChildrenOf(id EntityId) []EntityId {
	children := ReadComponent[Children](s, id)
	if children == nil {
		return nil
	}

	ids := make([]EntityId, 0, len(children.Refs))
	for _, ref := range children.Refs {
		if childId, ok := s.ResolveEntityRef(ref); ok {
			ids = append(ids, childId)
		}
	}
	return ids
}

// ParentOf returns the current id of the entity's parent.
func (s *Storage) ParentOf(id EntityId) (EntityId, bool) {
	link := ReadComponent[Parent](s, id)
	if link == nil {
		return 0, false
	}
	return s.ResolveEntityRef(link.Ref)
}

// DeleteRecursive deletes the entity and all of its descendants, and removes it
// from its parent's Children.
func (s *Storage) DeleteRecursive(id EntityId) {
	if !s.Alive(id) {
		return
	}

	if link := ReadComponent[Parent](s, id); link != nil {
		s.detach(link.Ref, s.CreateEntityRef(id))
	}

	for _, child := range s.ChildrenOf(id) {
		s.DeleteRecursive(child)
	}
	s.Delete(id)
}
