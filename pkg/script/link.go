package script

import (
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/rotisserie/eris"
)

var (
	ErrAlreadyBound  = eris.New("already bound")
	ErrNotBound      = eris.New("not bound")
	ErrDoubleRelease = eris.New("link released twice")
)

// LinkTable records which entity a script-side NPC is bound to. Each NPC is bound to at most one
// entity and each entity to at most one NPC. Bind and Unbind are the only mutators, so a link is
// always created and destroyed as a pair.
type LinkTable struct {
	toEntity map[NPCHandle]ecs.EntityHandle
	toNPC    map[ecs.EntityHandle]NPCHandle
	released map[NPCHandle]struct{} // Links that were unbound and not bound again
}

// NewLinkTable creates an empty link table.
func NewLinkTable() *LinkTable {
	return &LinkTable{
		toEntity: make(map[NPCHandle]ecs.EntityHandle),
		toNPC:    make(map[ecs.EntityHandle]NPCHandle),
		released: make(map[NPCHandle]struct{}),
	}
}

// Bind links an NPC to an entity. Fails with ErrAlreadyBound if either side is linked already.
func (l *LinkTable) Bind(entity ecs.EntityHandle, npc NPCHandle) error {
	if entity.IsZero() || npc.IsZero() {
		return eris.New("cannot bind an invalid handle")
	}
	if bound, ok := l.toEntity[npc]; ok {
		return eris.Wrapf(ErrAlreadyBound, "npc %s is bound to entity %s", npc, bound)
	}
	if bound, ok := l.toNPC[entity]; ok {
		return eris.Wrapf(ErrAlreadyBound, "entity %s is bound to npc %s", entity, bound)
	}
	l.toEntity[npc] = entity
	l.toNPC[entity] = npc
	delete(l.released, npc)
	return nil
}

// Unbind releases the link of an NPC and returns the entity it was bound to. Releasing the same
// link twice fails with ErrDoubleRelease and leaves the table untouched; unbinding an NPC that was
// never bound fails with ErrNotBound.
func (l *LinkTable) Unbind(npc NPCHandle) (ecs.EntityHandle, error) {
	entity, ok := l.toEntity[npc]
	if !ok {
		if _, wasReleased := l.released[npc]; wasReleased {
			return ecs.EntityHandle{}, eris.Wrapf(ErrDoubleRelease, "npc %s", npc)
		}
		return ecs.EntityHandle{}, eris.Wrapf(ErrNotBound, "npc %s", npc)
	}
	delete(l.toEntity, npc)
	delete(l.toNPC, entity)
	l.released[npc] = struct{}{}
	return entity, nil
}

// Forget drops the release record of an NPC that no longer exists. Engines call it when they
// destroy an NPC so release tracking is bounded by the number of live NPCs. Unbinding a forgotten
// handle fails with ErrNotBound.
func (l *LinkTable) Forget(npc NPCHandle) {
	delete(l.released, npc)
}

// Entity returns the entity an NPC is bound to.
func (l *LinkTable) Entity(npc NPCHandle) (ecs.EntityHandle, bool) {
	e, ok := l.toEntity[npc]
	return e, ok
}

// NPC returns the NPC an entity is bound to.
func (l *LinkTable) NPC(entity ecs.EntityHandle) (NPCHandle, bool) {
	npc, ok := l.toNPC[entity]
	return npc, ok
}

// Len returns the number of live links.
func (l *LinkTable) Len() int {
	return len(l.toEntity)
}

// Reset drops every link.
func (l *LinkTable) Reset() {
	clear(l.toEntity)
	clear(l.toNPC)
	clear(l.released)
}
