// Package script is the boundary to the script engine: the NPC instances it owns, the table linking
// them to world entities, and a small in-memory VM.
package script

import (
	"github.com/argus-labs/slotworld/pkg/handle"
	"github.com/argus-labs/slotworld/pkg/slot"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// NPC is the script-side state of a non-player character.
type NPC struct {
	Name     string
	Instance string   // Script instance the NPC was created from
	Visual   string   // Body mesh name
	Waypoint string   // Spawn waypoint
	Route    []string // Waypoints the NPC walks to in order
	Updates  int      // Number of per-frame updates the script received
	Elapsed  float64  // Total simulated time seen by the script, in seconds
}

// NPCHandle references an NPC inside one script engine.
type NPCHandle = handle.Handle[NPC]

// Engine is what a world needs from its script engine.
type Engine interface {
	// SpawnNPC creates a script instance.
	SpawnNPC(npc NPC) (NPCHandle, error)
	// RemoveNPC destroys a script instance. Any link must be released first.
	RemoveNPC(h NPCHandle) bool
	// NPC resolves a handle; false if it is stale.
	NPC(h NPCHandle) (*NPC, bool)
	// Links returns the NPC to entity link table.
	Links() *LinkTable
	// OnNPCUpdate runs the per-frame script hook of an NPC.
	OnNPCUpdate(h NPCHandle, dt float64)
	// Reset drops every NPC and link.
	Reset()
}

// UpdateHook is called for every NPC update after the built-in bookkeeping.
type UpdateHook func(h NPCHandle, npc *NPC, dt float64)

// VM is an in-memory Engine with a fixed NPC capacity.
type VM struct {
	npcs   *slot.Allocator[NPC]
	links  *LinkTable
	hook   UpdateHook
	logger zerolog.Logger
}

var _ Engine = (*VM)(nil)

type VMOption func(*VM)

// WithUpdateHook sets the per-NPC update hook.
func WithUpdateHook(hook UpdateHook) VMOption {
	return func(vm *VM) { vm.hook = hook }
}

// WithLogger sets the logger of the VM.
func WithLogger(logger zerolog.Logger) VMOption {
	return func(vm *VM) { vm.logger = logger }
}

// NewVM creates a VM that holds up to maxNPCs NPCs.
func NewVM(maxNPCs int, opts ...VMOption) *VM {
	vm := &VM{
		npcs:   slot.New[NPC](maxNPCs),
		links:  NewLinkTable(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

func (vm *VM) SpawnNPC(npc NPC) (NPCHandle, error) {
	h, err := vm.npcs.Allocate()
	if err != nil {
		return NPCHandle{}, eris.Wrapf(err, "failed to spawn npc %q", npc.Name)
	}
	*vm.npcs.MustGet(h) = npc
	vm.logger.Debug().Str("npc", npc.Name).Stringer("handle", h).Msg("spawned npc")
	return h, nil
}

func (vm *VM) RemoveNPC(h NPCHandle) bool {
	if e, bound := vm.links.Entity(h); bound {
		vm.logger.Warn().Stringer("npc", h).Stringer("entity", e).Msg("removing npc that is still linked")
		return false
	}
	if !vm.npcs.Deallocate(h) {
		return false
	}
	vm.links.Forget(h)
	return true
}

func (vm *VM) NPC(h NPCHandle) (*NPC, bool) {
	return vm.npcs.Get(h)
}

func (vm *VM) Links() *LinkTable {
	return vm.links
}

// OnNPCUpdate ignores stale handles, which are expected from entities that outlived their NPC.
func (vm *VM) OnNPCUpdate(h NPCHandle, dt float64) {
	npc, ok := vm.npcs.Get(h)
	if !ok {
		return
	}
	npc.Updates++
	npc.Elapsed += dt
	if vm.hook != nil {
		vm.hook(h, npc, dt)
	}
}

// Len returns the number of live NPCs.
func (vm *VM) Len() int {
	return vm.npcs.Len()
}

func (vm *VM) Reset() {
	vm.links.Reset()
	vm.npcs.Reset()
}
