package script_test

import (
	"testing"

	"github.com/argus-labs/slotworld/pkg/script"
	"github.com/argus-labs/slotworld/pkg/slot"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVM_SpawnAndUpdate(t *testing.T) {
	t.Parallel()

	var hooked []string
	vm := script.NewVM(2, script.WithUpdateHook(func(_ script.NPCHandle, n *script.NPC, _ float64) {
		hooked = append(hooked, n.Name)
	}))

	h, err := vm.SpawnNPC(script.NPC{Name: "Diego", Instance: "PC_THIEF"})
	require.NoError(t, err)

	vm.OnNPCUpdate(h, 0.5)
	vm.OnNPCUpdate(h, 0.25)

	n, ok := vm.NPC(h)
	require.True(t, ok)
	assert.Equal(t, 2, n.Updates)
	assert.InDelta(t, 0.75, n.Elapsed, 1e-9)
	assert.Equal(t, []string{"Diego", "Diego"}, hooked)
}

func TestVM_Capacity(t *testing.T) {
	t.Parallel()

	vm := script.NewVM(1)
	_, err := vm.SpawnNPC(script.NPC{Name: "a"})
	require.NoError(t, err)
	_, err = vm.SpawnNPC(script.NPC{Name: "b"})
	assert.True(t, eris.Is(err, slot.ErrCapacityExhausted))
	assert.Equal(t, 1, vm.Len())
}

func TestVM_RemoveNPC(t *testing.T) {
	t.Parallel()

	vm := script.NewVM(2)
	h, err := vm.SpawnNPC(script.NPC{Name: "Lester"})
	require.NoError(t, err)

	require.NoError(t, vm.Links().Bind(entity(0), h))
	assert.False(t, vm.RemoveNPC(h), "linked npcs cannot be removed")

	_, err = vm.Links().Unbind(h)
	require.NoError(t, err)
	assert.True(t, vm.RemoveNPC(h))
	assert.False(t, vm.RemoveNPC(h))

	_, ok := vm.NPC(h)
	assert.False(t, ok)
	// Stale updates are ignored.
	vm.OnNPCUpdate(h, 1)
}

func TestVM_Reset(t *testing.T) {
	t.Parallel()

	vm := script.NewVM(4)
	h, err := vm.SpawnNPC(script.NPC{Name: "Gorn"})
	require.NoError(t, err)
	require.NoError(t, vm.Links().Bind(entity(1), h))

	vm.Reset()
	assert.Equal(t, 0, vm.Len())
	assert.Equal(t, 0, vm.Links().Len())
}
