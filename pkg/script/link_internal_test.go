package script

import (
	"testing"

	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/argus-labs/slotworld/pkg/handle"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVM_ReleaseTrackingIsBounded(t *testing.T) {
	t.Parallel()

	const capacity = 4
	vm := NewVM(capacity)
	for i := range 10000 {
		npc, err := vm.SpawnNPC(NPC{Name: "churn"})
		require.NoError(t, err)
		require.NoError(t, vm.Links().Bind(handle.New[ecs.Entity](uint32(i%capacity), 1), npc))
		_, err = vm.Links().Unbind(npc)
		require.NoError(t, err)
		require.True(t, vm.RemoveNPC(npc))
	}

	assert.Equal(t, 0, vm.Links().Len())
	assert.LessOrEqual(t, len(vm.links.released), capacity)
}

func TestVM_RemovedNPCIsForgotten(t *testing.T) {
	t.Parallel()

	vm := NewVM(2)
	npc, err := vm.SpawnNPC(NPC{Name: "Bloodwyn"})
	require.NoError(t, err)
	require.NoError(t, vm.Links().Bind(handle.New[ecs.Entity](0, 1), npc))
	_, err = vm.Links().Unbind(npc)
	require.NoError(t, err)

	_, err = vm.Links().Unbind(npc)
	assert.True(t, eris.Is(err, ErrDoubleRelease), "live npcs still report a double release")

	require.True(t, vm.RemoveNPC(npc))
	assert.Empty(t, vm.links.released)
	_, err = vm.Links().Unbind(npc)
	assert.True(t, eris.Is(err, ErrNotBound))
}
