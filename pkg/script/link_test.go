package script_test

import (
	"testing"

	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/argus-labs/slotworld/pkg/handle"
	"github.com/argus-labs/slotworld/pkg/script"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entity(index uint32) ecs.EntityHandle {
	return handle.New[ecs.Entity](index, 1)
}

func npc(index uint32) script.NPCHandle {
	return handle.New[script.NPC](index, 1)
}

func TestLinkTable_BindResolvesBothWays(t *testing.T) {
	t.Parallel()

	links := script.NewLinkTable()
	require.NoError(t, links.Bind(entity(3), npc(7)))

	e, ok := links.Entity(npc(7))
	require.True(t, ok)
	assert.Equal(t, entity(3), e)

	n, ok := links.NPC(entity(3))
	require.True(t, ok)
	assert.Equal(t, npc(7), n)
	assert.Equal(t, 1, links.Len())
}

func TestLinkTable_BindIsExclusive(t *testing.T) {
	t.Parallel()

	links := script.NewLinkTable()
	require.NoError(t, links.Bind(entity(1), npc(1)))

	err := links.Bind(entity(2), npc(1))
	assert.True(t, eris.Is(err, script.ErrAlreadyBound))
	err = links.Bind(entity(1), npc(2))
	assert.True(t, eris.Is(err, script.ErrAlreadyBound))
	require.Error(t, links.Bind(ecs.EntityHandle{}, npc(3)))

	assert.Equal(t, 1, links.Len())
	_, ok := links.NPC(entity(2))
	assert.False(t, ok)
}

func TestLinkTable_UnbindTwice(t *testing.T) {
	t.Parallel()

	links := script.NewLinkTable()
	require.NoError(t, links.Bind(entity(1), npc(1)))
	require.NoError(t, links.Bind(entity(2), npc(2)))

	e, err := links.Unbind(npc(1))
	require.NoError(t, err)
	assert.Equal(t, entity(1), e)

	_, ok := links.Entity(npc(1))
	assert.False(t, ok)
	_, ok = links.NPC(entity(1))
	assert.False(t, ok, "no reference to the entity may remain after unbind")

	_, err = links.Unbind(npc(1))
	assert.True(t, eris.Is(err, script.ErrDoubleRelease))
	assert.Equal(t, 1, links.Len(), "a double release leaves other links alone")

	_, err = links.Unbind(npc(9))
	assert.True(t, eris.Is(err, script.ErrNotBound))

	// Binding again clears the released state.
	require.NoError(t, links.Bind(entity(5), npc(1)))
	_, err = links.Unbind(npc(1))
	require.NoError(t, err)
}

func TestLinkTable_Reset(t *testing.T) {
	t.Parallel()

	links := script.NewLinkTable()
	require.NoError(t, links.Bind(entity(1), npc(1)))
	_, err := links.Unbind(npc(1))
	require.NoError(t, err)
	require.NoError(t, links.Bind(entity(2), npc(2)))

	links.Reset()
	assert.Equal(t, 0, links.Len())
	_, err = links.Unbind(npc(1))
	assert.True(t, eris.Is(err, script.ErrNotBound))
}
