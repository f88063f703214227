package components_test

import (
	"testing"

	"github.com/argus-labs/slotworld/pkg/components"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	s := ecs.NewStorage(4)
	require.NoError(t, components.Register(s))

	mask, err := ecs.ComponentMask[components.Logic](s)
	require.NoError(t, err)
	assert.Equal(t, components.MaskLogic, mask)

	mask, err = ecs.ComponentMask[components.Position](s)
	require.NoError(t, err)
	assert.Equal(t, components.MaskPosition, mask)

	// Registering twice is harmless.
	require.NoError(t, components.Register(s))
	assert.Len(t, s.Components(), 5)
}

func TestRegister_AfterOtherComponents(t *testing.T) {
	t.Parallel()

	s := ecs.NewStorage(4)
	_, err := ecs.Register[components.BBox](s)
	require.NoError(t, err)

	require.Error(t, components.Register(s))
}

func TestPositionTranslation(t *testing.T) {
	t.Parallel()

	p := components.Position{WorldMatrix: mgl32.Translate3D(1, 2, 3)}
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, p.Translation())
}
