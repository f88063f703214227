package vob_test

import (
	"testing"

	"github.com/argus-labs/slotworld/internal/testutils"
	"github.com/argus-labs/slotworld/pkg/components"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/argus-labs/slotworld/pkg/level"
	"github.com/argus-labs/slotworld/pkg/logic"
	"github.com/argus-labs/slotworld/pkg/script"
	"github.com/argus-labs/slotworld/pkg/vob"
	"github.com/argus-labs/slotworld/pkg/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEngine struct {
	caps world.Capacities
}

func (e testEngine) Capacities() world.Capacities { return e.caps }

func (e testEngine) NewScriptEngine(maxNPCs int) script.Engine { return script.NewVM(maxNPCs) }

func parseLevel(t *testing.T) *level.Document {
	t.Helper()
	doc, err := level.Parse("testworld.yaml", []byte(testutils.LevelYAML))
	require.NoError(t, err)
	return doc
}

func newWorld(t *testing.T, entities int, opts ...world.Option) *world.Instance {
	t.Helper()
	doc := parseLevel(t)
	doc.Vobs, doc.NPCs = nil, nil

	caps := world.DefaultCapacities()
	caps.Entities = entities
	w := world.New(opts...)
	require.NoError(t, w.InitFromLevel(testEngine{caps: caps}, doc))
	return w
}

func TestConstructVob(t *testing.T) {
	t.Parallel()

	w := newWorld(t, 4)
	h, err := vob.ConstructVob(w)
	require.NoError(t, err)

	mask, ok := w.Storage().MaskFor(h)
	require.True(t, ok)
	assert.Equal(t, components.MaskVob, mask)
	assert.Equal(t, mgl32.Ident4(), world.MustGetEntity[components.Position](w, h).WorldMatrix)
	assert.Nil(t, w.Controller(h))
}

func TestSetVisualAndTransform(t *testing.T) {
	t.Parallel()

	w := newWorld(t, 8)
	h, err := vob.ConstructVob(w)
	require.NoError(t, err)

	require.NoError(t, vob.SetVisual(w, h, "CHAIR.3DS"))
	mv, ok := w.Controller(h).(*logic.ModelVisual)
	require.True(t, ok)
	assert.Len(t, mv.Children(), 2)

	// A second visual reuses the controller.
	require.NoError(t, vob.SetVisual(w, h, "HUM_BODY_NAKED0.MDM"))
	assert.Same(t, mv, w.Controller(h))
	assert.Equal(t, 2, w.LiveEntities())

	require.NoError(t, vob.SetPosition(w, h, mgl32.Vec3{3, 0, 4}))
	child := mv.Children()[0]
	assert.Equal(t, mgl32.Vec3{3, 0, 4}, world.MustGetEntity[components.Position](w, child).Translation())

	rot := mgl32.HomogRotate3DY(mgl32.DegToRad(90))
	require.NoError(t, vob.SetTransform(w, h, rot))
	assert.Equal(t, rot, world.MustGetEntity[components.Position](w, child).WorldMatrix)

	assert.True(t, eris.Is(vob.SetVisual(w, h, "NOPE"), logic.ErrVisualNotFound))

	w.RemoveEntity(h)
	assert.Equal(t, 0, w.LiveEntities())
	require.Error(t, vob.SetTransform(w, h, rot))
}

func spawn(t *testing.T, w *world.Instance, npc script.NPC) script.NPCHandle {
	t.Helper()
	h, err := w.ScriptEngine().SpawnNPC(npc)
	require.NoError(t, err)
	return h
}

func TestInitNPCFromScript(t *testing.T) {
	t.Parallel()

	w := newWorld(t, 8)
	npc := spawn(t, w, script.NPC{Name: "Diego", Waypoint: "WP_B", Route: []string{"WP_C"}})

	h, err := vob.InitNPCFromScript(w, npc)
	require.NoError(t, err)

	links := w.ScriptEngine().Links()
	bound, ok := links.Entity(npc)
	require.True(t, ok)
	assert.Equal(t, h, bound)
	back, ok := links.NPC(h)
	require.True(t, ok)
	assert.Equal(t, npc, back)

	controller, ok := w.Controller(h).(*logic.NPCController)
	require.True(t, ok)
	assert.Equal(t, vob.DefaultNPCVisual, controller.Visual())
	assert.Len(t, controller.Route(), 2)

	assert.Equal(t, "Diego", world.MustGetEntity[components.Entity](w, h).Label)
	assert.Equal(t, mgl32.Vec3{10, 0, 0}, world.MustGetEntity[components.Position](w, h).Translation())
	assert.Equal(t, uint32(0xFFFFFFFF), world.MustGetEntity[components.BBox](w, h).DebugColor)
	assert.Equal(t, 2, w.LiveEntities())

	// The script may try to spawn the same NPC twice.
	_, err = vob.InitNPCFromScript(w, npc)
	assert.True(t, eris.Is(err, script.ErrAlreadyBound))
	assert.Equal(t, 2, w.LiveEntities())
}

func TestInitNPCFromScript_FailureLeavesNothing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		npc  script.NPC
	}{
		{"missing visual", script.NPC{Name: "Ghost", Visual: "GHOST.MDM"}},
		{"unknown route stop", script.NPC{Name: "Lost", Route: []string{"WP_NOWHERE"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := newWorld(t, 8)
			npc := spawn(t, w, tt.npc)

			_, err := vob.InitNPCFromScript(w, npc)
			require.Error(t, err)
			assert.Equal(t, 0, w.LiveEntities())
			assert.Equal(t, 0, w.ScriptEngine().Links().Len())
		})
	}

	w := newWorld(t, 8)
	_, err := vob.InitNPCFromScript(w, script.NPCHandle{})
	require.Error(t, err)
}

type spawner struct {
	w   *world.Instance
	npc script.NPCHandle
	err error
}

func (s *spawner) OnUpdate(float64) {
	_, s.err = vob.InitNPCFromScript(s.w, s.npc)
}
func (s *spawner) OnTransformChanged() {}
func (s *spawner) Teardown()           {}

func TestInitNPCFromScript_RefusedDuringFrame(t *testing.T) {
	t.Parallel()

	w := newWorld(t, 8)
	npc := spawn(t, w, script.NPC{Name: "Ghost", Visual: "GHOST.MDM"})
	owner, err := vob.ConstructVob(w)
	require.NoError(t, err)
	s := &spawner{w: w, npc: npc}
	require.NoError(t, w.SetController(owner, s))

	w.OnFrameUpdate(0.1)
	require.Error(t, s.err)
	assert.True(t, eris.Is(s.err, world.ErrInvalidStage))
	assert.False(t, w.InFrame())
	assert.Equal(t, 1, w.LiveEntities(), "only the owner is alive")
	assert.Equal(t, 0, w.ScriptEngine().Links().Len())

	// Outside the frame the failing init cleans up immediately.
	_, err = vob.InitNPCFromScript(w, npc)
	require.Error(t, err)
	assert.Equal(t, 1, w.LiveEntities())
	assert.Equal(t, 0, w.ScriptEngine().Links().Len())
}

func TestUnlinkNPC(t *testing.T) {
	t.Parallel()

	w := newWorld(t, 8)
	npc := spawn(t, w, script.NPC{Name: "Diego"})
	h, err := vob.InitNPCFromScript(w, npc)
	require.NoError(t, err)

	other, err := vob.ConstructVob(w)
	require.NoError(t, err)
	assert.True(t, eris.Is(vob.UnlinkNPC(w, other, npc), script.ErrNotBound))

	require.NoError(t, vob.UnlinkNPC(w, h, npc))
	assert.True(t, eris.Is(vob.UnlinkNPC(w, h, npc), script.ErrDoubleRelease))

	// The entity outlives the link; its teardown must not release it a second time.
	w.RemoveEntity(h)
	assert.False(t, w.Storage().Alive(h))
	assert.Equal(t, 0, w.ScriptEngine().Links().Len())
}

func TestPopulate(t *testing.T) {
	t.Parallel()

	caps := world.DefaultCapacities()
	caps.Entities = 32
	w := world.New(world.WithPopulator(vob.Populate))
	require.NoError(t, w.InitFromLevel(testEngine{caps: caps}, parseLevel(t)))

	// chair + 2 submeshes, crate, Diego + body
	assert.Equal(t, 6, w.LiveEntities())
	assert.Equal(t, world.Populated, w.Stage())
	assert.Equal(t, 1, w.ScriptEngine().Links().Len())

	labels := map[string]ecs.EntityHandle{}
	for _, h := range w.Storage().Query(ecs.Contains(components.MaskEntity)) {
		labels[world.MustGetEntity[components.Entity](w, h).Label] = h
	}
	require.Contains(t, labels, "chair")
	require.Contains(t, labels, "crate")
	require.Contains(t, labels, "Diego")

	crate := labels["crate"]
	assert.Equal(t, uint32(0xFF00FF00), world.MustGetEntity[components.BBox](w, crate).DebugColor)
	assert.Equal(t, mgl32.Vec3{5, 0, 5}, world.MustGetEntity[components.Position](w, crate).Translation())
	assert.Nil(t, w.Controller(crate))

	diego, ok := w.Controller(labels["Diego"]).(*logic.NPCController)
	require.True(t, ok)
	assert.Len(t, diego.Route(), 3)

	w.Destroy()
	assert.Equal(t, 0, w.LiveEntities())
	assert.Equal(t, 0, w.ScriptEngine().Links().Len())
}

func TestPopulate_FailureIsLoadError(t *testing.T) {
	t.Parallel()

	doc := parseLevel(t)
	doc.Vobs[0].Visual = "MISSING.3DS"

	w := world.New(world.WithPopulator(vob.Populate))
	err := w.InitFromLevel(testEngine{caps: world.DefaultCapacities()}, doc)
	require.Error(t, err)
	assert.True(t, eris.Is(err, world.ErrLoad))
	assert.Equal(t, world.Destroyed, w.Stage())
	assert.Equal(t, 0, w.LiveEntities())
}
