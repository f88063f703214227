// Package world is the world instance: the owner of one level's entities, component storage,
// content libraries, way-network and script engine.
package world

import (
	"time"

	"github.com/argus-labs/slotworld/pkg/components"
	"github.com/argus-labs/slotworld/pkg/content"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/argus-labs/slotworld/pkg/ecslog"
	"github.com/argus-labs/slotworld/pkg/handle"
	"github.com/argus-labs/slotworld/pkg/level"
	"github.com/argus-labs/slotworld/pkg/script"
	"github.com/argus-labs/slotworld/pkg/statsd"
	"github.com/argus-labs/slotworld/pkg/waynet"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

var (
	ErrLoad         = eris.New("failed to load level")
	ErrInvalidStage = eris.New("invalid world stage")
)

// Handle references a world inside its engine.
type Handle = handle.Handle[*Instance]

// Engine is what a world needs from the engine that owns it.
type Engine interface {
	Capacities() Capacities
	NewScriptEngine(maxNPCs int) script.Engine
}

// Populator places the vobs and NPCs of a level document into a world whose content libraries and
// way-network are already loaded.
type Populator func(w *Instance, doc *level.Document) error

// TransientFeatures hold per-frame results that are only valid until the next frame starts. The
// indices are rows of the frame's data bundle.
type TransientFeatures struct {
	VisibleEntities []int
}

// Instance is one world. The zero value is not usable; create instances with New.
type Instance struct {
	id        uuid.UUID
	handle    Handle
	stage     *stageManager
	logger    zerolog.Logger
	populate  Populator
	levelName string

	storage      *ecs.Storage
	staticMeshes *content.StaticMeshes
	worldMeshes  *content.WorldMeshes
	textures     *content.Textures
	materials    *content.Materials
	waynet       *waynet.Waynet
	scriptEngine script.Engine

	transient TransientFeatures

	inFrame    bool
	pending    []ecs.EntityHandle
	pendingSet map[ecs.EntityHandle]struct{}
}

type Option func(*Instance)

// WithLogger sets the parent logger. The world adds its ID to every entry.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Instance) { w.logger = logger }
}

// WithPopulator sets the function that places vobs and NPCs during InitFromLevel.
func WithPopulator(p Populator) Option {
	return func(w *Instance) { w.populate = p }
}

// New creates an uninitialized world.
func New(opts ...Option) *Instance {
	w := &Instance{
		id:         uuid.New(),
		stage:      newStageManager(),
		logger:     zerolog.Nop(),
		pendingSet: make(map[ecs.EntityHandle]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = *ecslog.CreateWorldLogger(&w.logger, w.id.String())
	return w
}

// Init allocates every allocator at the engine's capacities and registers the built-in components.
// The world must be uninitialized.
func (w *Instance) Init(engine Engine) error {
	if cur := w.stage.Current(); cur != Uninitialized {
		return eris.Wrapf(ErrInvalidStage, "init in stage %s", cur)
	}

	caps := engine.Capacities()
	if err := caps.Validate(); err != nil {
		return eris.Wrap(err, "invalid world capacities")
	}

	storage := ecs.NewStorage(caps.Entities)
	if err := components.Register(storage); err != nil {
		return eris.Wrap(err, "failed to register built-in components")
	}
	scriptEngine := engine.NewScriptEngine(caps.NPCs)
	if scriptEngine == nil {
		return eris.New("engine returned no script engine")
	}

	w.storage = storage
	w.staticMeshes = content.NewLibrary[content.StaticMesh](caps.StaticMeshes)
	w.worldMeshes = content.NewLibrary[content.WorldMesh](caps.LevelMeshes)
	w.textures = content.NewLibrary[content.Texture](caps.Textures)
	w.materials = content.NewLibrary[content.Material](caps.Materials)
	w.waynet = waynet.New()
	w.scriptEngine = scriptEngine
	w.stage.Store(Initialized)

	ecslog.Storage(&w.logger, w.storage, zerolog.DebugLevel)
	return nil
}

// InitFromLevel initializes the world and loads a level into it. If the level can't be loaded the
// world is destroyed and the returned error wraps ErrLoad; nothing of the partial load stays
// reachable.
func (w *Instance) InitFromLevel(engine Engine, doc *level.Document) error {
	if err := w.Init(engine); err != nil {
		return err
	}

	start := time.Now()
	name := "<nil>"
	if doc != nil {
		name = doc.Name
	}

	if err := w.load(doc); err != nil {
		w.Destroy()
		statsd.EmitLevelLoadStat(start, name, true)
		w.logger.Error().Err(err).Str("level", name).Msg("level load failed")
		return eris.Wrapf(ErrLoad, "level %q: %v", name, err)
	}

	w.levelName = name
	statsd.EmitLevelLoadStat(start, name, false)
	w.logger.Info().
		Str("level", name).
		Int("entities", w.storage.Len()).
		Int("static_meshes", w.staticMeshes.Len()).
		Int("waypoints", w.waynet.Len()).
		Dur("took", time.Since(start)).
		Msg("level loaded")
	return nil
}

// load ingests a level: textures, materials, meshes and the way-network first, then the populator
// places vobs and NPCs.
func (w *Instance) load(doc *level.Document) error {
	if doc == nil {
		return eris.New("no level document")
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	for _, tex := range doc.Textures {
		if _, err := w.textures.Add(content.Texture{Name: tex.Name, Width: tex.Width, Height: tex.Height}); err != nil {
			return eris.Wrap(err, "textures")
		}
	}

	for _, mat := range doc.Materials {
		material := content.Material{Name: mat.Name, Color: mat.Color}
		if mat.Texture != "" {
			tex, err := w.textures.MustLookup(mat.Texture)
			if err != nil {
				return eris.Wrapf(err, "material %q", mat.Name)
			}
			material.Texture = tex
		}
		if _, err := w.materials.Add(material); err != nil {
			return eris.Wrap(err, "materials")
		}
	}

	vertices, indices, submeshes, err := w.convertMesh(*doc.WorldMesh)
	if err != nil {
		return eris.Wrap(err, "world mesh")
	}
	worldMesh := content.WorldMesh{Name: doc.Name, Vertices: vertices, Indices: indices, Submeshes: submeshes}
	if _, err := w.worldMeshes.Add(worldMesh); err != nil {
		return eris.Wrap(err, "world mesh")
	}

	for _, mesh := range doc.StaticMeshes {
		vertices, indices, submeshes, err := w.convertMesh(mesh)
		if err != nil {
			return eris.Wrapf(err, "static mesh %q", mesh.Name)
		}
		staticMesh := content.StaticMesh{Name: mesh.Name, Vertices: vertices, Indices: indices, Submeshes: submeshes}
		if _, err := w.staticMeshes.Add(staticMesh); err != nil {
			return eris.Wrap(err, "static meshes")
		}
	}

	for _, wp := range doc.Waynet.Waypoints {
		if _, err := w.waynet.AddWaypoint(wp.Name, mgl32.Vec3(wp.Position), mgl32.Vec3(wp.Direction)); err != nil {
			return eris.Wrap(err, "waynet")
		}
	}
	for _, edge := range doc.Waynet.Edges {
		if err := w.waynet.Connect(edge[0], edge[1]); err != nil {
			return eris.Wrap(err, "waynet")
		}
	}

	if w.populate == nil {
		if len(doc.Vobs) > 0 || len(doc.NPCs) > 0 {
			w.logger.Warn().Int("vobs", len(doc.Vobs)).Int("npcs", len(doc.NPCs)).Msg("no populator, skipping placements")
		}
		return nil
	}
	return w.populate(w, doc)
}

func (w *Instance) convertMesh(mesh level.Mesh) ([]content.Vertex, []uint32, []content.Submesh, error) {
	vertices := make([]content.Vertex, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		vertices[i] = content.Vertex{Position: mgl32.Vec3(v.Position), UV: mgl32.Vec2(v.UV)}
	}
	submeshes := make([]content.Submesh, len(mesh.Submeshes))
	for i, sub := range mesh.Submeshes {
		mat, err := w.materials.MustLookup(sub.Material)
		if err != nil {
			return nil, nil, nil, err
		}
		submeshes[i] = content.Submesh{StartIndex: sub.StartIndex, NumIndices: sub.NumIndices, Material: mat}
	}
	return vertices, mesh.Indices, submeshes, nil
}

// Destroy tears down every controller, removes every entity and releases all content. Destroying a
// destroyed world is a no-op.
func (w *Instance) Destroy() {
	if w.stage.Current() == Destroyed {
		return
	}

	if w.storage != nil {
		w.inFrame = false
		w.pending = w.pending[:0]
		clear(w.pendingSet)

		for _, h := range w.storage.Query(ecs.Contains(components.MaskLogic)) {
			if w.storage.Alive(h) {
				w.removeNow(h)
			}
		}
		w.storage.Reset()
		w.staticMeshes.Reset()
		w.worldMeshes.Reset()
		w.textures.Reset()
		w.materials.Reset()
		w.scriptEngine.Reset()
		w.waynet = waynet.New()
	}
	w.transient.VisibleEntities = nil
	w.stage.Store(Destroyed)
	w.logger.Debug().Msg("world destroyed")
}

func (w *Instance) ID() uuid.UUID                       { return w.id }
func (w *Instance) Stage() Stage                        { return w.stage.Current() }
func (w *Instance) Handle() Handle                      { return w.handle }
func (w *Instance) SetHandle(h Handle)                  { w.handle = h }
func (w *Instance) LevelName() string                   { return w.levelName }
func (w *Instance) Logger() *zerolog.Logger             { return &w.logger }
func (w *Instance) Storage() *ecs.Storage               { return w.storage }
func (w *Instance) StaticMeshes() *content.StaticMeshes { return w.staticMeshes }
func (w *Instance) WorldMeshes() *content.WorldMeshes   { return w.worldMeshes }
func (w *Instance) Textures() *content.Textures         { return w.textures }
func (w *Instance) Materials() *content.Materials       { return w.materials }
func (w *Instance) Waynet() *waynet.Waynet              { return w.waynet }
func (w *Instance) ScriptEngine() script.Engine         { return w.scriptEngine }

// InFrame reports whether an update pass is running. Removals requested meanwhile are deferred.
func (w *Instance) InFrame() bool { return w.inFrame }

// Transient returns this frame's transient features.
func (w *Instance) Transient() *TransientFeatures { return &w.transient }

// ComponentDataBundle returns a data bundle of the world's storage. It is valid until the next
// structural change; take a new one every frame.
func (w *Instance) ComponentDataBundle() ecs.DataBundle {
	if w.storage == nil {
		return ecs.DataBundle{}
	}
	return w.storage.Bundle()
}

// LiveEntities returns the number of live entities.
func (w *Instance) LiveEntities() int {
	if w.storage == nil {
		return 0
	}
	return w.storage.Len()
}
