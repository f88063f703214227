package world

import "sync/atomic"

type Stage string

const (
	Uninitialized Stage = "Uninitialized" // The default stage of a world
	Initialized   Stage = "Initialized"   // Allocators exist, no entity is alive
	Populated     Stage = "Populated"     // At least one entity is alive
	Destroyed     Stage = "Destroyed"     // The world was torn down and can't be used again
)

type stageManager struct {
	current atomic.Value
}

func newStageManager() *stageManager {
	m := &stageManager{}
	m.Store(Uninitialized)
	return m
}

func (m *stageManager) CompareAndSwap(oldStage, newStage Stage) (swapped bool) {
	return m.current.CompareAndSwap(oldStage, newStage)
}

func (m *stageManager) Current() Stage {
	return m.current.Load().(Stage) //nolint:errcheck // only stages are stored
}

func (m *stageManager) Store(val Stage) {
	m.current.Store(val)
}

// live reports whether entities can be added or updated.
func (m *stageManager) live() bool {
	cur := m.Current()
	return cur == Initialized || cur == Populated
}
