package ecs

import "github.com/rotisserie/eris"

var (
	// ErrStaleHandle is returned when an entity handle no longer refers to a live entity. Script
	// originated handles are expected to be stale now and then, so this is a normal condition.
	ErrStaleHandle = eris.New("stale entity handle")

	// ErrComponentNotActive is returned when the entity is alive but the component bit is not set.
	ErrComponentNotActive = eris.New("component is not active on entity")

	// ErrComponentNotRegistered is returned when a component type or mask bit is unknown to the storage.
	ErrComponentNotRegistered = eris.New("component is not registered")
)
