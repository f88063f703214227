// Package ecslog has zerolog helpers that log storage and entity state in a consistent shape.
package ecslog

import (
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/rs/zerolog"
)

type Loggable interface {
	Components() []ecs.ComponentInfo
	Len() int
	Capacity() int
}

func loadComponentIntoArrayLogger(component ecs.ComponentInfo, arrayLogger *zerolog.Array) *zerolog.Array {
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Int("component_id", int(component.ID))
	dictLogger = dictLogger.Str("component_name", component.Name)
	return arrayLogger.Dict(dictLogger)
}

func loadComponentsToEvent(zeroLoggerEvent *zerolog.Event, target Loggable) *zerolog.Event {
	components := target.Components()
	zeroLoggerEvent.Int("total_components", len(components))
	arrayLogger := zerolog.Arr()
	for _, component := range components {
		arrayLogger = loadComponentIntoArrayLogger(component, arrayLogger)
	}
	return zeroLoggerEvent.Array("components", arrayLogger)
}

func loadEntitiesToEvent(zeroLoggerEvent *zerolog.Event, target Loggable) *zerolog.Event {
	zeroLoggerEvent.Int("live_entities", target.Len())
	return zeroLoggerEvent.Int("entity_capacity", target.Capacity())
}

// Components logs the registered components of a storage.
func Components(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	loadComponentsToEvent(zeroLoggerEvent, target).Send()
}

// Entity logs a single entity and its active components.
func Entity(logger *zerolog.Logger, level zerolog.Level, h ecs.EntityHandle, mask ecs.Mask, target Loggable) {
	zeroLoggerEvent := logger.WithLevel(level)
	components := target.Components()
	arrayLogger := zerolog.Arr()
	for _, id := range mask.IDs() {
		if int(id) < len(components) {
			arrayLogger = loadComponentIntoArrayLogger(components[id], arrayLogger)
		}
	}
	zeroLoggerEvent.Array("components", arrayLogger)
	zeroLoggerEvent.Uint32("entity_index", h.Index)
	zeroLoggerEvent.Uint32("entity_generation", h.Generation).Send()
}

// Storage logs the components and entity counts of a storage.
func Storage(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadComponentsToEvent(zeroLoggerEvent, target)
	loadEntitiesToEvent(zeroLoggerEvent, target).Send()
}

// CreateWorldLogger creates a sub logger with the entry {"world_id": worldID}.
func CreateWorldLogger(logger *zerolog.Logger, worldID string) *zerolog.Logger {
	newLogger := logger.With().Str("world_id", worldID).Logger()
	return &newLogger
}

// CreateComponentLogger creates a sub logger with the entry {"component": name}.
func CreateComponentLogger(logger *zerolog.Logger, name string) *zerolog.Logger {
	newLogger := logger.With().Str("component", name).Logger()
	return &newLogger
}
