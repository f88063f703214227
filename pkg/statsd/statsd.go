// Package statsd is a helper package that wraps the few statsd calls the engine makes.
// It hides the datadog dependency so migrating to another client only touches this file.
package statsd

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

func Client() ddstatsd.ClientInterface {
	return client
}

// SetClient replaces the global client. Tests use it to capture metrics.
func SetClient(c ddstatsd.ClientInterface) {
	client = c
}

func EmitFrameStat(start time.Time, worldID string) {
	duration := time.Since(start)
	if err := Client().Timing("frame", duration, []string{"world:" + worldID}, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit frame stat: %v", err)
	}
}

func EmitLiveEntities(count int, worldID string) {
	if err := Client().Gauge("entities.live", float64(count), []string{"world:" + worldID}, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit live entity stat: %v", err)
	}
}

func EmitLevelLoadStat(start time.Time, levelName string, failed bool) {
	duration := time.Since(start)
	tags := []string{"level:" + levelName}
	if failed {
		tags = append(tags, "status:failed")
	} else {
		tags = append(tags, "status:ok")
	}
	if err := Client().Timing("level.load", duration, tags, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit level load stat: %v", err)
	}
}

func Init(address string, tags []string) error {
	if address == "" {
		return eris.New("address must not be empty")
	}
	opts := []ddstatsd.Option{
		// The statsd namespace is the prefix of all metrics
		ddstatsd.WithNamespace("slotworld"),
	}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}

	newClient, err := ddstatsd.New(address, opts...)
	if err != nil {
		return eris.Wrap(err, "failed to create statsd client")
	}
	client = newClient
	return nil
}
