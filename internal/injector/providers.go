package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/spatialcore/internal/core/binding"
	"github.com/zeusync/spatialcore/internal/core/config"
	"github.com/zeusync/spatialcore/internal/core/events/bus"
	"github.com/zeusync/spatialcore/internal/core/observability/log"
	"github.com/zeusync/spatialcore/internal/core/physics"
	"github.com/zeusync/spatialcore/internal/core/scene"
	"github.com/zeusync/spatialcore/internal/core/world"
)

// WorldSet builds a world and everything it depends on from a config.Config.
var WorldSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideSimulation,
	ProvideBinding,
	bus.New,
	scene.New,
	world.New,
)

// ProvideLogger builds the process logger from the log section.
func ProvideLogger(cfg config.Config) *log.Logger {
	return log.New(cfg.Log.Logger())
}

func ProvideSimulation(cfg config.Config) *physics.Simulation {
	return physics.NewSimulation(physics.Config{
		Gravity:    cfg.Physics.Gravity,
		Workers:    cfg.Physics.Workers,
		SleepDelay: cfg.Physics.SleepDelay,
	})
}

func ProvideBinding(sim *physics.Simulation, cfg config.Config, logger log.Log) *binding.Binding {
	return binding.New(sim, binding.Options{
		KinematicActivityThreshold: cfg.Physics.KinematicActivityThreshold,
		DynamicActivityThreshold:   cfg.Physics.DynamicActivityThreshold,
	}, logger.With(log.String("component", "binding")))
}
