package injector

import (
	"context"
	"fmt"

	"github.com/google/wire"

	"github.com/zeusync/downhill/internal/config"
	"github.com/zeusync/downhill/internal/core/events/bus"
	"github.com/zeusync/downhill/internal/core/models"
	"github.com/zeusync/downhill/internal/core/observability/log"
	"github.com/zeusync/downhill/internal/core/storage"
	"github.com/zeusync/downhill/internal/core/system"
	"github.com/zeusync/downhill/internal/core/systems/physics"
	"github.com/zeusync/downhill/internal/core/terrain"
	"github.com/zeusync/downhill/internal/server"
)

// App is the fully wired downhill process.
type App struct {
	Config     config.Config
	Logger     log.Log
	Bus        bus.EventBus
	Simulation *system.Simulation
	Server     *server.Server
}

// CoreSet builds the simulation without any network surface.
var CoreSet = wire.NewSet(
	wire.FieldsOf(new(config.Config), "Log", "Physics", "Terrain", "Generator", "Simulation", "Level"),
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvideGenerator,
	ProvideTerrain,
	ProvideRider,
	physics.NewStepper,
	system.New,
)

func ProvideLogger(cfg log.Config) (*log.Logger, func(), error) {
	logger, err := log.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideGenerator(cfg terrain.GeneratorConfig, sim system.Config) (*terrain.Generator, error) {
	return terrain.NewGenerator(cfg, terrain.NewRandomSource(sim.ResolveSeed()))
}

// ProvideTerrain seeds the terrain from the configured level, or generates it.
func ProvideTerrain(
	ctx context.Context,
	level config.Level,
	sim system.Config,
	generator *terrain.Generator,
	cfg terrain.Config,
	logger log.Log,
) (*terrain.Terrain, error) {
	if level.Path == "" {
		return system.NewTerrain(sim, generator, cfg, logger)
	}

	var store storage.LevelStore = storage.NewFileStore(level.Path, logger)
	l, err := store.Load(ctx, level.Number)
	if err != nil {
		return nil, fmt.Errorf("load level: %w", err)
	}
	logger.Info("level loaded", log.Int("number", l.Number), log.String("name", l.Name), log.Int("points", len(l.Points)))
	return terrain.NewFromPoints(l.Points, generator, cfg, logger)
}

func ProvideRider(sim system.Config) *models.Rider {
	return models.NewRider(sim.RiderName, physics.P(sim.StartX, sim.StartY), sim.RiderMass)
}
