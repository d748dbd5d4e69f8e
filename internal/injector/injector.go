//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"context"

	"github.com/google/wire"

	"github.com/zeusync/downhill/internal/config"
	"github.com/zeusync/downhill/internal/core/system"
	"github.com/zeusync/downhill/internal/server"
)

// InitializeApp wires the simulation and the spectator server.
func InitializeApp(ctx context.Context, cfg config.Config) (*App, func(), error) {
	wire.Build(
		CoreSet,
		wire.FieldsOf(new(config.Config), "Server"),
		wire.Bind(new(server.Source), new(*system.Simulation)),
		server.NewServer,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// InitializeSimulation wires a headless simulation with its own logger.
func InitializeSimulation(ctx context.Context, cfg config.Config) (*system.Simulation, func(), error) {
	wire.Build(CoreSet)
	return nil, nil, nil
}
