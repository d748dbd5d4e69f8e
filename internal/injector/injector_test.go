package injector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/downhill/internal/config"
	"github.com/zeusync/downhill/internal/core/storage"
)

func quietConfig() config.Config {
	cfg := config.Default()
	cfg.Log.Level = "error"
	return cfg
}

func TestInitializeApp(t *testing.T) {
	app, cleanup, err := InitializeApp(context.Background(), quietConfig())
	require.NoError(t, err)
	defer cleanup()
	defer app.Server.Close()

	snap, err := app.Simulation.Tick()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Tick)
	assert.Equal(t, snap, app.Simulation.Latest())
	assert.Equal(t, 0, app.Server.ClientCount())
}

func TestInitializeSimulationFromLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`levels:
  - number: 1
    name: bump
    points: "-20 0 0,4 0 0,6 1 0,8 0 0,30 0 0"
`), 0o644))

	cfg := quietConfig()
	cfg.Level = config.Level{Path: path, Number: 1}

	sim, cleanup, err := InitializeSimulation(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	snap := sim.Latest()
	assert.Equal(t, 5, snap.Points)
	assert.Equal(t, []float32{-20, 0, 0}, snap.Vertices[:3])

	cfg.Level.Number = 2
	_, _, err = InitializeSimulation(context.Background(), cfg)
	assert.ErrorIs(t, err, storage.ErrLevelNotFound)
}
