package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/downhill/internal/core/observability/log"
	"github.com/zeusync/downhill/internal/core/systems/physics"
)

const levelsYAML = `levels:
  - number: 2
    name: second
    points: "0 0 0,4 1 0,8 0 0"
  - number: 1
    name: mirrored
    render_space: true
    points: "1.0f 1.0f 0.0f,-0.0f -0.0f 0.0f,-3.0f -0.0f 0.0f"
`

func writeLevels(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "levels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileStoreLoad(t *testing.T) {
	store := NewFileStore(writeLevels(t, levelsYAML), log.NewNop())
	ctx := context.Background()

	level, err := store.Load(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "second", level.Name)
	assert.Equal(t, []physics.Point{physics.P(0, 0), physics.P(4, 1), physics.P(8, 0)}, level.Points)

	mirrored, err := store.Load(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mirrored.Points, 3)
	assert.Equal(t, -1.0, mirrored.Points[0].X())
	assert.Equal(t, 3.0, mirrored.Points[2].X())

	_, err = store.Load(ctx, 9)
	assert.ErrorIs(t, err, ErrLevelNotFound)
}

func TestFileStoreList(t *testing.T) {
	store := NewFileStore(writeLevels(t, levelsYAML), log.NewNop())
	levels, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, 1, levels[0].Number)
	assert.Equal(t, 2, levels[1].Number)
}

func TestFileStoreRejectsBadLevels(t *testing.T) {
	cases := map[string]string{
		"unparsable": "levels:\n  - number: 1\n    points: \"0 0\"\n",
		"unordered":  "levels:\n  - number: 1\n    points: \"4 0 0,0 0 0\"\n",
		"single":     "levels:\n  - number: 1\n    points: \"4 0 0\"\n",
		"not yaml":   "levels: [",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewFileStore(writeLevels(t, content), log.NewNop())
			_, err := store.Load(context.Background(), 1)
			assert.ErrorIs(t, err, ErrInvalidLevel)
		})
	}
}

func TestFileStoreSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levels.yaml")
	store := NewFileStore(path, log.NewNop())
	ctx := context.Background()

	level := Level{Number: 3, Name: "saved", Points: []physics.Point{physics.P(0, 0), physics.P(2.5, -1)}}
	require.NoError(t, store.Save(ctx, level))

	got, err := store.Load(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, level, got)

	level.Name = "renamed"
	require.NoError(t, store.Save(ctx, level))
	levels, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, "renamed", levels[0].Name)

	err = store.Save(ctx, Level{Number: 4, Points: []physics.Point{physics.P(0, 0)}})
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestFileStoreHonorsContext(t *testing.T) {
	store := NewFileStore(writeLevels(t, levelsYAML), log.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Load(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.yaml"), log.NewNop())
	_, err := store.List(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
