package storage

import (
	"context"
	"errors"

	"github.com/zeusync/downhill/internal/core/systems/physics"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidLevel  = errors.New("invalid level")
)

// Level is a hand-made terrain in world space.
type Level struct {
	Number int
	Name   string
	Points []physics.Point
}

// LevelStore loads and saves levels by number.
type LevelStore interface {
	Load(ctx context.Context, number int) (Level, error)
	List(ctx context.Context) ([]Level, error)
	Save(ctx context.Context, level Level) error
}
