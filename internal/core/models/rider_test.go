package models

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/downhill/internal/core/systems/physics"
)

func TestNewRider(t *testing.T) {
	r := NewRider("rider", physics.P(3, 4), 0)

	assert.NotEqual(t, uuid.Nil, r.ID())
	assert.Equal(t, "rider", r.Name())
	assert.Equal(t, DefaultMass, r.Mass())
	assert.Equal(t, physics.P(3, 4), r.Position())

	tx, ty := r.Transform().Translation()
	assert.Equal(t, -3.0, tx)
	assert.Equal(t, 4.0, ty)
}

func TestTranslateUsesWorldSpace(t *testing.T) {
	r := NewRider("rider", physics.P(0, 0), 1)
	r.Translate(physics.V(2, -1))
	assert.Equal(t, physics.P(2, -1), r.Position())

	r.SetPosition(physics.P(5, 1))
	assert.Equal(t, physics.P(5, 1), r.Position())
}

func TestRotateKeepsPosition(t *testing.T) {
	r := NewRider("rider", physics.P(7, 2), 1)
	r.Rotate(math.Pi / 6)

	pos := r.Position()
	assert.InDelta(t, 7, pos.X(), 1e-12)
	assert.InDelta(t, 2, pos.Y(), 1e-12)

	up := r.Up()
	assert.InDelta(t, -0.5, up.X(), 1e-12)
	assert.InDelta(t, math.Sqrt(3)/2, up.Y(), 1e-12)
	assert.InDelta(t, math.Pi/6, r.State().Angle, 1e-12)
}

func TestDragging(t *testing.T) {
	r := NewRider("rider", physics.P(0, 0), 1)
	r.SetVelocity(physics.V(3, 1))
	r.SetAcceleration(physics.V(0, -9.81))

	assert.False(t, r.Nudge(physics.V(1, 1)))
	assert.Equal(t, physics.P(0, 0), r.Position())

	r.StartDragging()
	assert.True(t, r.IsDragged())
	assert.Equal(t, physics.V(0, 0), r.Velocity())
	assert.Equal(t, physics.V(0, 0), r.Acceleration())

	require.True(t, r.Nudge(physics.V(1, 1)))
	assert.Equal(t, physics.P(1, 1), r.Position())

	r.EndDragging()
	assert.False(t, r.IsDragged())
}

func TestState(t *testing.T) {
	r := NewRider("rider", physics.P(1, 2), 2)
	r.SetVelocity(physics.V(0.5, -1))

	s := r.State()
	assert.Equal(t, r.ID(), s.ID)
	assert.Equal(t, 1.0, s.X)
	assert.Equal(t, 2.0, s.Y)
	assert.Equal(t, 0.5, s.VelocityX)
	assert.Equal(t, -1.0, s.VelocityY)
	assert.Equal(t, r.Matrix(), s.Matrix)
	assert.Equal(t, float32(-1), s.Matrix[12])
}
