package system

import (
	"errors"
	"fmt"

	"github.com/zeusync/downhill/internal/core/models"
	"github.com/zeusync/downhill/internal/core/systems/physics"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrCommandQueueFull = errors.New("command queue full")
)

type CommandType string

const (
	// CommandSetVelocity replaces the rider velocity with (X, Y).
	CommandSetVelocity CommandType = "set_velocity"
	CommandStartDrag   CommandType = "start_drag"
	CommandEndDrag     CommandType = "end_drag"
	// CommandNudge moves a dragged rider by (X, Y). Ignored otherwise.
	CommandNudge CommandType = "nudge"
)

// Command is user input queued for the next tick.
type Command struct {
	Type CommandType `json:"type"`
	X    float64     `json:"x,omitempty"`
	Y    float64     `json:"y,omitempty"`
}

func (c Command) Validate() error {
	switch c.Type {
	case CommandSetVelocity, CommandStartDrag, CommandEndDrag, CommandNudge:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
}

func (c Command) apply(r *models.Rider) {
	switch c.Type {
	case CommandSetVelocity:
		r.SetVelocity(physics.V(c.X, c.Y))
	case CommandStartDrag:
		r.StartDragging()
	case CommandEndDrag:
		r.EndDragging()
	case CommandNudge:
		r.Nudge(physics.V(c.X, c.Y))
	}
}
