package system

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/downhill/internal/core/events/bus"
	"github.com/zeusync/downhill/internal/core/models"
	"github.com/zeusync/downhill/internal/core/observability/log"
	"github.com/zeusync/downhill/internal/core/systems/physics"
	"github.com/zeusync/downhill/internal/core/terrain"
)

var ErrAlreadyRunning = errors.New("simulation already running")

// Snapshot is the observable state after a tick. Vertices is shared with the
// terrain and must not be modified.
type Snapshot struct {
	Tick           uint64            `json:"tick"`
	Rider          models.RiderState `json:"rider"`
	Grounded       bool              `json:"grounded"`
	TerrainVersion uint64            `json:"terrain_version"`
	Vertices       []float32         `json:"vertices,omitempty"`
	Points         int               `json:"points"`
}

// Simulation drives one rider over one terrain.
//
// Tick and Run must be called from a single goroutine. Submit and Latest are
// safe from any goroutine.
type Simulation struct {
	cfg       Config
	terrain   *terrain.Terrain
	rider     *models.Rider
	stepper   *physics.Stepper
	bus       bus.EventBus
	logger    log.Log
	scheduler *Scheduler

	commands chan Command
	tick     uint64
	grounded bool
	running  atomic.Bool

	mu     sync.RWMutex
	latest Snapshot
}

func New(
	cfg Config,
	ground *terrain.Terrain,
	rider *models.Rider,
	stepper *physics.Stepper,
	eventBus bus.EventBus,
	logger log.Log,
) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:       cfg,
		terrain:   ground,
		rider:     rider,
		stepper:   stepper,
		bus:       eventBus,
		logger:    logger.With(log.String("component", "simulation")),
		scheduler: NewScheduler(cfg.TickInterval, cfg.MaxCatchUpTicks),
		commands:  make(chan Command, cfg.CommandBuffer),
	}

	grounded, err := ground.CollidesWith(rider.Position())
	if err != nil {
		return nil, fmt.Errorf("rider start %v: %w", rider.Position(), err)
	}
	s.grounded = grounded
	s.latest = s.snapshot()
	return s, nil
}

func (s *Simulation) Config() Config { return s.cfg }

// Latest returns the snapshot of the last completed tick.
func (s *Simulation) Latest() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Submit queues a command for the start of the next tick.
func (s *Simulation) Submit(cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	select {
	case s.commands <- cmd:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrCommandQueueFull, cmd.Type)
	}
}

// Tick applies queued commands, keeps the terrain ahead of the rider,
// advances physics one step and publishes the outcome.
func (s *Simulation) Tick() (Snapshot, error) {
	s.tick++
	s.drainCommands()

	version := s.terrain.Version()
	if _, err := s.terrain.ExtendIfNeeded(s.rider.Position().X()); err != nil {
		return Snapshot{}, s.fail(fmt.Errorf("extend terrain: %w", err))
	}

	contact, err := s.stepper.Step(s.rider, s.terrain)
	if err != nil {
		return Snapshot{}, s.fail(fmt.Errorf("physics step: %w", err))
	}

	events := make([]bus.Event, 0, 3)
	if v := s.terrain.Version(); v != version {
		events = append(events, bus.NewEvent(EventTerrainExtended, eventSource, TerrainChanged{
			Tick:    s.tick,
			Version: v,
			Points:  s.terrain.Len(),
			FirstX:  s.terrain.First().X(),
			LastX:   s.terrain.Last().X(),
		}, nil))
	}
	if contact.Grounded != s.grounded {
		pos := s.rider.Position()
		eventType := EventRiderAirborne
		if contact.Grounded {
			eventType = EventRiderLanded
		}
		events = append(events, bus.NewEvent(eventType, eventSource, RiderContact{Tick: s.tick, X: pos.X(), Y: pos.Y()}, nil))
		s.grounded = contact.Grounded
	}

	snap := s.snapshot()
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()

	events = append(events, bus.NewEvent(EventTickCompleted, eventSource, snap, nil))
	if err = s.bus.PublishBatch(events...); err != nil {
		s.logger.Warn("event handlers failed", log.Uint64("tick", s.tick), log.Error(err))
	}
	return snap, nil
}

// Run ticks on the configured interval until ctx is done or a tick fails.
func (s *Simulation) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	s.scheduler.Start(time.Now())
	timer := time.NewTimer(s.scheduler.Until(time.Now()))
	defer timer.Stop()

	s.logger.Info("simulation started",
		log.Duration("tick_interval", s.cfg.TickInterval),
		log.Stringer("rider", s.rider.Position()),
	)

	for {
		select {
		case <-ctx.Done():
			status := s.scheduler.Status()
			s.logger.Info("simulation stopped",
				log.Uint64("tick", s.tick),
				log.Uint64("missed_ticks", status.MissedExecutions),
			)
			return nil
		case <-timer.C:
		}

		for range s.scheduler.Due(time.Now()) {
			if _, err := s.Tick(); err != nil {
				return err
			}
		}
		timer.Reset(s.scheduler.Until(time.Now()))
	}
}

func (s *Simulation) drainCommands() {
	for {
		select {
		case cmd := <-s.commands:
			cmd.apply(s.rider)
			s.logger.Debug("command applied", log.String("type", string(cmd.Type)), log.Uint64("tick", s.tick))
		default:
			return
		}
	}
}

func (s *Simulation) fail(err error) error {
	s.logger.Error("tick failed", log.Uint64("tick", s.tick), log.Error(err))
	if perr := s.bus.Publish(bus.NewEvent(EventTickFailed, eventSource, TickFailed{Tick: s.tick, Err: err}, nil)); perr != nil {
		s.logger.Warn("event handlers failed", log.Uint64("tick", s.tick), log.Error(perr))
	}
	return err
}

func (s *Simulation) snapshot() Snapshot {
	return Snapshot{
		Tick:           s.tick,
		Rider:          s.rider.State(),
		Grounded:       s.grounded,
		TerrainVersion: s.terrain.Version(),
		Vertices:       s.terrain.VertexGeometry(),
		Points:         s.terrain.Len(),
	}
}

// NewTerrain builds the starting terrain: a flat run-up of cfg.RunUp behind
// the start, then one generated unit.
func NewTerrain(cfg Config, generator *terrain.Generator, terrainCfg terrain.Config, logger log.Log) (*terrain.Terrain, error) {
	seed := physics.P(cfg.StartX, 0)
	points := generator.Extend(seed)
	if cfg.RunUp > 0 {
		points = append([]physics.Point{physics.P(cfg.StartX-cfg.RunUp, 0)}, points...)
	}
	return terrain.NewFromPoints(points, generator, terrainCfg, logger)
}
