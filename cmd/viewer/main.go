package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/downhill/internal/config"
	"github.com/zeusync/downhill/internal/core/system"
	"github.com/zeusync/downhill/internal/injector"
)

const (
	frameInterval = 33 * time.Millisecond
	speedStep     = 1.0
	jumpSpeed     = 5.0
	nudgeStep     = 0.5
	defaultZoom   = 4.0
)

type viewer struct {
	screen   tcell.Screen
	sim      *system.Simulation
	zoom     float64
	vertices []float32
	version  uint64
	status   string
}

func main() {
	configPath := flag.String("config", "", "path to a .yaml or .toml config file")
	logPath := flag.String("log", "downhill-viewer.log", "log file; the terminal belongs to the viewer")
	flag.Parse()

	if err := run(*configPath, *logPath); err != nil {
		fmt.Fprintln(os.Stderr, "viewer:", err)
		os.Exit(1)
	}
}

func run(configPath, logPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.Log.Output = logPath

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim, cleanup, err := injector.InitializeSimulation(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err = screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	v := &viewer{screen: screen, sim: sim, zoom: defaultZoom}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	simErr := make(chan error, 1)
	go func() { simErr <- sim.Run(ctx) }()

	return v.loop(ctx, simErr)
}

func (v *viewer) loop(ctx context.Context, simErr <-chan error) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-simErr:
			return err
		case ev := <-events:
			if !v.handleInput(ev) {
				return nil
			}
		case <-ticker.C:
			snap := v.sim.Latest()
			if snap.Vertices != nil && (v.vertices == nil || snap.TerrainVersion != v.version) {
				v.vertices, v.version = snap.Vertices, snap.TerrainVersion
			}
			draw(v.screen, snap, v.vertices, v.zoom, v.status)
		}
	}
}

// handleInput maps keys to simulation commands. It returns false to quit.
func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
		if cmd, ok := commandFor(ev, v.sim.Latest()); ok {
			v.status = ""
			if err := v.sim.Submit(cmd); err != nil {
				v.status = err.Error()
			}
		}
		switch {
		case ev.Key() == tcell.KeyRune && ev.Rune() == '+':
			v.zoom = min(v.zoom*1.25, 32)
		case ev.Key() == tcell.KeyRune && ev.Rune() == '-':
			v.zoom = max(v.zoom/1.25, 0.5)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// commandFor translates a key press given the current rider state.
func commandFor(ev *tcell.EventKey, snap system.Snapshot) (system.Command, bool) {
	rider := snap.Rider
	if ev.Key() == tcell.KeyRune && ev.Rune() == ' ' {
		if rider.Dragged {
			return system.Command{Type: system.CommandEndDrag}, true
		}
		return system.Command{Type: system.CommandStartDrag}, true
	}

	var dx, dy float64
	switch ev.Key() {
	case tcell.KeyLeft:
		dx = -1
	case tcell.KeyRight:
		dx = 1
	case tcell.KeyUp:
		dy = 1
	case tcell.KeyDown:
		dy = -1
	default:
		return system.Command{}, false
	}

	if rider.Dragged {
		return system.Command{Type: system.CommandNudge, X: dx * nudgeStep, Y: dy * nudgeStep}, true
	}
	vx, vy := rider.VelocityX+dx*speedStep, rider.VelocityY
	if dy > 0 && snap.Grounded {
		vy = jumpSpeed
	}
	return system.Command{Type: system.CommandSetVelocity, X: vx, Y: vy}, true
}
