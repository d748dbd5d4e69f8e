package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/downhill/internal/core/system"
)

// Camera maps world coordinates to screen cells around the rider.
type Camera struct {
	Width, Height int
	// CellsPerUnit is the horizontal zoom; rows use half of it since
	// terminal cells are about twice as tall as wide.
	CellsPerUnit float64
	CenterX      float64
	CenterY      float64
}

func (c Camera) Column(x float64) int {
	return c.Width/2 + int(math.Round((x-c.CenterX)*c.CellsPerUnit))
}

func (c Camera) Row(y float64) int {
	return c.Height/2 - int(math.Round((y-c.CenterY)*c.CellsPerUnit/2))
}

// WorldX returns the world x at the center of a column.
func (c Camera) WorldX(col int) float64 {
	return c.CenterX + float64(col-c.Width/2)/c.CellsPerUnit
}

// heightAt interpolates the terrain height at x from (x, y, z) vertex
// triples. Walls report their top.
func heightAt(vertices []float32, x float64) (float64, bool) {
	n := len(vertices) / 3
	for i := 0; i+1 < n; i++ {
		x0, y0 := float64(vertices[3*i]), float64(vertices[3*i+1])
		x1, y1 := float64(vertices[3*i+3]), float64(vertices[3*i+4])
		if x < x0 || x > x1 {
			continue
		}
		if x0 == x1 {
			return math.Max(y0, y1), true
		}
		return y0 + (y1-y0)*(x-x0)/(x1-x0), true
	}
	return 0, false
}

var (
	groundStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	riderStyle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	dragStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed).Reverse(true)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

// draw renders the terrain under the rider, the rider and a status line.
func draw(screen tcell.Screen, snap system.Snapshot, vertices []float32, zoom float64, message string) {
	screen.Clear()
	width, height := screen.Size()
	cam := Camera{Width: width, Height: height, CellsPerUnit: zoom, CenterX: snap.Rider.X, CenterY: snap.Rider.Y}

	for col := 0; col < width; col++ {
		h, ok := heightAt(vertices, cam.WorldX(col))
		if !ok {
			continue
		}
		for row := max(0, cam.Row(h)); row < height-1; row++ {
			screen.SetContent(col, row, '▒', nil, groundStyle)
		}
	}

	style := riderStyle
	if snap.Rider.Dragged {
		style = dragStyle
	}
	screen.SetContent(cam.Column(snap.Rider.X), cam.Row(snap.Rider.Y)-1, '@', nil, style)

	status := fmt.Sprintf(" tick %d  x %.2f  y %.2f  v (%.2f, %.2f)  grounded %t  dragged %t  terrain %d pts ",
		snap.Tick, snap.Rider.X, snap.Rider.Y, snap.Rider.VelocityX, snap.Rider.VelocityY,
		snap.Grounded, snap.Rider.Dragged, snap.Points)
	if message != "" {
		status += " " + message + " "
	}
	for i, r := range []rune(status) {
		if i >= width {
			break
		}
		screen.SetContent(i, height-1, r, nil, statusStyle)
	}
	screen.Show()
}
