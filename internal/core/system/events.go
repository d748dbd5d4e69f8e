package system

// Event types published on the simulation bus.
const (
	// EventTickCompleted carries the tick's Snapshot.
	EventTickCompleted = "tick.completed"
	// EventTerrainExtended carries TerrainChanged whenever the window moved.
	EventTerrainExtended = "terrain.extended"
	// EventRiderLanded and EventRiderAirborne carry RiderContact.
	EventRiderLanded   = "rider.landed"
	EventRiderAirborne = "rider.airborne"
	// EventTickFailed carries TickFailed. The loop stops after it.
	EventTickFailed = "tick.failed"
)

const eventSource = "simulation"

type TerrainChanged struct {
	Tick    uint64  `json:"tick"`
	Version uint64  `json:"version"`
	Points  int     `json:"points"`
	FirstX  float64 `json:"first_x"`
	LastX   float64 `json:"last_x"`
}

type RiderContact struct {
	Tick uint64  `json:"tick"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type TickFailed struct {
	Tick uint64
	Err  error
}
