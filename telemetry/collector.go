// Package telemetry collects per-step simulation counters and aggregates
// them into windowed statistics.
package telemetry

import "gonum.org/v1/gonum/stat"

// Recorder receives simulation events. Systems call it on the hot path, so
// implementations must be allocation-free.
type Recorder interface {
	PixelMoved()
	Reaction()
	StateChange()
	Ignition()
	StructuralConversion(pixels int)
	DebrisSpawned()
	DebrisSettled(placed, dropped int)
	EndStep()
}

// Noop discards all events.
type Noop struct{}

func (Noop) PixelMoved()               {}
func (Noop) Reaction()                 {}
func (Noop) StateChange()              {}
func (Noop) Ignition()                 {}
func (Noop) StructuralConversion(int)  {}
func (Noop) DebrisSpawned()            {}
func (Noop) DebrisSettled(int, int)    {}
func (Noop) EndStep()                  {}

// StepCounts are the counters for a single step.
type StepCounts struct {
	Moves         int
	Reactions     int
	StateChanges  int
	Ignitions     int
	Structural    int
	DebrisSpawned int
	DebrisPlaced  int
	DebrisDropped int
}

// WindowStats summarizes a window of steps for CSV export.
type WindowStats struct {
	Window        int     `csv:"window"`
	Steps         int     `csv:"steps"`
	MovesMean     float64 `csv:"moves_mean"`
	MovesStdDev   float64 `csv:"moves_stddev"`
	MovesTotal    int     `csv:"moves_total"`
	Reactions     int     `csv:"reactions"`
	StateChanges  int     `csv:"state_changes"`
	Ignitions     int     `csv:"ignitions"`
	Structural    int     `csv:"structural_pixels"`
	DebrisSpawned int     `csv:"debris_spawned"`
	DebrisPlaced  int     `csv:"debris_placed"`
	DebrisDropped int     `csv:"debris_dropped"`
}

// Collector implements Recorder, accumulating counts per step and rolling
// them into windows of a fixed number of steps.
type Collector struct {
	windowSteps int

	current StepCounts
	steps   int
	windows int

	moves         []float64
	reactions     int
	stateChanges  int
	ignitions     int
	structural    int
	debrisSpawned int
	debrisPlaced  int
	debrisDropped int

	completed []WindowStats
}

// NewCollector creates a collector that closes a window every windowSteps
// steps.
func NewCollector(windowSteps int) *Collector {
	if windowSteps <= 0 {
		windowSteps = 600
	}
	return &Collector{
		windowSteps: windowSteps,
		moves:       make([]float64, 0, windowSteps),
	}
}

func (c *Collector) PixelMoved()  { c.current.Moves++ }
func (c *Collector) Reaction()    { c.current.Reactions++ }
func (c *Collector) StateChange() { c.current.StateChanges++ }
func (c *Collector) Ignition()    { c.current.Ignitions++ }

func (c *Collector) StructuralConversion(pixels int) {
	c.current.Structural += pixels
}

func (c *Collector) DebrisSpawned() { c.current.DebrisSpawned++ }

func (c *Collector) DebrisSettled(placed, dropped int) {
	c.current.DebrisPlaced += placed
	c.current.DebrisDropped += dropped
}

// EndStep folds the current step into the window, closing the window when
// full.
func (c *Collector) EndStep() {
	c.moves = append(c.moves, float64(c.current.Moves))
	c.reactions += c.current.Reactions
	c.stateChanges += c.current.StateChanges
	c.ignitions += c.current.Ignitions
	c.structural += c.current.Structural
	c.debrisSpawned += c.current.DebrisSpawned
	c.debrisPlaced += c.current.DebrisPlaced
	c.debrisDropped += c.current.DebrisDropped

	c.current = StepCounts{}
	c.steps++

	if c.steps >= c.windowSteps {
		c.closeWindow()
	}
}

// Current returns the counters accumulated in the step in progress.
func (c *Collector) Current() StepCounts {
	return c.current
}

// Flush closes any partial window.
func (c *Collector) Flush() {
	if c.steps > 0 {
		c.closeWindow()
	}
}

// DrainWindows returns and clears all completed windows.
func (c *Collector) DrainWindows() []WindowStats {
	out := c.completed
	c.completed = nil
	return out
}

func (c *Collector) closeWindow() {
	total := 0
	for _, m := range c.moves {
		total += int(m)
	}

	ws := WindowStats{
		Window:        c.windows,
		Steps:         c.steps,
		MovesMean:     stat.Mean(c.moves, nil),
		MovesTotal:    total,
		Reactions:     c.reactions,
		StateChanges:  c.stateChanges,
		Ignitions:     c.ignitions,
		Structural:    c.structural,
		DebrisSpawned: c.debrisSpawned,
		DebrisPlaced:  c.debrisPlaced,
		DebrisDropped: c.debrisDropped,
	}
	if len(c.moves) > 1 {
		ws.MovesStdDev = stat.StdDev(c.moves, nil)
	}
	c.completed = append(c.completed, ws)

	c.windows++
	c.steps = 0
	c.moves = c.moves[:0]
	c.reactions = 0
	c.stateChanges = 0
	c.ignitions = 0
	c.structural = 0
	c.debrisSpawned = 0
	c.debrisPlaced = 0
	c.debrisDropped = 0
}
