package systems

import (
	"github.com/pthm-cable/granule/world"
)

// Temperature diffuses the coarse 8x8 per-chunk heat grid. Diffusion stays
// within the chunk; boundaries act as insulators. Updates are throttled to
// every UpdateEvery ticks.
type Temperature struct {
	diffusionRate float32
	updateEvery   int

	counter int
	scratch [world.CoarseArea]float32
}

// NewTemperature creates the diffusion system.
func NewTemperature(diffusionRate float64, updateEvery int) *Temperature {
	if updateEvery < 1 {
		updateEvery = 1
	}
	return &Temperature{
		diffusionRate: float32(diffusionRate),
		updateEvery:   updateEvery,
	}
}

// Update diffuses every active chunk if the throttle allows this tick.
func (t *Temperature) Update(m *world.Manager, active []world.ChunkKey) {
	t.counter++
	if t.counter < t.updateEvery {
		return
	}
	t.counter = 0

	for _, key := range active {
		if c := m.Get(key); c != nil {
			t.diffuseChunk(c)
		}
	}
}

// diffuseChunk moves every cell toward the average of its von Neumann
// neighbors. Double-buffered: reads come from the old grid.
func (t *Temperature) diffuseChunk(c *world.Chunk) {
	for cy := 0; cy < world.CoarseSize; cy++ {
		for cx := 0; cx < world.CoarseSize; cx++ {
			i := cy*world.CoarseSize + cx
			current := c.Temperature[i]

			var sum float32
			var count int
			for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				nx, ny := cx+d[0], cy+d[1]
				if nx < 0 || nx >= world.CoarseSize || ny < 0 || ny >= world.CoarseSize {
					continue
				}
				sum += c.Temperature[ny*world.CoarseSize+nx]
				count++
			}

			if count > 0 {
				avg := sum / float32(count)
				t.scratch[i] = current + (avg-current)*t.diffusionRate
			} else {
				t.scratch[i] = current
			}
		}
	}
	c.Temperature = t.scratch
}
