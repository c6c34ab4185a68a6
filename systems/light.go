package systems

import (
	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/world"
)

// lightNode is one queued flood-fill entry in world coordinates.
type lightNode struct {
	wx, wy int
	level  uint8
}

// Light runs flood-fill light propagation over the active chunks. Levels
// range 0..15. Transmission loses 1 through gases, 2 through liquids, and
// everything through solids and powders. Light may cross chunk boundaries.
type Light struct {
	mats         *material.Registry
	surfaceLevel int

	queue []lightNode
}

// NewLight creates the propagation system. Sky light seeds air pixels
// strictly above surfaceLevel.
func NewLight(mats *material.Registry, surfaceLevel int) *Light {
	return &Light{
		mats:         mats,
		surfaceLevel: surfaceLevel,
		queue:        make([]lightNode, 0, 8192),
	}
}

// Propagate recomputes lighting: reset dirty chunks, seed sky light and
// emissive materials, flood-fill, then mark active chunks clean.
func (l *Light) Propagate(m *world.Manager, skyLight uint8, active []world.ChunkKey) {
	l.reset(m, active)
	l.seedSky(m, skyLight, active)
	l.seedEmitters(m, active)
	l.floodFill(m)

	for _, key := range active {
		if c := m.Get(key); c != nil {
			c.LightDirty = false
		}
	}
}

// reset zeroes the light arrays of dirty active chunks. Chunk-local, so a
// parallel pass would be safe here; kept serial with the rest of the step.
func (l *Light) reset(m *world.Manager, active []world.ChunkKey) {
	for _, key := range active {
		c := m.Get(key)
		if c == nil || !c.LightDirty {
			continue
		}
		for i := range c.Light {
			c.Light[i] = 0
		}
	}
}

// seedSky assigns the sky-light value to every air pixel strictly above the
// surface level.
func (l *Light) seedSky(m *world.Manager, skyLight uint8, active []world.ChunkKey) {
	if skyLight == 0 {
		return // night
	}

	for _, key := range active {
		c := m.Get(key)
		if c == nil {
			continue
		}
		ox, oy := world.ChunkOrigin(key)

		// Skip chunks entirely at or below the surface.
		if oy+world.ChunkSize <= l.surfaceLevel {
			continue
		}

		for ly := 0; ly < world.ChunkSize; ly++ {
			wy := oy + ly
			if wy <= l.surfaceLevel {
				continue
			}
			for lx := 0; lx < world.ChunkSize; lx++ {
				if c.GetMaterial(lx, ly) != material.Air {
					continue
				}
				c.SetLight(lx, ly, skyLight)
				l.queue = append(l.queue, lightNode{wx: ox + lx, wy: wy, level: skyLight})
			}
		}
	}
}

// seedEmitters places each emissive material's emission value.
func (l *Light) seedEmitters(m *world.Manager, active []world.ChunkKey) {
	for _, key := range active {
		c := m.Get(key)
		if c == nil {
			continue
		}
		ox, oy := world.ChunkOrigin(key)

		for ly := 0; ly < world.ChunkSize; ly++ {
			for lx := 0; lx < world.ChunkSize; lx++ {
				emission := l.mats.Get(c.GetMaterial(lx, ly)).Emission
				if emission == 0 {
					continue
				}
				c.SetLight(lx, ly, emission)
				l.queue = append(l.queue, lightNode{wx: ox + lx, wy: oy + ly, level: emission})
			}
		}
	}
}

// floodFill runs BFS from all seeds. Light diminishes monotonically; zero
// never enqueues, so the fill terminates.
func (l *Light) floodFill(m *world.Manager) {
	for len(l.queue) > 0 {
		node := l.queue[0]
		l.queue = l.queue[1:]

		if node.level == 0 {
			continue
		}

		for _, d := range [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}} {
			nx, ny := node.wx+d[0], node.wy+d[1]
			key, lx, ly := world.WorldToChunk(nx, ny)
			c := m.Get(key)
			if c == nil {
				continue
			}

			transmitted := l.transmit(node.level, l.mats.Get(c.GetMaterial(lx, ly)).Type)
			if transmitted <= c.GetLight(lx, ly) {
				continue
			}
			c.SetLight(lx, ly, transmitted)
			if transmitted > 0 {
				l.queue = append(l.queue, lightNode{wx: nx, wy: ny, level: transmitted})
			}
		}
	}
	l.queue = l.queue[:0]
}

// transmit attenuates light through a material type.
func (l *Light) transmit(level uint8, t material.Type) uint8 {
	switch t {
	case material.Gas:
		if level >= 1 {
			return level - 1
		}
		return 0
	case material.Liquid:
		if level >= 2 {
			return level - 2
		}
		return 0
	default:
		// Solids and powders block light completely.
		return 0
	}
}
