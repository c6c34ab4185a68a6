package sim

import (
	"math"

	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/world"
)

// Hit is a raycast result.
type Hit struct {
	X, Y     int
	Material uint16
}

// Raycast steps from a position along a direction, stopping at the first
// non-air pixel. Returns nil if nothing is hit within maxDistance.
func (w *World) Raycast(fromX, fromY, dirX, dirY, maxDistance float64) *Hit {
	length := math.Hypot(dirX, dirY)
	if length == 0 {
		return nil
	}
	dirX /= length
	dirY /= length

	const step = 0.5
	for dist := 0.0; dist < maxDistance; dist += step {
		px := int(math.Round(fromX + dirX*dist))
		py := int(math.Round(fromY + dirY*dist))

		p, ok := w.chunks.PixelAt(px, py)
		if !ok {
			continue
		}
		if p.Material != material.Air {
			return &Hit{X: px, Y: py, Material: p.Material}
		}
	}
	return nil
}

// RaycastFiltered steps from radius to maxDistance along a direction,
// stopping at the first pixel of the given material type. Useful for sensor
// rays cast from a body surface.
func (w *World) RaycastFiltered(fromX, fromY, dirX, dirY, radius, maxDistance float64, filter material.Type) *Hit {
	length := math.Hypot(dirX, dirY)
	if length == 0 {
		return nil
	}
	dirX /= length
	dirY /= length

	const step = 1.0
	for dist := radius; dist < maxDistance; dist += step {
		px := int(fromX + dirX*dist)
		py := int(fromY + dirY*dist)

		p, ok := w.chunks.PixelAt(px, py)
		if !ok || p.Empty() {
			continue
		}
		if w.mats.Get(p.Material).Type == filter {
			return &Hit{X: px, Y: py, Material: p.Material}
		}
	}
	return nil
}

// Snapshot is a render-side copy of one chunk's visible state.
type Snapshot struct {
	Key    world.ChunkKey
	Pixels []world.Pixel
	Light  []uint8
	// Rect is the dirty rect at snapshot time, nil when nothing changed.
	Rect *world.DirtyRect
}

// Snapshot copies a chunk's pixels and light for rendering and clears its
// dirty rect. Returns nil when the chunk is not loaded.
func (w *World) Snapshot(cx, cy int) *Snapshot {
	c := w.chunks.GetChunk(cx, cy)
	if c == nil {
		return nil
	}

	snap := &Snapshot{
		Key:    world.ChunkKey{X: cx, Y: cy},
		Pixels: append([]world.Pixel(nil), c.Pixels()...),
		Light:  append([]uint8(nil), c.Light[:]...),
	}
	if r := c.DirtyRect(); r != nil {
		copied := *r
		snap.Rect = &copied
	}
	c.ClearDirtyRect()
	return snap
}
