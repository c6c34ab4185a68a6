// Package components defines the ECS components used by the debris system.
package components

import "github.com/google/uuid"

// Position is a floating-point world position (a body's center).
type Position struct {
	X, Y float64
}

// Velocity is a velocity in pixels per second.
type Velocity struct {
	X, Y float64
}

// Offset is a pixel position relative to a body's center.
type Offset struct {
	DX, DY int
}

// DebrisBody is a kinematic collection of pixels detached from the grid.
// Its pixels are keyed by offset from the body center; the axis-aligned
// bounds are cached at spawn time.
type DebrisBody struct {
	ID     uuid.UUID
	Pixels map[Offset]uint16

	MinX, MinY int
	MaxX, MaxY int
}

// NewDebrisBody builds a body from a pixel map, caching its bounds.
func NewDebrisBody(pixels map[Offset]uint16) DebrisBody {
	body := DebrisBody{ID: uuid.New(), Pixels: pixels}
	first := true
	for off := range pixels {
		if first {
			body.MinX, body.MaxX = off.DX, off.DX
			body.MinY, body.MaxY = off.DY, off.DY
			first = false
			continue
		}
		body.MinX = min(body.MinX, off.DX)
		body.MaxX = max(body.MaxX, off.DX)
		body.MinY = min(body.MinY, off.DY)
		body.MaxY = max(body.MaxY, off.DY)
	}
	return body
}
