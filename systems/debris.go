package systems

import (
	"math"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"
	"github.com/rs/zerolog/log"

	"github.com/pthm-cable/granule/components"
	"github.com/pthm-cable/granule/telemetry"
	"github.com/pthm-cable/granule/world"
)

// Debris manages kinematic falling bodies as ECS entities. Bodies integrate
// ballistically, collide against the grid at the rounded positions of their
// pixels, and settle back into empty cells. No rotation, no stacking, no
// merging.
type Debris struct {
	ecsWorld *ecs.World
	mapper   *ecs.Map3[components.Position, components.Velocity, components.DebrisBody]
	filter   *ecs.Filter3[components.Position, components.Velocity, components.DebrisBody]

	gravity float64
	count   int
}

// NewDebris creates the debris system. gravity is in pixels per second
// squared, applied downward.
func NewDebris(gravity float64) *Debris {
	w := ecs.NewWorld()
	return &Debris{
		ecsWorld: w,
		mapper:   ecs.NewMap3[components.Position, components.Velocity, components.DebrisBody](w),
		filter:   ecs.NewFilter3[components.Position, components.Velocity, components.DebrisBody](w),
		gravity:  gravity,
	}
}

// Spawn creates a falling body from a pixel map keyed by offsets from the
// given center. The caller has already cleared those cells in the grid.
func (d *Debris) Spawn(pixels map[components.Offset]uint16, cx, cy float64) uuid.UUID {
	pos := components.Position{X: cx, Y: cy}
	vel := components.Velocity{}
	body := components.NewDebrisBody(pixels)

	d.mapper.NewEntity(&pos, &vel, &body)
	d.count++
	log.Debug().Str("id", body.ID.String()).Int("pixels", len(pixels)).Msg("spawned falling body")
	return body.ID
}

// Count returns the number of bodies in flight.
func (d *Debris) Count() int {
	return d.count
}

// Update integrates every body one tick and settles those that hit the
// grid. Settled bodies write their pixels back into empty cells only;
// pixels that lost the settle race are dropped with a warning.
func (d *Debris) Update(dt float64, m *world.Manager, rec telemetry.Recorder) {
	type settled struct {
		entity ecs.Entity
		pos    components.Position
		body   components.DebrisBody
	}
	var toSettle []settled

	query := d.filter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, vel, body := query.Get()

		vel.Y -= d.gravity * dt
		nextX := pos.X + vel.X*dt
		nextY := pos.Y + vel.Y*dt

		if d.collides(m, body, nextX, nextY) {
			toSettle = append(toSettle, settled{entity: entity, pos: *pos, body: *body})
			continue
		}
		pos.X = nextX
		pos.Y = nextY
	}

	for _, s := range toSettle {
		d.settle(m, s.pos, s.body, rec)
		d.mapper.Remove(s.entity)
		d.count--
	}
}

// collides reports whether any body pixel would land in a non-empty or
// unloaded cell at the candidate center.
func (d *Debris) collides(m *world.Manager, body *components.DebrisBody, cx, cy float64) bool {
	icx := int(math.Round(cx))
	icy := int(math.Round(cy))
	for off := range body.Pixels {
		p, ok := m.PixelAt(icx+off.DX, icy+off.DY)
		if !ok || !p.Empty() {
			return true
		}
	}
	return false
}

// settle reconstitutes a body into the grid at its current rounded
// position. Only empty cells receive pixels.
func (d *Debris) settle(m *world.Manager, pos components.Position, body components.DebrisBody, rec telemetry.Recorder) {
	icx := int(math.Round(pos.X))
	icy := int(math.Round(pos.Y))

	placed, dropped := 0, 0
	for off, mat := range body.Pixels {
		wx, wy := icx+off.DX, icy+off.DY
		p, ok := m.PixelAt(wx, wy)
		if !ok || !p.Empty() {
			dropped++
			continue
		}
		m.SetPixelAt(wx, wy, world.NewPixel(mat))
		placed++
	}

	if dropped > 0 {
		log.Warn().Str("id", body.ID.String()).Int("placed", placed).Int("dropped", dropped).Msg("falling body settle dropped pixels")
	} else {
		log.Debug().Str("id", body.ID.String()).Int("placed", placed).Msg("falling body settled")
	}
	rec.DebrisSettled(placed, dropped)
}
