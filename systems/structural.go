package systems

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/pthm-cable/granule/components"
	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/telemetry"
	"github.com/pthm-cable/granule/world"
)

// StructuralParams are the integrity-check tunables.
type StructuralParams struct {
	MaxFloodRadius       int
	SmallDebrisThreshold int
}

// DefaultStructuralParams returns the standard integrity tunables.
func DefaultStructuralParams() StructuralParams {
	return StructuralParams{
		MaxFloodRadius:       64,
		SmallDebrisThreshold: 50,
	}
}

type worldPos struct {
	x, y int
}

// Structural tracks positions needing integrity checks and processes them
// once per tick. Only player-placed structural solids are ever converted;
// natural terrain both survives every check and anchors player structures.
type Structural struct {
	mats   *material.Registry
	params StructuralParams

	queue map[worldPos]struct{}
}

// NewStructural creates the integrity system.
func NewStructural(mats *material.Registry, params StructuralParams) *Structural {
	return &Structural{
		mats:   mats,
		params: params,
		queue:  make(map[worldPos]struct{}),
	}
}

// Schedule enqueues a world position for checking. Duplicates collapse.
func (s *Structural) Schedule(wx, wy int) {
	s.queue[worldPos{x: wx, y: wy}] = struct{}{}
}

// QueueLen returns the number of pending checks.
func (s *Structural) QueueLen() int {
	return len(s.queue)
}

// Process drains the queue, running a check for each position. Returns the
// number of positions processed.
func (s *Structural) Process(m *world.Manager, debris *Debris, rec telemetry.Recorder) int {
	if len(s.queue) == 0 {
		return 0
	}

	// Drain in deterministic order.
	positions := make([]worldPos, 0, len(s.queue))
	for pos := range s.queue {
		positions = append(positions, pos)
	}
	s.queue = make(map[worldPos]struct{})
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].y != positions[j].y {
			return positions[i].y < positions[j].y
		}
		return positions[i].x < positions[j].x
	})

	log.Debug().Int("count", len(positions)).Msg("processing structural checks")
	for _, pos := range positions {
		s.checkPosition(m, pos.x, pos.y, debris, rec)
	}
	return len(positions)
}

// checkPosition inspects the four neighbors of a removed pixel. Each
// neighbor that is a player-placed structural solid seeds a flood fill; an
// unanchored region becomes powder or a falling body depending on size.
func (s *Structural) checkPosition(m *world.Manager, wx, wy int, debris *Debris, rec telemetry.Recorder) {
	for _, d := range [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}} {
		nx, ny := wx+d[0], wy+d[1]
		p, ok := m.PixelAt(nx, ny)
		if !ok || p.Empty() {
			continue
		}
		if !s.isPlayerStructural(p) {
			continue
		}

		region := s.floodFill(m, nx, ny)
		if len(region) == 0 {
			continue
		}
		if s.isAnchored(m, region) {
			continue
		}

		if len(region) < s.params.SmallDebrisThreshold {
			log.Debug().Int("pixels", len(region)).Msg("structural collapse to powder")
			s.convertToPowder(m, region)
			rec.StructuralConversion(len(region))
		} else {
			log.Debug().Int("pixels", len(region)).Msg("structural collapse to falling body")
			s.convertToBody(m, region, debris, rec)
			rec.StructuralConversion(len(region))
		}
	}
}

func (s *Structural) isPlayerStructural(p world.Pixel) bool {
	if !p.Has(world.FlagPlayerPlaced) {
		return false
	}
	def := s.mats.Get(p.Material)
	return def.Structural && def.Type == material.Solid
}

// floodFill collects the 4-connected component of player-placed structural
// solids reachable from the seed, bounded by a Chebyshev radius.
func (s *Structural) floodFill(m *world.Manager, startX, startY int) map[worldPos]struct{} {
	visited := make(map[worldPos]struct{})

	start, ok := m.PixelAt(startX, startY)
	if !ok || start.Empty() || !s.isPlayerStructural(start) {
		return visited
	}

	origin := worldPos{x: startX, y: startY}
	queue := []worldPos{origin}
	visited[origin] = struct{}{}

	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]

		if chebyshevPos(pos, origin) > s.params.MaxFloodRadius {
			continue
		}

		for _, d := range [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}} {
			next := worldPos{x: pos.x + d[0], y: pos.y + d[1]}
			if _, seen := visited[next]; seen {
				continue
			}
			p, ok := m.PixelAt(next.x, next.y)
			if !ok || p.Empty() || !s.isPlayerStructural(p) {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return visited
}

func chebyshevPos(a, b worldPos) int {
	dx := a.x - b.x
	if dx < 0 {
		dx = -dx
	}
	dy := a.y - b.y
	if dy < 0 {
		dy = -dy
	}
	return max(dx, dy)
}

// isAnchored reports whether the region contains bedrock or touches a
// natural structural solid. Player pixels never anchor each other.
func (s *Structural) isAnchored(m *world.Manager, region map[worldPos]struct{}) bool {
	for pos := range region {
		p, ok := m.PixelAt(pos.x, pos.y)
		if ok && p.Material == material.Bedrock {
			return true
		}

		for _, d := range [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}} {
			next := worldPos{x: pos.x + d[0], y: pos.y + d[1]}
			if _, inRegion := region[next]; inRegion {
				continue
			}
			np, ok := m.PixelAt(next.x, next.y)
			if !ok || np.Empty() {
				continue
			}
			def := s.mats.Get(np.Material)
			if def.Structural && def.Type == material.Solid && !np.Has(world.FlagPlayerPlaced) {
				return true
			}
		}
	}
	return false
}

// convertToPowder overwrites each region position with sand; the mover
// drops them next tick.
func (s *Structural) convertToPowder(m *world.Manager, region map[worldPos]struct{}) {
	for pos := range region {
		p, ok := m.PixelAt(pos.x, pos.y)
		if !ok || p.Material == material.Bedrock {
			continue
		}
		m.SetPixelAt(pos.x, pos.y, world.NewPixel(material.Sand))
		if key := world.ChunkKeyAt(pos.x, pos.y); m.Has(key) {
			m.Get(key).SimulationActive = true
		}
	}
}

// convertToBody detaches the region into a falling body keyed by offsets
// from its centroid, clearing the grid cells to air.
func (s *Structural) convertToBody(m *world.Manager, region map[worldPos]struct{}, debris *Debris, rec telemetry.Recorder) {
	var sumX, sumY int
	for pos := range region {
		sumX += pos.x
		sumY += pos.y
	}
	n := len(region)
	cx := float64(sumX) / float64(n)
	cy := float64(sumY) / float64(n)
	icx, icy := int(cx+0.5), int(cy+0.5)

	pixels := make(map[components.Offset]uint16, n)
	for pos := range region {
		p, ok := m.PixelAt(pos.x, pos.y)
		if !ok || p.Material == material.Bedrock {
			continue
		}
		pixels[components.Offset{DX: pos.x - icx, DY: pos.y - icy}] = p.Material
		m.SetPixelAt(pos.x, pos.y, world.AirPixel)
	}

	if len(pixels) == 0 {
		return
	}
	debris.Spawn(pixels, float64(icx), float64(icy))
	rec.DebrisSpawned()
}
