package systems

import (
	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/world"
)

// PressureParams are the pressure field tunables.
type PressureParams struct {
	DecayRate         float64
	GasScale          float64
	PropagationFactor float64
	MinDiff           float64
	MaxDepth          int
	QueueMax          int
	MoveThreshold     float64
	Max               float64
	// DisplaceIntoDenser allows pressure to push a pixel into a denser
	// material in addition to plain air.
	DisplaceIntoDenser bool
}

// DefaultPressureParams returns the standard pressure tunables.
func DefaultPressureParams() PressureParams {
	return PressureParams{
		DecayRate:          0.02,
		GasScale:           5.0,
		PropagationFactor:  0.4,
		MinDiff:            0.1,
		MaxDepth:           128,
		QueueMax:           256,
		MoveThreshold:      5.0,
		Max:                100.0,
		DisplaceIntoDenser: true,
	}
}

// gasPressureFloor keeps plain air from registering as a pressure source.
const gasPressureFloor = 0.01

type pressureCell struct {
	wx, wy int
}

type pressureMove struct {
	fromX, fromY int
	toX, toY     int
}

// Pressure accumulates, decays, equalizes, and applies the coarse pressure
// field. Propagation is bounded by a depth budget and a queue cap so a tick
// never runs away.
type Pressure struct {
	mats   *material.Registry
	params PressureParams

	queue []pressureCell
	moves []pressureMove
}

// NewPressure creates the pressure system.
func NewPressure(mats *material.Registry, params PressureParams) *Pressure {
	return &Pressure{
		mats:   mats,
		params: params,
		queue:  make([]pressureCell, 0, params.QueueMax),
	}
}

// Update runs one pressure step over the active chunks:
// decay, accumulate from gases, propagate, apply displacement.
func (pr *Pressure) Update(m *world.Manager, active []world.ChunkKey) {
	pr.decay(m, active)
	pr.accumulate(m, active)
	pr.propagate(m)
	pr.apply(m, active)
}

// decay drains every cell toward zero.
func (pr *Pressure) decay(m *world.Manager, active []world.ChunkKey) {
	for _, key := range active {
		c := m.Get(key)
		if c == nil {
			continue
		}
		for i := range c.Pressure {
			if c.Pressure[i] > 0 {
				c.Pressure[i] = float32(max(0, float64(c.Pressure[i])-pr.params.DecayRate))
			}
		}
	}
}

// accumulate adds pressure for every gas pixel with meaningful density and
// queues its cell for propagation.
func (pr *Pressure) accumulate(m *world.Manager, active []world.ChunkKey) {
	for _, key := range active {
		c := m.Get(key)
		if c == nil {
			continue
		}
		ox, oy := world.ChunkOrigin(key)

		for ly := 0; ly < world.ChunkSize; ly++ {
			for lx := 0; lx < world.ChunkSize; lx++ {
				p := c.GetPixel(lx, ly)
				if p.Empty() {
					continue
				}
				def := pr.mats.Get(p.Material)
				if def.Type != material.Gas || def.Density <= gasPressureFloor {
					continue
				}

				i := world.CoarseIndex(lx, ly)
				c.Pressure[i] = float32(min(pr.params.Max, float64(c.Pressure[i])+def.Density*pr.params.GasScale))
				if len(pr.queue) < pr.params.QueueMax {
					pr.queue = append(pr.queue, pressureCell{wx: ox + lx, wy: oy + ly})
				}
			}
		}
	}
}

// propagate pops cells up to the depth budget, transferring a share of the
// difference to any 8-neighbor cell with meaningfully lower pressure.
func (pr *Pressure) propagate(m *world.Manager) {
	const cellStep = world.ChunkSize / world.CoarseSize
	depth := 0

	for len(pr.queue) > 0 {
		if depth >= pr.params.MaxDepth {
			break
		}
		depth++

		cell := pr.queue[0]
		pr.queue = pr.queue[1:]

		key, lx, ly := world.WorldToChunk(cell.wx, cell.wy)
		c := m.Get(key)
		if c == nil {
			continue
		}
		source := float64(c.Pressure[world.CoarseIndex(lx, ly)])
		if source <= 0 {
			continue
		}

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := cell.wx+dx*cellStep, cell.wy+dy*cellStep
				nKey, nlx, nly := world.WorldToChunk(nx, ny)
				nc := m.Get(nKey)
				if nc == nil {
					continue
				}

				ni := world.CoarseIndex(nlx, nly)
				neighbor := float64(nc.Pressure[ni])
				diff := source - neighbor
				if diff <= pr.params.MinDiff {
					continue
				}

				transferred := min(pr.params.Max, neighbor+diff*pr.params.PropagationFactor)
				nc.Pressure[ni] = float32(transferred)

				if transferred > 0 && len(pr.queue) < pr.params.QueueMax {
					pr.queue = append(pr.queue, pressureCell{wx: nx, wy: ny})
				}
			}
		}
	}
	pr.queue = pr.queue[:0]
}

// apply pushes pixels out of high-pressure cells toward the lowest-pressure
// 8-neighbor. A pixel moves only into air or, when configured, into a denser
// material; solids never move. Moves are collected first so a sweep cannot
// observe its own writes.
func (pr *Pressure) apply(m *world.Manager, active []world.ChunkKey) {
	pr.moves = pr.moves[:0]

	for _, key := range active {
		c := m.Get(key)
		if c == nil {
			continue
		}
		ox, oy := world.ChunkOrigin(key)

		for ly := 0; ly < world.ChunkSize; ly++ {
			for lx := 0; lx < world.ChunkSize; lx++ {
				current := float64(c.Pressure[world.CoarseIndex(lx, ly)])
				if current <= pr.params.MoveThreshold {
					continue
				}
				p := c.GetPixel(lx, ly)
				if p.Empty() {
					continue
				}
				srcDef := pr.mats.Get(p.Material)
				if srcDef.Type == material.Solid {
					continue
				}

				wx, wy := ox+lx, oy+ly
				bestX, bestY := 0, 0
				lowest := current
				found := false
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nKey, nlx, nly := world.WorldToChunk(wx+dx, wy+dy)
						nc := m.Get(nKey)
						if nc == nil {
							continue
						}
						np := float64(nc.Pressure[world.CoarseIndex(nlx, nly)])
						if np < lowest {
							lowest = np
							bestX, bestY = dx, dy
							found = true
						}
					}
				}
				if !found {
					continue
				}

				tx, ty := wx+bestX, wy+bestY
				target, ok := m.PixelAt(tx, ty)
				if !ok {
					continue
				}
				targetDef := pr.mats.Get(target.Material)
				if target.Empty() || (pr.params.DisplaceIntoDenser && targetDef.Type != material.Solid && targetDef.Density > srcDef.Density) {
					pr.moves = append(pr.moves, pressureMove{fromX: wx, fromY: wy, toX: tx, toY: ty})
				}
			}
		}
	}

	for _, mv := range pr.moves {
		pr.swap(m, mv)
	}
}

// swap exchanges the two pixels of a queued displacement, rechecking the
// endpoints since earlier moves may have changed them.
func (pr *Pressure) swap(m *world.Manager, mv pressureMove) {
	srcKey, sx, sy := world.WorldToChunk(mv.fromX, mv.fromY)
	dstKey, dx, dy := world.WorldToChunk(mv.toX, mv.toY)

	sc := m.Get(srcKey)
	dc := m.Get(dstKey)
	if sc == nil || dc == nil {
		return
	}

	src := sc.GetPixel(sx, sy)
	dst := dc.GetPixel(dx, dy)
	if src.Empty() {
		return
	}
	if pr.mats.Get(dst.Material).Type == material.Solid {
		return
	}

	sc.SetPixel(sx, sy, dst)
	dc.SetPixel(dx, dy, src)
	sc.SimulationActive = true
	dc.SimulationActive = true
}
