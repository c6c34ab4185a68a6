package systems

import (
	"math/rand"

	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/telemetry"
	"github.com/pthm-cable/granule/world"
)

// ChemistryParams are the fire and burning tunables.
type ChemistryParams struct {
	FireHeatPerTick float64
	BurnHeatPerTick float64
	SmokeChance     float64
}

// DefaultChemistryParams returns the standard fire tunables.
func DefaultChemistryParams() ChemistryParams {
	return ChemistryParams{
		FireHeatPerTick: 50.0,
		BurnHeatPerTick: 20.0,
		SmokeChance:     0.02,
	}
}

// Chemistry handles fire lifetime, ignition, gradual burn consumption, and
// paired-material reactions.
type Chemistry struct {
	mats      *material.Registry
	reactions *material.Reactions
	params    ChemistryParams

	// ca is set by the wiring so fire can rise as a gas.
	ca *CA
	// structural receives a check whenever chemistry consumes a
	// structural solid.
	structural *Structural

	neighborhood [8]uint16
}

// NewChemistry creates the chemistry system.
func NewChemistry(mats *material.Registry, reactions *material.Reactions, params ChemistryParams) *Chemistry {
	return &Chemistry{mats: mats, reactions: reactions, params: params}
}

// AttachCA wires the mover so fire pixels can move like a gas.
func (ch *Chemistry) AttachCA(ca *CA) {
	ch.ca = ca
}

// AttachStructural wires the integrity system so consuming a structural
// solid schedules a check at its position.
func (ch *Chemistry) AttachStructural(s *Structural) {
	ch.structural = s
}

// noteRemoval schedules a structural check when a structural solid was
// replaced by a non-solid.
func (ch *Chemistry) noteRemoval(wx, wy int, prev, next uint16) {
	if ch.structural == nil {
		return
	}
	prevDef := ch.mats.Get(prev)
	if !prevDef.Structural || prevDef.Type != material.Solid {
		return
	}
	if ch.mats.Get(next).Type == material.Solid {
		return
	}
	ch.structural.Schedule(wx, wy)
}

// UpdateFire advances one fire pixel: it injects heat at its cell, rises as
// a gas, and has a small chance per tick of decaying into smoke.
func (ch *Chemistry) UpdateFire(m *world.Manager, wx, wy int, rec telemetry.Recorder, rng *rand.Rand) {
	key, lx, ly := world.WorldToChunk(wx, wy)
	if c := m.Get(key); c != nil {
		c.AddHeat(lx, ly, ch.params.FireHeatPerTick)
	}

	nx, ny := wx, wy
	if px, py, moved := ch.ca.moveGas(m, wx, wy, rec, rng); moved {
		nx, ny = px, py
	}

	if rng.Float64() < ch.params.SmokeChance {
		key, lx, ly := world.WorldToChunk(nx, ny)
		if c := m.Get(key); c != nil {
			c.SetPixel(lx, ly, world.NewPixel(material.Smoke))
		}
	}
}

// UpdateChunk scans one chunk for ignition and burn consumption.
func (ch *Chemistry) UpdateChunk(m *world.Manager, key world.ChunkKey, rec telemetry.Recorder, rng *rand.Rand) {
	c := m.Get(key)
	if c == nil {
		return
	}
	ox, oy := world.ChunkOrigin(key)

	for ly := 0; ly < world.ChunkSize; ly++ {
		for lx := 0; lx < world.ChunkSize; lx++ {
			p := c.GetPixel(lx, ly)
			if p.Empty() {
				continue
			}
			if p.Has(world.FlagBurning) {
				ch.updateBurning(c, lx, ly, ox+lx, oy+ly, rng)
				continue
			}
			def := ch.mats.Get(p.Material)
			if def.Flammable && def.IgnitionTemp != nil {
				ch.checkIgnition(m, c, lx, ly, ox+lx, oy+ly, def, rec)
			}
		}
	}
}

// checkIgnition marks a hot-enough flammable pixel as burning and tries to
// place a fire pixel in the first empty orthogonal neighbor.
func (ch *Chemistry) checkIgnition(m *world.Manager, c *world.Chunk, lx, ly, wx, wy int, def *material.Def, rec telemetry.Recorder) {
	if c.TemperatureAt(lx, ly) < *def.IgnitionTemp {
		return
	}

	p := c.GetPixel(lx, ly)
	p.Flags |= world.FlagBurning
	c.SetPixel(lx, ly, p)
	rec.Ignition()

	for _, d := range [4][2]int{{0, 1}, {1, 0}, {-1, 0}, {0, -1}} {
		nx, ny := wx+d[0], wy+d[1]
		neighbor, ok := m.PixelAt(nx, ny)
		if !ok || !neighbor.Empty() {
			continue
		}
		m.SetPixelAt(nx, ny, world.NewPixel(material.Fire))
		break
	}
}

// updateBurning samples the material's burn rate; on a hit the pixel
// transforms to its burn product (or air) and releases heat.
func (ch *Chemistry) updateBurning(c *world.Chunk, lx, ly, wx, wy int, rng *rand.Rand) {
	p := c.GetPixel(lx, ly)
	def := ch.mats.Get(p.Material)

	if rng.Float64() >= def.BurnRate {
		return
	}

	product := material.Air
	if def.HasBurnsTo {
		product = def.BurnsTo
	}
	c.SetPixel(lx, ly, world.NewPixel(product))
	c.AddHeat(lx, ly, ch.params.BurnHeatPerTick)
	ch.noteRemoval(wx, wy, p.Material, product)
}

// CheckPixelReactions looks for a reaction between the pixel at the given
// world position and each of its four orthogonal neighbors, applying at most
// one per tick. Preconditions (temperature, light, pressure, catalyst in the
// 8-neighborhood) are evaluated at the pixel's site; outputs are written
// respecting the registry's input order.
func (ch *Chemistry) CheckPixelReactions(m *world.Manager, wx, wy int, rec telemetry.Recorder, rng *rand.Rand) {
	key, lx, ly := world.WorldToChunk(wx, wy)
	c := m.Get(key)
	if c == nil {
		return
	}

	p := c.GetPixel(lx, ly)
	if p.Empty() {
		return
	}

	temp := c.TemperatureAt(lx, ly)
	light := c.GetLight(lx, ly)
	pressure := c.PressureAt(lx, ly)

	// 8-neighborhood material ids for catalyst matching.
	hood := ch.neighborhood[:0]
	for _, d := range [8][2]int{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	} {
		if np, ok := m.PixelAt(wx+d[0], wy+d[1]); ok {
			hood = append(hood, np.Material)
		}
	}

	for _, d := range [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}} {
		nx, ny := wx+d[0], wy+d[1]
		nKey, nlx, nly := world.WorldToChunk(nx, ny)
		nc := m.Get(nKey)
		if nc == nil {
			continue
		}
		neighbor := nc.GetPixel(nlx, nly)
		if neighbor.Empty() {
			continue
		}

		reaction := ch.reactions.Find(p.Material, neighbor.Material, temp, light, pressure, hood)
		if reaction == nil {
			continue
		}
		if rng.Float64() >= reaction.Probability {
			continue
		}

		outA, outB := reaction.Outputs(p.Material, neighbor.Material)
		c.SetPixel(lx, ly, world.NewPixel(outA))
		nc.SetPixel(nlx, nly, world.NewPixel(outB))
		c.AddHeat(lx, ly, reaction.EnergyReleased)
		ch.noteRemoval(wx, wy, p.Material, outA)
		ch.noteRemoval(nx, ny, neighbor.Material, outB)
		rec.Reaction()
		return // at most one reaction per pixel per tick
	}
}
