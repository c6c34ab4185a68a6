// Package systems implements the simulation systems that advance the pixel
// grid: the cellular-automata mover, thermal diffusion, state changes,
// chemistry, pressure, light, structural integrity, and falling debris.
package systems

import (
	"math/rand"

	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/telemetry"
	"github.com/pthm-cable/granule/world"
)

// CA is the cellular-automata mover. Movement rules are material-type
// specific; every attempted move is a world-coordinate swap that may cross
// chunk boundaries.
type CA struct {
	mats      *material.Registry
	reactions *material.Reactions
	chem      *Chemistry
}

// NewCA creates the mover. chem handles fire pixels and post-move reaction
// checks.
func NewCA(mats *material.Registry, reactions *material.Reactions, chem *Chemistry) *CA {
	return &CA{mats: mats, reactions: reactions, chem: chem}
}

// UpdateChunk advances every movable pixel of one chunk for this tick.
// Rows are scanned bottom to top so gravity cascades resolve in one tick,
// alternating scan direction per row for symmetry. Pixels already holding
// the updated flag are skipped.
func (ca *CA) UpdateChunk(m *world.Manager, key world.ChunkKey, rec telemetry.Recorder, rng *rand.Rand) {
	ox, oy := world.ChunkOrigin(key)

	for ly := 0; ly < world.ChunkSize; ly++ {
		if ly%2 == 0 {
			for lx := 0; lx < world.ChunkSize; lx++ {
				ca.updatePixel(m, key, ox+lx, oy+ly, rec, rng)
			}
		} else {
			for lx := world.ChunkSize - 1; lx >= 0; lx-- {
				ca.updatePixel(m, key, ox+lx, oy+ly, rec, rng)
			}
		}
	}
}

func (ca *CA) updatePixel(m *world.Manager, key world.ChunkKey, wx, wy int, rec telemetry.Recorder, rng *rand.Rand) {
	c := m.Get(key)
	if c == nil {
		return
	}
	_, lx, ly := world.WorldToChunk(wx, wy)
	p := c.GetPixel(lx, ly)
	if p.Empty() || p.Has(world.FlagUpdated) {
		return
	}

	if p.Material == material.Fire {
		ca.chem.UpdateFire(m, wx, wy, rec, rng)
		return
	}

	def := ca.mats.Get(p.Material)
	var nx, ny int
	var moved bool
	switch def.Type {
	case material.Powder:
		nx, ny, moved = ca.movePowder(m, wx, wy, rec, rng)
	case material.Liquid:
		nx, ny, moved = ca.moveLiquid(m, wx, wy, rec, rng)
	case material.Gas:
		nx, ny, moved = ca.moveGas(m, wx, wy, rec, rng)
	default:
		// Solids do not move.
		return
	}

	if moved {
		ca.chem.CheckPixelReactions(m, nx, ny, rec, rng)
	}
}

// coin returns -1 or 1 from the per-step RNG.
func coin(rng *rand.Rand) int {
	if rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

// movePowder: down, then the coin-chosen diagonal, then the other.
func (ca *CA) movePowder(m *world.Manager, wx, wy int, rec telemetry.Recorder, rng *rand.Rand) (int, int, bool) {
	if ca.TryMove(m, wx, wy, wx, wy-1, rec) {
		return wx, wy - 1, true
	}
	dx := coin(rng)
	if ca.TryMove(m, wx, wy, wx+dx, wy-1, rec) {
		return wx + dx, wy - 1, true
	}
	if ca.TryMove(m, wx, wy, wx-dx, wy-1, rec) {
		return wx - dx, wy - 1, true
	}
	return wx, wy, false
}

// moveLiquid: down, the coin-chosen diagonal, both horizontals in coin
// order, then the other diagonal. Liquids spread where powders rest.
func (ca *CA) moveLiquid(m *world.Manager, wx, wy int, rec telemetry.Recorder, rng *rand.Rand) (int, int, bool) {
	if ca.TryMove(m, wx, wy, wx, wy-1, rec) {
		return wx, wy - 1, true
	}
	dx := coin(rng)
	if ca.TryMove(m, wx, wy, wx+dx, wy-1, rec) {
		return wx + dx, wy - 1, true
	}
	if ca.TryMove(m, wx, wy, wx+dx, wy, rec) {
		return wx + dx, wy, true
	}
	if ca.TryMove(m, wx, wy, wx-dx, wy, rec) {
		return wx - dx, wy, true
	}
	if ca.TryMove(m, wx, wy, wx-dx, wy-1, rec) {
		return wx - dx, wy - 1, true
	}
	return wx, wy, false
}

// moveGas mirrors powder but upward, with horizontal dispersal.
func (ca *CA) moveGas(m *world.Manager, wx, wy int, rec telemetry.Recorder, rng *rand.Rand) (int, int, bool) {
	if ca.TryMove(m, wx, wy, wx, wy+1, rec) {
		return wx, wy + 1, true
	}
	dx := coin(rng)
	if ca.TryMove(m, wx, wy, wx+dx, wy+1, rec) {
		return wx + dx, wy + 1, true
	}
	if ca.TryMove(m, wx, wy, wx-dx, wy+1, rec) {
		return wx - dx, wy + 1, true
	}
	if ca.TryMove(m, wx, wy, wx+dx, wy, rec) {
		return wx + dx, wy, true
	}
	if ca.TryMove(m, wx, wy, wx-dx, wy, rec) {
		return wx - dx, wy, true
	}
	return wx, wy, false
}

// TryMove attempts a swap between two world positions. The move succeeds iff
// both chunks are loaded, the target is not solid, and the target is empty
// or holds a strictly lower-density material. Both swapped pixels receive
// the updated flag so neither is reprocessed this tick.
//
// Cross-chunk swaps read both sides first and restore the source if the
// destination chunk disappears between read and write.
func (ca *CA) TryMove(m *world.Manager, fromX, fromY, toX, toY int, rec telemetry.Recorder) bool {
	srcKey, srcX, srcY := world.WorldToChunk(fromX, fromY)
	dstKey, dstX, dstY := world.WorldToChunk(toX, toY)

	srcChunk := m.Get(srcKey)
	if srcChunk == nil {
		return false
	}
	dstChunk := m.Get(dstKey)
	if dstChunk == nil {
		return false
	}

	srcPixel := srcChunk.GetPixel(srcX, srcY)
	dstPixel := dstChunk.GetPixel(dstX, dstY)

	dstDef := ca.mats.Get(dstPixel.Material)
	if dstDef.Type == material.Solid {
		return false
	}
	if !dstPixel.Empty() {
		srcDef := ca.mats.Get(srcPixel.Material)
		if dstDef.Density >= srcDef.Density {
			return false
		}
	}

	origSrc := srcPixel
	srcPixel.Flags |= world.FlagUpdated
	dstPixel.Flags |= world.FlagUpdated

	if srcKey == dstKey {
		srcChunk.SetPixel(srcX, srcY, dstPixel)
		srcChunk.SetPixel(dstX, dstY, srcPixel)
		srcChunk.SimulationActive = true
		rec.PixelMoved()
		return true
	}

	srcChunk.SetPixel(srcX, srcY, dstPixel)
	srcChunk.SimulationActive = true

	if dst := m.Get(dstKey); dst != nil {
		dst.SetPixel(dstX, dstY, srcPixel)
		dst.SimulationActive = true
		rec.PixelMoved()
		return true
	}

	// Destination vanished between read and write: restore the source.
	srcChunk.SetPixel(srcX, srcY, origSrc)
	return false
}
