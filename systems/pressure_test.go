package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/world"
)

func newPressure(e *env) *Pressure {
	return NewPressure(e.mats, DefaultPressureParams())
}

func TestPressureAccumulatesFromGas(t *testing.T) {
	e := newEnv(t)
	key := world.ChunkKey{X: 0, Y: 0}
	e.ensure(key)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			e.set(x, y, material.Steam)
		}
	}

	pr := newPressure(e)
	pr.Update(e.m, []world.ChunkKey{key})

	if got := e.m.Get(key).Pressure[0]; got <= world.AmbientPressure {
		t.Errorf("pressure %v after gas accumulation, want above baseline", got)
	}
}

func TestPressureDecay(t *testing.T) {
	e := newEnv(t)
	key := world.ChunkKey{X: 0, Y: 0}
	e.ensure(key)
	c := e.m.Get(key)
	c.Pressure[0] = 50

	pr := newPressure(e)
	pr.decay(e.m, []world.ChunkKey{key})

	if got := c.Pressure[0]; got >= 50 {
		t.Errorf("pressure %v did not decay", got)
	}
	// Floored at zero.
	c.Pressure[1] = 0.001
	for i := 0; i < 100; i++ {
		pr.decay(e.m, []world.ChunkKey{key})
	}
	if c.Pressure[1] < 0 {
		t.Error("pressure went negative")
	}
}

func TestPressureClampedToMax(t *testing.T) {
	e := newEnv(t)
	key := world.ChunkKey{X: 0, Y: 0}
	e.ensure(key)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			e.set(x, y, material.PoisonGas) // densest gas
		}
	}

	pr := newPressure(e)
	for i := 0; i < 100; i++ {
		pr.Update(e.m, []world.ChunkKey{key})
	}
	if got := float64(e.m.Get(key).Pressure[0]); got > 100 {
		t.Errorf("pressure %v exceeds the cap", got)
	}
}

func TestPressurePropagatesToNeighbors(t *testing.T) {
	e := newEnv(t)
	key := world.ChunkKey{X: 0, Y: 0}
	e.ensure(key)
	c := e.m.Get(key)

	// One gas pixel seeds the queue; its cell carries extra pressure that
	// must leak into the neighbor cells.
	c.Pressure[world.CoarseIndex(12, 12)] = 80
	e.set(12, 12, material.Steam)

	pr := newPressure(e)
	pr.accumulate(e.m, []world.ChunkKey{key})
	pr.propagate(e.m)

	// Cell (0,1) of the coarse grid neighbors cell (1,1).
	if got := c.Pressure[world.CoarseIndex(4, 12)]; got <= world.AmbientPressure {
		t.Errorf("neighbor cell pressure %v, want above baseline", got)
	}
}

func TestPressureDisplacesTowardLowPressure(t *testing.T) {
	e := newEnv(t)
	key := world.ChunkKey{X: 0, Y: 0}
	e.ensure(key)
	c := e.m.Get(key)

	// A smoke pixel in a high-pressure cell next to a low-pressure cell.
	e.set(8, 0, material.Smoke) // coarse cell (1,0)
	c.Pressure[1] = 50          // its cell
	// All other cells stay at baseline; the lowest neighbor is to the left.

	pr := newPressure(e)
	pr.apply(e.m, []world.ChunkKey{key})

	if e.mat(8, 0) == material.Smoke {
		t.Fatal("pixel not displaced out of the high-pressure cell")
	}
	found := false
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if e.mat(8+dx, 0+dy) == material.Smoke {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("displaced pixel not adjacent")
	}
}

func TestPressureNeverDisplacesSolid(t *testing.T) {
	e := newEnv(t)
	key := world.ChunkKey{X: 0, Y: 0}
	e.ensure(key)
	c := e.m.Get(key)

	e.set(8, 0, material.Stone)
	c.Pressure[1] = 90

	pr := newPressure(e)
	pr.apply(e.m, []world.ChunkKey{key})

	if e.mat(8, 0) != material.Stone {
		t.Error("pressure moved a solid")
	}
}

// Gas sealed in a stone chamber never escapes.
func TestGasSealedInChamber(t *testing.T) {
	e := newEnv(t)
	key := world.ChunkKey{X: 0, Y: 0}
	e.ensure(key)

	for x := 20; x <= 26; x++ {
		for y := 20; y <= 26; y++ {
			e.set(x, y, material.Stone)
		}
	}
	for x := 22; x <= 24; x++ {
		for y := 22; y <= 24; y++ {
			e.set(x, y, material.Steam)
		}
	}
	want := e.countMaterial(material.Steam, key)

	pr := newPressure(e)
	for tick := 0; tick < 120; tick++ {
		e.ca.UpdateChunk(e.m, key, e.rec, e.rng)
		pr.Update(e.m, []world.ChunkKey{key})
		e.m.Get(key).ClearUpdateFlags()
	}

	if got := e.countMaterial(material.Steam, key); got != want {
		t.Errorf("steam count %d, want %d", got, want)
	}
	// Nothing leaked outside the chamber walls.
	for x := 19; x <= 27; x++ {
		if e.mat(x, 19) == material.Steam || e.mat(x, 27) == material.Steam {
			t.Fatal("steam escaped the chamber")
		}
	}
}

// I9: pressure stays finite under sustained accumulation.
func TestPressureStaysFinite(t *testing.T) {
	e := newEnv(t)
	key := world.ChunkKey{X: 0, Y: 0}
	e.ensure(key)
	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			e.set(x, y, material.Steam)
		}
	}

	pr := newPressure(e)
	for i := 0; i < 300; i++ {
		pr.Update(e.m, []world.ChunkKey{key})
	}
	for i, v := range e.m.Get(key).Pressure {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("pressure cell %d not finite: %v", i, v)
		}
	}
}
