package systems

import (
	"testing"

	"github.com/pthm-cable/granule/world"
)

func TestFlashAppliesAtExactPixel(t *testing.T) {
	m := world.NewManager(world.DefaultManagerParams())
	m.Insert(world.NewChunk(0, 0))

	tl := NewTempLights()
	tl.AddFlash(10, 10, 12, 0.1)
	tl.Apply(m)

	c := m.Get(world.ChunkKey{X: 0, Y: 0})
	if got := c.GetLight(10, 10); got != 12 {
		t.Errorf("flash light = %d, want 12", got)
	}
	// Flashes never propagate.
	if got := c.GetLight(11, 10); got != 0 {
		t.Errorf("neighbor light = %d, want 0", got)
	}
}

func TestFlashNeverDarkens(t *testing.T) {
	m := world.NewManager(world.DefaultManagerParams())
	m.Insert(world.NewChunk(0, 0))
	c := m.Get(world.ChunkKey{X: 0, Y: 0})
	c.SetLight(10, 10, 15)

	tl := NewTempLights()
	tl.AddFlash(10, 10, 5, 0.1)
	tl.Apply(m)

	if got := c.GetLight(10, 10); got != 15 {
		t.Errorf("flash darkened pixel to %d", got)
	}
}

func TestFlashExpires(t *testing.T) {
	tl := NewTempLights()
	tl.AddFlash(0, 0, 10, 0.05) // 3 frames

	for i := 0; i < 3; i++ {
		if tl.Count() == 0 {
			t.Fatalf("flash expired early at frame %d", i)
		}
		tl.Update()
	}
	if tl.Count() != 0 {
		t.Error("flash did not expire")
	}
}

func TestFlashIntensityClamped(t *testing.T) {
	m := world.NewManager(world.DefaultManagerParams())
	m.Insert(world.NewChunk(0, 0))

	tl := NewTempLights()
	tl.AddFlash(3, 3, 200, 0.1)
	tl.Apply(m)

	if got := m.Get(world.ChunkKey{X: 0, Y: 0}).GetLight(3, 3); got != world.MaxLight {
		t.Errorf("clamped intensity = %d, want %d", got, world.MaxLight)
	}
}

func TestFlashInUnloadedChunkIgnored(t *testing.T) {
	m := world.NewManager(world.DefaultManagerParams())
	tl := NewTempLights()
	tl.AddFlash(1000, 1000, 10, 0.1)
	tl.Apply(m) // must not panic
}
