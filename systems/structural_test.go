package systems

import (
	"testing"

	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/world"
)

func newStructural(e *env) (*Structural, *Debris) {
	return NewStructural(e.mats, DefaultStructuralParams()), NewDebris(200)
}

func TestScheduleDeduplicates(t *testing.T) {
	e := newEnv(t)
	s, _ := newStructural(e)

	s.Schedule(10, 20)
	s.Schedule(10, 20)
	s.Schedule(10, 20)
	if s.QueueLen() != 1 {
		t.Errorf("queue length %d, want 1", s.QueueLen())
	}
}

func TestFloodFillOnlyPlayerPlaced(t *testing.T) {
	e := newEnv(t)
	e.ensure(world.ChunkKey{X: 0, Y: 0})
	s, _ := newStructural(e)

	e.setPlayer(30, 30, material.Stone)
	e.set(31, 30, material.Stone) // natural, must not be included

	region := s.floodFill(e.m, 30, 30)
	if len(region) != 1 {
		t.Fatalf("region size %d, want 1", len(region))
	}
	if _, ok := region[worldPos{x: 31, y: 30}]; ok {
		t.Error("natural pixel in region")
	}
}

func TestFloodFillConnectedComponent(t *testing.T) {
	e := newEnv(t)
	e.ensure(world.ChunkKey{X: 0, Y: 0})
	s, _ := newStructural(e)

	for y := 30; y < 33; y++ {
		for x := 30; x < 33; x++ {
			e.setPlayer(x, y, material.Stone)
		}
	}
	region := s.floodFill(e.m, 31, 31)
	if len(region) != 9 {
		t.Errorf("region size %d, want 9", len(region))
	}
}

func TestFloodFillNonStructuralSeed(t *testing.T) {
	e := newEnv(t)
	e.ensure(world.ChunkKey{X: 0, Y: 0})
	s, _ := newStructural(e)

	e.setPlayer(30, 30, material.Sand) // powder, not structural
	if region := s.floodFill(e.m, 30, 30); len(region) != 0 {
		t.Errorf("region size %d, want 0", len(region))
	}
}

func TestFloodFillBoundedByRadius(t *testing.T) {
	e := newEnv(t)
	e.ensure(world.ChunkKey{X: 0, Y: 0}, world.ChunkKey{X: 1, Y: 0}, world.ChunkKey{X: 2, Y: 0})
	s, _ := newStructural(e)

	for x := 0; x < 180; x++ {
		e.setPlayer(x, 30, material.Stone)
	}
	region := s.floodFill(e.m, 0, 30)
	if len(region) > s.params.MaxFloodRadius+2 {
		t.Errorf("region size %d exceeds flood radius bound", len(region))
	}
}

func TestAnchoredByBedrock(t *testing.T) {
	e := newEnv(t)
	e.ensure(world.ChunkKey{X: 0, Y: 0})
	s, _ := newStructural(e)

	p := world.NewPixel(material.Bedrock)
	p.Flags |= world.FlagPlayerPlaced
	e.m.SetPixelAt(30, 30, p)

	region := map[worldPos]struct{}{{x: 30, y: 30}: {}}
	if !s.isAnchored(e.m, region) {
		t.Error("bedrock region not anchored")
	}
}

func TestAnchoredByNaturalTerrain(t *testing.T) {
	e := newEnv(t)
	e.ensure(world.ChunkKey{X: 0, Y: 0})
	s, _ := newStructural(e)

	e.set(30, 29, material.Stone) // natural
	e.setPlayer(30, 30, material.Stone)

	region := map[worldPos]struct{}{{x: 30, y: 30}: {}}
	if !s.isAnchored(e.m, region) {
		t.Error("region touching natural terrain not anchored")
	}
}

// Player pixels never anchor each other.
func TestNotAnchoredByPlayerNeighbors(t *testing.T) {
	e := newEnv(t)
	e.ensure(world.ChunkKey{X: 0, Y: 0})
	s, _ := newStructural(e)

	e.setPlayer(30, 30, material.Stone)
	e.setPlayer(30, 29, material.Stone) // also player-placed, outside region

	region := map[worldPos]struct{}{{x: 30, y: 30}: {}}
	if s.isAnchored(e.m, region) {
		t.Error("player neighbor treated as anchor")
	}
}

// A floating 10-pixel player-placed bar converts to sand.
func TestSmallUnanchoredRegionBecomesSand(t *testing.T) {
	e := newEnv(t)
	e.ensure(world.ChunkKey{X: 0, Y: 0})
	s, d := newStructural(e)

	for x := 30; x < 40; x++ {
		e.setPlayer(x, 30, material.Stone)
	}
	// Trigger: a supporting pixel below was just removed.
	s.Schedule(35, 29)
	s.Process(e.m, d, e.rec)

	sand := 0
	for x := 30; x < 40; x++ {
		if e.mat(x, 30) == material.Sand {
			sand++
		}
	}
	if sand != 10 {
		t.Errorf("sand pixels = %d, want 10", sand)
	}
	if d.Count() != 0 {
		t.Error("small region spawned a falling body")
	}
}

// A large unanchored region becomes one falling body and air.
func TestLargeUnanchoredRegionBecomesBody(t *testing.T) {
	e := newEnv(t)
	e.ensure(world.ChunkKey{X: 0, Y: 0})
	s, d := newStructural(e)

	for y := 30; y < 40; y++ {
		for x := 30; x < 40; x++ {
			e.setPlayer(x, y, material.Stone) // 100 pixels
		}
	}
	s.Schedule(35, 29)
	s.Process(e.m, d, e.rec)

	if d.Count() != 1 {
		t.Fatalf("falling bodies = %d, want 1", d.Count())
	}
	for y := 30; y < 40; y++ {
		for x := 30; x < 40; x++ {
			if e.mat(x, y) != material.Air {
				t.Fatalf("grid cell (%d,%d) not cleared", x, y)
			}
		}
	}
}

// I7: a natural floating region is left alone forever.
func TestNaturalRegionNeverConverted(t *testing.T) {
	e := newEnv(t)
	e.ensure(world.ChunkKey{X: 0, Y: 0})
	s, d := newStructural(e)

	for x := 30; x < 40; x++ {
		e.set(x, 30, material.Stone) // natural, floating
	}
	s.Schedule(35, 29)
	s.Process(e.m, d, e.rec)

	for x := 30; x < 40; x++ {
		if e.mat(x, 30) != material.Stone {
			t.Fatalf("natural pixel at (%d,30) converted", x)
		}
	}
}

// An anchored structure survives: the cantilever stays while connected to
// natural stone, and collapses once the connection is cut.
func TestCantileverCollapse(t *testing.T) {
	e := newEnv(t)
	e.ensure(world.ChunkKey{X: -1, Y: 0}, world.ChunkKey{X: 0, Y: 0})
	s, d := newStructural(e)

	// Natural wall at x=-1, player bar x in [0,30).
	for y := 5; y < 15; y++ {
		e.set(-1, y, material.Stone)
	}
	for x := 0; x < 30; x++ {
		e.setPlayer(x, 10, material.Stone)
	}

	// Support under the outer 20 pixels is removed.
	for x := 10; x < 30; x++ {
		s.Schedule(x, 9)
	}
	s.Process(e.m, d, e.rec)

	for x := 0; x < 30; x++ {
		if e.mat(x, 10) != material.Stone {
			t.Fatalf("anchored bar pixel (%d,10) converted", x)
		}
	}

	// Break the connection to the wall.
	e.m.SetPixelAt(0, 10, world.AirPixel)
	s.Schedule(0, 10)
	s.Process(e.m, d, e.rec)

	sand := 0
	for x := 1; x < 30; x++ {
		if e.mat(x, 10) == material.Sand {
			sand++
		}
	}
	if sand != 29 {
		t.Errorf("collapsed bar sand pixels = %d, want 29", sand)
	}
}
