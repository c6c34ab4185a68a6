package world

import (
	"testing"

	"github.com/pthm-cable/granule/material"
)

func TestGeneratorDeterministic(t *testing.T) {
	a := NewTerrainGenerator(42, 32)
	b := NewTerrainGenerator(42, 32)

	ca := a.GenerateChunk(3, -2)
	cb := b.GenerateChunk(3, -2)
	for i := range ca.Pixels() {
		if ca.Pixels()[i] != cb.Pixels()[i] {
			t.Fatalf("pixel %d differs between identical seeds", i)
		}
	}

	other := NewTerrainGenerator(43, 32).GenerateChunk(3, -2)
	same := true
	for i := range ca.Pixels() {
		if ca.Pixels()[i] != other.Pixels()[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds generated identical chunks")
	}
}

func TestGeneratorNeverStampsProvenance(t *testing.T) {
	gen := NewTerrainGenerator(42, 32)
	for _, key := range []ChunkKey{{0, 0}, {-1, 0}, {5, -5}} {
		c := gen.GenerateChunk(key.X, key.Y)
		for i, p := range c.Pixels() {
			if p.Has(FlagPlayerPlaced) {
				t.Fatalf("generated pixel %d in %v has player-placed flag", i, key)
			}
		}
		if c.Dirty {
			t.Errorf("generated chunk %v is dirty", key)
		}
	}
}

func TestGeneratorBedrockFloor(t *testing.T) {
	gen := NewTerrainGenerator(42, 32)
	for _, wx := range []int{-100, 0, 57, 1000} {
		if got := gen.SinglePixel(wx, bedrockLevel-10); got != material.Bedrock {
			t.Errorf("pixel at (%d, %d) = %d, want bedrock", wx, bedrockLevel-10, got)
		}
	}
}

func TestGeneratorAirAboveSurface(t *testing.T) {
	gen := NewTerrainGenerator(42, 32)
	for _, wx := range []int{-50, 0, 33, 500} {
		h := gen.TerrainHeight(wx)
		if got := gen.SinglePixel(wx, h+5); got != material.Air {
			t.Errorf("pixel above surface at (%d, %d) = %d, want air", wx, h+5, got)
		}
		if got := gen.SinglePixel(wx, h); got == material.Air {
			t.Errorf("surface pixel at (%d, %d) is air", wx, h)
		}
	}
}

func TestGeneratorChunkMatchesSinglePixel(t *testing.T) {
	gen := NewTerrainGenerator(7, 32)
	c := gen.GenerateChunk(1, 0)
	ox, oy := ChunkOrigin(ChunkKey{1, 0})
	for _, pos := range [][2]int{{0, 0}, {13, 50}, {63, 63}} {
		want := gen.SinglePixel(ox+pos[0], oy+pos[1])
		got := c.GetPixel(pos[0], pos[1]).Material
		if got != want {
			t.Errorf("chunk pixel (%d,%d) = %d, SinglePixel = %d", pos[0], pos[1], got, want)
		}
	}
}

func TestBiomeAt(t *testing.T) {
	gen := NewTerrainGenerator(42, 32)
	seen := map[Biome]bool{}
	for wx := -20000; wx < 20000; wx += 97 {
		seen[gen.BiomeAt(wx)] = true
	}
	if len(seen) < 2 {
		t.Errorf("only %d biome(s) over a wide scan", len(seen))
	}
}
