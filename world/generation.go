package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/granule/material"
)

// Biome tags for context queries.
type Biome uint8

const (
	BiomePlains Biome = iota
	BiomeDesert
	BiomeMountains
)

// String returns the biome name.
func (b Biome) String() string {
	switch b {
	case BiomePlains:
		return "plains"
	case BiomeDesert:
		return "desert"
	case BiomeMountains:
		return "mountains"
	}
	return "unknown"
}

// Generator produces chunks and answers terrain context queries. It must be
// deterministic in (seed, cx, cy).
type Generator interface {
	GenerateChunk(cx, cy int) *Chunk
	TerrainHeight(wx int) int
	BiomeAt(wx int) Biome
	SinglePixel(wx, wy int) uint16
}

// Terrain generation tuning.
const (
	terrainScale   = 0.008
	biomeScale     = 0.0015
	caveScale      = 0.035
	oreScale       = 0.08
	caveThreshold  = 0.62
	dirtDepth      = 6
	bedrockLevel   = -256
	mountainBoost  = 48
	heightVariance = 24
)

// TerrainGenerator is the production generator: an opensimplex heightfield
// with dirt/stone strata, cave carving, depth-banded ore veins, and a
// bedrock floor.
type TerrainGenerator struct {
	seed    int64
	surface int

	height opensimplex.Noise
	biome  opensimplex.Noise
	cave   opensimplex.Noise
	ore    opensimplex.Noise
}

// NewTerrainGenerator creates a generator for the given seed. surfaceLevel
// is the mean terrain height in world coordinates.
func NewTerrainGenerator(seed int64, surfaceLevel int) *TerrainGenerator {
	return &TerrainGenerator{
		seed:    seed,
		surface: surfaceLevel,
		height:  opensimplex.New(seed),
		biome:   opensimplex.New(seed + 1),
		cave:    opensimplex.New(seed + 2),
		ore:     opensimplex.New(seed + 3),
	}
}

// Seed returns the generator seed.
func (g *TerrainGenerator) Seed() int64 {
	return g.seed
}

// TerrainHeight returns the surface height at a world x coordinate.
func (g *TerrainGenerator) TerrainHeight(wx int) int {
	h := g.height.Eval2(float64(wx)*terrainScale, 0)
	base := g.surface + int(h*heightVariance)
	if g.BiomeAt(wx) == BiomeMountains {
		ridge := g.height.Eval2(float64(wx)*terrainScale*2, 100)
		if ridge < 0 {
			ridge = -ridge
		}
		base += int(ridge * mountainBoost)
	}
	return base
}

// BiomeAt returns the biome tag at a world x coordinate.
func (g *TerrainGenerator) BiomeAt(wx int) Biome {
	v := g.biome.Eval2(float64(wx)*biomeScale, 0)
	switch {
	case v > 0.45:
		return BiomeMountains
	case v < -0.45:
		return BiomeDesert
	default:
		return BiomePlains
	}
}

// SinglePixel returns the generated material at a world position.
func (g *TerrainGenerator) SinglePixel(wx, wy int) uint16 {
	if wy <= bedrockLevel {
		return material.Bedrock
	}

	surface := g.TerrainHeight(wx)
	if wy > surface {
		return material.Air
	}

	// Caves carve everything except the near-surface crust.
	if wy < surface-dirtDepth {
		c := g.cave.Eval2(float64(wx)*caveScale, float64(wy)*caveScale)
		if c > caveThreshold {
			return material.Air
		}
	}

	biome := g.BiomeAt(wx)

	if wy == surface {
		if biome == BiomeDesert {
			return material.Sand
		}
		return material.Grass
	}
	if wy > surface-dirtDepth {
		if biome == BiomeDesert {
			return material.Sand
		}
		return material.Dirt
	}

	// Ore veins, banded by depth.
	depth := surface - wy
	o := g.ore.Eval2(float64(wx)*oreScale, float64(wy)*oreScale)
	switch {
	case o > 0.78 && depth > 120:
		return material.GoldOre
	case o > 0.74 && depth > 60:
		return material.IronOre
	case o > 0.72 && depth > 40:
		return material.CopperOre
	case o < -0.74 && depth > 20:
		return material.CoalOre
	}

	return material.Stone
}

// GenerateChunk builds a chunk from SinglePixel. Generated pixels never
// carry the player-placed flag; the chunk comes back clean and unsaved.
func (g *TerrainGenerator) GenerateChunk(cx, cy int) *Chunk {
	c := NewChunk(cx, cy)
	ox, oy := ChunkOrigin(ChunkKey{X: cx, Y: cy})
	for ly := 0; ly < ChunkSize; ly++ {
		for lx := 0; lx < ChunkSize; lx++ {
			id := g.SinglePixel(ox+lx, oy+ly)
			if id != material.Air {
				c.setPixelRaw(idx(lx, ly), NewPixel(id))
			}
		}
	}
	// Generation is not a modification.
	c.Dirty = false
	c.ClearDirtyRect()
	c.LightDirty = true
	return c
}

// FlatGenerator produces empty chunks. Useful for tests and scripted
// scenarios that place everything by hand.
type FlatGenerator struct{}

// GenerateChunk returns an empty chunk.
func (FlatGenerator) GenerateChunk(cx, cy int) *Chunk { return NewChunk(cx, cy) }

// TerrainHeight returns zero.
func (FlatGenerator) TerrainHeight(int) int { return 0 }

// BiomeAt returns plains.
func (FlatGenerator) BiomeAt(int) Biome { return BiomePlains }

// SinglePixel returns air.
func (FlatGenerator) SinglePixel(int, int) uint16 { return material.Air }
