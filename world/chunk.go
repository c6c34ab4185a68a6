package world

// ChunkSize is the side length of a chunk in pixels.
const ChunkSize = 64

// ChunkArea is the number of pixels in a chunk.
const ChunkArea = ChunkSize * ChunkSize

// CoarseSize is the side length of the coarse temperature/pressure grids.
// Each coarse cell aliases an 8x8 block of pixels.
const CoarseSize = 8

// CoarseArea is the number of coarse cells per chunk.
const CoarseArea = CoarseSize * CoarseSize

// coarseFactor converts pixel coordinates to coarse cell coordinates.
const coarseFactor = ChunkSize / CoarseSize

// Default field values for freshly created chunks.
const (
	AmbientTemperature = 20.0 // Celsius
	AmbientPressure    = 1.0  // atmospheres
	MaxLight           = 15
)

// DirtyRect is the bounding box of pixels modified since the last render
// snapshot, in local coordinates.
type DirtyRect struct {
	MinX, MinY int
	MaxX, MaxY int
}

func (r *DirtyRect) expand(x, y int) {
	r.MinX = min(r.MinX, x)
	r.MinY = min(r.MinY, y)
	r.MaxX = max(r.MaxX, x)
	r.MaxY = max(r.MaxY, y)
}

// Chunk is a 64x64 region of the world with per-pixel material and light and
// coarse 8x8 temperature and pressure fields.
type Chunk struct {
	// X, Y are the chunk coordinates (chunk space, not pixel space).
	X, Y int

	pixels [ChunkArea]Pixel

	// Light holds per-pixel light levels, 0..15.
	Light [ChunkArea]uint8

	// Temperature holds the coarse 8x8 temperature grid, Celsius.
	Temperature [CoarseArea]float32

	// Pressure holds the coarse 8x8 pressure grid, atmospheres.
	Pressure [CoarseArea]float32

	// LightDirty is set after any pixel write; cleared after propagation.
	LightDirty bool

	// Dirty is set when the chunk has unsaved modifications.
	Dirty bool

	// SimulationActive is set while the chunk has pending motion. Separate
	// from the dirty rect: the renderer clears the rect after drawing but
	// the chunk must keep simulating until materials settle.
	SimulationActive bool

	dirtyRect *DirtyRect
}

// NewChunk creates an empty chunk at the given chunk coordinates, filled with
// air at ambient temperature and pressure, fully dark and pending its first
// light pass.
func NewChunk(cx, cy int) *Chunk {
	c := &Chunk{X: cx, Y: cy, LightDirty: true}
	for i := range c.Temperature {
		c.Temperature[i] = AmbientTemperature
		c.Pressure[i] = AmbientPressure
	}
	return c
}

func idx(x, y int) int {
	return y*ChunkSize + x
}

// GetPixel returns the pixel at local coordinates (0-63, 0-63).
func (c *Chunk) GetPixel(x, y int) Pixel {
	return c.pixels[idx(x, y)]
}

// GetMaterial returns the material id at local coordinates.
func (c *Chunk) GetMaterial(x, y int) uint16 {
	return c.pixels[idx(x, y)].Material
}

// SetPixel writes the pixel at local coordinates, extending the dirty rect
// and marking the chunk dirty and light-dirty.
func (c *Chunk) SetPixel(x, y int, p Pixel) {
	c.pixels[idx(x, y)] = p
	c.markDirty(x, y)
}

// SetMaterial writes a flagless pixel of the given material.
func (c *Chunk) SetMaterial(x, y int, id uint16) {
	c.SetPixel(x, y, NewPixel(id))
}

// SwapPixels exchanges two pixels within the chunk.
func (c *Chunk) SwapPixels(x1, y1, x2, y2 int) {
	i, j := idx(x1, y1), idx(x2, y2)
	c.pixels[i], c.pixels[j] = c.pixels[j], c.pixels[i]
	c.markDirty(x1, y1)
	c.markDirty(x2, y2)
}

// setPixelRaw writes a pixel without touching dirty tracking. Persistence
// uses it while decoding.
func (c *Chunk) setPixelRaw(i int, p Pixel) {
	c.pixels[i] = p
}

// Pixels returns the raw pixel slice for rendering and encoding.
func (c *Chunk) Pixels() []Pixel {
	return c.pixels[:]
}

// GetLight returns the light level at local coordinates (0-15).
func (c *Chunk) GetLight(x, y int) uint8 {
	return c.Light[idx(x, y)]
}

// SetLight sets the light level at local coordinates (0-15).
func (c *Chunk) SetLight(x, y int, level uint8) {
	c.Light[idx(x, y)] = level
}

// CoarseIndex returns the coarse-grid index for a pixel position.
func CoarseIndex(x, y int) int {
	return (y/coarseFactor)*CoarseSize + x/coarseFactor
}

// TemperatureAt returns the temperature of the coarse cell containing the
// given pixel.
func (c *Chunk) TemperatureAt(x, y int) float64 {
	return float64(c.Temperature[CoarseIndex(x, y)])
}

// AddHeat adds heat to the coarse cell containing the given pixel.
func (c *Chunk) AddHeat(x, y int, heat float64) {
	c.Temperature[CoarseIndex(x, y)] += float32(heat)
}

// PressureAt returns the pressure of the coarse cell containing the given
// pixel.
func (c *Chunk) PressureAt(x, y int) float64 {
	return float64(c.Pressure[CoarseIndex(x, y)])
}

// DirtyRect returns the current dirty rect, or nil when nothing changed
// since the last clear.
func (c *Chunk) DirtyRect() *DirtyRect {
	return c.dirtyRect
}

// ClearDirtyRect clears only the render-side tracking. Dirty and
// SimulationActive are untouched.
func (c *Chunk) ClearDirtyRect() {
	c.dirtyRect = nil
}

// ClearUpdateFlags clears the per-tick updated bit from every pixel.
func (c *Chunk) ClearUpdateFlags() {
	for i := range c.pixels {
		c.pixels[i].Flags &^= FlagUpdated
	}
}

// CountNonAir returns the number of non-air pixels.
func (c *Chunk) CountNonAir() int {
	n := 0
	for i := range c.pixels {
		if !c.pixels[i].Empty() {
			n++
		}
	}
	return n
}

func (c *Chunk) markDirty(x, y int) {
	c.Dirty = true
	c.LightDirty = true
	if c.dirtyRect == nil {
		c.dirtyRect = &DirtyRect{MinX: x, MinY: y, MaxX: x, MaxY: y}
		return
	}
	c.dirtyRect.expand(x, y)
}
