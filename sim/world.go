// Package sim bundles the chunk store and the simulation systems behind a
// single world facade: a fixed-timestep step loop plus the reader and writer
// API external callers use.
package sim

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pthm-cable/granule/config"
	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/systems"
	"github.com/pthm-cable/granule/telemetry"
	"github.com/pthm-cable/granule/world"
)

// Options configure a world.
type Options struct {
	// Config supplies tunables; nil uses embedded defaults.
	Config *config.Config
	// Seed overrides the config seed when non-zero.
	Seed int64
	// Dir is the world directory for persistence. Empty means ephemeral:
	// generation only, no disk IO.
	Dir string
	// Recorder receives simulation events; nil uses a no-op recorder.
	Recorder telemetry.Recorder
	// Generator overrides the terrain generator (tests use FlatGenerator).
	Generator world.Generator
}

// World is the simulation facade. All pixel mutation goes through it; the
// step loop is single-threaded and runs to completion.
type World struct {
	cfg       *config.Config
	mats      *material.Registry
	reactions *material.Reactions

	chunks *world.Manager
	gen    world.Generator
	store  world.Store
	meta   *world.Metadata

	rng *rand.Rand
	rec telemetry.Recorder

	ca          *systems.CA
	chem        *systems.Chemistry
	temperature *systems.Temperature
	stateChange *systems.StateChange
	pressure    *systems.Pressure
	light       *systems.Light
	tempLights  *systems.TempLights
	dayNight    *systems.DayNight
	structural  *systems.Structural
	debris      *systems.Debris

	focusX, focusY float64
	accumulator    float64
	lightAccum     float64
	playSeconds    float64
	tick           uint64

	activeScratch []world.ChunkKey
}

// New creates a world. With a directory, metadata and chunks persist there;
// without one the world is ephemeral.
func New(opts Options) (*World, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	mats := material.NewRegistry()
	reactions := material.NewReactions(mats)

	rec := opts.Recorder
	if rec == nil {
		rec = telemetry.Noop{}
	}

	w := &World{
		cfg:       cfg,
		mats:      mats,
		reactions: reactions,
		rec:       rec,
		chunks: world.NewManager(world.ManagerParams{
			ActiveRadius: cfg.Chunks.ActiveRadius,
			LoadRadius:   cfg.Chunks.LoadRadius,
			EvictRadius:  cfg.Chunks.EvictRadius,
			LoadedLimit:  cfg.Chunks.LoadedLimit,
		}),
	}

	if opts.Dir == "" {
		w.chunks.Ephemeral = true
		w.meta = world.NewMetadata()
	} else {
		store, err := world.NewFileStore(opts.Dir)
		if err != nil {
			return nil, fmt.Errorf("opening world store: %w", err)
		}
		w.store = store
		w.meta = store.LoadMetadata()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Step.Seed
	}
	if w.meta.Seed == 0 {
		w.meta.Seed = seed
	}
	w.rng = rand.New(rand.NewSource(seed))

	if opts.Generator != nil {
		w.gen = opts.Generator
	} else {
		w.gen = world.NewTerrainGenerator(w.meta.Seed, cfg.Light.SurfaceLevel)
	}

	w.chem = systems.NewChemistry(mats, reactions, systems.ChemistryParams{
		FireHeatPerTick: cfg.Fire.HeatPerTick,
		BurnHeatPerTick: cfg.Fire.BurnHeatPerTick,
		SmokeChance:     cfg.Fire.SmokeChance,
	})
	w.ca = systems.NewCA(mats, reactions, w.chem)
	w.chem.AttachCA(w.ca)
	w.temperature = systems.NewTemperature(cfg.Temperature.DiffusionRate, cfg.Temperature.UpdateEvery)
	w.stateChange = systems.NewStateChange(mats)
	w.pressure = systems.NewPressure(mats, systems.PressureParams{
		DecayRate:          cfg.Pressure.DecayRate,
		GasScale:           cfg.Pressure.GasScale,
		PropagationFactor:  cfg.Pressure.PropagationFactor,
		MinDiff:            cfg.Pressure.MinDiff,
		MaxDepth:           cfg.Pressure.MaxDepth,
		QueueMax:           cfg.Pressure.QueueMax,
		MoveThreshold:      cfg.Pressure.MoveThreshold,
		Max:                cfg.Pressure.Max,
		DisplaceIntoDenser: cfg.Pressure.DisplaceIntoDenser,
	})
	w.light = systems.NewLight(mats, cfg.Light.SurfaceLevel)
	w.tempLights = systems.NewTempLights()
	w.dayNight = systems.NewDayNight(cfg.DayNight.CycleSeconds, cfg.DayNight.StartTime)
	w.structural = systems.NewStructural(mats, systems.StructuralParams{
		MaxFloodRadius:       cfg.Structural.MaxFloodRadius,
		SmallDebrisThreshold: cfg.Structural.SmallDebrisThreshold,
	})
	w.chem.AttachStructural(w.structural)
	w.debris = systems.NewDebris(cfg.Debris.Gravity)

	w.focusX = w.meta.SpawnPoint[0]
	w.focusY = w.meta.SpawnPoint[1]

	return w, nil
}

// Materials returns the material registry.
func (w *World) Materials() *material.Registry {
	return w.mats
}

// Reactions returns the reaction registry.
func (w *World) Reactions() *material.Reactions {
	return w.reactions
}

// Metadata returns the world metadata.
func (w *World) Metadata() *world.Metadata {
	return w.meta
}

// Chunks exposes the chunk manager for render and tooling consumers.
func (w *World) Chunks() *world.Manager {
	return w.chunks
}

// Generator exposes the terrain generator for context queries like terrain
// height and biome lookups.
func (w *World) Generator() world.Generator {
	return w.gen
}

// Tick returns the number of completed steps.
func (w *World) Tick() uint64 {
	return w.tick
}

// SkyLight returns the current sky-light level (0-15).
func (w *World) SkyLight() uint8 {
	return w.dayNight.SkyLight()
}

// DebrisCount returns the number of falling bodies in flight.
func (w *World) DebrisCount() int {
	return w.debris.Count()
}

// SetFocus moves the observer position that drives chunk loading and the
// active set.
func (w *World) SetFocus(x, y float64) {
	w.focusX = x
	w.focusY = y
}

// EnsureArea creates empty chunks covering a world-coordinate rectangle.
func (w *World) EnsureArea(minX, minY, maxX, maxY int) {
	w.chunks.EnsureArea(minX, minY, maxX, maxY)
}

// Step consumes dt into the fixed-timestep accumulator and advances the
// simulation by whole 1/60 s ticks. The remainder is carried. Steps never
// fail; persistence problems are logged and recovered internally.
func (w *World) Step(dt float64) {
	w.accumulator += dt
	w.playSeconds += dt
	for w.accumulator >= w.cfg.Step.DT {
		w.step()
		w.accumulator -= w.cfg.Step.DT
	}
}

// step runs one fixed tick of the full pipeline.
func (w *World) step() {
	dt := w.cfg.Step.DT

	w.chunks.LoadNearby(w.focusX, w.focusY, w.store, w.gen)
	w.chunks.UpdateActive(w.focusX, w.focusY)

	active := w.sortedActive()

	// Movement, with reaction checks on each moved pixel.
	for _, key := range active {
		w.ca.UpdateChunk(w.chunks, key, w.rec, w.rng)
	}

	// Ignition and burn consumption.
	for _, key := range active {
		w.chem.UpdateChunk(w.chunks, key, w.rec, w.rng)
	}

	w.structural.Process(w.chunks, w.debris, w.rec)

	w.temperature.Update(w.chunks, active)
	w.pressure.Update(w.chunks, active)

	for _, key := range active {
		w.stateChange.UpdateChunk(w.chunks, key, w.rec)
	}

	w.lightAccum += dt
	if interval := 1.0 / w.cfg.Light.UpdateHz; w.lightAccum >= interval {
		w.light.Propagate(w.chunks, w.dayNight.SkyLight(), active)
		w.lightAccum -= interval
	}
	w.tempLights.Update()
	w.tempLights.Apply(w.chunks)

	w.debris.Update(dt, w.chunks, w.rec)

	for _, key := range active {
		if c := w.chunks.Get(key); c != nil {
			c.ClearUpdateFlags()
		}
	}

	w.dayNight.Advance(dt)
	w.rec.EndStep()
	w.tick++
}

// sortedActive returns the active set ordered bottom row first so gravity
// cascades across chunk seams resolve within one tick.
func (w *World) sortedActive() []world.ChunkKey {
	w.activeScratch = append(w.activeScratch[:0], w.chunks.Active...)
	sort.Slice(w.activeScratch, func(i, j int) bool {
		a, b := w.activeScratch[i], w.activeScratch[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return w.activeScratch
}

// GetPixel returns the pixel at world coordinates, or ok=false when the
// chunk is not loaded.
func (w *World) GetPixel(wx, wy int) (world.Pixel, bool) {
	return w.chunks.PixelAt(wx, wy)
}

// GetTemperature returns the coarse-cell temperature at world coordinates.
// Unloaded chunks report the ambient default; callers can rely on it.
func (w *World) GetTemperature(wx, wy int) float64 {
	key, lx, ly := world.WorldToChunk(wx, wy)
	c := w.chunks.Get(key)
	if c == nil {
		return w.cfg.Temperature.Ambient
	}
	return c.TemperatureAt(lx, ly)
}

// GetLight returns the light level at world coordinates; unloaded chunks
// are dark.
func (w *World) GetLight(wx, wy int) uint8 {
	key, lx, ly := world.WorldToChunk(wx, wy)
	c := w.chunks.Get(key)
	if c == nil {
		return 0
	}
	return c.GetLight(lx, ly)
}

// GetPressure returns the coarse-cell pressure at world coordinates.
// Unloaded chunks report the atmospheric baseline.
func (w *World) GetPressure(wx, wy int) float64 {
	key, lx, ly := world.WorldToChunk(wx, wy)
	c := w.chunks.Get(key)
	if c == nil {
		return w.cfg.Pressure.Baseline
	}
	return c.PressureAt(lx, ly)
}

// SetPixel writes a material at world coordinates, stamping provenance: a
// non-air pixel carries the player-placed flag. Replacing a structural solid with a
// non-solid schedules a structural check. Bedrock is never overwritten.
// Writes to unloaded chunks are dropped; chunks are never created by writes.
func (w *World) SetPixel(wx, wy int, materialID uint16) {
	prev, ok := w.chunks.PixelAt(wx, wy)
	if !ok {
		log.Trace().Int("wx", wx).Int("wy", wy).Msg("set_pixel outside loaded chunks")
		return
	}
	if prev.Material == material.Bedrock {
		return
	}

	p := world.NewPixel(materialID)
	if materialID != material.Air {
		p.Flags |= world.FlagPlayerPlaced
	}
	w.chunks.SetPixelAt(wx, wy, p)

	if key := world.ChunkKeyAt(wx, wy); w.chunks.Has(key) {
		w.chunks.Get(key).SimulationActive = true
	}

	prevDef := w.mats.Get(prev.Material)
	newDef := w.mats.Get(materialID)
	if prevDef.Structural && prevDef.Type == material.Solid && newDef.Type != material.Solid {
		w.structural.Schedule(wx, wy)
	}
}

// SetPixelNatural writes a material without provenance, as world generation
// would. Bedrock is still never overwritten.
func (w *World) SetPixelNatural(wx, wy int, materialID uint16) {
	prev, ok := w.chunks.PixelAt(wx, wy)
	if !ok || prev.Material == material.Bedrock {
		return
	}
	w.chunks.SetPixelAt(wx, wy, world.NewPixel(materialID))
}

// AddHeat injects heat at the coarse cell containing a world position.
func (w *World) AddHeat(wx, wy int, amount float64) {
	key, lx, ly := world.WorldToChunk(wx, wy)
	if c := w.chunks.Get(key); c != nil {
		c.AddHeat(lx, ly, amount)
	}
}

// AddTemporaryLight adds a propagation-free flash at a world position.
func (w *World) AddTemporaryLight(wx, wy int, intensity uint8, durationSeconds float64) {
	w.tempLights.AddFlash(wx, wy, intensity, durationSeconds)
}

// SaveAll persists every dirty chunk and the world metadata. Ephemeral
// worlds are a no-op. Returns the number of chunks saved.
func (w *World) SaveAll() int {
	if w.store == nil {
		return 0
	}
	saved := w.chunks.SaveDirty(w.store)

	w.meta.PlayTimeSeconds += uint64(w.playSeconds)
	w.playSeconds = 0
	w.meta.LastPlayed = time.Now().Format(time.RFC3339)
	if err := w.store.SaveMetadata(w.meta); err != nil {
		log.Error().Err(err).Msg("failed to save world metadata")
	}
	return saved
}
