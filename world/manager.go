package world

import (
	"math"

	"github.com/rs/zerolog/log"
)

// ManagerParams are the chunk lifecycle tunables.
type ManagerParams struct {
	// ActiveRadius is the Chebyshev radius of simulated chunks around the
	// focus chunk.
	ActiveRadius int
	// LoadRadius is the radius loaded around the focus when it moves.
	LoadRadius int
	// EvictRadius: chunks beyond this distance are eviction candidates
	// once LoadedLimit is exceeded.
	EvictRadius int
	// LoadedLimit is the maximum number of chunks kept in memory.
	LoadedLimit int
}

// DefaultManagerParams returns the standard lifecycle tunables.
func DefaultManagerParams() ManagerParams {
	return ManagerParams{
		ActiveRadius: 3,
		LoadRadius:   8,
		EvictRadius:  10,
		LoadedLimit:  3000,
	}
}

// Manager owns the loaded chunk set: map plus spatial index, the active set
// around a focus point, load-or-generate, and distance-based eviction with
// save-first.
type Manager struct {
	chunks map[ChunkKey]*Chunk
	index  *QuadNode

	// Active is the ordered list of chunks currently being simulated.
	Active []ChunkKey

	// Ephemeral disables persistence entirely: generation only, no disk
	// IO, no eviction saves.
	Ephemeral bool

	params        ManagerParams
	lastLoadChunk *ChunkKey
}

// NewManager creates an empty chunk manager.
func NewManager(params ManagerParams) *Manager {
	return &Manager{
		chunks: make(map[ChunkKey]*Chunk),
		index:  NewQuadIndex(),
		params: params,
	}
}

// Get returns the chunk for a key, or nil when not loaded.
func (m *Manager) Get(key ChunkKey) *Chunk {
	return m.chunks[key]
}

// GetChunk returns the chunk at chunk coordinates, or nil when not loaded.
func (m *Manager) GetChunk(cx, cy int) *Chunk {
	return m.chunks[ChunkKey{X: cx, Y: cy}]
}

// Has reports whether the chunk is loaded.
func (m *Manager) Has(key ChunkKey) bool {
	_, ok := m.chunks[key]
	return ok
}

// Len returns the number of loaded chunks.
func (m *Manager) Len() int {
	return len(m.chunks)
}

// Insert adds a chunk, replacing any previous one at the same key. The map
// and the spatial index are updated together.
func (m *Manager) Insert(c *Chunk) {
	key := ChunkKey{X: c.X, Y: c.Y}
	if _, ok := m.chunks[key]; !ok {
		m.index.Insert(key)
	}
	m.chunks[key] = c
}

// remove drops a chunk from both the map and the spatial index.
func (m *Manager) remove(key ChunkKey) {
	if _, ok := m.chunks[key]; !ok {
		return
	}
	delete(m.chunks, key)
	m.index.Remove(key)
}

// PixelAt returns the pixel at world coordinates. ok is false when the
// containing chunk is not loaded.
func (m *Manager) PixelAt(wx, wy int) (Pixel, bool) {
	key, lx, ly := WorldToChunk(wx, wy)
	c, ok := m.chunks[key]
	if !ok {
		return Pixel{}, false
	}
	return c.GetPixel(lx, ly), true
}

// SetPixelAt writes a pixel at world coordinates. Returns false (and logs at
// trace level) when the chunk is not loaded; chunks are never created by
// writes.
func (m *Manager) SetPixelAt(wx, wy int, p Pixel) bool {
	key, lx, ly := WorldToChunk(wx, wy)
	c, ok := m.chunks[key]
	if !ok {
		log.Trace().Int("wx", wx).Int("wy", wy).Msg("write to unloaded chunk dropped")
		return false
	}
	c.SetPixel(lx, ly, p)
	return true
}

// EnsureArea creates empty chunks for any missing coordinate covering the
// given world-coordinate rectangle.
func (m *Manager) EnsureArea(minX, minY, maxX, maxY int) {
	minKey, _, _ := WorldToChunk(minX, minY)
	maxKey, _, _ := WorldToChunk(maxX, maxY)
	for cy := minKey.Y; cy <= maxKey.Y; cy++ {
		for cx := minKey.X; cx <= maxKey.X; cx++ {
			key := ChunkKey{X: cx, Y: cy}
			if _, ok := m.chunks[key]; !ok {
				m.chunks[key] = NewChunk(cx, cy)
				m.index.Insert(key)
			}
		}
	}
}

// FocusChunk returns the chunk key containing a world position.
func FocusChunk(x, y float64) ChunkKey {
	return ChunkKeyAt(int(math.Floor(x)), int(math.Floor(y)))
}

// UpdateActive recomputes the active set around the focus position. Loaded
// chunks entering the window are activated and flagged for simulation;
// chunks leaving are deactivated but stay loaded.
func (m *Manager) UpdateActive(focusX, focusY float64) {
	focus := FocusChunk(focusX, focusY)
	r := m.params.ActiveRadius

	kept := m.Active[:0]
	for _, key := range m.Active {
		if chebyshev(key, focus) <= r {
			kept = append(kept, key)
		}
	}
	m.Active = kept

	for cy := focus.Y - r; cy <= focus.Y+r; cy++ {
		for cx := focus.X - r; cx <= focus.X+r; cx++ {
			key := ChunkKey{X: cx, Y: cy}
			c, ok := m.chunks[key]
			if !ok || m.isActive(key) {
				continue
			}
			m.Active = append(m.Active, key)
			c.SimulationActive = true
		}
	}
}

func (m *Manager) isActive(key ChunkKey) bool {
	for _, k := range m.Active {
		if k == key {
			return true
		}
	}
	return false
}

// LoadNearby loads (or generates) chunks around the focus. No-op until the
// focus enters a new chunk, and entirely disabled in ephemeral mode.
func (m *Manager) LoadNearby(focusX, focusY float64, store Store, gen Generator) {
	if m.Ephemeral {
		return
	}
	focus := FocusChunk(focusX, focusY)
	if m.lastLoadChunk != nil && *m.lastLoadChunk == focus {
		return
	}
	m.lastLoadChunk = &focus

	r := m.params.LoadRadius
	for cy := focus.Y - r; cy <= focus.Y+r; cy++ {
		for cx := focus.X - r; cx <= focus.X+r; cx++ {
			m.loadOrGenerate(cx, cy, focus, store, gen)
		}
	}
}

func (m *Manager) loadOrGenerate(cx, cy int, focus ChunkKey, store Store, gen Generator) {
	key := ChunkKey{X: cx, Y: cy}
	if _, ok := m.chunks[key]; ok {
		return
	}

	var c *Chunk
	if store != nil {
		c = store.LoadChunk(cx, cy, gen)
	} else {
		c = gen.GenerateChunk(cx, cy)
	}
	m.chunks[key] = c
	m.index.Insert(key)

	if len(m.chunks) > m.params.LoadedLimit {
		m.EvictDistant(focus, store)
	}
}

// EvictDistant removes chunks beyond the eviction radius of the focus chunk,
// saving dirty ones first when a store is available. Save failures keep the
// chunk loaded and dirty for retry.
func (m *Manager) EvictDistant(focus ChunkKey, store Store) int {
	var candidates []ChunkKey
	m.index.Walk(func(key ChunkKey) {
		if chebyshev(key, focus) > m.params.EvictRadius {
			candidates = append(candidates, key)
		}
	})

	evicted := 0
	for _, key := range candidates {
		c := m.chunks[key]
		if c == nil {
			continue
		}
		if c.Dirty && !m.Ephemeral && store != nil {
			if err := store.SaveChunk(c); err != nil {
				log.Error().Err(err).Int("cx", key.X).Int("cy", key.Y).Msg("failed to save chunk, keeping loaded")
				continue
			}
			c.Dirty = false
			log.Debug().Int("cx", key.X).Int("cy", key.Y).Msg("saved and evicted chunk")
		}
		m.remove(key)
		evicted++
	}
	return evicted
}

// SaveDirty serializes every dirty chunk. Chunks that fail to save stay
// dirty and retry on the next pass. Returns the number saved.
func (m *Manager) SaveDirty(store Store) int {
	if store == nil || m.Ephemeral {
		return 0
	}

	saved := 0
	for key, c := range m.chunks {
		if !c.Dirty {
			continue
		}
		if err := store.SaveChunk(c); err != nil {
			log.Error().Err(err).Int("cx", key.X).Int("cy", key.Y).Msg("failed to save chunk")
			continue
		}
		c.Dirty = false
		saved++
	}
	if saved > 0 {
		log.Debug().Int("count", saved).Msg("saved dirty chunks")
	}
	return saved
}

// ChunksInRect returns the loaded chunk keys inside a chunk-space rect.
func (m *Manager) ChunksInRect(r Rect) []ChunkKey {
	return m.index.Query(r, nil)
}

// Clear drops every chunk and the active set.
func (m *Manager) Clear() {
	m.chunks = make(map[ChunkKey]*Chunk)
	m.index = NewQuadIndex()
	m.Active = m.Active[:0]
	m.lastLoadChunk = nil
}
