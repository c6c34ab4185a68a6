package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/telemetry"
	"github.com/pthm-cable/granule/world"
)

// env bundles the pieces most system tests need.
type env struct {
	m         *world.Manager
	mats      *material.Registry
	reactions *material.Reactions
	ca        *CA
	chem      *Chemistry
	rec       telemetry.Recorder
	rng       *rand.Rand
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mats := material.NewRegistry()
	reactions := material.NewReactions(mats)
	chem := NewChemistry(mats, reactions, DefaultChemistryParams())
	ca := NewCA(mats, reactions, chem)
	chem.AttachCA(ca)

	return &env{
		m:         world.NewManager(world.DefaultManagerParams()),
		mats:      mats,
		reactions: reactions,
		ca:        ca,
		chem:      chem,
		rec:       telemetry.Noop{},
		rng:       rand.New(rand.NewSource(42)),
	}
}

// ensure creates empty chunks covering the given chunk keys.
func (e *env) ensure(keys ...world.ChunkKey) {
	for _, key := range keys {
		e.m.Insert(world.NewChunk(key.X, key.Y))
	}
}

// set places a flagless pixel at world coordinates.
func (e *env) set(wx, wy int, id uint16) {
	if !e.m.SetPixelAt(wx, wy, world.NewPixel(id)) {
		panic("set outside loaded chunks")
	}
}

// setPlayer places a player-placed pixel at world coordinates.
func (e *env) setPlayer(wx, wy int, id uint16) {
	p := world.NewPixel(id)
	p.Flags |= world.FlagPlayerPlaced
	if !e.m.SetPixelAt(wx, wy, p) {
		panic("set outside loaded chunks")
	}
}

// mat returns the material at world coordinates, or air when unloaded.
func (e *env) mat(wx, wy int) uint16 {
	p, ok := e.m.PixelAt(wx, wy)
	if !ok {
		return material.Air
	}
	return p.Material
}

// countMaterial counts pixels of one material over the loaded chunks
// covering the given chunk keys.
func (e *env) countMaterial(id uint16, keys ...world.ChunkKey) int {
	n := 0
	for _, key := range keys {
		c := e.m.Get(key)
		if c == nil {
			continue
		}
		for _, p := range c.Pixels() {
			if p.Material == id {
				n++
			}
		}
	}
	return n
}
