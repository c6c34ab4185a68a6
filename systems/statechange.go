package systems

import (
	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/telemetry"
	"github.com/pthm-cable/granule/world"
)

// StateChange applies single-pixel transitions driven by the temperature
// field: melting, boiling, and freezing. Checked in that order; at most one
// transition per pixel per tick. Paired-material chemistry never goes
// through here.
type StateChange struct {
	mats *material.Registry
}

// NewStateChange creates the state-change system.
func NewStateChange(mats *material.Registry) *StateChange {
	return &StateChange{mats: mats}
}

// CheckPixel mutates the pixel's material when its cell temperature crosses
// a threshold. Returns true if the pixel transformed. Flags are preserved
// across the transition.
func (s *StateChange) CheckPixel(p *world.Pixel, temp float64) bool {
	def := s.mats.Get(p.Material)

	if def.MeltingPoint != nil && temp >= *def.MeltingPoint {
		p.Material = def.MeltsTo
		return true
	}
	if def.BoilingPoint != nil && temp >= *def.BoilingPoint {
		p.Material = def.BoilsTo
		return true
	}
	if def.FreezingPoint != nil && temp <= *def.FreezingPoint {
		p.Material = def.FreezesTo
		return true
	}
	return false
}

// UpdateChunk checks every non-empty pixel of a chunk.
func (s *StateChange) UpdateChunk(m *world.Manager, key world.ChunkKey, rec telemetry.Recorder) {
	c := m.Get(key)
	if c == nil {
		return
	}

	for ly := 0; ly < world.ChunkSize; ly++ {
		for lx := 0; lx < world.ChunkSize; lx++ {
			p := c.GetPixel(lx, ly)
			if p.Empty() {
				continue
			}
			temp := c.TemperatureAt(lx, ly)
			if s.CheckPixel(&p, temp) {
				c.SetPixel(lx, ly, p)
				rec.StateChange()
			}
		}
	}
}
