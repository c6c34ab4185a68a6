// Package world implements the chunked pixel store: chunks, coordinate math,
// the chunk manager with its spatial index, and the generator and persistence
// capabilities the manager consumes.
package world

import "github.com/pthm-cable/granule/material"

// Pixel flag bits.
const (
	// FlagUpdated marks a pixel already moved this tick.
	FlagUpdated uint16 = 1 << 0
	// FlagBurning marks a pixel currently on fire.
	FlagBurning uint16 = 1 << 1
	// FlagFalling marks a pixel in free fall.
	FlagFalling uint16 = 1 << 2
	// FlagPlayerPlaced marks provenance: set on any write by an agent,
	// never by world generation.
	FlagPlayerPlaced uint16 = 1 << 3

	// runtimeFlags are not persisted.
	runtimeFlags = FlagUpdated | FlagFalling
)

// Pixel is a single cell of the world. Fixed size, no per-pixel allocation.
type Pixel struct {
	Material uint16
	Flags    uint16
}

// AirPixel is the empty pixel.
var AirPixel = Pixel{Material: material.Air}

// NewPixel returns a pixel of the given material with no flags set.
func NewPixel(id uint16) Pixel {
	return Pixel{Material: id}
}

// Empty reports whether the pixel is air.
func (p Pixel) Empty() bool {
	return p.Material == material.Air
}

// Has reports whether all given flag bits are set.
func (p Pixel) Has(flags uint16) bool {
	return p.Flags&flags == flags
}
