package world

import "testing"

func TestPixelAccess(t *testing.T) {
	c := NewChunk(0, 0)

	c.SetMaterial(10, 20, 5)
	if got := c.GetPixel(10, 20).Material; got != 5 {
		t.Errorf("material at (10,20) = %d, want 5", got)
	}

	c.SetMaterial(0, 0, 1)
	c.SetMaterial(63, 63, 2)
	if got := c.GetPixel(0, 0).Material; got != 1 {
		t.Errorf("material at (0,0) = %d, want 1", got)
	}
	if got := c.GetPixel(63, 63).Material; got != 2 {
		t.Errorf("material at (63,63) = %d, want 2", got)
	}
}

func TestDirtyRect(t *testing.T) {
	c := NewChunk(0, 0)
	if c.DirtyRect() != nil {
		t.Fatal("fresh chunk has a dirty rect")
	}

	c.SetMaterial(10, 10, 1)
	c.SetMaterial(50, 50, 1)

	r := c.DirtyRect()
	if r == nil {
		t.Fatal("no dirty rect after writes")
	}
	if r.MinX != 10 || r.MinY != 10 || r.MaxX != 50 || r.MaxY != 50 {
		t.Errorf("dirty rect = %+v, want (10,10)-(50,50)", *r)
	}

	c.ClearDirtyRect()
	if c.DirtyRect() != nil {
		t.Error("dirty rect not cleared")
	}
	if !c.Dirty {
		t.Error("ClearDirtyRect must not clear Dirty")
	}
}

func TestWriteSetsFlags(t *testing.T) {
	c := NewChunk(0, 0)
	c.LightDirty = false
	c.Dirty = false

	c.SetMaterial(5, 5, 1)
	if !c.Dirty {
		t.Error("write did not set Dirty")
	}
	if !c.LightDirty {
		t.Error("write did not set LightDirty")
	}
}

func TestSwapPixels(t *testing.T) {
	c := NewChunk(0, 0)
	c.SetMaterial(1, 1, 7)
	c.SetMaterial(2, 2, 9)

	c.SwapPixels(1, 1, 2, 2)
	if c.GetPixel(1, 1).Material != 9 || c.GetPixel(2, 2).Material != 7 {
		t.Error("pixels not swapped")
	}
}

func TestClearUpdateFlags(t *testing.T) {
	c := NewChunk(0, 0)
	p := NewPixel(3)
	p.Flags |= FlagUpdated | FlagBurning
	c.SetPixel(4, 4, p)

	c.ClearUpdateFlags()
	got := c.GetPixel(4, 4)
	if got.Has(FlagUpdated) {
		t.Error("updated flag survived clear")
	}
	if !got.Has(FlagBurning) {
		t.Error("burning flag must survive clear")
	}
}

func TestCoarseFields(t *testing.T) {
	c := NewChunk(0, 0)

	if got := c.TemperatureAt(0, 0); got != AmbientTemperature {
		t.Errorf("fresh temperature = %v, want %v", got, AmbientTemperature)
	}
	if got := c.PressureAt(0, 0); got != AmbientPressure {
		t.Errorf("fresh pressure = %v, want %v", got, AmbientPressure)
	}

	c.AddHeat(0, 0, 100)
	if got := c.TemperatureAt(0, 0); got != AmbientTemperature+100 {
		t.Errorf("temperature after heat = %v", got)
	}
	// All pixels in the same 8x8 cell alias one value.
	if got := c.TemperatureAt(7, 7); got != AmbientTemperature+100 {
		t.Errorf("aliased temperature = %v", got)
	}
	// A different cell is unaffected.
	if got := c.TemperatureAt(8, 8); got != AmbientTemperature {
		t.Errorf("neighbor cell temperature = %v", got)
	}
}

func TestCoarseIndex(t *testing.T) {
	if CoarseIndex(0, 0) != 0 {
		t.Error("CoarseIndex(0,0)")
	}
	if CoarseIndex(7, 7) != 0 {
		t.Error("CoarseIndex(7,7)")
	}
	if CoarseIndex(8, 8) != CoarseSize+1 {
		t.Error("CoarseIndex(8,8)")
	}
	if CoarseIndex(63, 63) != CoarseArea-1 {
		t.Error("CoarseIndex(63,63)")
	}
}

func TestCountNonAir(t *testing.T) {
	c := NewChunk(0, 0)
	if c.CountNonAir() != 0 {
		t.Error("fresh chunk not empty")
	}
	c.SetMaterial(0, 0, 1)
	c.SetMaterial(1, 0, 2)
	if got := c.CountNonAir(); got != 2 {
		t.Errorf("CountNonAir = %d, want 2", got)
	}
}
