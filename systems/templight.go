package systems

import "github.com/pthm-cable/granule/world"

// framesPerSecond converts flash durations to frame counts.
const framesPerSecond = 60

// tempLight is one short-lived flash.
type tempLight struct {
	wx, wy    int
	intensity uint8
	frames    int
}

// TempLights manages short-lived light flashes (mining sparks, explosions).
// Flashes bypass propagation entirely: after the main light pass each one is
// applied at its exact pixel with max(stored, intensity).
type TempLights struct {
	lights []tempLight
}

// NewTempLights creates an empty manager.
func NewTempLights() *TempLights {
	return &TempLights{lights: make([]tempLight, 0, 32)}
}

// AddFlash adds a flash at a world position. Intensity is clamped to 15;
// duration is converted to frames at 60 FPS with a minimum of one frame.
func (t *TempLights) AddFlash(wx, wy int, intensity uint8, durationSeconds float64) {
	if intensity > world.MaxLight {
		intensity = world.MaxLight
	}
	frames := int(durationSeconds * framesPerSecond)
	if frames < 1 {
		frames = 1
	}
	t.lights = append(t.lights, tempLight{wx: wx, wy: wy, intensity: intensity, frames: frames})
}

// Update decrements lifetimes and drops expired flashes.
func (t *TempLights) Update() {
	kept := t.lights[:0]
	for _, l := range t.lights {
		l.frames--
		if l.frames > 0 {
			kept = append(kept, l)
		}
	}
	t.lights = kept
}

// Apply raises the stored light at each flash position. Never darkens.
func (t *TempLights) Apply(m *world.Manager) {
	for _, l := range t.lights {
		key, lx, ly := world.WorldToChunk(l.wx, l.wy)
		c := m.Get(key)
		if c == nil {
			continue
		}
		if l.intensity > c.GetLight(lx, ly) {
			c.SetLight(lx, ly, l.intensity)
		}
	}
}

// Count returns the number of live flashes.
func (t *TempLights) Count() int {
	return len(t.lights)
}
