package material

import (
	_ "embed"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//go:embed materials.yaml
var materialsYAML []byte

// rawDef is the YAML form of a material definition. Products are referenced
// by name and resolved to ids after the whole document is parsed.
type rawDef struct {
	ID      uint16  `yaml:"id"`
	Name    string  `yaml:"name"`
	Type    Type    `yaml:"type"`
	Density float64 `yaml:"density"`

	MeltingPoint  *float64 `yaml:"melting_point"`
	MeltsTo       string   `yaml:"melts_to"`
	BoilingPoint  *float64 `yaml:"boiling_point"`
	BoilsTo       string   `yaml:"boils_to"`
	FreezingPoint *float64 `yaml:"freezing_point"`
	FreezesTo     string   `yaml:"freezes_to"`

	Flammable    bool     `yaml:"flammable"`
	IgnitionTemp *float64 `yaml:"ignition_temp"`
	BurnsTo      string   `yaml:"burns_to"`
	BurnRate     float64  `yaml:"burn_rate"`

	Structural       bool    `yaml:"structural"`
	HeatConductivity float64 `yaml:"heat_conductivity"`
	Emission         uint8   `yaml:"emission"`
	Color            string  `yaml:"color"`
	Tags             []string `yaml:"tags"`
}

type materialsDoc struct {
	Materials []rawDef `yaml:"materials"`
}

// Registry holds all material definitions, indexed by id.
// It is immutable after construction.
type Registry struct {
	defs   []Def
	byName map[string]uint16
}

// NewRegistry loads the embedded default material set.
func NewRegistry() *Registry {
	reg, err := LoadRegistry(materialsYAML)
	if err != nil {
		panic(fmt.Sprintf("material: embedded materials invalid: %v", err))
	}
	return reg
}

// LoadRegistry parses a material set from YAML.
func LoadRegistry(data []byte) (*Registry, error) {
	var doc materialsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing materials: %w", err)
	}
	if len(doc.Materials) == 0 {
		return nil, fmt.Errorf("no materials defined")
	}

	maxID := uint16(0)
	byName := make(map[string]uint16, len(doc.Materials))
	for _, raw := range doc.Materials {
		if raw.ID > maxID {
			maxID = raw.ID
		}
		if _, dup := byName[raw.Name]; dup {
			return nil, fmt.Errorf("duplicate material name %q", raw.Name)
		}
		byName[raw.Name] = raw.ID
	}

	reg := &Registry{
		defs:   make([]Def, maxID+1),
		byName: byName,
	}

	resolve := func(name, field, owner string) (uint16, bool, error) {
		if name == "" {
			return 0, false, nil
		}
		id, ok := byName[name]
		if !ok {
			return 0, false, fmt.Errorf("material %q: %s references unknown material %q", owner, field, name)
		}
		return id, true, nil
	}

	seen := make(map[uint16]bool, len(doc.Materials))
	for _, raw := range doc.Materials {
		if seen[raw.ID] {
			return nil, fmt.Errorf("duplicate material id %d", raw.ID)
		}
		seen[raw.ID] = true

		def := Def{
			ID:               raw.ID,
			Name:             raw.Name,
			Type:             raw.Type,
			Density:          raw.Density,
			MeltingPoint:     raw.MeltingPoint,
			BoilingPoint:     raw.BoilingPoint,
			FreezingPoint:    raw.FreezingPoint,
			Flammable:        raw.Flammable,
			IgnitionTemp:     raw.IgnitionTemp,
			BurnRate:         raw.BurnRate,
			Structural:       raw.Structural,
			HeatConductivity: raw.HeatConductivity,
			Emission:         raw.Emission,
			Color:            raw.Color,
			Tags:             raw.Tags,
		}

		var err error
		if def.MeltsTo, _, err = resolve(raw.MeltsTo, "melts_to", raw.Name); err != nil {
			return nil, err
		}
		if def.BoilsTo, _, err = resolve(raw.BoilsTo, "boils_to", raw.Name); err != nil {
			return nil, err
		}
		if def.FreezesTo, _, err = resolve(raw.FreezesTo, "freezes_to", raw.Name); err != nil {
			return nil, err
		}
		if def.BurnsTo, def.HasBurnsTo, err = resolve(raw.BurnsTo, "burns_to", raw.Name); err != nil {
			return nil, err
		}

		if def.MeltingPoint != nil && raw.MeltsTo == "" {
			return nil, fmt.Errorf("material %q has melting_point but no melts_to", raw.Name)
		}
		if def.BoilingPoint != nil && raw.BoilsTo == "" {
			return nil, fmt.Errorf("material %q has boiling_point but no boils_to", raw.Name)
		}
		if def.FreezingPoint != nil && raw.FreezesTo == "" {
			return nil, fmt.Errorf("material %q has freezing_point but no freezes_to", raw.Name)
		}

		reg.defs[raw.ID] = def
	}

	// Unlisted ids in the range would alias air; require a dense table.
	for id := range reg.defs {
		if !seen[uint16(id)] {
			return nil, fmt.Errorf("material id %d missing: ids must be dense", id)
		}
	}

	return reg, nil
}

// Get returns the definition for a material id. Unknown ids are substituted
// with air and logged; callers never receive nil.
func (r *Registry) Get(id uint16) *Def {
	if int(id) >= len(r.defs) {
		log.Error().Uint16("material", id).Msg("unknown material id, substituting air")
		return &r.defs[Air]
	}
	return &r.defs[id]
}

// Valid reports whether id indexes a registered material.
func (r *Registry) Valid(id uint16) bool {
	return int(id) < len(r.defs)
}

// ByName returns the id of a material by name.
func (r *Registry) ByName(name string) (uint16, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Len returns the number of registered materials.
func (r *Registry) Len() int {
	return len(r.defs)
}
