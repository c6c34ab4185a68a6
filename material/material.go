// Package material defines the static material and reaction registries.
//
// Both registries are data-driven: the default material set and reaction set
// are embedded YAML documents, parsed once at startup. Registries are
// immutable after loading; pixels reference materials by id.
package material

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Type classifies how a material moves under the cellular automata.
type Type uint8

const (
	Solid Type = iota
	Powder
	Liquid
	Gas
)

// String returns the lowercase name of the type.
func (t Type) String() string {
	switch t {
	case Solid:
		return "solid"
	case Powder:
		return "powder"
	case Liquid:
		return "liquid"
	case Gas:
		return "gas"
	}
	return fmt.Sprintf("type(%d)", t)
}

// UnmarshalYAML parses a material type from its lowercase name.
func (t *Type) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "solid":
		*t = Solid
	case "powder":
		*t = Powder
	case "liquid":
		*t = Liquid
	case "gas":
		*t = Gas
	default:
		return fmt.Errorf("unknown material type %q", s)
	}
	return nil
}

// Well-known material ids. These match the embedded materials.yaml.
const (
	Air uint16 = iota
	Stone
	Dirt
	Grass
	Sand
	Gravel
	Water
	Oil
	Acid
	Lava
	Ice
	Snow
	Steam
	Smoke
	PoisonGas
	Fire
	Wood
	Leaves
	PlantMatter
	Fruit
	Flesh
	Bone
	Ash
	Fertilizer
	Glass
	Metal
	Gunpowder
	CoalOre
	IronOre
	CopperOre
	GoldOre
	IronIngot
	CopperIngot
	GoldIngot
	Bedrock
)

// Def is the static definition of one material.
//
// Optional temperatures are pointers; the matching product id is only
// meaningful when the temperature is present.
type Def struct {
	ID      uint16
	Name    string
	Type    Type
	Density float64

	MeltingPoint  *float64
	MeltsTo       uint16
	BoilingPoint  *float64
	BoilsTo       uint16
	FreezingPoint *float64
	FreezesTo     uint16

	Flammable    bool
	IgnitionTemp *float64
	BurnsTo      uint16
	HasBurnsTo   bool
	BurnRate     float64

	Structural       bool
	HeatConductivity float64

	// Emission is the light level (0-15) this material radiates.
	Emission uint8

	Color string
	Tags  []string
}

// HasTag reports whether the material carries the given tag.
func (d *Def) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
