package material

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed reactions.yaml
var reactionsYAML []byte

// Reaction describes a paired-material transformation. Outputs are aligned
// with InputA/InputB; when a lookup matches with the inputs reversed the
// outputs must be swapped (see Outputs).
type Reaction struct {
	Name string

	InputA uint16
	InputB uint16

	MinTemp *float64
	MaxTemp *float64

	// MinLight requires the site's light level to be at least this (0-15).
	MinLight *uint8
	// MinPressure requires the site's pressure to be at least this.
	MinPressure *float64
	// Catalyst must be present in the 8-neighborhood but is not consumed.
	Catalyst *uint16

	OutputA uint16
	OutputB uint16

	// Probability is the per-tick chance the reaction fires once all
	// preconditions hold, in (0, 1].
	Probability float64

	// EnergyReleased is added to the site's temperature cell. Positive is
	// exothermic, negative endothermic.
	EnergyReleased float64
}

type rawReaction struct {
	Name        string   `yaml:"name"`
	InputA      string   `yaml:"input_a"`
	InputB      string   `yaml:"input_b"`
	MinTemp     *float64 `yaml:"min_temp"`
	MaxTemp     *float64 `yaml:"max_temp"`
	MinLight    *uint8   `yaml:"min_light"`
	MinPressure *float64 `yaml:"min_pressure"`
	Catalyst    string   `yaml:"catalyst"`
	OutputA     string   `yaml:"output_a"`
	OutputB     string   `yaml:"output_b"`
	Probability float64  `yaml:"probability"`
	Energy      float64  `yaml:"energy"`
}

type reactionsDoc struct {
	Reactions []rawReaction `yaml:"reactions"`
}

type pairKey struct {
	a, b uint16
}

func normalizePair(a, b uint16) pairKey {
	if a <= b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

// Reactions maps normalized unordered material pairs to candidate reactions.
// Immutable after construction.
type Reactions struct {
	byPair map[pairKey][]Reaction
	count  int
}

// NewReactions loads the embedded default reaction set, resolving material
// names against the given registry.
func NewReactions(mats *Registry) *Reactions {
	reg, err := LoadReactions(reactionsYAML, mats)
	if err != nil {
		panic(fmt.Sprintf("material: embedded reactions invalid: %v", err))
	}
	return reg
}

// LoadReactions parses a reaction set from YAML.
func LoadReactions(data []byte, mats *Registry) (*Reactions, error) {
	var doc reactionsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing reactions: %w", err)
	}

	reg := &Reactions{byPair: make(map[pairKey][]Reaction)}

	resolve := func(name, field, owner string) (uint16, error) {
		id, ok := mats.ByName(name)
		if !ok {
			return 0, fmt.Errorf("reaction %q: %s references unknown material %q", owner, field, name)
		}
		return id, nil
	}

	for _, raw := range doc.Reactions {
		if raw.Probability <= 0 || raw.Probability > 1 {
			return nil, fmt.Errorf("reaction %q: probability %v outside (0, 1]", raw.Name, raw.Probability)
		}

		r := Reaction{
			Name:           raw.Name,
			MinTemp:        raw.MinTemp,
			MaxTemp:        raw.MaxTemp,
			MinLight:       raw.MinLight,
			MinPressure:    raw.MinPressure,
			Probability:    raw.Probability,
			EnergyReleased: raw.Energy,
		}

		var err error
		if r.InputA, err = resolve(raw.InputA, "input_a", raw.Name); err != nil {
			return nil, err
		}
		if r.InputB, err = resolve(raw.InputB, "input_b", raw.Name); err != nil {
			return nil, err
		}
		if r.OutputA, err = resolve(raw.OutputA, "output_a", raw.Name); err != nil {
			return nil, err
		}
		if r.OutputB, err = resolve(raw.OutputB, "output_b", raw.Name); err != nil {
			return nil, err
		}
		if raw.Catalyst != "" {
			id, err := resolve(raw.Catalyst, "catalyst", raw.Name)
			if err != nil {
				return nil, err
			}
			r.Catalyst = &id
		}

		if r.InputA == Bedrock || r.InputB == Bedrock {
			return nil, fmt.Errorf("reaction %q: bedrock cannot react", raw.Name)
		}

		key := normalizePair(r.InputA, r.InputB)
		reg.byPair[key] = append(reg.byPair[key], r)
		reg.count++
	}

	return reg, nil
}

// Find returns the first reaction for the unordered pair (a, b) whose
// preconditions hold at the given site: temperature within range, enough
// light and pressure, and the catalyst (if any) present among the
// 8-neighborhood material ids. Returns nil if none match.
func (r *Reactions) Find(a, b uint16, temp float64, light uint8, pressure float64, neighborhood []uint16) *Reaction {
	candidates, ok := r.byPair[normalizePair(a, b)]
	if !ok {
		return nil
	}

	for i := range candidates {
		reaction := &candidates[i]
		if reaction.MinTemp != nil && temp < *reaction.MinTemp {
			continue
		}
		if reaction.MaxTemp != nil && temp > *reaction.MaxTemp {
			continue
		}
		if reaction.MinLight != nil && light < *reaction.MinLight {
			continue
		}
		if reaction.MinPressure != nil && pressure < *reaction.MinPressure {
			continue
		}
		if reaction.Catalyst != nil {
			found := false
			for _, n := range neighborhood {
				if n == *reaction.Catalyst {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		return reaction
	}
	return nil
}

// Outputs returns the products aligned to the matched site order: the first
// result replaces the pixel holding matA, the second the pixel holding matB.
func (r *Reaction) Outputs(matA, matB uint16) (uint16, uint16) {
	if r.InputA == matA && r.InputB == matB {
		return r.OutputA, r.OutputB
	}
	return r.OutputB, r.OutputA
}

// Len returns the total number of registered reactions.
func (r *Reactions) Len() int {
	return r.count
}
