// Package pipeline builds noise module trees from declarative configuration.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Spec describes one node of a module tree. Unset optional parameters keep
// the module defaults. A Spec decodes from YAML or environment configuration
// through viper and from JSON through encoding/json:
//
//	pipeline:
//	  type: add
//	  sources:
//	    - type: turbulence
//	      power: 0.25
//	      sources:
//	        - type: ridged
//	          octaves: 8
//	    - type: perlin
//	      seed: 3
type Spec struct {
	Type string `mapstructure:"type" json:"type"`

	Seed        *int64   `mapstructure:"seed" json:"seed,omitempty"`
	Octaves     *int     `mapstructure:"octaves" json:"octaves,omitempty"`
	Frequency   *float64 `mapstructure:"frequency" json:"frequency,omitempty"`
	Lacunarity  *float64 `mapstructure:"lacunarity" json:"lacunarity,omitempty"`
	Persistence *float64 `mapstructure:"persistence" json:"persistence,omitempty"`
	Gain        *float64 `mapstructure:"gain" json:"gain,omitempty"`
	Period      *int     `mapstructure:"period" json:"period,omitempty"`

	Power     *float64 `mapstructure:"power" json:"power,omitempty"`
	Roughness *int     `mapstructure:"roughness" json:"roughness,omitempty"`

	Value    float64  `mapstructure:"value" json:"value,omitempty"`
	Scale    *float64 `mapstructure:"scale" json:"scale,omitempty"`
	Bias     float64  `mapstructure:"bias" json:"bias,omitempty"`
	Min      *float64 `mapstructure:"min" json:"min,omitempty"`
	Max      *float64 `mapstructure:"max" json:"max,omitempty"`
	Exponent *float64 `mapstructure:"exponent" json:"exponent,omitempty"`

	Sources []Spec `mapstructure:"sources" json:"sources,omitempty"`
}

// String renders the tree shape, e.g. "add(turbulence(ridged),perlin)".
func (s Spec) String() string {
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s Spec) write(b *strings.Builder) {
	name := strings.ToLower(strings.TrimSpace(s.Type))
	if name == "" {
		name = "?"
	}
	b.WriteString(name)
	if len(s.Sources) == 0 {
		return
	}
	b.WriteByte('(')
	for i, src := range s.Sources {
		if i > 0 {
			b.WriteByte(',')
		}
		src.write(b)
	}
	b.WriteByte(')')
}

// Decode reads the Spec stored under key.
func Decode(v *viper.Viper, key string) (Spec, error) {
	if !v.IsSet(key) {
		return Spec{}, fmt.Errorf("%w: no %q section", ErrMissingSpec, key)
	}
	var spec Spec
	if err := v.UnmarshalKey(key, &spec); err != nil {
		return Spec{}, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return spec, nil
}

// Load reads the Spec under the "pipeline" key of a configuration file. The
// format follows the file extension.
func Load(path string) (Spec, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Spec{}, fmt.Errorf("failed to read pipeline file %s: %w", path, err)
	}
	return Decode(v, "pipeline")
}
