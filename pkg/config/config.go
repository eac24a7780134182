// Package config loads engine configuration from TOML: the integration
// timestep, mesh tolerances, and a list of constraint presets that build
// into actors.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/epimorph/epimorph/pkg/actor"
	"github.com/epimorph/epimorph/pkg/mesh"
	"github.com/epimorph/epimorph/pkg/particle"
)

// Constraint preset type tags.
const (
	ConvexPolygonType = "convex_polygon"
	SurfaceAreaType   = "surface_area"
)

// Tolerances holds the mesh editing thresholds.
type Tolerances struct {
	// Find is the positional tolerance for vertex lookup.
	Find float64 `toml:"find"`
	// SewDistCf scales the mean edge length into the sew merge threshold.
	SewDistCf float64 `toml:"sew_dist_cf"`
}

// Constraint is one declared actor preset.
type Constraint struct {
	Type      string  `toml:"type"`
	Stiffness float64 `toml:"stiffness"`
	Target    float64 `toml:"target"`
}

// Config is the full engine configuration.
type Config struct {
	Timestep    float64      `toml:"timestep"`
	Tolerances  Tolerances   `toml:"tolerances"`
	Constraints []Constraint `toml:"constraint"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Timestep: particle.DefaultTimestep,
		Tolerances: Tolerances{
			Find:      1e-6,
			SewDistCf: 0.01,
		},
	}
}

// Parse decodes a TOML document over the defaults and validates it.
func Parse(doc string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(doc, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a TOML configuration file.
func Load(path string) (Config, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(string(doc))
}

// Validate checks every field is in range and every preset names a known
// constraint type.
func (c Config) Validate() error {
	if c.Timestep <= 0 {
		return fmt.Errorf("config: timestep %g must be positive", c.Timestep)
	}
	if c.Tolerances.Find < 0 {
		return fmt.Errorf("config: find tolerance %g must not be negative", c.Tolerances.Find)
	}
	if c.Tolerances.SewDistCf < 0 {
		return fmt.Errorf("config: sew distance coefficient %g must not be negative", c.Tolerances.SewDistCf)
	}
	for i, p := range c.Constraints {
		if p.Stiffness < 0 {
			return fmt.Errorf("config: constraint %d: stiffness %g must not be negative", i, p.Stiffness)
		}
		switch p.Type {
		case ConvexPolygonType:
		case SurfaceAreaType:
			if p.Target < 0 {
				return fmt.Errorf("config: constraint %d: target area %g must not be negative", i, p.Target)
			}
		default:
			return fmt.Errorf("config: constraint %d: unknown type %q", i, p.Type)
		}
	}
	return nil
}

// Actors builds the declared presets into constraint actors, in order.
func (c Config) Actors() ([]mesh.Actor, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	actors := make([]mesh.Actor, 0, len(c.Constraints))
	for _, p := range c.Constraints {
		switch p.Type {
		case ConvexPolygonType:
			actors = append(actors, actor.NewConvexPolygonConstraint(p.Stiffness))
		case SurfaceAreaType:
			actors = append(actors, actor.NewSurfaceAreaConstraint(p.Stiffness, p.Target))
		}
	}
	return actors, nil
}

// Store creates a particle store using the configured timestep.
func (c Config) Store() *particle.Store {
	return particle.NewStore(c.Timestep)
}
