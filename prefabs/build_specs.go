package prefabs

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyScene  = errors.New("prefabs: scene lists no entities")
	ErrBadBounds   = errors.New("prefabs: fragment bounds need three coordinates")
	ErrBadGridSize = errors.New("prefabs: fragment grid needs positive rows and columns")
)

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	return DecodeComponentSpecOver(raw, zero)
}

// DecodeComponentSpecOver decodes raw on top of defaults, so keys missing
// from the prefab keep their default values.
func DecodeComponentSpecOver[T any](raw any, defaults T) (T, error) {
	if raw == nil {
		return defaults, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return defaults, err
	}
	out := defaults
	if err := yaml.Unmarshal(b, &out); err != nil {
		return defaults, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

type BallComponentSpec struct {
	Mass            float64 `yaml:"mass"`
	Radius          float64 `yaml:"radius"`
	Bounciness      float64 `yaml:"bounciness"`
	MaxDeformation  float64 `yaml:"max_deformation"`
	LinearDamping   float64 `yaml:"linear_damping"`
	AngularDamping  float64 `yaml:"angular_damping"`
	DynamicFriction float64 `yaml:"dynamic_friction"`
	StaticFriction  float64 `yaml:"static_friction"`
	BounceCombine   string  `yaml:"bounce_combine"`
	FrictionCombine string  `yaml:"friction_combine"`
}

type GlassComponentSpec struct {
	Mass               float64                 `yaml:"mass"`
	Width              float64                 `yaml:"width"`
	Height             float64                 `yaml:"height"`
	Friction           float64                 `yaml:"friction"`
	Bounciness         float64                 `yaml:"bounciness"`
	CenterOfMassOffset float64                 `yaml:"center_of_mass_offset"`
	Static             bool                    `yaml:"static"`
	LinearDamping      float64                 `yaml:"linear_damping"`
	AngularDamping     float64                 `yaml:"angular_damping"`
	BreakThreshold     float64                 `yaml:"break_threshold"`
	ExplosionForce     float64                 `yaml:"explosion_force"`
	FragmentLifetime   float64                 `yaml:"fragment_lifetime"`
	Transparency       float64                 `yaml:"transparency"`
	Sound              bool                    `yaml:"sound"`
	SoundVolume        float64                 `yaml:"sound_volume"`
	FrictionCombine    string                  `yaml:"friction_combine"`
	BounceCombine      string                  `yaml:"bounce_combine"`
	Fragments          []FragmentComponentSpec `yaml:"fragments"`
	FragmentGrid       *FragmentGridSpec       `yaml:"fragment_grid"`
}

// FragmentComponentSpec is one pre-cut shard in the glass's local space.
// A shard without min/max has no geometry and is skipped on break.
type FragmentComponentSpec struct {
	Name string    `yaml:"name"`
	Min  []float64 `yaml:"min"`
	Max  []float64 `yaml:"max"`
}

// HasBounds reports whether the shard declares any corner.
func (s FragmentComponentSpec) HasBounds() bool {
	return len(s.Min) > 0 || len(s.Max) > 0
}

// Corners returns the shard's min and max corners.
func (s FragmentComponentSpec) Corners() ([3]float64, [3]float64, error) {
	var lo, hi [3]float64
	if len(s.Min) != 3 || len(s.Max) != 3 {
		return lo, hi, fmt.Errorf("%w: fragment %q", ErrBadBounds, s.Name)
	}
	for i := range 3 {
		lo[i] = min(s.Min[i], s.Max[i])
		hi[i] = max(s.Min[i], s.Max[i])
	}
	return lo, hi, nil
}

// FragmentGridSpec cuts the glass into Columns x Rows equal shards.
type FragmentGridSpec struct {
	Columns int     `yaml:"columns"`
	Rows    int     `yaml:"rows"`
	Depth   float64 `yaml:"depth"`
}

// Cells returns the grid's shards for a width x height glass centered on its
// origin, row by row from the bottom.
func (g FragmentGridSpec) Cells(width, height float64) ([]FragmentComponentSpec, error) {
	if g.Columns <= 0 || g.Rows <= 0 {
		return nil, ErrBadGridSize
	}
	cw := width / float64(g.Columns)
	ch := height / float64(g.Rows)
	hd := g.Depth / 2
	cells := make([]FragmentComponentSpec, 0, g.Columns*g.Rows)
	for r := range g.Rows {
		for c := range g.Columns {
			x0 := -width/2 + float64(c)*cw
			y0 := -height/2 + float64(r)*ch
			cells = append(cells, FragmentComponentSpec{
				Name: fmt.Sprintf("shard_%d_%d", r, c),
				Min:  []float64{x0, y0, -hd},
				Max:  []float64{x0 + cw, y0 + ch, hd},
			})
		}
	}
	return cells, nil
}

type TableComponentSpec struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Friction   float64 `yaml:"friction"`
	Bounciness float64 `yaml:"bounciness"`
}

type RenderableComponentSpec struct {
	Color   *YAMLColor `yaml:"color"`
	Alpha   *float64   `yaml:"alpha"`
	Outline bool       `yaml:"outline"`
}

type RenderLayerComponentSpec struct {
	Index int `yaml:"index"`
}

type AudioComponentSpec struct {
	Enabled bool `yaml:"enabled"`
}
