package impact

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidProfile = errors.New("impact: invalid profile")

// CombineMode picks how two surfaces' material coefficients are merged.
type CombineMode uint8

const (
	CombineAverage CombineMode = iota
	CombineMinimum
	CombineMaximum
	CombineMultiply
)

func (m CombineMode) String() string {
	switch m {
	case CombineMinimum:
		return "minimum"
	case CombineMaximum:
		return "maximum"
	case CombineMultiply:
		return "multiply"
	default:
		return "average"
	}
}

func ParseCombineMode(name string) (CombineMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "average":
		return CombineAverage, nil
	case "minimum", "min":
		return CombineMinimum, nil
	case "maximum", "max":
		return CombineMaximum, nil
	case "multiply":
		return CombineMultiply, nil
	default:
		return CombineAverage, fmt.Errorf("impact: unknown combine mode %q", name)
	}
}

// Combine merges two coefficients.
func Combine(mode CombineMode, a, b float64) float64 {
	switch mode {
	case CombineMinimum:
		return min(a, b)
	case CombineMaximum:
		return max(a, b)
	case CombineMultiply:
		return a * b
	default:
		return (a + b) / 2
	}
}

// Surface is the material of the ground other bodies combine against.
type Surface struct {
	Friction   float64
	Bounciness float64
}

// CombinedWith bakes a body's coefficients against a surface.
func (s Surface) CombinedWith(friction, bounciness float64, frictionMode, bounceMode CombineMode) (float64, float64) {
	return Combine(frictionMode, friction, s.Friction), Combine(bounceMode, bounciness, s.Bounciness)
}

// BallProfile is the physical setup of the deformable ball.
type BallProfile struct {
	Mass            float64
	Radius          float64
	Bounciness      float64
	MaxDeformation  float64
	LinearDamping   float64
	AngularDamping  float64
	DynamicFriction float64
	StaticFriction  float64
	BounceCombine   CombineMode
	FrictionCombine CombineMode
}

func DefaultBallProfile() BallProfile {
	return BallProfile{
		Mass:            2.0,
		Radius:          0.11,
		Bounciness:      0.7,
		MaxDeformation:  0.3,
		LinearDamping:   0.05,
		AngularDamping:  0.05,
		DynamicFriction: 0.1,
		StaticFriction:  0.2,
		BounceCombine:   CombineMaximum,
		FrictionCombine: CombineMinimum,
	}
}

func (p BallProfile) Validate() error {
	switch {
	case p.Mass < 0.5 || p.Mass > 5:
		return fmt.Errorf("%w: ball mass %.3f outside [0.5, 5]", ErrInvalidProfile, p.Mass)
	case p.Radius <= 0:
		return fmt.Errorf("%w: ball radius %.3f must be positive", ErrInvalidProfile, p.Radius)
	case p.Bounciness < 0.1 || p.Bounciness > 1:
		return fmt.Errorf("%w: ball bounciness %.3f outside [0.1, 1]", ErrInvalidProfile, p.Bounciness)
	case p.MaxDeformation < 0 || p.MaxDeformation > 0.5:
		return fmt.Errorf("%w: max deformation %.3f outside [0, 0.5]", ErrInvalidProfile, p.MaxDeformation)
	case p.LinearDamping < 0 || p.AngularDamping < 0:
		return fmt.Errorf("%w: ball damping must be non-negative", ErrInvalidProfile)
	}
	return nil
}

// GlassProfile is the physical setup of a breakable glass.
type GlassProfile struct {
	Mass               float64
	Width              float64
	Height             float64
	Friction           float64
	Bounciness         float64
	CenterOfMassOffset float64
	Static             bool
	LinearDamping      float64
	AngularDamping     float64
	BreakThreshold     float64
	ExplosionForce     float64
	FragmentLifetime   float64
	Transparency       float64
	Sound              bool
	SoundVolume        float64
	FrictionCombine    CombineMode
	BounceCombine      CombineMode
}

// dynamicGlassMass replaces the configured mass whenever the glass is free to
// move; a heavier glass stays upright on the table.
const dynamicGlassMass = 5.0

func DefaultGlassProfile() GlassProfile {
	return GlassProfile{
		Mass:               0.2,
		Width:              0.08,
		Height:             0.15,
		Friction:           0.3,
		Bounciness:         0.1,
		CenterOfMassOffset: -0.05,
		LinearDamping:      0.1,
		AngularDamping:     0.5,
		BreakThreshold:     DefaultBreakThreshold,
		ExplosionForce:     3.0,
		FragmentLifetime:   DefaultFragmentLifetime,
		Transparency:       0.3,
		SoundVolume:        0.4,
		FrictionCombine:    CombineMinimum,
		BounceCombine:      CombineMinimum,
	}
}

func (p GlassProfile) Validate() error {
	switch {
	case p.Mass <= 0:
		return fmt.Errorf("%w: glass mass %.3f must be positive", ErrInvalidProfile, p.Mass)
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: glass size must be positive", ErrInvalidProfile)
	case p.Friction < 0 || p.Friction > 1:
		return fmt.Errorf("%w: glass friction %.3f outside [0, 1]", ErrInvalidProfile, p.Friction)
	case p.Bounciness < 0 || p.Bounciness > 0.5:
		return fmt.Errorf("%w: glass bounciness %.3f outside [0, 0.5]", ErrInvalidProfile, p.Bounciness)
	case p.BreakThreshold <= 0:
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrInvalidBreakThreshold)
	case p.FragmentLifetime <= 0:
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrInvalidLifetime)
	}
	return nil
}

// EffectiveMass is the mass the solver should use.
func (p GlassProfile) EffectiveMass() float64 {
	if p.Static {
		return p.Mass
	}
	return dynamicGlassMass
}

// ClampTransparency keeps an alpha value in [0, 1].
func ClampTransparency(alpha float64) float64 {
	return min(max(alpha, 0), 1)
}

// FragmentProfile is the physical setup shared by all spawned fragments.
type FragmentProfile struct {
	Mass           float64
	LinearDamping  float64
	AngularDamping float64
}

func DefaultFragmentProfile() FragmentProfile {
	return FragmentProfile{
		Mass:           FragmentMass,
		LinearDamping:  1.0,
		AngularDamping: 0.5,
	}
}

// DampingFactor converts a per-second damping coefficient into the velocity
// multiplier for a step of dt.
func DampingFactor(damping, dt float64) float64 {
	if damping <= 0 || dt <= 0 {
		return 1
	}
	return 1 / (1 + dt*damping)
}
