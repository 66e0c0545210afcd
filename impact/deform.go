package impact

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// ImpactThreshold is the impulse magnitude a ball impact must exceed to
	// start a deformation cycle.
	ImpactThreshold = 10.0
	// DeformationPerForce converts impulse magnitude into a radius fraction.
	DeformationPerForce = 0.005
	// PhaseDuration is the length of each of the compress and recover phases.
	PhaseDuration = 0.1
	// TestDeformation is the fixed fraction used by manual deformation checks.
	TestDeformation = 0.2
)

var (
	ErrInvalidRadius      = errors.New("impact: original radius must be positive")
	ErrInvalidDeformation = errors.New("impact: max deformation must be in [0, 1)")
	ErrNilRadiusHandle    = errors.New("impact: radius handle is nil")
)

// Phase is the step of a deformation cycle.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseCompressing
	PhaseRecovering
)

func (p Phase) String() string {
	switch p {
	case PhaseCompressing:
		return "compressing"
	case PhaseRecovering:
		return "recovering"
	default:
		return "idle"
	}
}

// RadiusHandle is the host's mutable collision radius.
type RadiusHandle interface {
	Radius() float64
	SetRadius(r float64)
}

// DeformationState is the per-ball animation state.
type DeformationState struct {
	OriginalRadius float64
	TargetRadius   float64
	Elapsed        float64
	Phase          Phase
	Radius         float64
}

// DeformationResponder squashes a ball's collision radius after hard impacts
// and springs it back over two fixed-length phases.
type DeformationResponder struct {
	handle         RadiusHandle
	maxDeformation float64
	state          DeformationState
}

// NewDeformationResponder captures the handle's current radius as the
// original radius.
func NewDeformationResponder(handle RadiusHandle, maxDeformation float64) (*DeformationResponder, error) {
	if handle == nil {
		return nil, ErrNilRadiusHandle
	}
	radius := handle.Radius()
	if radius <= 0 {
		return nil, ErrInvalidRadius
	}
	if maxDeformation < 0 || maxDeformation >= 1 {
		return nil, ErrInvalidDeformation
	}
	return &DeformationResponder{
		handle:         handle,
		maxDeformation: maxDeformation,
		state: DeformationState{
			OriginalRadius: radius,
			TargetRadius:   radius,
			Radius:         radius,
		},
	}, nil
}

// DeformationFor returns the clamped radius fraction for an impulse.
func DeformationFor(force, maxDeformation float64) float64 {
	return mgl64.Clamp(force*DeformationPerForce, 0, maxDeformation)
}

// OnImpact starts a new cycle when force exceeds ImpactThreshold and reports
// whether it did.
func (r *DeformationResponder) OnImpact(force float64) bool {
	if r == nil || force <= ImpactThreshold {
		return false
	}
	r.Deform(DeformationFor(force, r.maxDeformation))
	return true
}

// Deform starts a cycle with an explicit deformation fraction. A cycle in
// flight is abandoned and the radius snaps back to the original at once.
func (r *DeformationResponder) Deform(deformation float64) {
	if r == nil {
		return
	}
	deformation = mgl64.Clamp(deformation, 0, 1)
	s := &r.state
	s.TargetRadius = s.OriginalRadius * (1 - deformation)
	s.Elapsed = 0
	s.Phase = PhaseCompressing
	s.Radius = s.OriginalRadius
	r.handle.SetRadius(s.Radius)
}

// Step advances the animation by dt, pushes the radius to the host and
// returns it. A cycle is idle again once its steps add up to two phases.
func (r *DeformationResponder) Step(dt float64) float64 {
	if r == nil {
		return 0
	}
	s := &r.state
	switch s.Phase {
	case PhaseIdle:
		return s.Radius
	case PhaseCompressing:
		s.Elapsed += dt
		if s.Elapsed < PhaseDuration {
			s.Radius = lerp(s.OriginalRadius, s.TargetRadius, s.Elapsed/PhaseDuration)
			break
		}
		// time left over from the compress phase carries into recovery
		s.Phase = PhaseRecovering
		s.Elapsed -= PhaseDuration
		if s.Elapsed < PhaseDuration {
			s.Radius = lerp(s.TargetRadius, s.OriginalRadius, s.Elapsed/PhaseDuration)
			break
		}
		s.settle()
	case PhaseRecovering:
		s.Elapsed += dt
		if s.Elapsed < PhaseDuration {
			s.Radius = lerp(s.TargetRadius, s.OriginalRadius, s.Elapsed/PhaseDuration)
			break
		}
		s.settle()
	}
	r.handle.SetRadius(s.Radius)
	return s.Radius
}

func (s *DeformationState) settle() {
	s.Phase = PhaseIdle
	s.Elapsed = 0
	s.Radius = s.OriginalRadius
}

// Active reports whether a cycle is in flight.
func (r *DeformationResponder) Active() bool {
	return r != nil && r.state.Phase != PhaseIdle
}

func (r *DeformationResponder) Radius() float64 {
	if r == nil {
		return 0
	}
	return r.state.Radius
}

func (r *DeformationResponder) MaxDeformation() float64 {
	if r == nil {
		return 0
	}
	return r.maxDeformation
}

// State returns a copy of the animation state.
func (r *DeformationResponder) State() DeformationState {
	if r == nil {
		return DeformationState{}
	}
	return r.state
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*mgl64.Clamp(t, 0, 1)
}
