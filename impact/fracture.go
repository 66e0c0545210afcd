package impact

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const (
	DefaultBreakThreshold   = 2.0
	DefaultFragmentLifetime = 5.0
	FragmentMass            = 0.005
	// GlassRemovalDelay is how long the intact glass lingers, hidden, after
	// its fragments are spawned.
	GlassRemovalDelay = 0.1
	// AudioThreshold is the relative speed above which an intact glass clinks.
	AudioThreshold = 0.3

	directionEpsilon = 1e-4

	spreadMin  = 0.1
	spreadMax  = 0.25
	liftMin    = 0.02
	liftMax    = 0.08
	torqueSpan = 0.5
	pitchMin   = 0.95
	pitchMax   = 1.05
)

var (
	ErrInvalidBreakThreshold = errors.New("impact: break threshold must be positive")
	ErrInvalidLifetime       = errors.New("impact: fragment lifetime must be positive")
	ErrNilRandom             = errors.New("impact: random source is nil")
	ErrNilPose               = errors.New("impact: pose source is nil")
)

// Bounds is an axis-aligned box in a fragment's local space.
type Bounds struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func (b Bounds) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Bounds) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// FragmentSpec is a pre-authored piece of a breakable object. Bounds is the
// host-provided geometry; a spec without it cannot be scattered.
type FragmentSpec struct {
	Name   string
	Bounds *Bounds
}

// FragmentCommand tells the host how to spawn and launch one fragment.
type FragmentCommand struct {
	Template     *FragmentSpec
	Position     mgl64.Vec3
	Rotation     mgl64.Quat
	Mass         float64
	Direction    mgl64.Vec3
	Impulse      mgl64.Vec3
	Torque       mgl64.Vec3
	DestroyAfter float64
}

// SoundRequest asks the host to play the glass clink.
type SoundRequest struct {
	Pitch  float64
	Volume float64
}

// OutcomeKind distinguishes the results of a fracture check.
type OutcomeKind uint8

const (
	OutcomeNoOp OutcomeKind = iota
	OutcomeBreak
)

func (k OutcomeKind) String() string {
	if k == OutcomeBreak {
		return "break"
	}
	return "noop"
}

// FractureOutcome is the result of FractureResponder.OnImpact. A Break with
// DestroyOnly set carries no fragments and the glass goes away immediately.
type FractureOutcome struct {
	Kind        OutcomeKind
	Fragments   []FragmentCommand
	DestroyOnly bool
	Skipped     int
	Sound       *SoundRequest
}

func (o FractureOutcome) Broken() bool {
	return o.Kind == OutcomeBreak
}

// PoseSource yields the breakable object's current world transform.
type PoseSource interface {
	Pose() Pose
}

// PoseFunc adapts a function to PoseSource.
type PoseFunc func() Pose

func (f PoseFunc) Pose() Pose { return f() }

// FractureConfig is the static configuration of a breakable object.
type FractureConfig struct {
	BreakThreshold   float64
	FragmentLifetime float64
	Sound            bool
	SoundVolume      float64
	Fragments        []*FragmentSpec
}

func (c FractureConfig) Validate() error {
	if c.BreakThreshold <= 0 {
		return ErrInvalidBreakThreshold
	}
	if c.FragmentLifetime <= 0 {
		return ErrInvalidLifetime
	}
	return nil
}

// GlassBreakState is the one-way intact to broken latch.
type GlassBreakState struct {
	IsBroken bool
}

// FractureResponder decides whether an impact shatters a glass and, when it
// does, computes the scatter of every fragment.
type FractureResponder struct {
	cfg    FractureConfig
	pose   PoseSource
	rng    Random
	logger *zap.Logger
	state  GlassBreakState
}

func NewFractureResponder(cfg FractureConfig, pose PoseSource, rng Random, logger *zap.Logger) (*FractureResponder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if pose == nil {
		return nil, ErrNilPose
	}
	if rng == nil {
		return nil, ErrNilRandom
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FractureResponder{cfg: cfg, pose: pose, rng: rng, logger: logger}, nil
}

// OnImpact checks the impact's relative speed against the break threshold.
// Impacts after the glass has broken are ignored. The clink is not filtered by
// the other body's tag; any impact above the audio threshold rings.
func (r *FractureResponder) OnImpact(ev Event) FractureOutcome {
	if r == nil || r.state.IsBroken {
		return FractureOutcome{}
	}

	var out FractureOutcome
	if r.cfg.Sound && ev.RelativeSpeed > AudioThreshold {
		out.Sound = &SoundRequest{
			Pitch:  r.rng.Uniform(pitchMin, pitchMax),
			Volume: r.cfg.SoundVolume,
		}
	}

	if ev.RelativeSpeed < r.cfg.BreakThreshold {
		return out
	}

	r.state.IsBroken = true
	out.Kind = OutcomeBreak

	if len(r.cfg.Fragments) == 0 {
		r.logger.Warn("no fragments configured, destroying glass without debris",
			zap.Float64("relative_speed", ev.RelativeSpeed))
		out.DestroyOnly = true
		return out
	}

	pose := r.pose.Pose()
	out.Fragments = make([]FragmentCommand, 0, len(r.cfg.Fragments))
	for i, spec := range r.cfg.Fragments {
		cmd, ok := r.fragmentCommand(spec, pose)
		if !ok {
			out.Skipped++
			r.logger.Warn("skipping fragment", zap.Int("index", i), zap.Bool("nil_template", spec == nil))
			continue
		}
		out.Fragments = append(out.Fragments, cmd)
	}
	return out
}

func (r *FractureResponder) fragmentCommand(spec *FragmentSpec, pose Pose) (FragmentCommand, bool) {
	if spec == nil || spec.Bounds == nil {
		return FragmentCommand{}, false
	}

	center := pose.TransformPoint(spec.Bounds.Center())
	dir := ScatterDirection(center, pose.Position, r.rng)

	spread := r.rng.Uniform(spreadMin, spreadMax)
	impulse := dir.Mul(spread)
	impulse[1] = r.rng.Uniform(liftMin, liftMax)

	torque := mgl64.Vec3{
		r.rng.Uniform(-torqueSpan, torqueSpan),
		r.rng.Uniform(-torqueSpan, torqueSpan),
		r.rng.Uniform(-torqueSpan, torqueSpan),
	}

	return FragmentCommand{
		Template:     spec,
		Position:     pose.Position,
		Rotation:     pose.Rotation,
		Mass:         FragmentMass,
		Direction:    dir,
		Impulse:      impulse,
		Torque:       torque,
		DestroyAfter: r.cfg.FragmentLifetime,
	}, true
}

// ScatterDirection is the horizontal unit vector from center to point. When
// the horizontal offset is too short to carry a direction a random heading is
// used instead.
func ScatterDirection(point, center mgl64.Vec3, rng Random) mgl64.Vec3 {
	d := point.Sub(center)
	d[1] = 0
	if d.LenSqr() < directionEpsilon {
		return RandomHorizontal(rng)
	}
	return d.Normalize()
}

func (r *FractureResponder) IsBroken() bool {
	return r != nil && r.state.IsBroken
}

func (r *FractureResponder) Config() FractureConfig {
	if r == nil {
		return FractureConfig{}
	}
	return r.cfg
}

// State returns a copy of the break latch.
func (r *FractureResponder) State() GlassBreakState {
	if r == nil {
		return GlassBreakState{}
	}
	return r.state
}
