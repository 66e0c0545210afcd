package impact

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

// seqRandom returns scripted fractions of each requested range, cycling.
type seqRandom struct {
	fractions []float64
	calls     int
}

func (s *seqRandom) Uniform(lo, hi float64) float64 {
	f := 0.5
	if len(s.fractions) > 0 {
		f = s.fractions[s.calls%len(s.fractions)]
	}
	s.calls++
	return lo + f*(hi-lo)
}

func ringFragments(n int) []*FragmentSpec {
	out := make([]*FragmentSpec, 0, n)
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		c := mgl64.Vec3{0.04 * math.Cos(a), 0.05, 0.04 * math.Sin(a)}
		half := mgl64.Vec3{0.01, 0.02, 0.01}
		out = append(out, &FragmentSpec{
			Name:   "shard",
			Bounds: &Bounds{Min: c.Sub(half), Max: c.Add(half)},
		})
	}
	return out
}

func newTestFracture(t *testing.T, cfg FractureConfig, rng Random) *FractureResponder {
	t.Helper()
	pose := PoseFunc(func() Pose {
		return Pose{Position: mgl64.Vec3{1, 0.8, -2}, Rotation: mgl64.QuatIdent()}
	})
	r, err := NewFractureResponder(cfg, pose, rng, nil)
	require.NoError(t, err)
	return r
}

func defaultFractureConfig(fragments []*FragmentSpec) FractureConfig {
	return FractureConfig{
		BreakThreshold:   DefaultBreakThreshold,
		FragmentLifetime: DefaultFragmentLifetime,
		Fragments:        fragments,
	}
}

func TestNewFractureResponderValidation(t *testing.T) {
	pose := PoseFunc(IdentityPose)
	rng := NewRandSource(1)

	_, err := NewFractureResponder(FractureConfig{FragmentLifetime: 1}, pose, rng, nil)
	require.ErrorIs(t, err, ErrInvalidBreakThreshold)

	_, err = NewFractureResponder(FractureConfig{BreakThreshold: 1}, pose, rng, nil)
	require.ErrorIs(t, err, ErrInvalidLifetime)

	_, err = NewFractureResponder(defaultFractureConfig(nil), nil, rng, nil)
	require.ErrorIs(t, err, ErrNilPose)

	_, err = NewFractureResponder(defaultFractureConfig(nil), pose, nil, nil)
	require.ErrorIs(t, err, ErrNilRandom)
}

func TestFractureThreshold(t *testing.T) {
	r := newTestFracture(t, defaultFractureConfig(ringFragments(6)), NewRandSource(7))

	out := r.OnImpact(Event{RelativeSpeed: 1.5, OtherTag: TagBall})
	require.False(t, out.Broken())
	require.Empty(t, out.Fragments)
	require.False(t, r.IsBroken())

	out = r.OnImpact(Event{RelativeSpeed: 2.5, OtherTag: TagBall})
	require.True(t, out.Broken())
	require.Len(t, out.Fragments, 6)
	require.True(t, r.IsBroken())
}

func TestFractureAtExactThresholdBreaks(t *testing.T) {
	r := newTestFracture(t, defaultFractureConfig(ringFragments(2)), NewRandSource(7))
	out := r.OnImpact(Event{RelativeSpeed: DefaultBreakThreshold})
	require.True(t, out.Broken())
}

func TestFractureIsIdempotent(t *testing.T) {
	r := newTestFracture(t, defaultFractureConfig(ringFragments(4)), NewRandSource(3))

	first := r.OnImpact(Event{RelativeSpeed: 10})
	require.True(t, first.Broken())

	for range 3 {
		again := r.OnImpact(Event{RelativeSpeed: 50})
		require.False(t, again.Broken())
		require.Empty(t, again.Fragments)
		require.Nil(t, again.Sound)
	}
	require.True(t, r.State().IsBroken)
}

func TestFractureCommands(t *testing.T) {
	r := newTestFracture(t, defaultFractureConfig(ringFragments(8)), NewRandSource(42))
	out := r.OnImpact(Event{RelativeSpeed: 3})
	require.True(t, out.Broken())
	require.Len(t, out.Fragments, 8)
	require.Zero(t, out.Skipped)
	require.False(t, out.DestroyOnly)

	for _, cmd := range out.Fragments {
		require.NotNil(t, cmd.Template)
		require.Equal(t, mgl64.Vec3{1, 0.8, -2}, cmd.Position)
		require.Equal(t, FragmentMass, cmd.Mass)
		require.Equal(t, DefaultFragmentLifetime, cmd.DestroyAfter)

		require.InDelta(t, 1, cmd.Direction.Len(), 1e-9)
		require.Zero(t, cmd.Direction[1])

		horiz := mgl64.Vec3{cmd.Impulse[0], 0, cmd.Impulse[2]}
		require.GreaterOrEqual(t, horiz.Len(), spreadMin-1e-9)
		require.LessOrEqual(t, horiz.Len(), spreadMax+1e-9)
		require.GreaterOrEqual(t, cmd.Impulse[1], liftMin)
		require.LessOrEqual(t, cmd.Impulse[1], liftMax)

		for i := range 3 {
			require.GreaterOrEqual(t, cmd.Torque[i], -torqueSpan)
			require.LessOrEqual(t, cmd.Torque[i], torqueSpan)
		}
	}
}

func TestFractureDirectionPointsOutward(t *testing.T) {
	spec := &FragmentSpec{
		Name:   "east",
		Bounds: &Bounds{Min: mgl64.Vec3{0.03, 0, -0.01}, Max: mgl64.Vec3{0.05, 0.1, 0.01}},
	}
	r := newTestFracture(t, defaultFractureConfig([]*FragmentSpec{spec}), &seqRandom{})
	out := r.OnImpact(Event{RelativeSpeed: 5})
	require.Len(t, out.Fragments, 1)

	cmd := out.Fragments[0]
	require.InDelta(t, 1, cmd.Direction[0], 1e-9)
	require.InDelta(t, 0, cmd.Direction[2], 1e-9)
	mid := (spreadMin + spreadMax) / 2
	require.InDelta(t, mid, cmd.Impulse[0], 1e-9)
	require.InDelta(t, (liftMin+liftMax)/2, cmd.Impulse[1], 1e-9)
	require.Equal(t, mgl64.Vec3{}, cmd.Torque)
}

func TestFractureDegenerateDirection(t *testing.T) {
	// centered directly above the pivot so the horizontal offset is empty
	spec := &FragmentSpec{
		Name:   "core",
		Bounds: &Bounds{Min: mgl64.Vec3{-0.01, 0, -0.01}, Max: mgl64.Vec3{0.01, 0.3, 0.01}},
	}
	rng := &seqRandom{fractions: []float64{0.25}}
	r := newTestFracture(t, defaultFractureConfig([]*FragmentSpec{spec}), rng)
	out := r.OnImpact(Event{RelativeSpeed: 5})
	require.Len(t, out.Fragments, 1)

	dir := out.Fragments[0].Direction
	require.False(t, math.IsNaN(dir[0]) || math.IsNaN(dir[2]))
	require.InDelta(t, 1, dir.Len(), 1e-9)
	// heading of a quarter turn
	require.InDelta(t, 0, dir[0], 1e-9)
	require.InDelta(t, 1, dir[2], 1e-9)
	// fallback heading, spread, lift, three torque axes
	require.Equal(t, 6, rng.calls)
}

func TestFractureSkipsUnusableFragments(t *testing.T) {
	frags := ringFragments(3)
	frags = append(frags, nil, &FragmentSpec{Name: "no-bounds"})
	r := newTestFracture(t, defaultFractureConfig(frags), NewRandSource(1))

	out := r.OnImpact(Event{RelativeSpeed: 4})
	require.True(t, out.Broken())
	require.Len(t, out.Fragments, 3)
	require.Equal(t, 2, out.Skipped)
}

func TestFractureWithoutFragments(t *testing.T) {
	r := newTestFracture(t, defaultFractureConfig(nil), NewRandSource(1))
	out := r.OnImpact(Event{RelativeSpeed: 4})
	require.True(t, out.Broken())
	require.True(t, out.DestroyOnly)
	require.Empty(t, out.Fragments)
	require.True(t, r.IsBroken())
}

func TestFractureSound(t *testing.T) {
	cfg := defaultFractureConfig(ringFragments(2))
	cfg.Sound = true
	cfg.SoundVolume = 0.4
	r := newTestFracture(t, cfg, NewRandSource(9))

	out := r.OnImpact(Event{RelativeSpeed: AudioThreshold})
	require.Nil(t, out.Sound)

	out = r.OnImpact(Event{RelativeSpeed: 1})
	require.NotNil(t, out.Sound)
	require.False(t, out.Broken())
	require.Equal(t, 0.4, out.Sound.Volume)
	require.GreaterOrEqual(t, out.Sound.Pitch, pitchMin)
	require.LessOrEqual(t, out.Sound.Pitch, pitchMax)

	// any body rings the glass, not just the ball
	out = r.OnImpact(Event{RelativeSpeed: 1, OtherTag: TagTable})
	require.NotNil(t, out.Sound)
	require.False(t, out.Broken())

	out = r.OnImpact(Event{RelativeSpeed: 6})
	require.True(t, out.Broken())
	require.NotNil(t, out.Sound)
}

func TestFractureSilentByDefault(t *testing.T) {
	r := newTestFracture(t, defaultFractureConfig(ringFragments(2)), NewRandSource(9))
	out := r.OnImpact(Event{RelativeSpeed: 1})
	require.Nil(t, out.Sound)
}

func TestFractureRotatedPose(t *testing.T) {
	spec := &FragmentSpec{
		Name:   "east",
		Bounds: &Bounds{Min: mgl64.Vec3{0.03, 0, -0.01}, Max: mgl64.Vec3{0.05, 0.1, 0.01}},
	}
	pose := PoseFunc(func() Pose {
		return Pose{Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})}
	})
	r, err := NewFractureResponder(defaultFractureConfig([]*FragmentSpec{spec}), pose, &seqRandom{}, nil)
	require.NoError(t, err)

	out := r.OnImpact(Event{RelativeSpeed: 5})
	require.Len(t, out.Fragments, 1)
	dir := out.Fragments[0].Direction
	// +X rotated a quarter turn about Y lands on -Z
	require.InDelta(t, 0, dir[0], 1e-9)
	require.InDelta(t, -1, dir[2], 1e-9)
}

func TestRandSourceDeterministic(t *testing.T) {
	a, b := NewRandSource(11), NewRandSource(11)
	for range 20 {
		va := a.Uniform(-1, 1)
		require.Equal(t, va, b.Uniform(-1, 1))
		require.GreaterOrEqual(t, va, -1.0)
		require.Less(t, va, 1.0)
	}
	require.Equal(t, 3.0, a.Uniform(3, 3))
}
