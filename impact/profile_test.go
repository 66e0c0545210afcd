package impact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		mode CombineMode
		a, b float64
		want float64
	}{
		{CombineAverage, 0.2, 0.6, 0.4},
		{CombineMinimum, 0.2, 0.6, 0.2},
		{CombineMaximum, 0.7, 1.0, 1.0},
		{CombineMultiply, 0.5, 0.5, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			require.InDelta(t, tt.want, Combine(tt.mode, tt.a, tt.b), 1e-12)
		})
	}
}

func TestParseCombineMode(t *testing.T) {
	m, err := ParseCombineMode("Maximum")
	require.NoError(t, err)
	require.Equal(t, CombineMaximum, m)

	m, err = ParseCombineMode("")
	require.NoError(t, err)
	require.Equal(t, CombineAverage, m)

	_, err = ParseCombineMode("median")
	require.Error(t, err)
}

func TestParseTag(t *testing.T) {
	tag, err := ParseTag(" Glass ")
	require.NoError(t, err)
	require.Equal(t, TagGlass, tag)
	require.Equal(t, "glass", tag.String())

	_, err = ParseTag("mug")
	require.Error(t, err)
}

func TestBallProfileValidate(t *testing.T) {
	require.NoError(t, DefaultBallProfile().Validate())

	p := DefaultBallProfile()
	p.Mass = 10
	require.ErrorIs(t, p.Validate(), ErrInvalidProfile)

	p = DefaultBallProfile()
	p.MaxDeformation = 0.6
	require.ErrorIs(t, p.Validate(), ErrInvalidProfile)

	p = DefaultBallProfile()
	p.Bounciness = 0
	require.ErrorIs(t, p.Validate(), ErrInvalidProfile)
}

func TestGlassProfile(t *testing.T) {
	p := DefaultGlassProfile()
	require.NoError(t, p.Validate())
	require.Equal(t, dynamicGlassMass, p.EffectiveMass())

	p.Static = true
	require.Equal(t, 0.2, p.EffectiveMass())

	p.BreakThreshold = 0
	err := p.Validate()
	require.ErrorIs(t, err, ErrInvalidProfile)
	require.ErrorIs(t, err, ErrInvalidBreakThreshold)
}

func TestDampingFactor(t *testing.T) {
	require.Equal(t, 1.0, DampingFactor(0, testDT))
	require.InDelta(t, 1/(1+0.5), DampingFactor(1, 0.5), 1e-12)
}

func TestClampTransparency(t *testing.T) {
	require.Equal(t, 0.0, ClampTransparency(-1))
	require.Equal(t, 1.0, ClampTransparency(2))
	require.Equal(t, 0.3, ClampTransparency(0.3))
}

func TestSurfaceCombinedWith(t *testing.T) {
	table := Surface{Friction: 0.6, Bounciness: 0.2}

	ball := DefaultBallProfile()
	f, b := table.CombinedWith(ball.DynamicFriction, ball.Bounciness, ball.FrictionCombine, ball.BounceCombine)
	require.InDelta(t, 0.1, f, 1e-12)
	require.InDelta(t, 0.7, b, 1e-12)

	glass := DefaultGlassProfile()
	f, b = table.CombinedWith(glass.Friction, glass.Bounciness, glass.FrictionCombine, glass.BounceCombine)
	require.InDelta(t, 0.3, f, 1e-12)
	require.InDelta(t, 0.1, b, 1e-12)
}
