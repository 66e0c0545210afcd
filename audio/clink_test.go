package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milk9111/tabletop/impact"
)

func peak(frames [][2]float64) float64 {
	p := 0.0
	for _, f := range frames {
		p = max(p, math.Abs(f[0]), math.Abs(f[1]))
	}
	return p
}

func TestClinkRingsForItsDuration(t *testing.T) {
	frames := Drain(Clink(impact.SoundRequest{Pitch: 1, Volume: 1}))
	require.Len(t, frames, SampleRate.N(clinkDuration))
	require.Zero(t, frames[0][0])

	p := peak(frames)
	require.Greater(t, p, 0.1)
	require.LessOrEqual(t, p, 1.0)

	// the tail has decayed well below the onset
	tail := peak(frames[len(frames)-200:])
	require.Less(t, tail, p/10)
}

func TestClinkPitchShortensSound(t *testing.T) {
	base := len(Drain(Clink(impact.SoundRequest{Pitch: 1, Volume: 1})))
	high := len(Drain(Clink(impact.SoundRequest{Pitch: 2, Volume: 1})))
	require.InDelta(t, base/2, high, float64(base)/20)
}

func TestClinkVolume(t *testing.T) {
	loud := peak(Drain(Clink(impact.SoundRequest{Pitch: 1, Volume: 1})))
	quiet := peak(Drain(Clink(impact.SoundRequest{Pitch: 1, Volume: 0.4})))
	require.InDelta(t, loud*0.4, quiet, 1e-9)

	require.Zero(t, peak(Drain(Clink(impact.SoundRequest{Pitch: 1, Volume: 0}))))
}

func TestRenderPCM(t *testing.T) {
	req := impact.SoundRequest{Pitch: 1, Volume: 0.5}
	frames := Drain(Clink(req))
	pcm := RenderPCM(Clink(req))
	require.Len(t, pcm, len(frames)*4)

	i := len(frames) / 50
	left := int16(binary.LittleEndian.Uint16(pcm[i*4:]))
	require.Equal(t, toInt16(frames[i][0]), left)
}

func TestToInt16Clamps(t *testing.T) {
	require.Equal(t, int16(math.MaxInt16), toInt16(3))
	require.Equal(t, int16(-math.MaxInt16), toInt16(-3))
	require.Zero(t, toInt16(0))
}

func TestRecorder(t *testing.T) {
	var r Recorder
	require.NoError(t, r.PlayClink(impact.SoundRequest{Pitch: 1, Volume: 0.4}))
	require.NoError(t, r.PlayClink(impact.SoundRequest{Pitch: 1.1, Volume: 0.4}))

	reqs := r.Requests()
	require.Len(t, reqs, 2)
	require.Equal(t, 1.1, reqs[1].Pitch)
	require.Greater(t, r.Frames(), SampleRate.N(clinkDuration))
}
