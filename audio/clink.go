package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/milk9111/tabletop/impact"
)

// SampleRate matches the ebiten audio context the game opens.
const SampleRate beep.SampleRate = 44100

const (
	clinkDuration = 400 * time.Millisecond
	clinkAttack   = 2 * time.Millisecond
	// resampleQuality trades CPU for aliasing when the pitch is shifted.
	resampleQuality = 3
	minPitch        = 0.25
	maxPitch        = 4.0
)

// partial is one ringing mode of the glass: a sine at freq Hz whose amplitude
// starts at gain and falls off as exp(-decay*t).
type partial struct {
	freq  float64
	gain  float64
	decay float64
}

var glassPartials = []partial{
	{freq: 2093, gain: 1.0, decay: 9},
	{freq: 3520, gain: 0.5, decay: 14},
	{freq: 5274, gain: 0.3, decay: 20},
	{freq: 7040, gain: 0.12, decay: 28},
}

// ring sums decaying partials for a fixed number of samples.
type ring struct {
	partials []partial
	rate     beep.SampleRate
	attack   int
	total    int
	position int
	norm     float64
}

func newRing(partials []partial, duration, attack time.Duration, rate beep.SampleRate) *ring {
	norm := 0.0
	for _, p := range partials {
		norm += p.gain
	}
	if norm == 0 {
		norm = 1
	}
	return &ring{
		partials: partials,
		rate:     rate,
		attack:   rate.N(attack),
		total:    rate.N(duration),
		norm:     norm,
	}
}

func (r *ring) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if r.position >= r.total {
			return i, i > 0
		}
		t := float64(r.position) / float64(r.rate)
		val := 0.0
		for _, p := range r.partials {
			val += p.gain * math.Exp(-p.decay*t) * math.Sin(2*math.Pi*p.freq*t)
		}
		val /= r.norm
		if r.position < r.attack {
			val *= float64(r.position) / float64(r.attack)
		}
		samples[i][0] = val
		samples[i][1] = val
		r.position++
	}
	return len(samples), true
}

func (r *ring) Err() error { return nil }

// Clink returns the glass clink for req. Pitch is a playback-rate ratio, so
// values above 1 are higher and shorter.
func Clink(req impact.SoundRequest) beep.Streamer {
	pitch := req.Pitch
	if pitch <= 0 {
		pitch = 1
	}
	pitch = min(max(pitch, minPitch), maxPitch)

	var s beep.Streamer = newRing(glassPartials, clinkDuration, clinkAttack, SampleRate)
	if pitch != 1 {
		s = beep.ResampleRatio(resampleQuality, pitch, s)
	}
	return withVolume(s, req.Volume)
}

// withVolume scales s linearly by vol; zero or less is silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
