package impact

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// Random is the uniform sampling source used by the responders.
type Random interface {
	// Uniform returns a value in [min, max).
	Uniform(min, max float64) float64
}

// RandSource is a seeded Random backed by a PCG generator.
type RandSource struct {
	r *rand.Rand
}

func NewRandSource(seed uint64) *RandSource {
	return &RandSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandSource) Uniform(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + s.r.Float64()*(max-min)
}

// RandomHorizontal returns a unit vector in the XZ plane with a uniformly
// distributed heading.
func RandomHorizontal(rng Random) mgl64.Vec3 {
	theta := rng.Uniform(0, 2*math.Pi)
	return mgl64.Vec3{math.Cos(theta), 0, math.Sin(theta)}
}
