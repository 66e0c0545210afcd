package component

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/tabletop/impact"
)

// Transform is a body's pose in the vertical XY plane, meters, Y up.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
}

// Pose lifts the transform into the 3D frame used by the responders. The
// plane's depth axis is Z, so rotations are about Z.
func (t Transform) Pose() impact.Pose {
	return impact.Pose{
		Position: mgl64.Vec3{t.X, t.Y, 0},
		Rotation: mgl64.QuatRotate(t.Rotation, mgl64.Vec3{0, 0, 1}),
	}
}

var TransformComponent = NewComponent[Transform]()
