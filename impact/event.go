package impact

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Tag is the category of the entity on the other side of a contact.
type Tag uint8

const (
	TagOther Tag = iota
	TagGlass
	TagTable
	TagBall
)

func (t Tag) String() string {
	switch t {
	case TagGlass:
		return "glass"
	case TagTable:
		return "table"
	case TagBall:
		return "ball"
	default:
		return "other"
	}
}

// ParseTag maps a prefab tag name to a Tag. Unknown names are an error so
// typos in prefab files surface at load time.
func ParseTag(name string) (Tag, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "other":
		return TagOther, nil
	case "glass":
		return TagGlass, nil
	case "table":
		return TagTable, nil
	case "ball":
		return TagBall, nil
	default:
		return TagOther, fmt.Errorf("impact: unknown tag %q", name)
	}
}

// Event is a single contact-begin report from the physics host. Force is the
// magnitude of the collision impulse and RelativeSpeed the magnitude of the
// relative velocity at contact; both are non-negative.
type Event struct {
	Force         float64
	RelativeSpeed float64
	ContactPoint  mgl64.Vec3
	OtherTag      Tag
}

// Pose is a rigid transform in world space.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// IdentityPose returns a pose at the origin with no rotation.
func IdentityPose() Pose {
	return Pose{Rotation: mgl64.QuatIdent()}
}

// TransformPoint maps a point from the pose's local space to world space.
func (p Pose) TransformPoint(local mgl64.Vec3) mgl64.Vec3 {
	rot := p.Rotation
	if rot.Len() == 0 {
		rot = mgl64.QuatIdent()
	}
	return p.Position.Add(rot.Rotate(local))
}
