package impact

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Handle identifies an entity owned by the host.
type Handle uint64

// Host is the physics engine side of a break: it owns spawned fragments and
// their timers once the commands are handed over.
type Host interface {
	Spawn(template *FragmentSpec, position mgl64.Vec3, rotation mgl64.Quat, mass float64) (Handle, error)
	ApplyImpulse(h Handle, impulse mgl64.Vec3)
	ApplyTorque(h Handle, torque mgl64.Vec3)
	DestroyAfter(h Handle, delay float64)
	DestroyNow(h Handle)
}

// ApplyOutcome hands a Break outcome to the host: every fragment is spawned,
// launched and given its lifetime, then the glass itself is removed. A failed
// spawn only drops that fragment. NoOp outcomes are ignored.
func ApplyOutcome(host Host, glass Handle, out FractureOutcome, logger *zap.Logger) []Handle {
	if host == nil || !out.Broken() {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if out.DestroyOnly {
		host.DestroyNow(glass)
		return nil
	}

	spawned := make([]Handle, 0, len(out.Fragments))
	for _, cmd := range out.Fragments {
		h, err := host.Spawn(cmd.Template, cmd.Position, cmd.Rotation, cmd.Mass)
		if err != nil {
			name := ""
			if cmd.Template != nil {
				name = cmd.Template.Name
			}
			logger.Warn("fragment spawn failed", zap.String("fragment", name), zap.Error(err))
			continue
		}
		host.ApplyImpulse(h, cmd.Impulse)
		host.ApplyTorque(h, cmd.Torque)
		host.DestroyAfter(h, cmd.DestroyAfter)
		spawned = append(spawned, h)
	}

	host.DestroyAfter(glass, GlassRemovalDelay)
	return spawned
}
