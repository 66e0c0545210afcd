package system

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
	"github.com/milk9111/tabletop/impact"
)

// maxFragmentSpin caps the angular speed, in rad/s, a torque impulse can give
// a shard.
const maxFragmentSpin = 60.0

// minFragmentSize keeps degenerate bounds from producing zero-area boxes.
const minFragmentSize = 0.004

var ErrNoBounds = errors.New("fragment has no bounds")

// FragmentHost spawns shards into the world and the physics space. Only the
// XY components of impulses and the Z component of torques act in the plane.
type FragmentHost struct {
	physics  *PhysicsSystem
	world    *ecs.World
	profile  impact.FragmentProfile
	material component.PhysicsBody
	look     component.Renderable
}

var _ impact.Host = (*FragmentHost)(nil)

// NewFragmentHost builds a host whose shards share material with source, the
// glass body they broke from, and are drawn like look.
func NewFragmentHost(ps *PhysicsSystem, w *ecs.World, profile impact.FragmentProfile, source component.PhysicsBody, look component.Renderable) *FragmentHost {
	return &FragmentHost{physics: ps, world: w, profile: profile, material: source, look: look}
}

func (h *FragmentHost) Spawn(template *impact.FragmentSpec, position mgl64.Vec3, rotation mgl64.Quat, mass float64) (impact.Handle, error) {
	if template == nil || template.Bounds == nil {
		return 0, ErrNoBounds
	}

	pose := impact.Pose{Position: position, Rotation: rotation}
	center := pose.TransformPoint(template.Bounds.Center())
	size := template.Bounds.Size()

	e := ecs.CreateEntity(h.world)
	transform := &component.Transform{X: center[0], Y: center[1], Rotation: planeAngle(rotation)}
	body := &component.PhysicsBody{
		Width:           max(size[0], minFragmentSize),
		Height:          max(size[1], minFragmentSize),
		Mass:            mass,
		Friction:        h.material.Friction,
		Elasticity:      h.material.Elasticity,
		FrictionCombine: h.material.FrictionCombine,
		BounceCombine:   h.material.BounceCombine,
		LinearDamping:   h.profile.LinearDamping,
		AngularDamping:  h.profile.AngularDamping,
	}
	look := h.look
	look.Hidden = false

	if err := ecs.Add(h.world, e, component.TransformComponent.Kind(), transform); err != nil {
		return 0, fmt.Errorf("add transform: %w", err)
	}
	if err := ecs.Add(h.world, e, component.PhysicsBodyComponent.Kind(), body); err != nil {
		return 0, fmt.Errorf("add physics body: %w", err)
	}
	if err := ecs.Add(h.world, e, component.FragmentTagComponent.Kind(), &component.FragmentTag{Source: template.Name}); err != nil {
		return 0, fmt.Errorf("add fragment tag: %w", err)
	}
	if err := ecs.Add(h.world, e, component.CategoryComponent.Kind(), &component.Category{Tag: impact.TagOther}); err != nil {
		return 0, fmt.Errorf("add category: %w", err)
	}
	if err := ecs.Add(h.world, e, component.RenderableComponent.Kind(), &look); err != nil {
		return 0, fmt.Errorf("add renderable: %w", err)
	}
	if err := ecs.Add(h.world, e, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: LayerFragments}); err != nil {
		return 0, fmt.Errorf("add render layer: %w", err)
	}

	if h.physics.ensureBody(h.world, e) == nil {
		ecs.DestroyEntity(h.world, e)
		return 0, fmt.Errorf("fragment %q: no physics body", template.Name)
	}
	return impact.Handle(e), nil
}

func (h *FragmentHost) body(handle impact.Handle) *cp.Body {
	bodyComp, ok := ecs.Get(h.world, ecs.Entity(handle), component.PhysicsBodyComponent.Kind())
	if !ok || bodyComp.Body == nil {
		return nil
	}
	return bodyComp.Body
}

func (h *FragmentHost) ApplyImpulse(handle impact.Handle, impulse mgl64.Vec3) {
	body := h.body(handle)
	if body == nil {
		return
	}
	body.ApplyImpulseAtWorldPoint(cp.Vector{X: impulse[0], Y: impulse[1]}, body.Position())
}

func (h *FragmentHost) ApplyTorque(handle impact.Handle, torque mgl64.Vec3) {
	body := h.body(handle)
	if body == nil {
		return
	}
	moment := body.Moment()
	if moment <= 0 || math.IsInf(moment, 0) {
		return
	}
	spin := body.AngularVelocity() + torque[2]/moment
	body.SetAngularVelocity(mgl64.Clamp(spin, -maxFragmentSpin, maxFragmentSpin))
}

func (h *FragmentHost) DestroyAfter(handle impact.Handle, delay float64) {
	e := ecs.Entity(handle)
	if !h.world.IsAlive(e) {
		return
	}
	_ = ecs.Add(h.world, e, component.LifetimeComponent.Kind(), &component.Lifetime{Remaining: delay})
}

func (h *FragmentHost) DestroyNow(handle impact.Handle) {
	ecs.DestroyEntity(h.world, ecs.Entity(handle))
}

// planeAngle extracts the rotation about Z from q.
func planeAngle(q mgl64.Quat) float64 {
	if q.Len() == 0 {
		return 0
	}
	q = q.Normalize()
	return 2 * math.Atan2(q.V[2], q.W)
}
