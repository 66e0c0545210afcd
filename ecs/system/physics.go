package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/tabletop/common"
	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
	"github.com/milk9111/tabletop/impact"
	"github.com/milk9111/tabletop/logging"
)

const (
	collisionTypeBall cp.CollisionType = iota + 1
	collisionTypeGlass
	collisionTypeTable
	collisionTypeFragment
	collisionTypeOther
)

const (
	spaceIterations = 20
	// collisionSlop is the allowed overlap in meters; the default is sized
	// for pixel-scale worlds.
	collisionSlop = 0.0005
)

// contactPairs are the pairs whose first contact is reported as an impact.
var contactPairs = [][2]cp.CollisionType{
	{collisionTypeBall, collisionTypeGlass},
	{collisionTypeBall, collisionTypeTable},
	{collisionTypeBall, collisionTypeFragment},
	{collisionTypeBall, collisionTypeOther},
	{collisionTypeGlass, collisionTypeTable},
	{collisionTypeGlass, collisionTypeFragment},
	{collisionTypeGlass, collisionTypeOther},
}

type PhysicsSystem struct {
	space         *cp.Space
	dt            float64
	logger        *zap.Logger
	handlersReady bool

	entities map[ecs.Entity]*bodyInfo
	shapes   map[*cp.Shape]ecs.Entity
	speeds   map[*cp.Arbiter]float64
	contacts []contact
}

type bodyInfo struct {
	body   *cp.Body
	shape  *cp.Shape
	fixed  bool
	static bool
}

type contact struct {
	a, b  ecs.Entity
	force float64
	speed float64
	point cp.Vector
}

func NewPhysicsSystem(logger *zap.Logger) *PhysicsSystem {
	return &PhysicsSystem{
		space:    newSpace(),
		dt:       common.FixedStep,
		logger:   logging.Or(logger).Named("physics"),
		entities: make(map[ecs.Entity]*bodyInfo),
		shapes:   make(map[*cp.Shape]ecs.Entity),
		speeds:   make(map[*cp.Arbiter]float64),
	}
}

func newSpace() *cp.Space {
	space := cp.NewSpace()
	space.Iterations = spaceIterations
	space.SetGravity(cp.Vector{X: 0, Y: common.Gravity})
	space.SetCollisionSlop(collisionSlop)
	return space
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

// Step is the fixed simulation tick in seconds.
func (ps *PhysicsSystem) Step() float64 {
	return ps.dt
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	if ps.space == nil {
		ps.space = newSpace()
		ps.handlersReady = false
	}

	ps.ensureHandlers()
	ps.syncEntities(w)

	ps.contacts = ps.contacts[:0]
	ps.space.Step(ps.dt)
	clear(ps.speeds)

	ps.syncTransforms(w)
	ps.deliverContacts(w)
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady || ps.space == nil {
		return
	}

	for _, pair := range contactPairs {
		handler := ps.space.NewCollisionHandler(pair[0], pair[1])
		handler.UserData = ps
		handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
			sys, ok := userData.(*PhysicsSystem)
			if !ok || sys == nil {
				return true
			}
			a, b := arb.Bodies()
			sys.speeds[arb] = a.Velocity().Sub(b.Velocity()).Length()
			return true
		}
		handler.PostSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
			sys, ok := userData.(*PhysicsSystem)
			if !ok || sys == nil || !arb.IsFirstContact() {
				return
			}
			shapeA, shapeB := arb.Shapes()
			entA, okA := sys.shapes[shapeA]
			entB, okB := sys.shapes[shapeB]
			if !okA || !okB {
				return
			}
			c := contact{
				a:     entA,
				b:     entB,
				force: arb.TotalImpulse().Length(),
				speed: sys.speeds[arb],
			}
			if set := arb.ContactPointSet(); set.Count > 0 {
				c.point = set.Points[0].PointA
			}
			sys.contacts = append(sys.contacts, c)
		}
	}

	ps.handlersReady = true
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ps.cleanupEntities(w)

	for _, e := range w.Query(component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind()) {
		ps.ensureBody(w, e)
	}

	for _, e := range w.Query(component.LaunchRequestComponent.Kind()) {
		req, _ := ecs.Get(w, e, component.LaunchRequestComponent.Kind())
		ecs.Remove(w, e, component.LaunchRequestComponent.Kind())
		info := ps.entities[e]
		if info == nil || info.fixed || info.body.GetType() != cp.BODY_DYNAMIC {
			continue
		}
		info.body.SetVelocity(req.VX, req.VY)
		info.body.SetAngularVelocity(req.Spin)
		info.body.Activate()
	}
}

// ensureBody creates the Chipmunk body for e if it has none yet and applies
// any pending static toggle.
func (ps *PhysicsSystem) ensureBody(w *ecs.World, e ecs.Entity) *bodyInfo {
	bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok {
		return nil
	}
	transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return nil
	}

	if info := ps.entities[e]; info != nil {
		if !info.fixed && info.static != bodyComp.Static {
			ps.applyStatic(info, bodyComp)
		}
		bodyComp.Body = info.body
		bodyComp.Shape = info.shape
		return info
	}

	info := ps.createBodyInfo(w, e, *transform, bodyComp)
	if info == nil {
		return nil
	}
	ps.entities[e] = info
	ps.shapes[info.shape] = e
	bodyComp.Body = info.body
	bodyComp.Shape = info.shape
	return info
}

func (ps *PhysicsSystem) createBodyInfo(w *ecs.World, e ecs.Entity, transform component.Transform, bodyComp *component.PhysicsBody) *bodyInfo {
	width, height, radius := bodyComp.Width, bodyComp.Height, bodyComp.Radius
	if radius <= 0 && (width <= 0 || height <= 0) {
		ps.logger.Warn("body has no collider size", zap.Stringer("entity", e))
		return nil
	}

	collisionType := collisionTypeFor(w, e)

	if bodyComp.Fixed {
		bb := cp.BB{L: transform.X - width/2, B: transform.Y - height/2, R: transform.X + width/2, T: transform.Y + height/2}
		shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
		shape.SetFriction(bodyComp.Friction)
		shape.SetElasticity(bodyComp.Elasticity)
		shape.SetCollisionType(collisionType)
		ps.space.AddShape(shape)
		return &bodyInfo{body: ps.space.StaticBody, shape: shape, fixed: true, static: true}
	}

	mass := bodyComp.Mass
	if mass <= 0 {
		mass = 1
	}
	body := cp.NewBody(mass, momentFor(bodyComp, mass))
	body.SetPosition(bodyComp.CenterOfMass(transform))
	body.SetAngle(transform.Rotation)

	linear, angular := bodyComp.LinearDamping, bodyComp.AngularDamping
	body.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping, dt float64) {
		cp.BodyUpdateVelocity(b, gravity, damping, dt)
		if b.GetType() != cp.BODY_DYNAMIC {
			return
		}
		b.SetVelocityVector(b.Velocity().Mult(impact.DampingFactor(linear, dt)))
		b.SetAngularVelocity(b.AngularVelocity() * impact.DampingFactor(angular, dt))
	})

	var shape *cp.Shape
	if radius > 0 {
		shape = cp.NewCircle(body, radius, cp.Vector{})
	} else {
		// the collider sits above the center of mass by the offset
		off := bodyComp.CenterOfMassOffset
		bb := cp.BB{L: -width / 2, B: -height/2 - off, R: width / 2, T: height/2 - off}
		shape = cp.NewBox2(body, bb, 0)
	}

	friction, elasticity := bodyComp.Friction, bodyComp.Elasticity
	if surface, ok := tableSurface(w); ok {
		friction, elasticity = surface.CombinedWith(friction, elasticity, bodyComp.FrictionCombine, bodyComp.BounceCombine)
	}
	shape.SetFriction(friction)
	shape.SetElasticity(elasticity)
	shape.SetCollisionType(collisionType)

	if bodyComp.Static {
		body.SetType(cp.BODY_KINEMATIC)
	}

	ps.space.AddBody(body)
	ps.space.AddShape(shape)

	ps.logger.Debug("body created",
		zap.Stringer("entity", e),
		zap.Float64("mass", mass),
		zap.Bool("static", bodyComp.Static),
		zap.Float64("friction", friction),
		zap.Float64("elasticity", elasticity))

	return &bodyInfo{body: body, shape: shape, static: bodyComp.Static}
}

func momentFor(bodyComp *component.PhysicsBody, mass float64) float64 {
	if bodyComp.Radius > 0 {
		return cp.MomentForCircle(mass, 0, bodyComp.Radius, cp.Vector{})
	}
	off := bodyComp.CenterOfMassOffset
	return cp.MomentForBox(mass, bodyComp.Width, bodyComp.Height) + mass*off*off
}

func (ps *PhysicsSystem) applyStatic(info *bodyInfo, bodyComp *component.PhysicsBody) {
	if bodyComp.Static {
		info.body.SetType(cp.BODY_KINEMATIC)
		info.body.SetVelocity(0, 0)
		info.body.SetAngularVelocity(0)
	} else {
		mass := bodyComp.Mass
		if mass <= 0 {
			mass = 1
		}
		info.body.SetType(cp.BODY_DYNAMIC)
		info.body.SetMass(mass)
		info.body.SetMoment(momentFor(bodyComp, mass))
	}
	info.static = bodyComp.Static
}

func collisionTypeFor(w *ecs.World, e ecs.Entity) cp.CollisionType {
	switch {
	case ecs.Has(w, e, component.BallTagComponent.Kind()):
		return collisionTypeBall
	case ecs.Has(w, e, component.GlassTagComponent.Kind()):
		return collisionTypeGlass
	case ecs.Has(w, e, component.TableTagComponent.Kind()):
		return collisionTypeTable
	case ecs.Has(w, e, component.FragmentTagComponent.Kind()):
		return collisionTypeFragment
	default:
		return collisionTypeOther
	}
}

func tableSurface(w *ecs.World) (impact.Surface, bool) {
	e, ok := ecs.First(w, component.SurfaceComponent.Kind())
	if !ok {
		return impact.Surface{}, false
	}
	s, ok := ecs.Get(w, e, component.SurfaceComponent.Kind())
	if !ok {
		return impact.Surface{}, false
	}
	return s.Material, true
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, transform *component.Transform) {
		if bodyComp.Body == nil || bodyComp.Fixed {
			return
		}
		transform.X, transform.Y, transform.Rotation = bodyComp.ColliderCenter()
	})
}

func (ps *PhysicsSystem) deliverContacts(w *ecs.World) {
	for _, c := range ps.contacts {
		ps.deliver(w, c.a, c.b, c)
		ps.deliver(w, c.b, c.a, c)
	}
	ps.contacts = ps.contacts[:0]
}

func (ps *PhysicsSystem) deliver(w *ecs.World, self, other ecs.Entity, c contact) {
	queue, ok := ecs.Get(w, self, component.ImpactQueueComponent.Kind())
	if !ok {
		return
	}
	tag := impact.TagOther
	if cat, ok := ecs.Get(w, other, component.CategoryComponent.Kind()); ok {
		tag = cat.Tag
	}
	ev := impact.Event{
		Force:         c.force,
		RelativeSpeed: c.speed,
		ContactPoint:  mgl64.Vec3{c.point.X, c.point.Y, 0},
		OtherTag:      tag,
	}
	queue.Push(ev)
	ps.logger.Debug("impact",
		zap.Stringer("entity", self),
		zap.Stringer("other", tag),
		zap.Float64("force", ev.Force),
		zap.Float64("relative_speed", ev.RelativeSpeed))
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if w.IsAlive(e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			continue
		}
		ps.removeBody(info)
		delete(ps.entities, e)
	}
}

func (ps *PhysicsSystem) removeBody(info *bodyInfo) {
	if info.shape != nil {
		ps.space.RemoveShape(info.shape)
		delete(ps.shapes, info.shape)
	}
	if info.body != nil && !info.fixed {
		ps.space.RemoveBody(info.body)
	}
}

// Reset drops every body and starts over with an empty space.
func (ps *PhysicsSystem) Reset() {
	ps.space = newSpace()
	ps.handlersReady = false
	clear(ps.entities)
	clear(ps.shapes)
	clear(ps.speeds)
	ps.contacts = ps.contacts[:0]
}

// BodyCount is the number of bodies the system is tracking.
func (ps *PhysicsSystem) BodyCount() int {
	return len(ps.entities)
}
