package component

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tabletop/impact"
)

// PhysicsBody stores Chipmunk2D runtime data and collider configuration.
// Radius > 0 makes a circle, otherwise Width x Height is a box.
type PhysicsBody struct {
	Body       *cp.Body
	Shape      *cp.Shape
	Width      float64
	Height     float64
	Radius     float64
	Mass       float64
	Friction   float64
	Elasticity float64
	// LinearDamping and AngularDamping are per-second coefficients.
	LinearDamping  float64
	AngularDamping float64
	// CenterOfMassOffset moves the center of mass along the body's local Y.
	CenterOfMassOffset float64
	FrictionCombine    impact.CombineMode
	BounceCombine      impact.CombineMode
	// Static bodies are kinematic: they take part in contacts but nothing
	// moves them.
	Static bool
	// Fixed bodies belong to the space's static body and never move.
	Fixed bool
}

// CenterOfMass returns the world position of the center of mass for a body
// whose collider is centered on t.
func (b *PhysicsBody) CenterOfMass(t Transform) cp.Vector {
	sin, cos := math.Sincos(t.Rotation)
	off := b.CenterOfMassOffset
	return cp.Vector{X: t.X - sin*off, Y: t.Y + cos*off}
}

// ColliderCenter inverts CenterOfMass for the body's current state.
func (b *PhysicsBody) ColliderCenter() (x, y, angle float64) {
	if b.Body == nil {
		return 0, 0, 0
	}
	pos := b.Body.Position()
	angle = b.Body.Angle()
	sin, cos := math.Sincos(angle)
	off := b.CenterOfMassOffset
	return pos.X + sin*off, pos.Y - cos*off, angle
}

// Teleport puts a live body at t and stops it.
func (b *PhysicsBody) Teleport(t Transform) {
	if b.Body == nil {
		return
	}
	b.Body.SetPosition(b.CenterOfMass(t))
	b.Body.SetAngle(t.Rotation)
	b.Body.SetVelocity(0, 0)
	b.Body.SetAngularVelocity(0)
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()

// BodyRadius exposes a circle body's collision radius to the deformation
// responder. Writes go straight to the live shape when one exists.
type BodyRadius struct {
	Body *PhysicsBody
}

func (r BodyRadius) Radius() float64 {
	if r.Body == nil {
		return 0
	}
	return r.Body.Radius
}

func (r BodyRadius) SetRadius(radius float64) {
	if r.Body == nil || radius <= 0 {
		return
	}
	r.Body.Radius = radius
	if r.Body.Shape == nil {
		return
	}
	if circle, ok := r.Body.Shape.Class.(*cp.Circle); ok {
		circle.SetRadius(radius)
	}
}
