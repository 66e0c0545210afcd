package system

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
	"github.com/milk9111/tabletop/impact"
)

func TestPhysicsCreatesBodies(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(nil)
	addTable(t, w)
	glass := addGlass(t, w, 0, false, nil)
	ball := addBall(t, w, 0.5, 0.5)

	ps.Update(w)
	require.Equal(t, 3, ps.BodyCount())

	glassBody, _ := ecs.Get(w, glass, component.PhysicsBodyComponent.Kind())
	require.Equal(t, cp.BODY_DYNAMIC, glassBody.Body.GetType())
	require.InDelta(t, 5.0, glassBody.Body.Mass(), 1e-9)
	// min(0.3, 0.6) and min(0.1, 0.2)
	require.InDelta(t, 0.3, glassBody.Shape.Friction(), 1e-12)
	require.InDelta(t, 0.1, glassBody.Shape.Elasticity(), 1e-12)

	ballBody, _ := ecs.Get(w, ball, component.PhysicsBodyComponent.Kind())
	require.InDelta(t, 2.0, ballBody.Body.Mass(), 1e-9)
	require.InDelta(t, 0.1, ballBody.Shape.Friction(), 1e-12)
	require.InDelta(t, 0.7, ballBody.Shape.Elasticity(), 1e-12)
}

func TestPhysicsFallsUnderGravity(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(nil)
	ball := addBall(t, w, 0, 2)

	for range 10 {
		ps.Update(w)
	}

	transform, _ := ecs.Get(w, ball, component.TransformComponent.Kind())
	require.Less(t, transform.Y, 2.0)
	require.InDelta(t, 0, transform.X, 1e-9)
}

func TestPhysicsDeliversTableImpact(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(nil)
	addTable(t, w)
	ball := addBall(t, w, 0.5, tableTop+ballRadius+0.05)
	ps.Update(w)
	setVelocity(t, w, ball, 0, -2)

	for range 30 {
		ps.Update(w)
	}

	queue, _ := ecs.Get(w, ball, component.ImpactQueueComponent.Kind())
	require.NotEmpty(t, queue.Events)
	first := queue.Events[0]
	require.Equal(t, impact.TagTable, first.OtherTag)
	require.Greater(t, first.Force, 0.0)
	require.Greater(t, first.RelativeSpeed, 1.5)
	require.InDelta(t, 0, first.ContactPoint[2], 1e-12)
}

func TestPhysicsStaticToggle(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(nil)
	addTable(t, w)
	glass := addGlass(t, w, 0, true, nil)
	ps.Update(w)

	body, _ := ecs.Get(w, glass, component.PhysicsBodyComponent.Kind())
	require.Equal(t, cp.BODY_KINEMATIC, body.Body.GetType())

	body.Static = false
	ps.Update(w)
	require.Equal(t, cp.BODY_DYNAMIC, body.Body.GetType())
	require.InDelta(t, 5.0, body.Body.Mass(), 1e-9)
	require.Greater(t, body.Body.Moment(), 0.0)

	body.Static = true
	ps.Update(w)
	require.Equal(t, cp.BODY_KINEMATIC, body.Body.GetType())
	require.Equal(t, cp.Vector{}, body.Body.Velocity())
}

func TestPhysicsRemovesDestroyedBodies(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(nil)
	ball := addBall(t, w, 0, 1)
	ps.Update(w)
	require.Equal(t, 1, ps.BodyCount())

	ecs.DestroyEntity(w, ball)
	ps.Update(w)
	require.Equal(t, 0, ps.BodyCount())

	addBall(t, w, 0, 1)
	ps.Reset()
	require.Equal(t, 0, ps.BodyCount())
	ps.Update(w)
	require.Equal(t, 1, ps.BodyCount())
}

func TestBodyRadiusUpdatesShape(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(nil)
	ball := addBall(t, w, 0, 1)
	ps.Update(w)

	body, _ := ecs.Get(w, ball, component.PhysicsBodyComponent.Kind())
	component.BodyRadius{Body: body}.SetRadius(0.05)

	circle, ok := body.Shape.Class.(*cp.Circle)
	require.True(t, ok)
	require.InDelta(t, 0.05, circle.Radius(), 1e-12)
	require.InDelta(t, 0.05, body.Radius, 1e-12)
}
