package entity_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/tabletop/common"
	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
	"github.com/milk9111/tabletop/ecs/entity"
	"github.com/milk9111/tabletop/ecs/system"
	"github.com/milk9111/tabletop/impact"
)

func buildScene(t *testing.T) (*ecs.World, *entity.Scene) {
	t.Helper()
	w := ecs.NewWorld()
	s, err := entity.BuildScene(w, "scene.yaml", entity.Options{})
	require.NoError(t, err)
	return w, s
}

func TestBuildScene(t *testing.T) {
	w, s := buildScene(t)

	require.Equal(t, "tabletop", s.Spec.Name)
	require.True(t, ecs.Has(w, s.Table, component.TableTagComponent.Kind()))
	require.True(t, ecs.Has(w, s.Glass, component.GlassTagComponent.Kind()))
	require.True(t, ecs.Has(w, s.Ball, component.BallTagComponent.Kind()))

	cam, ok := ecs.Get(w, s.Camera, component.CameraComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 600.0, cam.PixelsPerMeter)
	require.InDelta(t, 0.3, cam.Y, 1e-9)

	require.False(t, s.GlassStatic())
	require.InDelta(t, 0.3, s.Transparency(), 1e-9)
	require.False(t, s.GlassBroken())
	require.Equal(t, 0.11, s.BallRadius())

	fp := s.FragmentProfile()
	require.Equal(t, 1.0, fp.LinearDamping)
	require.Equal(t, impact.FragmentMass, fp.Mass)
}

func TestBuildSceneMissingFile(t *testing.T) {
	_, err := entity.BuildScene(ecs.NewWorld(), "nope.yaml", entity.Options{})
	require.Error(t, err)
}

func TestThrowVelocity(t *testing.T) {
	vx, vy := entity.ThrowVelocity(0, 0, 3, 4, 5)
	require.InDelta(t, 3.0, vx, 1e-9)
	require.InDelta(t, 4+0.5*math.Abs(common.Gravity), vy, 1e-9)

	vx, vy = entity.ThrowVelocity(1, 1, 1, 1, 5)
	require.Zero(t, vx)
	require.Zero(t, vy)
}

func TestGlassStaticToggle(t *testing.T) {
	w, s := buildScene(t)

	require.True(t, s.ToggleGlassStatic())
	body, ok := ecs.Get(w, s.Glass, component.PhysicsBodyComponent.Kind())
	require.True(t, ok)
	require.True(t, body.Static)
	require.Equal(t, 0.2, body.Mass)

	s.SetGlassStatic(false)
	require.False(t, body.Static)
	require.Equal(t, 5.0, body.Mass)
}

func TestTransparencyIsClamped(t *testing.T) {
	w, s := buildScene(t)

	require.Equal(t, 1.0, s.AdjustTransparency(5))
	s.SetTransparency(-2)
	look, ok := ecs.Get(w, s.Glass, component.RenderableComponent.Kind())
	require.True(t, ok)
	require.Zero(t, look.Alpha)
	require.InDelta(t, 0.25, s.AdjustTransparency(0.25), 1e-9)
}

func TestTriggerTestDeformation(t *testing.T) {
	w, s := buildScene(t)
	require.NoError(t, s.TriggerTestDeformation())

	d, ok := ecs.Get(w, s.Ball, component.DeformableComponent.Kind())
	require.True(t, ok)
	require.Equal(t, impact.PhaseCompressing, d.Responder.State().Phase)
	require.InDelta(t, 0.11*0.8, d.Responder.State().TargetRadius, 1e-9)
}

func TestThrowBallQueuesLaunch(t *testing.T) {
	w, s := buildScene(t)
	require.NoError(t, s.ThrowBall())

	launch, ok := ecs.Get(w, s.Ball, component.LaunchRequestComponent.Kind())
	require.True(t, ok)
	require.Greater(t, launch.VX, 0.0)
	require.Equal(t, s.Spec.Throw.Spin, launch.Spin)

	ps := system.NewPhysicsSystem(nil)
	ps.Update(w)
	require.False(t, ecs.Has(w, s.Ball, component.LaunchRequestComponent.Kind()))
	body, ok := ecs.Get(w, s.Ball, component.PhysicsBodyComponent.Kind())
	require.True(t, ok)
	require.Greater(t, body.Body.Velocity().X, 0.0)
}

func TestThrownBallBreaksGlassAndResetRebuildsIt(t *testing.T) {
	w, s := buildScene(t)
	ps := system.NewPhysicsSystem(nil)
	fracture := system.NewFractureSystem(ps, s.FragmentProfile(), nil)
	deform := system.NewDeformationSystem(nil)
	lifetime := system.NewLifetimeSystem()
	sched := ecs.NewScheduler(ps, fracture, deform, lifetime)

	s.SetGlassStatic(true)
	s.SetTransparency(0.6)
	require.NoError(t, s.ThrowBall())
	for range 60 {
		sched.Update(w)
	}

	require.True(t, s.GlassBroken())
	require.Positive(t, s.FragmentCount())
	broken := w.Events().Take(system.EventGlassBroken)
	require.Len(t, broken, 1)

	old := s.Glass
	require.NoError(t, s.Reset())
	require.NotEqual(t, old, s.Glass)
	require.False(t, s.GlassBroken())
	require.Zero(t, s.FragmentCount())
	require.True(t, s.GlassStatic())

	body, ok := ecs.Get(w, s.Glass, component.PhysicsBodyComponent.Kind())
	require.True(t, ok)
	require.True(t, body.Static)
	look, ok := ecs.Get(w, s.Glass, component.RenderableComponent.Kind())
	require.True(t, ok)
	require.InDelta(t, 0.6, look.Alpha, 1e-9)

	sched.Update(w)
	ball, ok := ecs.Get(w, s.Ball, component.TransformComponent.Kind())
	require.True(t, ok)
	require.InDelta(t, -0.55, ball.X, 0.01)
}

func TestSnapshotMarshals(t *testing.T) {
	_, s := buildScene(t)
	snap := s.Snapshot()
	require.Equal(t, "tabletop", snap.Scene)
	require.Equal(t, "idle", snap.Ball.Phase)
	require.InDelta(t, 0.3, snap.Glass.X, 1e-9)

	out, err := yaml.Marshal(snap)
	require.NoError(t, err)
	require.Contains(t, string(out), "transparency: 0.3")
	require.Contains(t, string(out), "phase: idle")
}
