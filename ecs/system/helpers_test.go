package system

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
	"github.com/milk9111/tabletop/impact"
)

const (
	tableTop    = 0.0
	glassWidth  = 0.08
	glassHeight = 0.15
	ballRadius  = 0.11
)

func addTable(t *testing.T, w *ecs.World) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: 0, Y: tableTop - 0.05}))
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width: 3, Height: 0.1, Friction: 1, Elasticity: 1, Fixed: true,
	}))
	require.NoError(t, ecs.Add(w, e, component.TableTagComponent.Kind(), &component.TableTag{}))
	require.NoError(t, ecs.Add(w, e, component.CategoryComponent.Kind(), &component.Category{Tag: impact.TagTable}))
	require.NoError(t, ecs.Add(w, e, component.SurfaceComponent.Kind(), &component.Surface{Material: impact.Surface{Friction: 0.6, Bounciness: 0.2}}))
	return e
}

// glassFragments splits the glass into a 2x2 grid of local boxes.
func glassFragments() []*impact.FragmentSpec {
	hw, hh := glassWidth/2, glassHeight/2
	boxes := []impact.Bounds{
		{Min: mgl64.Vec3{-hw, -hh, -0.01}, Max: mgl64.Vec3{0, 0, 0.01}},
		{Min: mgl64.Vec3{0, -hh, -0.01}, Max: mgl64.Vec3{hw, 0, 0.01}},
		{Min: mgl64.Vec3{-hw, 0, -0.01}, Max: mgl64.Vec3{0, hh, 0.01}},
		{Min: mgl64.Vec3{0, 0, -0.01}, Max: mgl64.Vec3{hw, hh, 0.01}},
	}
	specs := make([]*impact.FragmentSpec, 0, len(boxes))
	for i := range boxes {
		specs = append(specs, &impact.FragmentSpec{Name: "shard", Bounds: &boxes[i]})
	}
	return specs
}

func addGlass(t *testing.T, w *ecs.World, x float64, static bool, fragments []*impact.FragmentSpec) ecs.Entity {
	t.Helper()
	profile := impact.DefaultGlassProfile()
	profile.Static = static

	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: tableTop + glassHeight/2}))
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width:              glassWidth,
		Height:             glassHeight,
		Mass:               profile.EffectiveMass(),
		Friction:           profile.Friction,
		Elasticity:         profile.Bounciness,
		LinearDamping:      profile.LinearDamping,
		AngularDamping:     profile.AngularDamping,
		CenterOfMassOffset: profile.CenterOfMassOffset,
		FrictionCombine:    profile.FrictionCombine,
		BounceCombine:      profile.BounceCombine,
		Static:             static,
	}))
	require.NoError(t, ecs.Add(w, e, component.GlassTagComponent.Kind(), &component.GlassTag{}))
	require.NoError(t, ecs.Add(w, e, component.CategoryComponent.Kind(), &component.Category{Tag: impact.TagGlass}))
	require.NoError(t, ecs.Add(w, e, component.ImpactQueueComponent.Kind(), &component.ImpactQueue{}))
	require.NoError(t, ecs.Add(w, e, component.AudioComponent.Kind(), &component.Audio{}))
	require.NoError(t, ecs.Add(w, e, component.RenderableComponent.Kind(), &component.Renderable{Fill: color.RGBA{R: 200, G: 230, B: 255, A: 255}, Alpha: 0.3}))

	pose := impact.PoseFunc(func() impact.Pose {
		tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			return impact.IdentityPose()
		}
		return tr.Pose()
	})
	responder, err := impact.NewFractureResponder(impact.FractureConfig{
		BreakThreshold:   impact.DefaultBreakThreshold,
		FragmentLifetime: impact.DefaultFragmentLifetime,
		Sound:            true,
		SoundVolume:      profile.SoundVolume,
		Fragments:        fragments,
	}, pose, impact.NewRandSource(7), nil)
	require.NoError(t, err)
	require.NoError(t, ecs.Add(w, e, component.BreakableComponent.Kind(), &component.Breakable{Responder: responder, Profile: profile}))
	return e
}

func addBall(t *testing.T, w *ecs.World, x, y float64) ecs.Entity {
	t.Helper()
	profile := impact.DefaultBallProfile()

	e := ecs.CreateEntity(w)
	body := &component.PhysicsBody{
		Radius:          ballRadius,
		Mass:            profile.Mass,
		Friction:        profile.DynamicFriction,
		Elasticity:      profile.Bounciness,
		LinearDamping:   profile.LinearDamping,
		AngularDamping:  profile.AngularDamping,
		FrictionCombine: profile.FrictionCombine,
		BounceCombine:   profile.BounceCombine,
	}
	require.NoError(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y}))
	require.NoError(t, ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), body))
	require.NoError(t, ecs.Add(w, e, component.BallTagComponent.Kind(), &component.BallTag{}))
	require.NoError(t, ecs.Add(w, e, component.CategoryComponent.Kind(), &component.Category{Tag: impact.TagBall}))
	require.NoError(t, ecs.Add(w, e, component.ImpactQueueComponent.Kind(), &component.ImpactQueue{}))

	responder, err := impact.NewDeformationResponder(component.BodyRadius{Body: body}, profile.MaxDeformation)
	require.NoError(t, err)
	require.NoError(t, ecs.Add(w, e, component.DeformableComponent.Kind(), &component.Deformable{Responder: responder}))
	return e
}

func setVelocity(t *testing.T, w *ecs.World, e ecs.Entity, vx, vy float64) {
	t.Helper()
	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	require.True(t, ok)
	require.NotNil(t, body.Body)
	body.Body.SetVelocity(vx, vy)
}

type recordingPlayer struct {
	played []impact.SoundRequest
	err    error
}

func (p *recordingPlayer) PlayClink(sound impact.SoundRequest) error {
	if p.err != nil {
		return p.err
	}
	p.played = append(p.played, sound)
	return nil
}
