package entity

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
	"github.com/milk9111/tabletop/impact"
	"github.com/milk9111/tabletop/prefabs"
)

func TestBuildGlassPrefab(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntity(w, "glass.yaml", Options{})
	require.NoError(t, err)

	tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	require.True(t, ok)
	require.InDelta(t, 0.3, tr.X, 1e-9)
	require.InDelta(t, 0.075, tr.Y, 1e-9)

	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 5.0, body.Mass)
	require.False(t, body.Static)
	require.InDelta(t, -0.05, body.CenterOfMassOffset, 1e-9)
	require.Equal(t, impact.CombineMinimum, body.FrictionCombine)

	br, ok := ecs.Get(w, e, component.BreakableComponent.Kind())
	require.True(t, ok)
	require.Len(t, br.Responder.Config().Fragments, 6)
	require.Equal(t, 2.0, br.Responder.Config().BreakThreshold)
	require.True(t, br.Responder.Config().Sound)

	look, ok := ecs.Get(w, e, component.RenderableComponent.Kind())
	require.True(t, ok)
	require.InDelta(t, 0.3, look.Alpha, 1e-9)
	require.Equal(t, color.RGBA{R: 0xcf, G: 0xe8, B: 0xff, A: 0xff}, look.Fill)
	require.True(t, look.Outline)

	cat, ok := ecs.Get(w, e, component.CategoryComponent.Kind())
	require.True(t, ok)
	require.Equal(t, impact.TagGlass, cat.Tag)

	require.True(t, ecs.Has(w, e, component.AudioComponent.Kind()))
	require.True(t, ecs.Has(w, e, component.ImpactQueueComponent.Kind()))
	require.True(t, ecs.Has(w, e, component.GlassTagComponent.Kind()))

	pose, ok := ecs.Get(w, e, component.InitialPoseComponent.Kind())
	require.True(t, ok)
	require.Equal(t, *tr, pose.Transform)
}

func TestBuildBallPrefab(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntity(w, "ball.yaml", Options{})
	require.NoError(t, err)

	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 0.11, body.Radius)
	require.Equal(t, 0.7, body.Elasticity)
	require.Equal(t, impact.CombineMaximum, body.BounceCombine)

	d, ok := ecs.Get(w, e, component.DeformableComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 0.3, d.Responder.MaxDeformation())
	require.Equal(t, 0.11, d.Responder.State().OriginalRadius)

	layer, ok := ecs.Get(w, e, component.RenderLayerComponent.Kind())
	require.True(t, ok)
	require.Equal(t, 3, layer.Index)
	require.False(t, ecs.Has(w, e, component.AudioComponent.Kind()))
}

func TestBuildTablePrefab(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntity(w, "table.yaml", Options{})
	require.NoError(t, err)

	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	require.True(t, ok)
	require.True(t, body.Fixed)
	require.Equal(t, 1.0, body.Friction)
	require.Equal(t, 1.0, body.Elasticity)

	surface, ok := ecs.Get(w, e, component.SurfaceComponent.Kind())
	require.True(t, ok)
	require.Equal(t, impact.Surface{Friction: 0.6, Bounciness: 0.2}, surface.Material)
}

func TestBuildEntityErrors(t *testing.T) {
	w := ecs.NewWorld()
	_, err := BuildEntity(w, "missing.yaml", Options{})
	require.Error(t, err)

	_, err = BuildEntity(nil, "glass.yaml", Options{})
	require.Error(t, err)
	require.Empty(t, w.Entities())
}

func TestProfileFromSpecValidation(t *testing.T) {
	ball := ballSpecDefaults()
	ball.BounceCombine = "median"
	_, err := BallProfileFromSpec(ball)
	require.Error(t, err)

	ball = ballSpecDefaults()
	ball.Mass = 20
	_, err = BallProfileFromSpec(ball)
	require.ErrorIs(t, err, impact.ErrInvalidProfile)

	glass := glassSpecDefaults()
	glass.BreakThreshold = -1
	_, err = GlassProfileFromSpec(glass)
	require.ErrorIs(t, err, impact.ErrInvalidBreakThreshold)

	glass = glassSpecDefaults()
	glass.Transparency = 4
	profile, err := GlassProfileFromSpec(glass)
	require.NoError(t, err)
	require.Equal(t, 1.0, profile.Transparency)
}

func TestFragmentSpecsFromSpec(t *testing.T) {
	glass := glassSpecDefaults()
	glass.FragmentGrid = &prefabs.FragmentGridSpec{Columns: 2, Rows: 3, Depth: 0.08}
	frags, err := FragmentSpecsFromSpec(glass)
	require.NoError(t, err)
	require.Len(t, frags, 6)
	for _, f := range frags {
		require.NotNil(t, f.Bounds)
	}

	glass.Fragments = []prefabs.FragmentComponentSpec{
		{Name: "whole", Min: []float64{-0.04, -0.075, -0.04}, Max: []float64{0.04, 0.075, 0.04}},
		{Name: "lost"},
	}
	frags, err = FragmentSpecsFromSpec(glass)
	require.NoError(t, err)
	require.Len(t, frags, 2)
	require.NotNil(t, frags[0].Bounds)
	require.InDelta(t, 0.15, frags[0].Bounds.Size()[1], 1e-9)
	require.Nil(t, frags[1].Bounds)
}
