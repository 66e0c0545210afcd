package entity

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
	"github.com/milk9111/tabletop/impact"
	"github.com/milk9111/tabletop/logging"
	"github.com/milk9111/tabletop/prefabs"
)

var ErrNoTransform = errors.New("entity: transform must be built first")

// Options carries the collaborators component builders need.
type Options struct {
	Logger *zap.Logger
	Rand   impact.Random
}

type buildContext struct {
	PrefabPath string
	Logger     *zap.Logger
	Rand       impact.Random
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":    addTransform,
	"table":        addTable,
	"glass":        addGlass,
	"ball":         addBall,
	"renderable":   addRenderable,
	"render_layer": addRenderLayer,
	"audio":        addAudio,
}

var componentBuildOrder = []string{
	"transform",
	"table",
	"glass",
	"ball",
	"renderable",
	"render_layer",
	"audio",
}

func BuildEntity(w *ecs.World, prefabPath string, opts Options) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	rng := opts.Rand
	if rng == nil {
		rng = impact.NewRandSource(1)
	}
	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath, Logger: logging.Or(opts.Logger), Rand: rng}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, names[0])
	}

	return e, nil
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		Rotation: spec.Rotation,
	})
}

type tableSpec = prefabs.TableComponentSpec

func addTable(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpecOver(raw, tableSpec{Width: 2, Height: 0.1, Friction: 0.6, Bounciness: 0.2})
	if err != nil {
		return fmt.Errorf("decode table spec: %w", err)
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return fmt.Errorf("%w: table size %.3fx%.3f", impact.ErrInvalidProfile, spec.Width, spec.Height)
	}
	if !ecs.Has(w, e, component.TransformComponent.Kind()) {
		return ErrNoTransform
	}

	// neutral coefficients; other bodies bake the combine against Surface
	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width:      spec.Width,
		Height:     spec.Height,
		Friction:   1,
		Elasticity: 1,
		Fixed:      true,
	}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.SurfaceComponent.Kind(), &component.Surface{
		Material: impact.Surface{Friction: spec.Friction, Bounciness: spec.Bounciness},
	}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.TableTagComponent.Kind(), &component.TableTag{}); err != nil {
		return err
	}
	return ecs.Add(w, e, component.CategoryComponent.Kind(), &component.Category{Tag: impact.TagTable})
}

type ballSpec = prefabs.BallComponentSpec

func ballSpecDefaults() ballSpec {
	p := impact.DefaultBallProfile()
	return ballSpec{
		Mass:            p.Mass,
		Radius:          p.Radius,
		Bounciness:      p.Bounciness,
		MaxDeformation:  p.MaxDeformation,
		LinearDamping:   p.LinearDamping,
		AngularDamping:  p.AngularDamping,
		DynamicFriction: p.DynamicFriction,
		StaticFriction:  p.StaticFriction,
		BounceCombine:   p.BounceCombine.String(),
		FrictionCombine: p.FrictionCombine.String(),
	}
}

// BallProfileFromSpec converts and validates a ball prefab component.
func BallProfileFromSpec(spec ballSpec) (impact.BallProfile, error) {
	bounce, err := impact.ParseCombineMode(spec.BounceCombine)
	if err != nil {
		return impact.BallProfile{}, err
	}
	friction, err := impact.ParseCombineMode(spec.FrictionCombine)
	if err != nil {
		return impact.BallProfile{}, err
	}
	profile := impact.BallProfile{
		Mass:            spec.Mass,
		Radius:          spec.Radius,
		Bounciness:      spec.Bounciness,
		MaxDeformation:  spec.MaxDeformation,
		LinearDamping:   spec.LinearDamping,
		AngularDamping:  spec.AngularDamping,
		DynamicFriction: spec.DynamicFriction,
		StaticFriction:  spec.StaticFriction,
		BounceCombine:   bounce,
		FrictionCombine: friction,
	}
	return profile, profile.Validate()
}

func addBall(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpecOver(raw, ballSpecDefaults())
	if err != nil {
		return fmt.Errorf("decode ball spec: %w", err)
	}
	profile, err := BallProfileFromSpec(spec)
	if err != nil {
		return err
	}
	transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return ErrNoTransform
	}

	body := &component.PhysicsBody{
		Radius:          profile.Radius,
		Mass:            profile.Mass,
		Friction:        profile.DynamicFriction,
		Elasticity:      profile.Bounciness,
		LinearDamping:   profile.LinearDamping,
		AngularDamping:  profile.AngularDamping,
		FrictionCombine: profile.FrictionCombine,
		BounceCombine:   profile.BounceCombine,
	}
	responder, err := impact.NewDeformationResponder(component.BodyRadius{Body: body}, profile.MaxDeformation)
	if err != nil {
		return err
	}

	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), body); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.DeformableComponent.Kind(), &component.Deformable{Responder: responder}); err != nil {
		return err
	}
	if err := addImpactTarget(w, e, impact.TagBall); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.BallTagComponent.Kind(), &component.BallTag{}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.InitialPoseComponent.Kind(), &component.InitialPose{Transform: *transform}); err != nil {
		return err
	}

	ctx.Logger.Info("ball initialized",
		zap.Stringer("entity", e),
		zap.Float64("mass", profile.Mass),
		zap.Float64("bounciness", profile.Bounciness),
		zap.Float64("max_deformation", profile.MaxDeformation))
	return nil
}

type glassSpec = prefabs.GlassComponentSpec

func glassSpecDefaults() glassSpec {
	p := impact.DefaultGlassProfile()
	return glassSpec{
		Mass:               p.Mass,
		Width:              p.Width,
		Height:             p.Height,
		Friction:           p.Friction,
		Bounciness:         p.Bounciness,
		CenterOfMassOffset: p.CenterOfMassOffset,
		Static:             p.Static,
		LinearDamping:      p.LinearDamping,
		AngularDamping:     p.AngularDamping,
		BreakThreshold:     p.BreakThreshold,
		ExplosionForce:     p.ExplosionForce,
		FragmentLifetime:   p.FragmentLifetime,
		Transparency:       p.Transparency,
		Sound:              p.Sound,
		SoundVolume:        p.SoundVolume,
		FrictionCombine:    p.FrictionCombine.String(),
		BounceCombine:      p.BounceCombine.String(),
	}
}

// GlassProfileFromSpec converts and validates a glass prefab component.
func GlassProfileFromSpec(spec glassSpec) (impact.GlassProfile, error) {
	friction, err := impact.ParseCombineMode(spec.FrictionCombine)
	if err != nil {
		return impact.GlassProfile{}, err
	}
	bounce, err := impact.ParseCombineMode(spec.BounceCombine)
	if err != nil {
		return impact.GlassProfile{}, err
	}
	profile := impact.GlassProfile{
		Mass:               spec.Mass,
		Width:              spec.Width,
		Height:             spec.Height,
		Friction:           spec.Friction,
		Bounciness:         spec.Bounciness,
		CenterOfMassOffset: spec.CenterOfMassOffset,
		Static:             spec.Static,
		LinearDamping:      spec.LinearDamping,
		AngularDamping:     spec.AngularDamping,
		BreakThreshold:     spec.BreakThreshold,
		ExplosionForce:     spec.ExplosionForce,
		FragmentLifetime:   spec.FragmentLifetime,
		Transparency:       impact.ClampTransparency(spec.Transparency),
		Sound:              spec.Sound,
		SoundVolume:        spec.SoundVolume,
		FrictionCombine:    friction,
		BounceCombine:      bounce,
	}
	return profile, profile.Validate()
}

// FragmentSpecsFromSpec turns the authored shards, or the grid when none are
// listed, into fragment templates. Shards without bounds are kept so the
// break can report them as skipped.
func FragmentSpecsFromSpec(spec glassSpec) ([]*impact.FragmentSpec, error) {
	shards := spec.Fragments
	if len(shards) == 0 && spec.FragmentGrid != nil {
		cells, err := spec.FragmentGrid.Cells(spec.Width, spec.Height)
		if err != nil {
			return nil, err
		}
		shards = cells
	}

	out := make([]*impact.FragmentSpec, 0, len(shards))
	for _, shard := range shards {
		frag := &impact.FragmentSpec{Name: shard.Name}
		if shard.HasBounds() {
			lo, hi, err := shard.Corners()
			if err != nil {
				return nil, err
			}
			frag.Bounds = &impact.Bounds{Min: mgl64.Vec3(lo), Max: mgl64.Vec3(hi)}
		}
		out = append(out, frag)
	}
	return out, nil
}

func addGlass(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpecOver(raw, glassSpecDefaults())
	if err != nil {
		return fmt.Errorf("decode glass spec: %w", err)
	}
	profile, err := GlassProfileFromSpec(spec)
	if err != nil {
		return err
	}
	fragments, err := FragmentSpecsFromSpec(spec)
	if err != nil {
		return err
	}
	transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return ErrNoTransform
	}

	pose := impact.PoseFunc(func() impact.Pose {
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			return impact.IdentityPose()
		}
		return t.Pose()
	})
	responder, err := impact.NewFractureResponder(impact.FractureConfig{
		BreakThreshold:   profile.BreakThreshold,
		FragmentLifetime: profile.FragmentLifetime,
		Sound:            profile.Sound,
		SoundVolume:      profile.SoundVolume,
		Fragments:        fragments,
	}, pose, ctx.Rand, ctx.Logger.Named("fracture"))
	if err != nil {
		return err
	}

	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width:              profile.Width,
		Height:             profile.Height,
		Mass:               profile.EffectiveMass(),
		Friction:           profile.Friction,
		Elasticity:         profile.Bounciness,
		LinearDamping:      profile.LinearDamping,
		AngularDamping:     profile.AngularDamping,
		CenterOfMassOffset: profile.CenterOfMassOffset,
		FrictionCombine:    profile.FrictionCombine,
		BounceCombine:      profile.BounceCombine,
		Static:             profile.Static,
	}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.BreakableComponent.Kind(), &component.Breakable{Responder: responder, Profile: profile}); err != nil {
		return err
	}
	if err := addImpactTarget(w, e, impact.TagGlass); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.GlassTagComponent.Kind(), &component.GlassTag{}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.RenderableComponent.Kind(), &component.Renderable{
		Fill:  color.RGBA{R: 220, G: 240, B: 255, A: 255},
		Alpha: profile.Transparency,
	}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.InitialPoseComponent.Kind(), &component.InitialPose{Transform: *transform, Static: profile.Static}); err != nil {
		return err
	}

	if len(fragments) == 0 {
		ctx.Logger.Warn("glass has no fragments configured", zap.String("prefab", ctx.PrefabPath))
	}
	ctx.Logger.Info("glass initialized",
		zap.Stringer("entity", e),
		zap.Float64("mass", profile.EffectiveMass()),
		zap.Bool("static", profile.Static),
		zap.Float64("break_threshold", profile.BreakThreshold),
		zap.Int("fragments", len(fragments)))
	return nil
}

func addImpactTarget(w *ecs.World, e ecs.Entity, tag impact.Tag) error {
	if err := ecs.Add(w, e, component.ImpactQueueComponent.Kind(), &component.ImpactQueue{}); err != nil {
		return err
	}
	return ecs.Add(w, e, component.CategoryComponent.Kind(), &component.Category{Tag: tag})
}

type renderableSpec = prefabs.RenderableComponentSpec

func addRenderable(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[renderableSpec](raw)
	if err != nil {
		return fmt.Errorf("decode renderable spec: %w", err)
	}

	look := component.Renderable{Fill: color.RGBA{R: 255, G: 255, B: 255, A: 255}, Alpha: 1}
	if existing, ok := ecs.Get(w, e, component.RenderableComponent.Kind()); ok {
		look = *existing
	}
	if spec.Color != nil {
		look.Fill = spec.Color.RGBA8()
	}
	if spec.Alpha != nil {
		look.Alpha = impact.ClampTransparency(*spec.Alpha)
	}
	look.Outline = spec.Outline
	return ecs.Add(w, e, component.RenderableComponent.Kind(), &look)
}

type renderLayerSpec = prefabs.RenderLayerComponentSpec

func addRenderLayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[renderLayerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode render layer spec: %w", err)
	}
	return ecs.Add(w, e, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: spec.Index})
}

type audioSpec = prefabs.AudioComponentSpec

func addAudio(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpecOver(raw, audioSpec{Enabled: true})
	if err != nil {
		return fmt.Errorf("decode audio spec: %w", err)
	}
	if !spec.Enabled {
		return nil
	}
	return ecs.Add(w, e, component.AudioComponent.Kind(), &component.Audio{})
}
