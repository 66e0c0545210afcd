package entity

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/milk9111/tabletop/common"
	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
	"github.com/milk9111/tabletop/impact"
	"github.com/milk9111/tabletop/logging"
	"github.com/milk9111/tabletop/prefabs"
)

var (
	ErrNoGlass = errors.New("scene: no glass entity")
	ErrNoBall  = errors.New("scene: no ball entity")
)

// dropHeight is how far above the glass rim DropBall releases the ball.
const dropHeight = 0.3

// Scene is the built tabletop: one table, one glass and one ball, plus the
// camera looking at them.
type Scene struct {
	Spec   prefabs.SceneSpec
	Table  ecs.Entity
	Glass  ecs.Entity
	Ball   ecs.Entity
	Camera ecs.Entity

	world       *ecs.World
	opts        Options
	glassPrefab string
	static      bool
	alpha       float64
}

// BuildScene loads sceneFile and builds every prefab it lists into w.
func BuildScene(w *ecs.World, sceneFile string, opts Options) (*Scene, error) {
	if w == nil {
		return nil, fmt.Errorf("build scene: world is nil")
	}
	spec, err := prefabs.LoadSceneSpec(sceneFile)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}

	opts.Logger = logging.Or(opts.Logger)
	if opts.Rand == nil {
		opts.Rand = impact.NewRandSource(spec.Seed)
	}
	s := &Scene{Spec: spec, world: w, opts: opts}

	for _, prefab := range spec.Entities {
		e, err := BuildEntity(w, prefab, opts)
		if err != nil {
			return nil, fmt.Errorf("build scene %q: %w", spec.Name, err)
		}
		switch {
		case ecs.Has(w, e, component.TableTagComponent.Kind()):
			s.Table = e
		case ecs.Has(w, e, component.GlassTagComponent.Kind()):
			s.Glass = e
			s.glassPrefab = prefab
			if br, ok := ecs.Get(w, e, component.BreakableComponent.Kind()); ok {
				s.static = br.Profile.Static
				s.alpha = br.Profile.Transparency
			}
			if look, ok := ecs.Get(w, e, component.RenderableComponent.Kind()); ok {
				s.alpha = look.Alpha
			}
		case ecs.Has(w, e, component.BallTagComponent.Kind()):
			s.Ball = e
		}
	}
	if !s.Glass.Valid() {
		return nil, fmt.Errorf("build scene %q: %w", spec.Name, ErrNoGlass)
	}
	if !s.Ball.Valid() {
		return nil, fmt.Errorf("build scene %q: %w", spec.Name, ErrNoBall)
	}

	ppm := spec.Camera.PixelsPerMeter
	if ppm <= 0 {
		ppm = common.PixelsPerMeter
	}
	s.Camera = ecs.CreateEntity(w)
	if err := ecs.Add(w, s.Camera, component.CameraComponent.Kind(), &component.Camera{
		X:              spec.Camera.X,
		Y:              spec.Camera.Y,
		PixelsPerMeter: ppm,
	}); err != nil {
		return nil, fmt.Errorf("build scene %q: camera: %w", spec.Name, err)
	}

	opts.Logger.Info("scene built",
		zap.String("scene", spec.Name),
		zap.Uint64("seed", spec.Seed),
		zap.Int("entities", len(spec.Entities)))
	return s, nil
}

// FragmentProfile is the physical setup for shards spawned by this scene.
func (s *Scene) FragmentProfile() impact.FragmentProfile {
	p := impact.DefaultFragmentProfile()
	if s.Spec.Fragments.LinearDamping > 0 {
		p.LinearDamping = s.Spec.Fragments.LinearDamping
	}
	if s.Spec.Fragments.AngularDamping > 0 {
		p.AngularDamping = s.Spec.Fragments.AngularDamping
	}
	return p
}

// ThrowBall launches the ball from the scene's throw point at the glass.
func (s *Scene) ThrowBall() error {
	x, y, ok := s.GlassPosition()
	if !ok {
		return s.ThrowBallAt(s.Spec.Throw.X+1, s.Spec.Throw.Y)
	}
	return s.ThrowBallAt(x, y)
}

// ThrowBallAt launches the ball from the throw point so that it arrives at
// (x, y) despite gravity.
func (s *Scene) ThrowBallAt(x, y float64) error {
	speed := s.Spec.Throw.Speed
	if speed <= 0 {
		speed = 4.5
	}
	vx, vy := ThrowVelocity(s.Spec.Throw.X, s.Spec.Throw.Y, x, y, speed)
	return s.launchBall(component.Transform{X: s.Spec.Throw.X, Y: s.Spec.Throw.Y}, component.LaunchRequest{
		VX:   vx,
		VY:   vy,
		Spin: s.Spec.Throw.Spin,
	})
}

// ThrowVelocity aims a straight line from (fromX, fromY) to (toX, toY) at
// the given speed and adds the vertical speed gravity takes away over the
// flight.
func ThrowVelocity(fromX, fromY, toX, toY, speed float64) (float64, float64) {
	dx, dy := toX-fromX, toY-fromY
	dist := math.Hypot(dx, dy)
	if dist == 0 || speed <= 0 {
		return 0, 0
	}
	flight := dist / speed
	return dx / dist * speed, dy/dist*speed + 0.5*math.Abs(common.Gravity)*flight
}

// DropBall releases the ball at rest above the glass.
func (s *Scene) DropBall() error {
	x, y := 0.0, dropHeight
	if t, ok := ecs.Get(s.world, s.Glass, component.TransformComponent.Kind()); ok {
		x = t.X
		if br, ok := ecs.Get(s.world, s.Glass, component.BreakableComponent.Kind()); ok {
			y = t.Y + br.Profile.Height/2 + dropHeight
		}
	}
	return s.launchBall(component.Transform{X: x, Y: y}, component.LaunchRequest{})
}

// LaunchBall places the ball at (x, y) with the given velocity and spin.
func (s *Scene) LaunchBall(x, y, vx, vy, spin float64) error {
	return s.launchBall(component.Transform{X: x, Y: y}, component.LaunchRequest{VX: vx, VY: vy, Spin: spin})
}

// GlassPosition is the glass's current center.
func (s *Scene) GlassPosition() (float64, float64, bool) {
	t, ok := ecs.Get(s.world, s.Glass, component.TransformComponent.Kind())
	if !ok {
		return 0, 0, false
	}
	return t.X, t.Y, true
}

func (s *Scene) launchBall(at component.Transform, launch component.LaunchRequest) error {
	if !s.world.IsAlive(s.Ball) {
		return ErrNoBall
	}
	if err := SetEntityTransform(s.world, s.Ball, at.X, at.Y, at.Rotation); err != nil {
		return err
	}
	if body, ok := ecs.Get(s.world, s.Ball, component.PhysicsBodyComponent.Kind()); ok {
		body.Teleport(at)
	}
	s.opts.Logger.Debug("ball launched",
		zap.Float64("x", at.X),
		zap.Float64("y", at.Y),
		zap.Float64("vx", launch.VX),
		zap.Float64("vy", launch.VY))
	return ecs.Add(s.world, s.Ball, component.LaunchRequestComponent.Kind(), &launch)
}

// ResetGlass puts the glass back where it started. A broken or removed glass
// is rebuilt from its prefab. The static and transparency settings carry over.
func (s *Scene) ResetGlass() error {
	if s.world.IsAlive(s.Glass) && !s.GlassBroken() {
		pose, ok := ecs.Get(s.world, s.Glass, component.InitialPoseComponent.Kind())
		if !ok {
			return nil
		}
		if err := SetEntityTransform(s.world, s.Glass, pose.Transform.X, pose.Transform.Y, pose.Transform.Rotation); err != nil {
			return err
		}
		if body, ok := ecs.Get(s.world, s.Glass, component.PhysicsBodyComponent.Kind()); ok {
			body.Teleport(pose.Transform)
		}
		return nil
	}

	ecs.DestroyEntity(s.world, s.Glass)
	e, err := BuildEntity(s.world, s.glassPrefab, s.opts)
	if err != nil {
		return fmt.Errorf("reset glass: %w", err)
	}
	s.Glass = e
	s.SetGlassStatic(s.static)
	s.SetTransparency(s.alpha)
	s.opts.Logger.Info("glass rebuilt", zap.Stringer("entity", e))
	return nil
}

// Reset clears every shard and returns the glass and ball to their starting
// poses.
func (s *Scene) Reset() error {
	for _, e := range s.world.Query(component.FragmentTagComponent.Kind()) {
		ecs.DestroyEntity(s.world, e)
	}
	if err := s.ResetGlass(); err != nil {
		return err
	}
	pose, ok := ecs.Get(s.world, s.Ball, component.InitialPoseComponent.Kind())
	if !ok {
		return ErrNoBall
	}
	return s.launchBall(pose.Transform, component.LaunchRequest{})
}

// SetGlassStatic pins or frees the glass. A pinned glass keeps its
// configured mass; a free one uses the heavier dynamic mass.
func (s *Scene) SetGlassStatic(static bool) {
	s.static = static
	br, ok := ecs.Get(s.world, s.Glass, component.BreakableComponent.Kind())
	if !ok {
		return
	}
	br.Profile.Static = static
	if body, ok := ecs.Get(s.world, s.Glass, component.PhysicsBodyComponent.Kind()); ok {
		body.Static = static
		body.Mass = br.Profile.EffectiveMass()
	}
	s.opts.Logger.Info("glass static changed", zap.Bool("static", static))
}

func (s *Scene) ToggleGlassStatic() bool {
	s.SetGlassStatic(!s.static)
	return s.static
}

func (s *Scene) GlassStatic() bool {
	return s.static
}

// SetTransparency sets the glass's draw alpha, clamped to [0, 1].
func (s *Scene) SetTransparency(alpha float64) {
	s.alpha = impact.ClampTransparency(alpha)
	if look, ok := ecs.Get(s.world, s.Glass, component.RenderableComponent.Kind()); ok {
		look.Alpha = s.alpha
	}
	if br, ok := ecs.Get(s.world, s.Glass, component.BreakableComponent.Kind()); ok {
		br.Profile.Transparency = s.alpha
	}
}

func (s *Scene) AdjustTransparency(delta float64) float64 {
	s.SetTransparency(s.alpha + delta)
	return s.alpha
}

func (s *Scene) Transparency() float64 {
	return s.alpha
}

// TriggerTestDeformation squashes the ball by a fixed fraction without an
// impact.
func (s *Scene) TriggerTestDeformation() error {
	d, ok := ecs.Get(s.world, s.Ball, component.DeformableComponent.Kind())
	if !ok {
		return ErrNoBall
	}
	d.Responder.Deform(impact.TestDeformation)
	return nil
}

// GlassBroken reports whether the glass has shattered or been removed.
func (s *Scene) GlassBroken() bool {
	br, ok := ecs.Get(s.world, s.Glass, component.BreakableComponent.Kind())
	if !ok {
		return true
	}
	return br.Responder.IsBroken()
}

func (s *Scene) BallRadius() float64 {
	body, ok := ecs.Get(s.world, s.Ball, component.PhysicsBodyComponent.Kind())
	if !ok {
		return 0
	}
	return body.Radius
}

func (s *Scene) FragmentCount() int {
	return len(s.world.Query(component.FragmentTagComponent.Kind()))
}

// Snapshot is a point-in-time dump of the tabletop.
type Snapshot struct {
	Scene     string        `yaml:"scene"`
	Ball      BallSnapshot  `yaml:"ball"`
	Glass     GlassSnapshot `yaml:"glass"`
	Fragments int           `yaml:"fragments"`
}

type BallSnapshot struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	VX     float64 `yaml:"vx"`
	VY     float64 `yaml:"vy"`
	Radius float64 `yaml:"radius"`
	Phase  string  `yaml:"phase"`
}

type GlassSnapshot struct {
	X            float64 `yaml:"x"`
	Y            float64 `yaml:"y"`
	Rotation     float64 `yaml:"rotation"`
	Static       bool    `yaml:"static"`
	Broken       bool    `yaml:"broken"`
	Transparency float64 `yaml:"transparency"`
}

func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		Scene:     s.Spec.Name,
		Fragments: s.FragmentCount(),
		Glass: GlassSnapshot{
			Static:       s.static,
			Broken:       s.GlassBroken(),
			Transparency: s.alpha,
		},
	}

	if t, ok := ecs.Get(s.world, s.Ball, component.TransformComponent.Kind()); ok {
		snap.Ball.X, snap.Ball.Y = t.X, t.Y
	}
	if body, ok := ecs.Get(s.world, s.Ball, component.PhysicsBodyComponent.Kind()); ok {
		snap.Ball.Radius = body.Radius
		if body.Body != nil {
			v := body.Body.Velocity()
			snap.Ball.VX, snap.Ball.VY = v.X, v.Y
		}
	}
	snap.Ball.Phase = impact.PhaseIdle.String()
	if d, ok := ecs.Get(s.world, s.Ball, component.DeformableComponent.Kind()); ok {
		snap.Ball.Phase = d.Responder.State().Phase.String()
	}
	if t, ok := ecs.Get(s.world, s.Glass, component.TransformComponent.Kind()); ok {
		snap.Glass.X, snap.Glass.Y, snap.Glass.Rotation = t.X, t.Y, t.Rotation
	}
	return snap
}
