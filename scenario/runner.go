package scenario

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/milk9111/tabletop/audio"
	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
	"github.com/milk9111/tabletop/ecs/entity"
	"github.com/milk9111/tabletop/ecs/system"
	"github.com/milk9111/tabletop/impact"
	"github.com/milk9111/tabletop/logging"
	"github.com/milk9111/tabletop/prefabs"
)

var ErrExpectation = errors.New("scenario: expectation failed")

const DefaultScene = "scene.yaml"

// maxStepsPerCall bounds a single step(n) so a runaway script cannot hang.
const maxStepsPerCall = 100000

type Options struct {
	Scene  string
	Seed   uint64
	Logger *zap.Logger
}

// Runner drives a headless tabletop from a tengo script.
type Runner struct {
	world    *ecs.World
	scene    *entity.Scene
	sched    *ecs.Scheduler
	recorder *audio.Recorder
	logger   *zap.Logger
	report   Report
}

func NewRunner(opts Options) (*Runner, error) {
	logger := logging.Or(opts.Logger).Named("scenario")
	sceneFile := opts.Scene
	if sceneFile == "" {
		sceneFile = DefaultScene
	}

	w := ecs.NewWorld()
	buildOpts := entity.Options{Logger: logger}
	if opts.Seed != 0 {
		buildOpts.Rand = impact.NewRandSource(opts.Seed)
	}
	scene, err := entity.BuildScene(w, sceneFile, buildOpts)
	if err != nil {
		return nil, err
	}
	seed := opts.Seed
	if seed == 0 {
		seed = scene.Spec.Seed
	}

	r := &Runner{
		world:    w,
		scene:    scene,
		recorder: &audio.Recorder{},
		logger:   logger,
		report:   Report{Scene: scene.Spec.Name, Seed: seed},
	}
	ps := system.NewPhysicsSystem(logger)
	r.sched = ecs.NewScheduler(
		ps,
		&impactLog{runner: r},
		system.NewFractureSystem(ps, scene.FragmentProfile(), logger),
		system.NewDeformationSystem(logger),
		system.NewAudioSystem(r.recorder, logger),
		system.NewLifetimeSystem(),
	)
	return r, nil
}

func (r *Runner) Scene() *entity.Scene {
	return r.scene
}

// Step advances the simulation n fixed ticks.
func (r *Runner) Step(n int) {
	for range min(n, maxStepsPerCall) {
		r.sched.Update(r.world)
		r.report.Steps++
		for _, evt := range r.world.Events().Take(system.EventGlassBroken) {
			br := evt.Data.(system.GlassBroken)
			r.report.Breaks = append(r.report.Breaks, BreakRecord{
				Step:          r.report.Steps,
				Fragments:     len(br.Fragments),
				Skipped:       br.Skipped,
				RelativeSpeed: br.RelativeSpeed,
			})
		}
		r.world.Events().Take(system.EventClink)
	}
}

// RunScript loads a script through prefabs.LoadScript and runs it.
func (r *Runner) RunScript(ctx context.Context, name string) (Report, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return r.Report(), fmt.Errorf("scenario: load %s: %w", name, err)
	}
	return r.Run(ctx, name, src)
}

// Run compiles and runs src with the engine bound to this runner. Failed
// expectations do not stop the script; they are reported at the end.
func (r *Runner) Run(ctx context.Context, name string, src []byte) (Report, error) {
	r.report.Script = name
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := script.Add("engine", r.engine()); err != nil {
		return r.Report(), err
	}
	if _, err := script.RunContext(ctx); err != nil {
		return r.Report(), fmt.Errorf("scenario: run %s: %w", name, err)
	}

	report := r.Report()
	if len(report.Failures) > 0 {
		return report, fmt.Errorf("%w: %s", ErrExpectation, strings.Join(report.Failures, "; "))
	}
	return report, nil
}

// Report returns the results gathered so far.
func (r *Runner) Report() Report {
	rep := r.report
	rep.Broken = r.scene.GlassBroken()
	rep.Fragments = r.scene.FragmentCount()
	rep.BallRadius = r.scene.BallRadius()
	rep.Clinks = len(r.recorder.Requests())
	rep.Final = r.scene.Snapshot()
	rep.Impacts = append([]ImpactRecord(nil), r.report.Impacts...)
	rep.Breaks = append([]BreakRecord(nil), r.report.Breaks...)
	rep.Logs = append([]string(nil), r.report.Logs...)
	rep.Failures = append([]string(nil), r.report.Failures...)
	return rep
}

// HitGlass delivers a ball impact of the given relative speed to the glass,
// as if it struck the rim.
func (r *Runner) HitGlass(speed float64) bool {
	queue, ok := ecs.Get(r.world, r.scene.Glass, component.ImpactQueueComponent.Kind())
	if !ok {
		return false
	}
	x, y, _ := r.scene.GlassPosition()
	mass := impact.DefaultBallProfile().Mass
	if body, ok := ecs.Get(r.world, r.scene.Ball, component.PhysicsBodyComponent.Kind()); ok && body.Mass > 0 {
		mass = body.Mass
	}
	if br, ok := ecs.Get(r.world, r.scene.Glass, component.BreakableComponent.Kind()); ok {
		y += br.Profile.Height / 2
	}
	queue.Push(impact.Event{
		Force:         speed * mass,
		RelativeSpeed: speed,
		ContactPoint:  mgl64.Vec3{x, y, 0},
		OtherTag:      impact.TagBall,
	})
	return true
}

// HitBall delivers a table impact with the given impulse to the ball.
func (r *Runner) HitBall(force float64) bool {
	queue, ok := ecs.Get(r.world, r.scene.Ball, component.ImpactQueueComponent.Kind())
	if !ok {
		return false
	}
	speed := force
	if body, ok := ecs.Get(r.world, r.scene.Ball, component.PhysicsBodyComponent.Kind()); ok && body.Mass > 0 {
		speed = force / body.Mass
	}
	queue.Push(impact.Event{Force: force, RelativeSpeed: speed, OtherTag: impact.TagTable})
	return true
}

// impactLog copies queued impacts into the report before the responders
// drain them.
type impactLog struct {
	runner *Runner
}

func (l *impactLog) Update(w *ecs.World) {
	ecs.ForEach2(w, component.CategoryComponent.Kind(), component.ImpactQueueComponent.Kind(), func(_ ecs.Entity, cat *component.Category, queue *component.ImpactQueue) {
		for _, ev := range queue.Events {
			l.runner.report.Impacts = append(l.runner.report.Impacts, ImpactRecord{
				Step:          l.runner.report.Steps + 1,
				Target:        cat.Tag.String(),
				Other:         ev.OtherTag.String(),
				Force:         ev.Force,
				RelativeSpeed: ev.RelativeSpeed,
			})
		}
	})
}
