package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"
	"golang.design/x/clipboard"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/tabletop/common"
	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
	"github.com/milk9111/tabletop/ecs/entity"
	"github.com/milk9111/tabletop/ecs/system"
	"github.com/milk9111/tabletop/impact"
	"github.com/milk9111/tabletop/prefabs"
)

const (
	// transparencyRate is how fast, per second, the arrow keys change the
	// glass alpha.
	transparencyRate = 0.5
	statusFrames     = 2 * common.TPS
)

var backgroundColor = color.RGBA{R: 0x1c, G: 0x1f, B: 0x26, A: 0xff}

type gameOptions struct {
	Scene string
	Seed  uint64
	Debug bool
	Watch bool
}

type Game struct {
	opts   gameOptions
	logger *zap.Logger
	sound  system.SoundPlayer

	world   *ecs.World
	scene   *entity.Scene
	physics *system.PhysicsSystem
	sched   *ecs.Scheduler
	input   *system.InputSystem
	render  *system.RenderSystem
	control ecs.Entity

	ui        *ebitenui.UI
	paused    bool
	debugDraw bool
	watcher   *prefabs.Watcher
	clipboard bool

	freezeFrames int
	breaks       int
	clinks       int
	status       string
	statusFrames int
}

func NewGame(opts gameOptions, sound system.SoundPlayer, logger *zap.Logger) (*Game, error) {
	g := &Game{
		opts:      opts,
		logger:    logger,
		sound:     sound,
		input:     system.NewInputSystem(),
		render:    system.NewRenderSystem(),
		debugDraw: opts.Debug,
	}
	if err := g.loadScene(); err != nil {
		return nil, err
	}
	g.ui = NewPauseUI(g)

	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable, copy disabled", zap.Error(err))
	} else {
		g.clipboard = true
	}

	if opts.Watch {
		w, err := prefabs.NewWatcher("prefabs")
		if err != nil {
			logger.Warn("prefab watch disabled", zap.Error(err))
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

// loadScene builds a fresh world from the scene prefab.
func (g *Game) loadScene() error {
	world := ecs.NewWorld()
	buildOpts := entity.Options{Logger: g.logger}
	if g.opts.Seed != 0 {
		buildOpts.Rand = impact.NewRandSource(g.opts.Seed)
	}
	scene, err := entity.BuildScene(world, g.opts.Scene, buildOpts)
	if err != nil {
		return err
	}

	control := ecs.CreateEntity(world)
	if err := ecs.Add(world, control, component.InputComponent.Kind(), &component.Input{}); err != nil {
		return err
	}

	shakeSeed := scene.Spec.Seed + 1
	if g.opts.Seed != 0 {
		shakeSeed = g.opts.Seed + 1
	}
	physics := system.NewPhysicsSystem(g.logger)
	g.sched = ecs.NewScheduler(
		physics,
		system.NewFractureSystem(physics, scene.FragmentProfile(), g.logger),
		system.NewDeformationSystem(g.logger),
		system.NewAudioSystem(g.sound, g.logger),
		system.NewLifetimeSystem(),
		system.NewWhiteFlashSystem(),
		system.NewCameraSystem(impact.NewRandSource(shakeSeed)),
		system.NewHitFreezeSystem(func(frames int) {
			g.freezeFrames = max(g.freezeFrames, frames)
		}),
	)
	g.freezeFrames = 0
	g.world = world
	g.scene = scene
	g.physics = physics
	g.control = control
	return nil
}

func (g *Game) Close() error {
	if g.watcher != nil {
		return g.watcher.Close()
	}
	return nil
}

func (g *Game) Update() error {
	g.pollWatcher()
	g.input.Update(g.world)
	in, ok := ecs.Get(g.world, g.control, component.InputComponent.Kind())
	if !ok {
		return fmt.Errorf("game: input entity missing")
	}

	if in.Pause {
		g.paused = !g.paused
	}
	if g.paused {
		g.ui.Update()
		return nil
	}

	g.handleInput(in)
	if g.freezeFrames > 0 {
		g.freezeFrames--
	} else {
		g.sched.Update(g.world)
		g.collectEvents()
	}

	if g.statusFrames > 0 {
		g.statusFrames--
	}
	return nil
}

func (g *Game) handleInput(in *component.Input) {
	switch {
	case in.Throw:
		g.report("throw", g.scene.ThrowBall())
	case in.Aim:
		g.report("throw", g.scene.ThrowBallAt(in.AimX, in.AimY))
	}
	if in.Deform {
		g.report("deform", g.scene.TriggerTestDeformation())
	}
	if in.Reset {
		g.resetScene()
	}
	if in.ToggleStatic {
		static := g.scene.ToggleGlassStatic()
		g.setStatus(fmt.Sprintf("glass static: %t", static))
	}
	if in.Transparency != 0 {
		g.scene.AdjustTransparency(in.Transparency * transparencyRate * common.FixedStep)
	}
	if in.DebugDraw {
		g.debugDraw = !g.debugDraw
	}
	if in.Copy {
		g.copySnapshot()
	}
}

func (g *Game) resetScene() {
	g.report("reset", g.scene.Reset())
	g.setStatus("scene reset")
}

func (g *Game) collectEvents() {
	for _, evt := range g.world.Events().Take(system.EventGlassBroken) {
		g.breaks++
		if br, ok := evt.Data.(system.GlassBroken); ok {
			g.setStatus(fmt.Sprintf("glass shattered at %.2f m/s", br.RelativeSpeed))
		}
	}
	g.clinks += len(g.world.Events().Take(system.EventClink))
}

func (g *Game) copySnapshot() {
	data, err := yaml.Marshal(g.scene.Snapshot())
	if err != nil {
		g.report("copy", err)
		return
	}
	if !g.clipboard {
		g.logger.Info("scene snapshot", zap.ByteString("yaml", data))
		g.setStatus("clipboard unavailable, snapshot logged")
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	g.setStatus("snapshot copied")
}

// pollWatcher rebuilds the scene when a prefab changes on disk.
func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(prefabs.SpecName(path))
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Warn("prefab watch error", zap.Error(err))
		default:
			return
		}
	}
}

func (g *Game) reload(name string) {
	static, alpha := g.scene.GlassStatic(), g.scene.Transparency()
	if err := g.loadScene(); err != nil {
		g.logger.Error("prefab reload failed", zap.String("prefab", name), zap.Error(err))
		g.setStatus("reload failed: " + name)
		return
	}
	g.scene.SetGlassStatic(static)
	g.scene.SetTransparency(alpha)
	g.logger.Info("prefab reloaded", zap.String("prefab", name))
	g.setStatus("reloaded " + name)
}

func (g *Game) report(action string, err error) {
	if err == nil {
		return
	}
	g.logger.Warn("action failed", zap.String("action", action), zap.Error(err))
	g.setStatus(action + ": " + err.Error())
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusFrames = statusFrames
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	g.render.Draw(g.world, screen)

	if g.debugDraw {
		system.DrawPhysicsDebug(g.physics, g.world, screen)
		system.DrawBallStateDebug(g.world, screen, 8, common.ScreenHeight-56)
	}

	hud := fmt.Sprintf("FPS: %.0f  bodies: %d  shards: %d  breaks: %d  clinks: %d\nglass static: %t  transparency: %.2f\n[Space] throw  [click] throw at  [D] deform  [R] reset  [S] static  [Up/Down] alpha  [C] copy  [P] pause  [F1] debug",
		ebiten.ActualFPS(), g.physics.BodyCount(), g.scene.FragmentCount(), g.breaks, g.clinks,
		g.scene.GlassStatic(), g.scene.Transparency())
	ebitenutil.DebugPrint(screen, hud)
	if g.statusFrames > 0 {
		ebitenutil.DebugPrintAt(screen, g.status, 8, 56)
	}

	if g.paused {
		g.ui.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return common.ScreenWidth, common.ScreenHeight
}
