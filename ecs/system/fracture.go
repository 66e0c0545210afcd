package system

import (
	"go.uber.org/zap"

	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
	"github.com/milk9111/tabletop/impact"
	"github.com/milk9111/tabletop/logging"
)

const (
	breakShakeFrames    = 12
	breakShakeIntensity = 0.01
	breakFreezeFrames   = 3
	clinkFlashFrames    = 6
	clinkFlashInterval  = 2
)

// FractureSystem feeds glass impacts to their responders and carries out
// breaks against the physics host.
type FractureSystem struct {
	physics   *PhysicsSystem
	fragments impact.FragmentProfile
	logger    *zap.Logger
}

func NewFractureSystem(ps *PhysicsSystem, fragments impact.FragmentProfile, logger *zap.Logger) *FractureSystem {
	return &FractureSystem{
		physics:   ps,
		fragments: fragments,
		logger:    logging.Or(logger).Named("fracture"),
	}
}

func (s *FractureSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	ecs.ForEach2(w, component.BreakableComponent.Kind(), component.ImpactQueueComponent.Kind(), func(e ecs.Entity, br *component.Breakable, queue *component.ImpactQueue) {
		for _, ev := range queue.Drain() {
			if !w.IsAlive(e) {
				return
			}
			out := br.Responder.OnImpact(ev)
			if out.Sound != nil {
				s.queueSound(w, e, *out.Sound)
			}
			if out.Broken() {
				s.shatter(w, e, br, ev, out)
			}
		}
	})
}

func (s *FractureSystem) queueSound(w *ecs.World, e ecs.Entity, sound impact.SoundRequest) {
	if audioComp, ok := ecs.Get(w, e, component.AudioComponent.Kind()); ok {
		audioComp.Pending = append(audioComp.Pending, sound)
	}
	if ecs.Has(w, e, component.RenderableComponent.Kind()) {
		_ = ecs.Add(w, e, component.WhiteFlashComponent.Kind(), &component.WhiteFlash{
			Frames:   clinkFlashFrames,
			Interval: clinkFlashInterval,
			On:       true,
		})
	}
	w.Events().Push(ecs.Event{Type: EventClink, Data: Clink{Glass: e, Sound: sound}})
}

func (s *FractureSystem) shatter(w *ecs.World, e ecs.Entity, br *component.Breakable, ev impact.Event, out impact.FractureOutcome) {
	var material component.PhysicsBody
	if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
		material = *body
		if body.Shape != nil {
			body.Shape.SetSensor(true)
		}
	}
	var look component.Renderable
	if r, ok := ecs.Get(w, e, component.RenderableComponent.Kind()); ok {
		look = *r
		r.Hidden = true
	}
	br.Hidden = true

	host := NewFragmentHost(s.physics, w, s.fragments, material, look)
	handles := impact.ApplyOutcome(host, impact.Handle(e), out, s.logger)

	spawned := make([]ecs.Entity, 0, len(handles))
	for _, h := range handles {
		spawned = append(spawned, ecs.Entity(h))
	}

	s.logger.Info("glass shattered",
		zap.Stringer("entity", e),
		zap.Float64("relative_speed", ev.RelativeSpeed),
		zap.Int("fragments", len(spawned)),
		zap.Int("skipped", out.Skipped),
		zap.Bool("destroy_only", out.DestroyOnly))

	if cam, ok := ecs.First(w, component.CameraComponent.Kind()); ok {
		_ = ecs.Add(w, cam, component.CameraShakeRequestComponent.Kind(), &component.CameraShakeRequest{
			Frames:    breakShakeFrames,
			Intensity: breakShakeIntensity,
		})
		_ = ecs.Add(w, cam, component.HitFreezeRequestComponent.Kind(), &component.HitFreezeRequest{Frames: breakFreezeFrames})
	}
	_ = ecs.Remove(w, e, component.WhiteFlashComponent.Kind())

	w.Events().Push(ecs.Event{Type: EventGlassBroken, Data: GlassBroken{
		Glass:         e,
		Fragments:     spawned,
		Skipped:       out.Skipped,
		DestroyOnly:   out.DestroyOnly,
		RelativeSpeed: ev.RelativeSpeed,
	}})
}
