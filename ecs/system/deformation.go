package system

import (
	"go.uber.org/zap"

	"github.com/milk9111/tabletop/common"
	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
	"github.com/milk9111/tabletop/impact"
	"github.com/milk9111/tabletop/logging"
)

// DeformationSystem feeds ball impacts to their responders and advances any
// squash cycle in flight.
type DeformationSystem struct {
	dt     float64
	logger *zap.Logger
}

func NewDeformationSystem(logger *zap.Logger) *DeformationSystem {
	return &DeformationSystem{
		dt:     common.FixedStep,
		logger: logging.Or(logger).Named("deformation"),
	}
}

func (s *DeformationSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	ecs.ForEach2(w, component.DeformableComponent.Kind(), component.ImpactQueueComponent.Kind(), func(e ecs.Entity, d *component.Deformable, queue *component.ImpactQueue) {
		for _, ev := range queue.Drain() {
			switch ev.OtherTag {
			case impact.TagGlass, impact.TagTable:
				s.logger.Info("ball collision",
					zap.Stringer("other", ev.OtherTag),
					zap.Float64("force", ev.Force),
					zap.Float64("relative_speed", ev.RelativeSpeed))
			}
			if d.Responder.OnImpact(ev.Force) {
				state := d.Responder.State()
				s.logger.Debug("deformation started",
					zap.Stringer("entity", e),
					zap.Float64("target_radius", state.TargetRadius))
			}
		}

		if d.Responder.Active() {
			d.Responder.Step(s.dt)
		}
	})
}
