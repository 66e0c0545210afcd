package system

import (
	"github.com/milk9111/tabletop/common"
	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
)

// LifetimeSystem counts Lifetime components down by the fixed step and
// destroys entities whose time is up.
type LifetimeSystem struct {
	dt float64
}

func NewLifetimeSystem() *LifetimeSystem {
	return &LifetimeSystem{dt: common.FixedStep}
}

func (s *LifetimeSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.LifetimeComponent.Kind(), func(e ecs.Entity, lifetime *component.Lifetime) {
		lifetime.Remaining -= s.dt
		if lifetime.Remaining > 0 {
			return
		}
		ecs.DestroyEntity(w, e)
	})
}
