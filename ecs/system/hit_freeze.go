package system

import (
	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
)

// HitFreezeSystem collects freeze requests and reports the longest one.
type HitFreezeSystem struct {
	onFreeze func(frames int)
}

func NewHitFreezeSystem(onFreeze func(frames int)) *HitFreezeSystem {
	return &HitFreezeSystem{onFreeze: onFreeze}
}

func (s *HitFreezeSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	maxFrames := 0
	for _, e := range w.Query(component.HitFreezeRequestComponent.Kind()) {
		if req, ok := ecs.Get(w, e, component.HitFreezeRequestComponent.Kind()); ok && req.Frames > maxFrames {
			maxFrames = req.Frames
		}
		_ = ecs.Remove(w, e, component.HitFreezeRequestComponent.Kind())
	}

	if maxFrames > 0 && s.onFreeze != nil {
		s.onFreeze(maxFrames)
	}
}
