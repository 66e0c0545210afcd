package system

import (
	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
	"github.com/milk9111/tabletop/impact"
)

// CameraSystem applies shake requests to the camera. The jitter fades out
// linearly over the requested frames.
type CameraSystem struct {
	rng impact.Random
}

func NewCameraSystem(rng impact.Random) *CameraSystem {
	return &CameraSystem{rng: rng}
}

func (cs *CameraSystem) Update(w *ecs.World) {
	if cs == nil || w == nil {
		return
	}

	camEntity, ok := ecs.First(w, component.CameraComponent.Kind())
	if !ok {
		return
	}
	cam, ok := ecs.Get(w, camEntity, component.CameraComponent.Kind())
	if !ok {
		return
	}

	if req, ok := ecs.Get(w, camEntity, component.CameraShakeRequestComponent.Kind()); ok {
		if req.Frames > 0 && req.Frames >= cam.ShakeFrames {
			cam.ShakeFrames = req.Frames
			cam.ShakeTotal = req.Frames
			cam.ShakeIntensity = req.Intensity
		}
		ecs.Remove(w, camEntity, component.CameraShakeRequestComponent.Kind())
	}

	if cam.ShakeFrames <= 0 || cam.ShakeTotal <= 0 || cs.rng == nil {
		cam.ShakeFrames = 0
		cam.OffsetX, cam.OffsetY = 0, 0
		return
	}

	strength := cam.ShakeIntensity * float64(cam.ShakeFrames) / float64(cam.ShakeTotal)
	cam.OffsetX = cs.rng.Uniform(-strength, strength)
	cam.OffsetY = cs.rng.Uniform(-strength, strength)
	cam.ShakeFrames--
}
