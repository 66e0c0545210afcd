package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/tabletop/common"
	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
)

type InputSystem struct{}

func NewInputSystem() *InputSystem {
	return &InputSystem{}
}

func (i *InputSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	throw := inpututil.IsKeyJustPressed(ebiten.KeySpace)
	aim := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	deform := inpututil.IsKeyJustPressed(ebiten.KeyD)
	reset := inpututil.IsKeyJustPressed(ebiten.KeyR)
	toggleStatic := inpututil.IsKeyJustPressed(ebiten.KeyS)
	pause := inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeyEscape)
	copyReport := inpututil.IsKeyJustPressed(ebiten.KeyC)
	debugDraw := inpututil.IsKeyJustPressed(ebiten.KeyF1)

	transparency := 0.0
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		transparency += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		transparency -= 1
	}

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		throw = throw || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom)
		deform = deform || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightLeft)
		reset = reset || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightTop)
		pause = pause || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonCenterRight)
	}

	cx, cy := ebiten.CursorPosition()
	aimX, aimY := float64(cx), float64(cy)
	if camEntity, ok := ecs.First(w, component.CameraComponent.Kind()); ok {
		if cam, ok := ecs.Get(w, camEntity, component.CameraComponent.Kind()); ok {
			aimX, aimY = cam.ToWorld(aimX, aimY, common.ScreenWidth, common.ScreenHeight)
		}
	}

	ecs.ForEach(w, component.InputComponent.Kind(), func(e ecs.Entity, input *component.Input) {
		input.Throw = throw
		input.Aim = aim
		input.AimX = aimX
		input.AimY = aimY
		input.Deform = deform
		input.Reset = reset
		input.ToggleStatic = toggleStatic
		input.Pause = pause
		input.Copy = copyReport
		input.DebugDraw = debugDraw
		input.Transparency = transparency
	})
}
