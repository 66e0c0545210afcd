package system

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/milk9111/tabletop/common"
	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
)

// Render layers used by the builders.
const (
	LayerTable = iota
	LayerGlass
	LayerFragments
	LayerBall
)

const outlineWidth = 1.5

type RenderSystem struct {
	pixel *ebiten.Image
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	cam := sceneCamera(w)
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()

	entities := w.Query(component.TransformComponent.Kind(), component.PhysicsBodyComponent.Kind(), component.RenderableComponent.Kind())
	sort.SliceStable(entities, func(i, j int) bool {
		li, lj := renderLayer(w, entities[i]), renderLayer(w, entities[j])
		if li != lj {
			return li < lj
		}
		return uint64(entities[i]) < uint64(entities[j])
	})

	for _, e := range entities {
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		body, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		look, _ := ecs.Get(w, e, component.RenderableComponent.Kind())
		if look.Hidden {
			continue
		}

		fill := color.NRGBA{R: look.Fill.R, G: look.Fill.G, B: look.Fill.B, A: uint8(common.Clamp01(look.Alpha) * 255)}
		if flash, ok := ecs.Get(w, e, component.WhiteFlashComponent.Kind()); ok && flash.On {
			fill.R, fill.G, fill.B = 255, 255, 255
			fill.A = max(fill.A, 200)
		}
		if body.Radius > 0 {
			r.drawBall(screen, cam, t, body.Radius, fill, look.Outline, sw, sh)
			continue
		}
		r.drawBox(screen, cam, t, body.Width, body.Height, fill, look.Outline, sw, sh)
	}
}

func (r *RenderSystem) drawBall(screen *ebiten.Image, cam *component.Camera, t *component.Transform, radius float64, fill color.NRGBA, outline bool, sw, sh int) {
	cx, cy := cam.ToScreen(t.X, t.Y, sw, sh)
	pr := radius * cam.PixelsPerMeter
	vector.FillCircle(screen, float32(cx), float32(cy), float32(pr), fill, true)

	// spin marker
	sin, cos := math.Sincos(t.Rotation)
	mx, my := cam.ToScreen(t.X+cos*radius, t.Y+sin*radius, sw, sh)
	vector.StrokeLine(screen, float32(cx), float32(cy), float32(mx), float32(my), outlineWidth, color.NRGBA{A: 160}, true)

	if outline {
		vector.StrokeCircle(screen, float32(cx), float32(cy), float32(pr), outlineWidth, color.NRGBA{R: 20, G: 20, B: 20, A: 200}, true)
	}
}

func (r *RenderSystem) drawBox(screen *ebiten.Image, cam *component.Camera, t *component.Transform, width, height float64, fill color.NRGBA, outline bool, sw, sh int) {
	corners := boxCorners(t, width, height)
	var pts [4][2]float32
	for i, c := range corners {
		x, y := cam.ToScreen(c[0], c[1], sw, sh)
		pts[i] = [2]float32{float32(x), float32(y)}
	}

	a := float32(fill.A) / 255
	cr := float32(fill.R) / 255 * a
	cg := float32(fill.G) / 255 * a
	cb := float32(fill.B) / 255 * a
	vertices := make([]ebiten.Vertex, 0, 4)
	for _, p := range pts {
		vertices = append(vertices, ebiten.Vertex{
			DstX: p[0], DstY: p[1],
			SrcX: 1, SrcY: 1,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: a,
		})
	}
	screen.DrawTriangles(vertices, []uint16{0, 1, 2, 0, 2, 3}, r.whitePixel(), &ebiten.DrawTrianglesOptions{AntiAlias: true})

	if !outline {
		return
	}
	edge := color.NRGBA{R: fill.R / 2, G: fill.G / 2, B: fill.B / 2, A: max(fill.A, 160)}
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		vector.StrokeLine(screen, p[0], p[1], q[0], q[1], outlineWidth, edge, true)
	}
}

func (r *RenderSystem) whitePixel() *ebiten.Image {
	if r.pixel == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		r.pixel = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return r.pixel
}

// boxCorners returns the world corners of a rotated box centered on t,
// counter-clockwise from bottom-left.
func boxCorners(t *component.Transform, width, height float64) [4][2]float64 {
	hw, hh := width/2, height/2
	sin, cos := math.Sincos(t.Rotation)
	local := [4][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	var out [4][2]float64
	for i, p := range local {
		out[i] = [2]float64{
			t.X + p[0]*cos - p[1]*sin,
			t.Y + p[0]*sin + p[1]*cos,
		}
	}
	return out
}

func renderLayer(w *ecs.World, e ecs.Entity) int {
	if layer, ok := ecs.Get(w, e, component.RenderLayerComponent.Kind()); ok {
		return layer.Index
	}
	return 0
}

// sceneCamera returns the world camera, or a default one centered on the
// origin.
func sceneCamera(w *ecs.World) *component.Camera {
	if camEntity, ok := ecs.First(w, component.CameraComponent.Kind()); ok {
		if cam, ok := ecs.Get(w, camEntity, component.CameraComponent.Kind()); ok && cam.PixelsPerMeter > 0 {
			return cam
		}
	}
	return &component.Camera{PixelsPerMeter: common.PixelsPerMeter}
}
