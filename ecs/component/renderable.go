package component

import "image/color"

// Renderable is a flat-shaded debug draw of the body's collider.
type Renderable struct {
	Fill    color.RGBA
	Alpha   float64
	Outline bool
	Hidden  bool
}

var RenderableComponent = NewComponent[Renderable]()
