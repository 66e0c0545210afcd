package component

import "github.com/milk9111/tabletop/impact"

// Surface marks the ground material every other body's coefficients are
// combined against.
type Surface struct {
	Material impact.Surface
}

var SurfaceComponent = NewComponent[Surface]()
