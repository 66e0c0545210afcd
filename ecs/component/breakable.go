package component

import "github.com/milk9111/tabletop/impact"

// Breakable holds a glass's fracture responder. Hidden is set once the glass
// has shattered and is waiting for removal.
type Breakable struct {
	Responder *impact.FractureResponder
	Profile   impact.GlassProfile
	Hidden    bool
}

var BreakableComponent = NewComponent[Breakable]()
