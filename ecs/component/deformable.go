package component

import "github.com/milk9111/tabletop/impact"

type Deformable struct {
	Responder *impact.DeformationResponder
}

var DeformableComponent = NewComponent[Deformable]()
