package component

import "github.com/milk9111/tabletop/impact"

type BallTag struct{}

var BallTagComponent = NewComponent[BallTag]()

type GlassTag struct{}

var GlassTagComponent = NewComponent[GlassTag]()

type TableTag struct{}

var TableTagComponent = NewComponent[TableTag]()

// FragmentTag marks a shard spawned by a break; Source is its template name.
type FragmentTag struct {
	Source string
}

var FragmentTagComponent = NewComponent[FragmentTag]()

// Category is the tag reported to the other side of a contact.
type Category struct {
	Tag impact.Tag
}

var CategoryComponent = NewComponent[Category]()
