package system

import (
	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/impact"
)

// World event types pushed by the responder systems.
const (
	EventGlassBroken = "glass_broken"
	EventClink       = "clink"
)

type GlassBroken struct {
	Glass         ecs.Entity
	Fragments     []ecs.Entity
	Skipped       int
	DestroyOnly   bool
	RelativeSpeed float64
}

type Clink struct {
	Glass ecs.Entity
	Sound impact.SoundRequest
}
