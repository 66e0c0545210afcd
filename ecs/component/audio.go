package component

import "github.com/milk9111/tabletop/impact"

// Audio queues clinks for the audio system.
type Audio struct {
	Pending []impact.SoundRequest
	Played  int
}

var AudioComponent = NewComponent[Audio]()
