package component

import "github.com/milk9111/tabletop/impact"

// ImpactQueue collects contact-begin events delivered by physics until the
// responder systems drain them.
type ImpactQueue struct {
	Events []impact.Event
}

func (q *ImpactQueue) Push(ev impact.Event) {
	q.Events = append(q.Events, ev)
}

func (q *ImpactQueue) Drain() []impact.Event {
	out := q.Events
	q.Events = nil
	return out
}

var ImpactQueueComponent = NewComponent[ImpactQueue]()
