package component

// HitFreezeRequest asks the outer loop to hold the simulation for a number of
// ticks. The requesting entity is irrelevant; the largest request wins.
type HitFreezeRequest struct {
	Frames int
}

var HitFreezeRequestComponent = NewComponent[HitFreezeRequest]()
