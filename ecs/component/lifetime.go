package component

// Lifetime destroys an entity once Remaining seconds of simulation pass.
type Lifetime struct {
	Remaining float64
}

var LifetimeComponent = NewComponent[Lifetime]()
