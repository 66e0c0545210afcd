package component

// LaunchRequest sets a body's velocity once physics has created it. VX and VY
// are in m/s, Spin in rad/s.
type LaunchRequest struct {
	VX   float64
	VY   float64
	Spin float64
}

var LaunchRequestComponent = NewComponent[LaunchRequest]()
