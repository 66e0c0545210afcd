package common

const (
	// Gravity is in m/s², Y up.
	Gravity = -9.81
	// FixedStep is the simulation tick in seconds.
	FixedStep = 1.0 / 60.0
	// TPS matches FixedStep.
	TPS = 60

	ScreenWidth  = 960
	ScreenHeight = 540
	// PixelsPerMeter scales the tabletop scene onto the screen.
	PixelsPerMeter = 600.0
)
