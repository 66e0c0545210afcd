package component

// WhiteFlash blinks a renderable white. Frames counts down the whole effect;
// On toggles every Interval ticks.
type WhiteFlash struct {
	Frames   int
	Interval int
	Timer    int
	On       bool
}

var WhiteFlashComponent = NewComponent[WhiteFlash]()
