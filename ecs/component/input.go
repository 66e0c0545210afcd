package component

// Input stores the demo actions pressed this frame.
type Input struct {
	Throw        bool
	Deform       bool
	Reset        bool
	ToggleStatic bool
	Pause        bool
	Copy         bool
	DebugDraw    bool
	// Transparency is -1, 0 or 1 while the glass alpha keys are held.
	Transparency float64
	// AimX and AimY are the cursor position in world meters.
	AimX float64
	AimY float64
	Aim  bool
}

var InputComponent = NewComponent[Input]()
