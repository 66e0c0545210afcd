package component

// Camera is the view onto the tabletop. X and Y are the world point, in
// meters, drawn at the center of the screen.
type Camera struct {
	X              float64
	Y              float64
	PixelsPerMeter float64

	ShakeFrames    int
	ShakeTotal     int
	ShakeIntensity float64
	OffsetX        float64
	OffsetY        float64
}

// ToScreen maps a world point to screen pixels for a screen of size w x h.
// Screen Y grows downward.
func (c *Camera) ToScreen(x, y float64, w, h int) (float64, float64) {
	ppm := c.PixelsPerMeter
	if ppm <= 0 {
		ppm = 1
	}
	sx := float64(w)/2 + (x-c.X-c.OffsetX)*ppm
	sy := float64(h)/2 - (y-c.Y-c.OffsetY)*ppm
	return sx, sy
}

// ToWorld inverts ToScreen.
func (c *Camera) ToWorld(sx, sy float64, w, h int) (float64, float64) {
	ppm := c.PixelsPerMeter
	if ppm <= 0 {
		ppm = 1
	}
	x := (sx-float64(w)/2)/ppm + c.X + c.OffsetX
	y := (float64(h)/2-sy)/ppm + c.Y + c.OffsetY
	return x, y
}

var CameraComponent = NewComponent[Camera]()
