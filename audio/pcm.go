package audio

import (
	"encoding/binary"
	"math"

	"github.com/gopxl/beep"
)

const streamChunk = 512

// Drain reads s to the end and returns its frames.
func Drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, streamChunk)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

// RenderPCM renders s as 16-bit little-endian interleaved stereo, the layout
// ebiten's audio players read.
func RenderPCM(s beep.Streamer) []byte {
	frames := Drain(s)
	out := make([]byte, len(frames)*4)
	for i, f := range frames {
		binary.LittleEndian.PutUint16(out[i*4:], uint16(toInt16(f[0])))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(toInt16(f[1])))
	}
	return out
}

func toInt16(v float64) int16 {
	v = min(max(v, -1), 1)
	return int16(math.Round(v * math.MaxInt16))
}
