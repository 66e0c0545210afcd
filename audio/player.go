package audio

import (
	"errors"
	"sync"

	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"go.uber.org/zap"

	"github.com/milk9111/tabletop/impact"
	"github.com/milk9111/tabletop/logging"
)

var ErrNoContext = errors.New("audio: no audio context")

// maxVoices caps overlapping clinks; the oldest is cut when exceeded.
const maxVoices = 8

// Player plays clinks through an ebiten audio context.
type Player struct {
	ctx    *ebaudio.Context
	logger *zap.Logger

	mu     sync.Mutex
	voices []*ebaudio.Player
}

// NewPlayer uses ctx, or the process's current context when ctx is nil.
func NewPlayer(ctx *ebaudio.Context, logger *zap.Logger) (*Player, error) {
	if ctx == nil {
		ctx = ebaudio.CurrentContext()
	}
	if ctx == nil {
		return nil, ErrNoContext
	}
	if ctx.SampleRate() != int(SampleRate) {
		logging.Or(logger).Warn("audio context sample rate differs from clink rate",
			zap.Int("context", ctx.SampleRate()),
			zap.Int("clink", int(SampleRate)))
	}
	return &Player{ctx: ctx, logger: logging.Or(logger).Named("audio")}, nil
}

func (p *Player) PlayClink(req impact.SoundRequest) error {
	pcm := RenderPCM(Clink(req))
	voice := p.ctx.NewPlayerFromBytes(pcm)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.prune()
	if len(p.voices) >= maxVoices {
		_ = p.voices[0].Close()
		p.voices = p.voices[1:]
	}
	voice.Play()
	p.voices = append(p.voices, voice)

	p.logger.Debug("clink",
		zap.Float64("pitch", req.Pitch),
		zap.Float64("volume", req.Volume),
		zap.Int("bytes", len(pcm)))
	return nil
}

func (p *Player) prune() {
	live := p.voices[:0]
	for _, v := range p.voices {
		if v.IsPlaying() {
			live = append(live, v)
			continue
		}
		if err := v.Close(); err != nil {
			p.logger.Warn("close finished clink", zap.Error(err))
		}
	}
	p.voices = live
}

// Close stops every voice.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for _, v := range p.voices {
		errs = append(errs, v.Close())
	}
	p.voices = nil
	return errors.Join(errs...)
}

// Recorder renders clinks without an output device and keeps what it heard.
type Recorder struct {
	mu       sync.Mutex
	requests []impact.SoundRequest
	frames   int
}

func (r *Recorder) PlayClink(req impact.SoundRequest) error {
	n := len(Drain(Clink(req)))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	r.frames += n
	return nil
}

func (r *Recorder) Requests() []impact.SoundRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]impact.SoundRequest(nil), r.requests...)
}

// Frames is the total number of rendered sample frames.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}
