// Package audio plays the looping alert tone while an alarm is ringing.
package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

// Player is the audio-alert collaborator. Start and Stop are idempotent;
// Stop is synchronous and leaves no residual playback.
type Player interface {
	Start()
	Stop()
	IsPlaying() bool
}

const (
	sampleRate = 44100
	toneHz     = 880
	beepMillis = 400
	gapMillis  = 250
)

// Global audio context: the hardware device is opened once per process.
var (
	otoCtx      *oto.Context
	otoCtxOnce  sync.Once
	otoCtxReady bool
)

func initContext(log *zap.Logger) {
	otoCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			log.Error("audio context init failed", zap.Error(err))
			return
		}
		// Wait for the hardware audio device to be ready.
		<-ready
		otoCtx = ctx
		otoCtxReady = true
	})
}

// AlarmPlayer loops a synthesized alert tone until stopped.
type AlarmPlayer struct {
	log *zap.Logger

	mu      sync.Mutex
	player  *oto.Player
	playing bool
}

// NewAlarmPlayer creates a stopped player.
func NewAlarmPlayer(log *zap.Logger) *AlarmPlayer {
	return &AlarmPlayer{log: log}
}

// Start begins the alert loop. No-op if already playing. If the audio device
// is unavailable the player still reports playing so session state stays
// consistent; there is just nothing to hear.
func (p *AlarmPlayer) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return
	}

	initContext(p.log)
	if otoCtxReady {
		p.player = otoCtx.NewPlayer(newLoopReader(beepPattern()))
		p.player.Play()
	} else {
		p.log.Warn("audio device unavailable, ringing silently")
	}
	p.playing = true
}

// Stop ends playback synchronously. No-op if already stopped.
func (p *AlarmPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	if p.player != nil {
		if err := p.player.Close(); err != nil {
			p.log.Warn("audio player close failed", zap.Error(err))
		}
		p.player = nil
	}
	p.playing = false
}

// IsPlaying reports whether the alert loop is active.
func (p *AlarmPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// beepPattern synthesizes one beep-plus-gap cycle of 16-bit mono PCM.
func beepPattern() []byte {
	beepSamples := sampleRate * beepMillis / 1000
	gapSamples := sampleRate * gapMillis / 1000
	buf := make([]byte, (beepSamples+gapSamples)*2)

	for i := 0; i < beepSamples; i++ {
		v := math.Sin(2 * math.Pi * toneHz * float64(i) / sampleRate)
		// Short fade at both edges to avoid clicks between cycles.
		edge := float64(beepSamples) * 0.05
		if f := float64(i); f < edge {
			v *= f / edge
		} else if f > float64(beepSamples)-edge {
			v *= (float64(beepSamples) - f) / edge
		}
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(v*0.6*math.MaxInt16)))
	}
	// The gap region stays zeroed.
	return buf
}

// loopReader cycles over a PCM buffer forever.
type loopReader struct {
	data []byte
	pos  int
}

func newLoopReader(data []byte) *loopReader {
	return &loopReader{data: data}
}

func (r *loopReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		c := copy(p[n:], r.data[r.pos:])
		n += c
		r.pos += c
		if r.pos >= len(r.data) {
			r.pos = 0
		}
	}
	return n, nil
}
