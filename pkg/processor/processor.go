// Package processor implements an in-place denoising pipeline over
// interleaved signed 16-bit PCM: channel 0 is deinterleaved into normalized
// float frames, passed through a Denoiser, blended with the original signal
// at a configurable strength, optionally gated, and requantized back into the
// caller's buffer.
//
// Only channel 0 is denoised; samples of all other channels pass through
// bit-identical. This is a known limitation inherited from the processing
// model being mono.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/pcmdenoise/pkg/denoise"
	"github.com/xaionaro-go/pcmdenoise/pkg/pcm"
)

var (
	ErrInvalidChannelCount = errors.New("the amount of channels must be greater than zero")
	ErrDenoiserUnavailable = errors.New("no denoiser is available")
)

type Config struct {
	// SampleRate is informational: a mismatch with the model's expected rate
	// is only warned about, the input is not resampled.
	SampleRate pcm.SampleRate

	Channels pcm.Channel

	// Strength blends the model output with the original signal: 0 leaves the
	// signal untouched, 1 yields the raw model output. Values outside [0, 1]
	// extrapolate linearly.
	Strength float32

	// GateThreshold is the amplitude below which blended samples are zeroed
	// when SpectralGate is enabled.
	GateThreshold float32

	SpectralGate bool
}

type Processor struct {
	Locker   sync.Mutex
	Denoiser denoise.Denoiser

	frameIn   []float32
	frameOut  []float32
	frameOrig []float32
}

func New(denoiser denoise.Denoiser) *Processor {
	return &Processor{
		Denoiser: denoiser,
	}
}

// Close closes the underlying denoiser; afterwards every Process call fails
// with ErrDenoiserUnavailable.
func (p *Processor) Close() error {
	p.Locker.Lock()
	defer p.Locker.Unlock()
	if p.Denoiser == nil {
		return nil
	}
	err := p.Denoiser.Close()
	p.Denoiser = nil
	return err
}

// FrameSize reports the denoiser's frame size in samples.
func (p *Processor) FrameSize() (int, error) {
	p.Locker.Lock()
	defer p.Locker.Unlock()
	if p.Denoiser == nil {
		return 0, ErrDenoiserUnavailable
	}
	return p.Denoiser.FrameSize(), nil
}

// Process denoises samples in place. The buffer is interpreted as interleaved
// PCM with cfg.Channels values per sample position; trailing samples beyond
// the last full channel group are never visited.
//
// The scratch frames are reused across calls; the mutex makes concurrent
// invocations safe by serializing them.
func (p *Processor) Process(ctx context.Context, samples []int16, cfg Config) (_err error) {
	logger.Tracef(ctx, "Process, len:%d", len(samples))
	defer func() { logger.Tracef(ctx, "/Process, len:%d: %v", len(samples), _err) }()

	if cfg.Channels <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidChannelCount, cfg.Channels)
	}
	if len(samples) == 0 {
		return nil
	}

	p.Locker.Lock()
	defer p.Locker.Unlock()
	if p.Denoiser == nil {
		return ErrDenoiserUnavailable
	}

	if cfg.SampleRate != p.Denoiser.SampleRate() {
		logger.Warnf(ctx, "denoising a %dHz signal while the model expects %dHz; quality may be degraded", cfg.SampleRate, p.Denoiser.SampleRate())
	}

	frameSize := p.Denoiser.FrameSize()
	if len(p.frameIn) != frameSize {
		p.frameIn = make([]float32, frameSize)
		p.frameOut = make([]float32, frameSize)
		p.frameOrig = make([]float32, frameSize)
	}

	channels := int(cfg.Channels)
	samplesPerChannel := len(samples) / channels

	for frameStart := 0; frameStart < samplesPerChannel; frameStart += frameSize {
		samplesInFrame := samplesPerChannel - frameStart
		if samplesInFrame > frameSize {
			samplesInFrame = frameSize
		}

		for i := 0; i < samplesInFrame; i++ {
			v := pcm.ToFloat32(samples[(frameStart+i)*channels])
			p.frameIn[i] = v
			p.frameOrig[i] = v
		}
		for i := samplesInFrame; i < frameSize; i++ {
			p.frameIn[i] = 0
			p.frameOrig[i] = 0
		}

		if _, err := p.Denoiser.DenoiseFrame(ctx, p.frameOut, p.frameIn); err != nil {
			return fmt.Errorf("unable to denoise the frame starting at sample %d: %w", frameStart, err)
		}

		for i := 0; i < frameSize; i++ {
			noiseRemoved := p.frameOrig[i] - p.frameOut[i]
			blended := p.frameOrig[i] - noiseRemoved*cfg.Strength
			if cfg.SpectralGate && abs32(blended) < cfg.GateThreshold {
				blended = 0
			}
			if blended > 1 {
				blended = 1
			}
			if blended < -1 {
				blended = -1
			}
			p.frameOut[i] = blended
		}

		// The zero-padded tail of a partial frame is discarded here.
		for i := 0; i < samplesInFrame; i++ {
			samples[(frameStart+i)*channels] = pcm.ToInt16(p.frameOut[i])
		}
	}

	return nil
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
