package denoise

import (
	"context"
	"io"

	"github.com/xaionaro-go/pcmdenoise/pkg/pcm"
)

// Denoiser is a stateful noise-suppression model. It consumes one fixed-size
// frame of normalized float samples and produces a denoised frame of the same
// size, together with the model's voice-activity probability.
//
// Implementations carry history across frames, so the order of DenoiseFrame
// calls is part of the observable contract.
type Denoiser interface {
	io.Closer

	// SampleRate is the rate the model expects its input at.
	SampleRate() pcm.SampleRate

	// FrameSize is the exact amount of samples per frame.
	FrameSize() int

	DenoiseFrame(ctx context.Context, outputVoice, input []float32) (float64, error)
}
