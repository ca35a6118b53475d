package denoise

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/pcmdenoise/pkg/pcm"
)

const (
	// DefaultFrameSize is 10ms at 48kHz, the frame RNNoise operates on.
	DefaultFrameSize = 480

	DefaultSampleRate = pcm.SampleRate(48000)
)

// Dummy is an identity denoiser: it copies the input through unmodified and
// always reports full voice confidence.
type Dummy struct{}

var _ Denoiser = (*Dummy)(nil)

func NewDummy() *Dummy {
	return &Dummy{}
}

func (*Dummy) Close() error {
	return nil
}

func (*Dummy) SampleRate() pcm.SampleRate {
	return DefaultSampleRate
}

func (*Dummy) FrameSize() int {
	return DefaultFrameSize
}

func (*Dummy) DenoiseFrame(ctx context.Context, outputVoice, input []float32) (float64, error) {
	if len(input) != len(outputVoice) {
		return 0, fmt.Errorf("lengths of input and output slices are not equal: %d != %d", len(input), len(outputVoice))
	}
	copy(outputVoice, input)
	return 1, nil
}
