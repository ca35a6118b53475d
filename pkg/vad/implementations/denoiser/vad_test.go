package denoiser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/pcmdenoise/pkg/denoise"
	"github.com/xaionaro-go/pcmdenoise/pkg/pcm"
)

// amplitudeStub reports voice when the frame peak exceeds 0.1.
type amplitudeStub struct{}

var _ denoise.Denoiser = (*amplitudeStub)(nil)

func (*amplitudeStub) Close() error { return nil }

func (*amplitudeStub) SampleRate() pcm.SampleRate { return denoise.DefaultSampleRate }

func (*amplitudeStub) FrameSize() int { return denoise.DefaultFrameSize }

func (*amplitudeStub) DenoiseFrame(ctx context.Context, outputVoice, input []float32) (float64, error) {
	copy(outputVoice, input)
	for _, v := range input {
		if v > 0.1 || v < -0.1 {
			return 1, nil
		}
	}
	return 0, nil
}

func TestFindNextVoice(t *testing.T) {
	ctx := context.Background()
	v, err := NewVAD(ctx, &amplitudeStub{}, 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 480, v.ChunkSamples)
	require.Equal(t, 10*time.Millisecond, v.ChunkDuration)

	// 100ms of silence followed by 100ms of a loud signal.
	samples := make([]int16, 9600)
	for i := 4800; i < len(samples); i++ {
		samples[i] = 16000
	}

	confidence, offset, err := v.FindNextVoice(ctx, samples, 0.5, 30*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1.0, confidence)
	assert.Equal(t, 100*time.Millisecond, offset)
}

func TestFindNextVoiceNoVoice(t *testing.T) {
	ctx := context.Background()
	v, err := NewVAD(ctx, &amplitudeStub{}, 10*time.Millisecond)
	require.NoError(t, err)

	confidence, offset, err := v.FindNextVoice(ctx, make([]int16, 9600), 0.5, 30*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 0.0, confidence)
	assert.Equal(t, time.Duration(-1), offset)
}

func TestFindNextVoiceEmptyInput(t *testing.T) {
	ctx := context.Background()
	v, err := NewVAD(ctx, &amplitudeStub{}, 10*time.Millisecond)
	require.NoError(t, err)

	confidence, offset, err := v.FindNextVoice(ctx, nil, 0.5, 30*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 0.0, confidence)
	assert.Equal(t, time.Duration(-1), offset)
}
