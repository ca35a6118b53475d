package processor

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/pcmdenoise/pkg/pcm"
)

func TestProcessBytesCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	p := New(newStubDenoiser(func(int) float32 { return 0.25 }))

	samples := sawtooth(480)
	data := make([]byte, len(samples)*2)
	require.NoError(t, pcm.EncodeS16LE(data, samples))

	err := p.ProcessBytes(ctx, data, Config{SampleRate: 48000, Channels: 1, Strength: 1})
	require.NoError(t, err)

	decoded := make([]int16, len(samples))
	require.NoError(t, pcm.DecodeS16LE(decoded, data))
	expected := pcm.ToInt16(0.25)
	for i := range decoded {
		assert.Equal(t, expected, decoded[i], "sample %d", i)
	}
}

func TestProcessBytesDiscardsOnFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("precondition failure", func(t *testing.T) {
		p := New(newStubDenoiser(nil))
		samples := sawtooth(480)
		data := make([]byte, len(samples)*2)
		require.NoError(t, pcm.EncodeS16LE(data, samples))
		original := append([]byte(nil), data...)

		err := p.ProcessBytes(ctx, data, Config{SampleRate: 48000, Channels: 0, Strength: 1})
		assert.ErrorIs(t, err, ErrInvalidChannelCount)
		assert.Equal(t, original, data)
	})

	t.Run("engine failure after processing started", func(t *testing.T) {
		stub := newStubDenoiser(nil)
		stub.err = fmt.Errorf("model exploded")
		p := New(stub)

		samples := sawtooth(960)
		data := make([]byte, len(samples)*2)
		require.NoError(t, pcm.EncodeS16LE(data, samples))
		original := append([]byte(nil), data...)

		err := p.ProcessBytes(ctx, data, Config{SampleRate: 48000, Channels: 1, Strength: 1})
		require.Error(t, err)
		assert.Equal(t, original, data)
	})
}

func TestProcessBytesIgnoresTrailingOddByte(t *testing.T) {
	ctx := context.Background()
	p := New(newStubDenoiser(func(int) float32 { return 0.5 }))

	data := make([]byte, 961) // 480 samples plus one stray byte
	data[960] = 0xAB
	err := p.ProcessBytes(ctx, data, Config{SampleRate: 48000, Channels: 1, Strength: 1})
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), data[960])
}
