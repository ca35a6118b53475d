package denoisestream

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/pcmdenoise/pkg/denoise"
	"github.com/xaionaro-go/pcmdenoise/pkg/pcm"
	"github.com/xaionaro-go/pcmdenoise/pkg/processor"
)

func TestDenoiseStream(t *testing.T) {
	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	pipeReader, pipeWriter := io.Pipe()
	defer pipeWriter.Close()

	proc := processor.New(denoise.NewDummy())
	defer proc.Close()
	s, err := NewDenoiseStream(ctx, pipeReader, proc, processor.Config{
		SampleRate: 48000,
		Channels:   1,
		Strength:   0,
	}, 65536, 65536)
	require.NoError(t, err)

	samples := make([]int16, 960)
	for i := range samples {
		samples[i] = int16((i*37)%20001 - 10000)
	}
	data := make([]byte, len(samples)*2)
	require.NoError(t, pcm.EncodeS16LE(data, samples))

	go func() {
		_, _ = pipeWriter.Write(data)
	}()

	out := make([]byte, len(data))
	_, err = io.ReadFull(s, out)
	require.NoError(t, err)

	decoded := make([]int16, len(samples))
	require.NoError(t, pcm.DecodeS16LE(decoded, out))
	for i := range decoded {
		expected := pcm.ToInt16(pcm.ToFloat32(samples[i]))
		assert.Equal(t, expected, decoded[i], "sample %d", i)
	}
}

func TestDenoiseStreamInvalidConfig(t *testing.T) {
	ctx := context.Background()
	pipeReader, pipeWriter := io.Pipe()
	defer pipeWriter.Close()

	proc := processor.New(denoise.NewDummy())
	defer proc.Close()
	_, err := NewDenoiseStream(ctx, pipeReader, proc, processor.Config{
		SampleRate: 48000,
		Channels:   0,
		Strength:   1,
	}, 65536, 65536)
	assert.ErrorIs(t, err, processor.ErrInvalidChannelCount)
}

func TestDenoiseStreamClosedProcessor(t *testing.T) {
	ctx := context.Background()
	pipeReader, pipeWriter := io.Pipe()
	defer pipeWriter.Close()

	proc := processor.New(denoise.NewDummy())
	require.NoError(t, proc.Close())
	_, err := NewDenoiseStream(ctx, pipeReader, proc, processor.Config{
		SampleRate: 48000,
		Channels:   1,
		Strength:   1,
	}, 65536, 65536)
	assert.ErrorIs(t, err, processor.ErrDenoiserUnavailable)
}
