package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/pcmdenoise/pkg/denoise"
)

func TestDefaultLifecycle(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(func() { _ = Shutdown(ctx) })

	require.NoError(t, Shutdown(ctx)) // idempotent when absent

	err := ProcessDefault(ctx, sawtooth(480), Config{SampleRate: 48000, Channels: 1, Strength: 1})
	assert.ErrorIs(t, err, ErrDenoiserUnavailable)

	require.NoError(t, Initialize(ctx, denoise.NewDummy()))
	require.NotNil(t, Default())

	samples := sawtooth(480)
	err = ProcessDefault(ctx, samples, Config{SampleRate: 48000, Channels: 1, Strength: 0})
	assert.NoError(t, err)

	err = ProcessBytesDefault(ctx, make([]byte, 960), Config{SampleRate: 48000, Channels: 1, Strength: 1})
	assert.NoError(t, err)

	require.NoError(t, Shutdown(ctx))
	assert.Nil(t, Default())
	err = ProcessDefault(ctx, samples, Config{SampleRate: 48000, Channels: 1, Strength: 1})
	assert.ErrorIs(t, err, ErrDenoiserUnavailable)
}

func TestInitializeReplacesPreviousDefault(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(func() { _ = Shutdown(ctx) })

	first := newStubDenoiser(nil)
	require.NoError(t, Initialize(ctx, first))
	require.NoError(t, Initialize(ctx, denoise.NewDummy()))
	assert.Equal(t, 1, first.closeCount)

	require.NoError(t, Shutdown(ctx))
}

func TestInitializeWithoutDenoiserLeavesDefaultAbsent(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(func() { _ = Shutdown(ctx) })

	require.NoError(t, Initialize(ctx, denoise.NewDummy()))
	err := Initialize(ctx, nil)
	assert.ErrorIs(t, err, ErrDenoiserUnavailable)
	assert.Nil(t, Default())
}
