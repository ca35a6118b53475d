package pcm

import (
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFloat32(t *testing.T) {
	assert.Equal(t, float32(0), ToFloat32(0))
	assert.Equal(t, float32(-1), ToFloat32(-32768))
	assert.InDelta(t, 1.0, ToFloat32(32767), 1.0/32768)
	assert.InDelta(t, 0.5, ToFloat32(16384), 1.0/32768)
}

func TestToInt16(t *testing.T) {
	assert.Equal(t, int16(0), ToInt16(0))
	assert.Equal(t, int16(32767), ToInt16(1))
	assert.Equal(t, int16(-32767), ToInt16(-1))

	t.Run("saturation", func(t *testing.T) {
		assert.Equal(t, int16(32767), ToInt16(2))
		assert.Equal(t, int16(32767), ToInt16(float32(math.Inf(1))))
		assert.Equal(t, int16(-32768), ToInt16(-2))
		assert.Equal(t, int16(-32768), ToInt16(float32(math.Inf(-1))))
		// -32768/32767 scales to slightly below -32767, still in range:
		assert.Equal(t, int16(-32768), ToInt16(-32768.0/32767.0-0.001))
	})

	t.Run("truncates toward zero", func(t *testing.T) {
		assert.Equal(t, int16(16383), ToInt16(0.5))
		assert.Equal(t, int16(-16383), ToInt16(-0.5))
	})
}

func TestToInt16RoundTrip(t *testing.T) {
	for _, sample := range []int16{-32768, -32767, -12345, -1, 0, 1, 12345, 32766, 32767} {
		back := ToInt16(ToFloat32(sample))
		assert.InDelta(t, float64(sample), float64(back), 1, "sample %d", sample)
	}
}

func TestS16LECodec(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 256}
	buf := make([]byte, len(samples)*2)
	require.NoError(t, EncodeS16LE(buf, samples))

	decoded := make([]int16, len(samples))
	require.NoError(t, DecodeS16LE(decoded, buf))
	require.Equal(t, samples, decoded, spew.Sdump(buf))

	assert.Error(t, EncodeS16LE(buf[:2], samples))
	assert.Error(t, DecodeS16LE(decoded, buf[:2]))
}
