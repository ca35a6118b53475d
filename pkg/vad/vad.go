package vad

import (
	"context"
	"io"
	"time"
)

// VAD detects voice activity in mono S16 PCM.
type VAD interface {
	io.Closer

	// FindNextVoice scans samples for voice lasting at least minDuration with
	// confidence of at least confidenceThreshold. It returns the maximum
	// confidence observed and the offset of the first detection, or -1 when
	// no voice was found.
	FindNextVoice(
		_ context.Context,
		samples []int16,
		confidenceThreshold float64,
		minDuration time.Duration,
	) (float64, time.Duration, error)
}
