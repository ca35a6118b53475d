package processor

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/pcmdenoise/pkg/pcm"
)

// ProcessBytes denoises a byte region holding little-endian interleaved
// signed 16-bit PCM. The region is decoded into a working copy, and the copy
// is committed back only when processing succeeds; on failure the region is
// observable byte-for-byte unchanged. A trailing odd byte is never touched.
//
// For callers that already hold an []int16 view of their storage, Process is
// the in-place (no separate commit step) variant of the same operation.
func (p *Processor) ProcessBytes(ctx context.Context, data []byte, cfg Config) (_err error) {
	logger.Tracef(ctx, "ProcessBytes, len:%d", len(data))
	defer func() { logger.Tracef(ctx, "/ProcessBytes, len:%d: %v", len(data), _err) }()

	numSamples := len(data) / 2
	samples := make([]int16, numSamples)
	if err := pcm.DecodeS16LE(samples, data[:numSamples*2]); err != nil {
		return err
	}

	if err := p.Process(ctx, samples, cfg); err != nil {
		return err
	}

	return pcm.EncodeS16LE(data[:numSamples*2], samples)
}
