// Package denoiser provides voice-activity detection on top of a denoising
// model's own voice probability output.
package denoiser

import (
	"context"
	"fmt"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/pcmdenoise/pkg/denoise"
	"github.com/xaionaro-go/pcmdenoise/pkg/pcm"
	"github.com/xaionaro-go/pcmdenoise/pkg/vad"
)

type VAD struct {
	denoise.Denoiser
	ChunkSamples  int
	ChunkDuration time.Duration
	frameIn       []float32
	frameOut      []float32
}

var _ vad.VAD = (*VAD)(nil)

// NewVAD wraps a denoiser into a VAD. Chunks are whole multiples of the model
// frame, sized as close to preferredGranularity as possible.
func NewVAD(
	ctx context.Context,
	denoiser denoise.Denoiser,
	preferredGranularity time.Duration,
) (*VAD, error) {
	frameSize := denoiser.FrameSize()
	sampleRate := denoiser.SampleRate()
	if frameSize <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("invalid denoiser geometry: frameSize:%d, sampleRate:%d", frameSize, sampleRate)
	}

	frameDuration := time.Second * time.Duration(frameSize) / time.Duration(sampleRate)
	subChunks := int((preferredGranularity + frameDuration/2) / frameDuration)
	if subChunks < 1 {
		subChunks = 1
	}
	chunkSamples := subChunks * frameSize
	chunkDuration := frameDuration * time.Duration(subChunks)
	logger.Debugf(ctx, "resulting chunkSamples:%d and chunkDuration:%v", chunkSamples, chunkDuration)

	return &VAD{
		Denoiser:      denoiser,
		ChunkSamples:  chunkSamples,
		ChunkDuration: chunkDuration,
		frameIn:       make([]float32, frameSize),
		frameOut:      make([]float32, frameSize),
	}, nil
}

// FindNextVoice expects mono samples at the denoiser's sample rate.
func (v *VAD) FindNextVoice(
	ctx context.Context,
	samples []int16,
	confidenceThreshold float64,
	minDuration time.Duration,
) (float64, time.Duration, error) {
	if len(samples) == 0 {
		return 0, -1, nil
	}

	var maxConfidence float64

	var foundVoiceFor time.Duration
	firstVoiceDetection := time.Duration(-1)

	frameSize := len(v.frameIn)
	for pos := 0; ; pos++ {
		if len(samples) < v.ChunkSamples {
			return maxConfidence, firstVoiceDetection, nil
		}
		chunk := samples[:v.ChunkSamples]
		samples = samples[len(chunk):]

		var chunkConfidence float64
		for off := 0; off < len(chunk); off += frameSize {
			for i := range v.frameIn {
				v.frameIn[i] = pcm.ToFloat32(chunk[off+i])
			}
			voiceConfidence, err := v.Denoiser.DenoiseFrame(ctx, v.frameOut, v.frameIn)
			if err != nil {
				return maxConfidence, firstVoiceDetection, err
			}
			if voiceConfidence > chunkConfidence {
				chunkConfidence = voiceConfidence
			}
		}

		if chunkConfidence > maxConfidence {
			maxConfidence = chunkConfidence
		}

		if chunkConfidence >= confidenceThreshold {
			foundVoiceFor += v.ChunkDuration
			if firstVoiceDetection < 0 {
				firstVoiceDetection = v.ChunkDuration * time.Duration(pos)
			}
		}

		if foundVoiceFor >= minDuration {
			return maxConfidence, firstVoiceDetection, nil
		}
	}
}
