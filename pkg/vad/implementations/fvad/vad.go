//go:build fvad
// +build fvad

package fvad

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/pcmdenoise/pkg/pcm"
	"github.com/xaionaro-go/pcmdenoise/pkg/vad"
)

/*
#cgo pkg-config: libfvad
#include <fvad.h>
*/
import "C"

// frameDuration is the longest frame libfvad accepts.
const frameDuration = 30 * time.Millisecond

type FVAD struct {
	Locker          sync.Mutex
	Inst            *C.Fvad
	SampleRateValue pcm.SampleRate
	frameSamples    int
}

var _ vad.VAD = (*FVAD)(nil)

// New creates a WebRTC-VAD based detector. mode is the aggressiveness in
// [0, 3]; the sample rate must be one of 8000, 16000, 32000 or 48000.
func New(sampleRate pcm.SampleRate, mode int) (*FVAD, error) {
	inst := C.fvad_new()
	if inst == nil {
		return nil, fmt.Errorf("unable to create an fvad instance")
	}
	if C.fvad_set_sample_rate(inst, C.int(sampleRate)) != 0 {
		C.fvad_free(inst)
		return nil, fmt.Errorf("unsupported sample rate: %d", sampleRate)
	}
	if C.fvad_set_mode(inst, C.int(mode)) != 0 {
		C.fvad_free(inst)
		return nil, fmt.Errorf("invalid mode: %d", mode)
	}
	return &FVAD{
		Inst:            inst,
		SampleRateValue: sampleRate,
		frameSamples:    int(time.Duration(sampleRate) * frameDuration / time.Second),
	}, nil
}

func (v *FVAD) Close() error {
	v.Locker.Lock()
	defer v.Locker.Unlock()
	if v.Inst == nil {
		return fmt.Errorf("double-free attempt")
	}
	C.fvad_free(v.Inst)
	v.Inst = nil
	return nil
}

// FindNextVoice expects mono samples at the configured sample rate. The
// underlying detector is binary, so the returned confidence is 0 or 1.
func (v *FVAD) FindNextVoice(
	ctx context.Context,
	samples []int16,
	confidenceThreshold float64,
	minDuration time.Duration,
) (_ float64, _ time.Duration, _err error) {
	logger.Tracef(ctx, "FindNextVoice, len:%d", len(samples))
	defer func() { logger.Tracef(ctx, "/FindNextVoice, len:%d: %v", len(samples), _err) }()

	if len(samples) == 0 {
		return 0, -1, nil
	}

	v.Locker.Lock()
	defer v.Locker.Unlock()
	if v.Inst == nil {
		return 0, -1, fmt.Errorf("the fvad instance is already closed")
	}

	var maxConfidence float64

	var foundVoiceFor time.Duration
	firstVoiceDetection := time.Duration(-1)

	for pos := 0; ; pos++ {
		if len(samples) < v.frameSamples {
			return maxConfidence, firstVoiceDetection, nil
		}
		frame := samples[:v.frameSamples]
		samples = samples[len(frame):]

		result := C.fvad_process(
			v.Inst,
			(*C.int16_t)(unsafe.Pointer(unsafe.SliceData(frame))),
			C.size_t(len(frame)),
		)
		if result < 0 {
			return maxConfidence, firstVoiceDetection, fmt.Errorf("fvad rejected a frame of %d samples", len(frame))
		}

		voiceConfidence := float64(result)
		if voiceConfidence > maxConfidence {
			maxConfidence = voiceConfidence
		}

		if voiceConfidence >= confidenceThreshold {
			foundVoiceFor += frameDuration
			if firstVoiceDetection < 0 {
				firstVoiceDetection = frameDuration * time.Duration(pos)
			}
		}

		if foundVoiceFor >= minDuration {
			return maxConfidence, firstVoiceDetection, nil
		}
	}
}
