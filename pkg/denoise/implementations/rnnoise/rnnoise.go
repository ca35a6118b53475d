//go:build rnnoise
// +build rnnoise

package rnnoise

import (
	"context"
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/pcmdenoise/pkg/denoise"
	"github.com/xaionaro-go/pcmdenoise/pkg/denoise/registry"
	"github.com/xaionaro-go/pcmdenoise/pkg/pcm"
)

/*
#cgo pkg-config: rnnoise
#cgo CFLAGS: -march=native
#include <rnnoise.h>
*/
import "C"

const (
	debugByPassProcessingFrames = false
)

type RNNoise struct {
	Locker       sync.Mutex
	DenoiseState *C.DenoiseState
	gained       []float32
	denoised     []float32
}

var _ denoise.Denoiser = (*RNNoise)(nil)

var frameSize int

func init() {
	frameSize = int(C.rnnoise_get_frame_size())
	registry.RegisterDenoiserFactory(100, Factory{})
}

type Factory struct{}

func (Factory) NewDenoiser() (denoise.Denoiser, error) {
	return New()
}

func New() (*RNNoise, error) {
	denoiseState := C.rnnoise_create(nil)
	if denoiseState == nil {
		return nil, fmt.Errorf("unable to create an RNNoise state")
	}
	return &RNNoise{
		DenoiseState: denoiseState,
		gained:       make([]float32, frameSize),
		denoised:     make([]float32, frameSize),
	}, nil
}

func (s *RNNoise) Close() error {
	s.Locker.Lock()
	defer s.Locker.Unlock()
	if s.DenoiseState == nil {
		return fmt.Errorf("double-free attempt")
	}
	C.rnnoise_destroy(s.DenoiseState)
	s.DenoiseState = nil
	return nil
}

func (s *RNNoise) SampleRate() pcm.SampleRate {
	return 48_000
}

func (s *RNNoise) FrameSize() int {
	return frameSize
}

func (s *RNNoise) DenoiseFrame(ctx context.Context, outputVoice, input []float32) (_ret float64, _err error) {
	logger.Tracef(ctx, "DenoiseFrame, len:%d", len(input))
	defer func() { logger.Tracef(ctx, "/DenoiseFrame, len:%d: %v", len(input), _err) }()

	if len(input) != frameSize {
		return 0, fmt.Errorf("the size of the input is not the frame size: %d != %d", len(input), frameSize)
	}
	if len(input) != len(outputVoice) {
		return 0, fmt.Errorf("lengths of input and output slices are not equal: %d != %d", len(input), len(outputVoice))
	}

	s.Locker.Lock()
	defer s.Locker.Unlock()
	if s.DenoiseState == nil {
		return 0, fmt.Errorf("the RNNoise state is already closed")
	}

	if debugByPassProcessingFrames {
		copy(outputVoice, input)
		return 1, nil
	}

	// RNNoise consumes and produces floats scaled to the int16 range.
	gain(s.gained, input)
	vadProb := C.rnnoise_process_frame(
		s.DenoiseState,
		(*C.float)(unsafe.Pointer(unsafe.SliceData(s.denoised))),
		(*C.float)(unsafe.Pointer(unsafe.SliceData(s.gained))),
	)
	ungain(outputVoice, s.denoised)
	return float64(vadProb), nil
}

func gain(dst, src []float32) {
	for idx := range src {
		dst[idx] = src[idx] * math.MaxInt16
	}
}

func ungain(dst, src []float32) {
	for idx := range src {
		dst[idx] = src[idx] / math.MaxInt16
	}
}
