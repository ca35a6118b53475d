package processor

import (
	"context"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/pcmdenoise/pkg/denoise"
)

// The process-wide default Processor mirrors the lifecycle of a hosting
// environment that initializes on load and shuts down on unload. Constructing
// a Processor explicitly via New is preferred for anything that needs test
// isolation or multiple engines.
var (
	defaultProcessor       *Processor
	defaultProcessorLocker sync.Mutex
)

// Initialize sets up the default Processor around the given denoiser. An
// already existing default is destroyed first (with a warning). On failure
// the default becomes absent and every default-path call fails with
// ErrDenoiserUnavailable until the next successful Initialize.
func Initialize(ctx context.Context, denoiser denoise.Denoiser) error {
	defaultProcessorLocker.Lock()
	defer defaultProcessorLocker.Unlock()
	if defaultProcessor != nil {
		logger.Warnf(ctx, "a default processor already exists, destroying the previous one")
		if err := defaultProcessor.Close(); err != nil {
			logger.Errorf(ctx, "unable to close the previous default processor: %v", err)
		}
		defaultProcessor = nil
	}
	if denoiser == nil {
		return fmt.Errorf("%w: no denoiser was provided", ErrDenoiserUnavailable)
	}
	defaultProcessor = New(denoiser)
	return nil
}

// Shutdown destroys the default Processor if present; it is a no-op otherwise.
func Shutdown(ctx context.Context) error {
	defaultProcessorLocker.Lock()
	defer defaultProcessorLocker.Unlock()
	if defaultProcessor == nil {
		return nil
	}
	err := defaultProcessor.Close()
	defaultProcessor = nil
	if err != nil {
		return fmt.Errorf("unable to close the default processor: %w", err)
	}
	return nil
}

func Default() *Processor {
	defaultProcessorLocker.Lock()
	defer defaultProcessorLocker.Unlock()
	return defaultProcessor
}

// ProcessDefault is Process on the default Processor.
func ProcessDefault(ctx context.Context, samples []int16, cfg Config) error {
	p := Default()
	if p == nil {
		return ErrDenoiserUnavailable
	}
	return p.Process(ctx, samples, cfg)
}

// ProcessBytesDefault is ProcessBytes on the default Processor.
func ProcessBytesDefault(ctx context.Context, data []byte, cfg Config) error {
	p := Default()
	if p == nil {
		return ErrDenoiserUnavailable
	}
	return p.ProcessBytes(ctx, data, cfg)
}
