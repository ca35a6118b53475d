package processor

import (
	"context"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/pcmdenoise/pkg/denoise"
	"github.com/xaionaro-go/pcmdenoise/pkg/denoise/registry"
)

var (
	lastSuccessfulDenoiserFactory       registry.DenoiserFactory
	lastSuccessfulDenoiserFactoryLocker sync.Mutex
)

func getLastSuccessfulDenoiserFactory() registry.DenoiserFactory {
	lastSuccessfulDenoiserFactoryLocker.Lock()
	defer lastSuccessfulDenoiserFactoryLocker.Unlock()
	return lastSuccessfulDenoiserFactory
}

// NewDenoiserAuto constructs a denoiser from the highest-priority registered
// factory that succeeds, falling back to the identity Dummy when none does.
func NewDenoiserAuto(
	ctx context.Context,
) denoise.Denoiser {
	factory := getLastSuccessfulDenoiserFactory()
	if factory != nil {
		denoiser, err := factory.NewDenoiser()
		if err == nil {
			return denoiser
		}
	}

	var mErr *multierror.Error
	for _, factory := range registry.DenoiserFactories() {
		denoiser, err := factory.NewDenoiser()
		logger.Debugf(ctx, "initializing denoiser %T result is %v", denoiser, err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to initialize via %T: %w", factory, err))
			continue
		}

		lastSuccessfulDenoiserFactoryLocker.Lock()
		defer lastSuccessfulDenoiserFactoryLocker.Unlock()
		lastSuccessfulDenoiserFactory = factory
		return denoiser
	}

	logger.Infof(ctx, "was unable to initialize any denoiser: %v", mErr.ErrorOrNil())
	return denoise.NewDummy()
}
