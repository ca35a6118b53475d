package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/datacounter"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/pcmdenoise/pkg/denoisestream"
	"github.com/xaionaro-go/pcmdenoise/pkg/pcm"
	"github.com/xaionaro-go/pcmdenoise/pkg/processor"

	_ "github.com/xaionaro-go/pcmdenoise/pkg/denoise/implementations/rnnoise"
)

func main() {
	loggerLevel := logger.LevelDebug
	pflag.Var(&loggerLevel, "log-level", "Log level")
	sampleRateFlag := pflag.Int("sample-rate", 48000, "sample rate of the input, Hz")
	channelsFlag := pflag.Int("channels", 1, "amount of interleaved channels (only the first one is denoised)")
	strengthFlag := pflag.Float32("strength", 1.0, "denoising strength: 0 keeps the original, 1 is the full model output")
	gateThresholdFlag := pflag.Float32("gate-threshold", 0, "amplitude below which gated samples are zeroed")
	spectralGateFlag := pflag.Bool("spectral-gate", false, "zero near-silent residual below the gate threshold")
	pflag.Parse()

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	proc := processor.New(processor.NewDenoiserAuto(ctx))
	defer proc.Close()

	stream, err := denoisestream.NewDenoiseStream(ctx, os.Stdin, proc, processor.Config{
		SampleRate:    pcm.SampleRate(*sampleRateFlag),
		Channels:      pcm.Channel(*channelsFlag),
		Strength:      *strengthFlag,
		GateThreshold: *gateThresholdFlag,
		SpectralGate:  *spectralGateFlag,
	}, 1<<20, 1<<20)
	assertNoError(err)

	wc := datacounter.NewWriterCounter(os.Stdout)
	observability.Go(ctx, func(ctx context.Context) {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				logger.Debugf(ctx, "written: %d", wc.Count())
			}
		}
	})

	_, err = io.Copy(wc, stream)
	logger.Infof(ctx, "the stream has finished: %v", err)
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
