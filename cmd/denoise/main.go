package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/pcmdenoise/pkg/noisefloor"
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
	autoGateFlag := pflag.Bool("auto-gate-threshold", false, "estimate the gate threshold from the input's noise floor")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	pflag.Parse()

	if pflag.NArg() != 2 {
		panic(fmt.Errorf("expected exactly two arguments: <input-file> <output-file>"))
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	input, err := os.ReadFile(pflag.Arg(0))
	assertNoError(err)

	cfg := processor.Config{
		SampleRate:    pcm.SampleRate(*sampleRateFlag),
		Channels:      pcm.Channel(*channelsFlag),
		Strength:      *strengthFlag,
		GateThreshold: *gateThresholdFlag,
		SpectralGate:  *spectralGateFlag,
	}

	if *autoGateFlag {
		numSamples := len(input) / 2
		samples := make([]int16, numSamples)
		assertNoError(pcm.DecodeS16LE(samples, input[:numSamples*2]))
		threshold, err := noisefloor.EstimateGateThreshold(samples)
		assertNoError(err)
		logger.Infof(ctx, "estimated gate threshold: %f", threshold)
		cfg.GateThreshold = threshold
		cfg.SpectralGate = true
	}

	proc := processor.New(processor.NewDenoiserAuto(ctx))
	defer proc.Close()

	assertNoError(proc.ProcessBytes(ctx, input, cfg))

	assertNoError(os.WriteFile(pflag.Arg(1), input, 0640))
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
