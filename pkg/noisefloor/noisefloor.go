// Package noisefloor estimates the residual noise level of a PCM recording,
// to derive a gate threshold from real data instead of a guessed constant.
package noisefloor

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"github.com/xaionaro-go/pcmdenoise/pkg/pcm"
)

const (
	// BlockSize is the amount of samples analyzed per spectral block.
	BlockSize = 512

	// floorPercentile selects which fraction of the quietest blocks is taken
	// as the noise floor.
	floorPercentile = 0.2

	// margin scales the floor, so that residual noise ends up below the
	// resulting gate threshold.
	margin = 2.0
)

// EstimateGateThreshold analyzes mono S16 samples and returns a suggested
// amplitude threshold for the spectral gate. The signal is cut into blocks,
// each block's level is measured in the frequency domain, and a low
// percentile over the block levels is taken as the noise floor.
func EstimateGateThreshold(samples []int16) (float32, error) {
	if len(samples) < BlockSize {
		return 0, fmt.Errorf("need at least %d samples to estimate a noise floor, got %d", BlockSize, len(samples))
	}

	numBlocks := len(samples) / BlockSize
	levels := make([]float64, 0, numBlocks)
	block := make([]float64, BlockSize)
	for blockIdx := 0; blockIdx < numBlocks; blockIdx++ {
		for i := range block {
			block[i] = float64(pcm.ToFloat32(samples[blockIdx*BlockSize+i]))
		}
		spectrum := fft.FFTReal(block)

		// By Parseval the spectral energy equals the time-domain energy, so
		// this is the block's RMS amplitude. FFTReal returns only the
		// non-negative frequencies; the mirrored ones are accounted for by
		// doubling everything except DC and Nyquist.
		var energy float64
		for binIdx, bin := range spectrum[:BlockSize/2+1] {
			binEnergy := cmplx.Abs(bin) * cmplx.Abs(bin)
			if binIdx != 0 && binIdx != BlockSize/2 {
				binEnergy *= 2
			}
			energy += binEnergy
		}
		levels = append(levels, math.Sqrt(energy)/BlockSize)
	}

	sort.Float64s(levels)
	floor := levels[int(floorPercentile*float64(len(levels)-1))]

	threshold := floor * margin
	if threshold > 1 {
		threshold = 1
	}
	return float32(threshold), nil
}
