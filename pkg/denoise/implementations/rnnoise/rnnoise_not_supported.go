//go:build !rnnoise
// +build !rnnoise

package rnnoise

import (
	"fmt"

	"github.com/xaionaro-go/pcmdenoise/pkg/denoise"
)

type RNNoise = denoise.Dummy

func New() (*RNNoise, error) {
	return nil, fmt.Errorf("built without tag 'rnnoise'")
}
