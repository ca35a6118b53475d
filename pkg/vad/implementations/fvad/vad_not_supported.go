//go:build !fvad
// +build !fvad

package fvad

import (
	"fmt"

	"github.com/xaionaro-go/pcmdenoise/pkg/pcm"
	"github.com/xaionaro-go/pcmdenoise/pkg/vad"
)

type FVAD = vad.Dummy

func New(sampleRate pcm.SampleRate, mode int) (*FVAD, error) {
	return nil, fmt.Errorf("built without tag 'fvad'")
}
