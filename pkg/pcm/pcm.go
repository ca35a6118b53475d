// Package pcm provides the sample-level conversions used across the module:
// normalized float32 samples on one side, signed 16-bit PCM on the other.
package pcm

import (
	"encoding/binary"
	"fmt"
)

type SampleRate int

type Channel int

// ToFloat32 converts a signed 16-bit sample to a normalized float in [-1, 1).
func ToFloat32(sample int16) float32 {
	return float32(sample) / 32768.0
}

// ToInt16 requantizes a normalized float sample to signed 16-bit, saturating
// on both ends. The scale is 32767 while the lower clamp is -32768: the int16
// range is asymmetric and we keep it that way.
func ToInt16(sample float32) int16 {
	scaled := sample * 32767.0
	if scaled >= 32767.0 {
		return 32767
	}
	if scaled <= -32768.0 {
		return -32768
	}
	return int16(scaled)
}

// DecodeS16LE unpacks little-endian 16-bit PCM bytes into samples.
func DecodeS16LE(output []int16, input []byte) error {
	if len(input) != len(output)*2 {
		return fmt.Errorf("the lengths of input and output do not match: %d != %d*2", len(input), len(output))
	}
	for idx := range output {
		output[idx] = int16(binary.LittleEndian.Uint16(input[idx*2:]))
	}
	return nil
}

// EncodeS16LE packs samples back into little-endian 16-bit PCM bytes.
func EncodeS16LE(output []byte, input []int16) error {
	if len(output) != len(input)*2 {
		return fmt.Errorf("the lengths of input and output do not match: %d*2 != %d", len(input), len(output))
	}
	for idx, sample := range input {
		binary.LittleEndian.PutUint16(output[idx*2:], uint16(sample))
	}
	return nil
}
