package audio

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	TargetSampleRate = 16000
	TargetChannels   = 1
	TargetBitDepth   = 16

	minDuration   = 500 * time.Millisecond
	maxChannels   = 2
	minSampleRate = 8000
)

var (
	ErrInvalidFormat      = errors.New("invalid audio format")
	ErrTranscoderNotFound = errors.New("audio transcoder not found")
	ErrOpusUnsupported    = errors.New("opus decoding not built in")
)

type Format struct {
	Channels   int
	SampleRate int
	BitDepth   int
	Duration   time.Duration
}

// Validate rejects audio the speech API handles poorly: clips shorter than
// half a second, more than two channels or a sample rate below 8 kHz.
func Validate(f Format) error {
	if f.Duration < minDuration {
		return fmt.Errorf("%w: audio too short (%s < %s)", ErrInvalidFormat, f.Duration, minDuration)
	}
	if f.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (%d)", ErrInvalidFormat, f.Channels)
	}
	if f.SampleRate < minSampleRate {
		return fmt.Errorf("%w: sample rate too low (%d Hz)", ErrInvalidFormat, f.SampleRate)
	}
	return nil
}

// IsTarget reports whether f already is 16 kHz mono 16-bit PCM.
func (f Format) IsTarget() bool {
	return f.SampleRate == TargetSampleRate && f.Channels == TargetChannels && f.BitDepth == TargetBitDepth
}

type Prober interface {
	Probe(path string) (Format, error)
}

// Converter writes in as 16 kHz mono 16-bit PCM WAV to out.
type Converter interface {
	ConvertToWAV(ctx context.Context, in, out string) error
}

// Decoder is a native alternative to Converter for formats it supports.
type Decoder interface {
	Supports(path string) bool
	DecodeToWAV(ctx context.Context, in, out string) error
}

// PCMWriter persists interleaved 16-bit samples as a WAV file.
type PCMWriter interface {
	WritePCM16(path string, samples []int16, sampleRate, channels int) error
}

// SampleReader loads a WAV file as mono samples scaled to [-1, 1].
type SampleReader interface {
	ReadMono(path string) ([]float64, int, error)
}
