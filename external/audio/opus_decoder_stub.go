//go:build !opus

package audio

import (
	"context"

	"github.com/foxseedlab/kikitori/internal/audio"
)

type noopDecoder struct{}

func NewOpusDecoder(_ int, _ audio.PCMWriter) audio.Decoder {
	return &noopDecoder{}
}

func (noopDecoder) Supports(path string) bool {
	return audio.IsOpus(path)
}

func (noopDecoder) DecodeToWAV(_ context.Context, _, _ string) error {
	return audio.ErrOpusUnsupported
}
