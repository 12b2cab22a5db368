//go:build opus

package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/foxseedlab/kikitori/internal/audio"
	"github.com/hraban/opus"
)

const (
	opusSampleRate   = 48000
	opusFrameSamples = opusSampleRate * 60 / 1000
)

// OpusDecoder decodes Ogg Opus files without spawning ffmpeg. The channel
// count cannot be read from the stream, so it has to be configured.
type OpusDecoder struct {
	channels int
	writer   audio.PCMWriter
}

func NewOpusDecoder(channels int, writer audio.PCMWriter) audio.Decoder {
	return &OpusDecoder{channels: channels, writer: writer}
}

func (d *OpusDecoder) Supports(path string) bool {
	return audio.IsOpus(path)
}

func (d *OpusDecoder) DecodeToWAV(ctx context.Context, in, out string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	stream, err := opus.NewStream(f)
	if err != nil {
		return fmt.Errorf("open opus stream: %w", err)
	}
	defer func() {
		_ = stream.Close()
	}()

	var mono []int16
	buf := make([]int16, opusFrameSamples*d.channels)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := stream.Read(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("decode opus: %w", err)
		}
		mono = append(mono, audio.DownmixToMono(buf[:n*d.channels], d.channels)...)
	}
	pcm := audio.Decimate(mono, opusSampleRate/audio.TargetSampleRate)
	return d.writer.WritePCM16(out, pcm, audio.TargetSampleRate, audio.TargetChannels)
}
