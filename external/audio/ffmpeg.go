package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/foxseedlab/kikitori/internal/audio"
)

const stderrExcerptLen = 200

type FFmpegConverter struct {
	binary string
}

func NewFFmpegConverter(binary string) *FFmpegConverter {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegConverter{binary: binary}
}

func (c *FFmpegConverter) ConvertToWAV(ctx context.Context, in, out string) error {
	args := []string{
		"-y",
		"-i", in,
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(audio.TargetSampleRate),
		"-ac", strconv.Itoa(audio.TargetChannels),
		out,
	}
	slog.Info("converting audio", "input", in, "output", out)
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", audio.ErrTranscoderNotFound, c.binary)
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, excerpt(stderr.String()))
	}
	return nil
}

// CheckAvailable runs "ffmpeg -version" so a missing binary is reported at startup.
func (c *FFmpegConverter) CheckAvailable(ctx context.Context) error {
	if err := exec.CommandContext(ctx, c.binary, "-version").Run(); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", audio.ErrTranscoderNotFound, c.binary)
		}
		return err
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= stderrExcerptLen {
		return s
	}
	return string(r[:stderrExcerptLen])
}
