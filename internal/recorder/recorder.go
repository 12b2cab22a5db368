// Package recorder captures raw 16-bit PCM streamed by a microcontroller over
// a serial port and stores it as a WAV file.
package recorder

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/foxseedlab/kikitori/internal/audio"
	"github.com/foxseedlab/kikitori/internal/config"
)

const (
	readChunkSize = 1024
	sampleWidth   = 2
)

type Port interface {
	Read(p []byte) (int, error)
	ResetInputBuffer() error
	Close() error
}

type PortOpener interface {
	Open(name string, baudRate int) (Port, error)
}

type Recording struct {
	Path string
	// Bytes is the PCM payload size after trimming.
	Bytes        int
	TrimmedBytes int
	Duration     time.Duration
}

type Recorder struct {
	cfg    *config.RecorderConfig
	opener PortOpener
	writer audio.PCMWriter
	now    func() time.Time
}

func NewRecorder(cfg *config.RecorderConfig, opener PortOpener, writer audio.PCMWriter) *Recorder {
	return &Recorder{cfg: cfg, opener: opener, writer: writer, now: time.Now}
}

// Record blocks for the configured duration. Cancelling ctx stops the capture
// early; whatever was read so far is still written.
func (r *Recorder) Record(ctx context.Context) (*Recording, error) {
	slog.Info("opening serial port", "port", r.cfg.SerialPort, "baud_rate", r.cfg.SerialBaudRate)
	port, err := r.opener.Open(r.cfg.SerialPort, r.cfg.SerialBaudRate)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", r.cfg.SerialPort, err)
	}
	defer func() {
		if err := port.Close(); err != nil {
			slog.Warn("failed to close serial port", "port", r.cfg.SerialPort, "error", err)
		}
	}()

	// The board resets when the port opens and needs time to boot.
	if err := sleepContext(ctx, time.Duration(r.cfg.WarmupMs)*time.Millisecond); err != nil {
		return nil, err
	}
	if err := port.ResetInputBuffer(); err != nil {
		return nil, fmt.Errorf("reset serial input buffer: %w", err)
	}

	raw, err := r.capture(ctx, port)
	if err != nil {
		return nil, err
	}

	bytesPerFrame := sampleWidth * r.cfg.Channels
	pcm, trimmed := audio.TrimToFrames(raw, bytesPerFrame)
	if trimmed > 0 {
		slog.Info("trimmed trailing bytes to align frames", "bytes", trimmed, "bytes_per_frame", bytesPerFrame)
	}

	if dir := filepath.Dir(r.cfg.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}
	if err := r.writer.WritePCM16(r.cfg.OutputPath, bytesToSamples(pcm), r.cfg.SampleRate, r.cfg.Channels); err != nil {
		return nil, fmt.Errorf("write recording: %w", err)
	}

	rec := &Recording{
		Path:         r.cfg.OutputPath,
		Bytes:        len(pcm),
		TrimmedBytes: trimmed,
		Duration:     pcmDuration(len(pcm), r.cfg.SampleRate, bytesPerFrame),
	}
	slog.Info("recording saved", "path", rec.Path, "bytes", rec.Bytes, "duration", rec.Duration.String())
	return rec, nil
}

func (r *Recorder) capture(ctx context.Context, port Port) ([]byte, error) {
	duration := time.Duration(r.cfg.DurationSec) * time.Second
	slog.Info("recording started", "duration", duration.String())

	buf := make([]byte, readChunkSize)
	var frames []byte
	start := r.now()
	for r.now().Sub(start) < duration {
		if ctx.Err() != nil {
			slog.Info("recording interrupted")
			break
		}
		n, err := port.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("read serial port: %w", err)
		}
		frames = append(frames, buf[:n]...)
	}
	return frames, nil
}

func bytesToSamples(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/sampleWidth)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*sampleWidth:]))
	}
	return out
}

func pcmDuration(size, sampleRate, bytesPerFrame int) time.Duration {
	if sampleRate <= 0 || bytesPerFrame <= 0 {
		return 0
	}
	frames := size / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
