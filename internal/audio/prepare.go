package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

const convertedSuffix = "_converted.wav"

type Prepared struct {
	Path      string
	Format    Format
	Converted bool
}

// Preparer turns an arbitrary input file into a WAV the speech API accepts.
type Preparer struct {
	prober    Prober
	converter Converter
	decoder   Decoder
}

func NewPreparer(prober Prober, converter Converter, decoder Decoder) *Preparer {
	return &Preparer{prober: prober, converter: converter, decoder: decoder}
}

func (p *Preparer) Prepare(ctx context.Context, path string) (*Prepared, error) {
	if !IsWAV(path) {
		out := ConvertedPath(path)
		if err := p.transcode(ctx, path, out); err != nil {
			return nil, err
		}
		return p.validated(out)
	}

	format, err := p.prober.Probe(path)
	if err == nil {
		err = Validate(format)
	}
	if err == nil && format.BitDepth == TargetBitDepth {
		return &Prepared{Path: path, Format: format}, nil
	}
	if err != nil {
		slog.Warn("audio needs conversion", "path", path, "reason", err)
	} else {
		slog.Warn("audio needs conversion", "path", path, "reason", fmt.Sprintf("bit depth %d", format.BitDepth))
	}

	out := ConvertedPath(path)
	if err := p.converter.ConvertToWAV(ctx, path, out); err != nil {
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}
	return p.validated(out)
}

func (p *Preparer) transcode(ctx context.Context, in, out string) error {
	if p.decoder != nil && p.decoder.Supports(in) {
		err := p.decoder.DecodeToWAV(ctx, in, out)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrOpusUnsupported) {
			return fmt.Errorf("decode %s: %w", in, err)
		}
		slog.Debug("native decoder unavailable; falling back to transcoder", "path", in)
	}
	if err := p.converter.ConvertToWAV(ctx, in, out); err != nil {
		return fmt.Errorf("convert %s: %w", in, err)
	}
	return nil
}

func (p *Preparer) validated(path string) (*Prepared, error) {
	format, err := p.prober.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("probe converted audio %s: %w", path, err)
	}
	if err := Validate(format); err != nil {
		return nil, fmt.Errorf("converted audio %s is still invalid: %w", path, err)
	}
	return &Prepared{Path: path, Format: format, Converted: true}, nil
}

func IsWAV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}

// ConvertedPath is where converted audio is written: foo.wav or foo.mp3 ->
// foo_converted.wav. It never names a file the user could have recorded.
func ConvertedPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + convertedSuffix
}

// IsConvertedArtifact reports whether name was produced by ConvertedPath.
func IsConvertedArtifact(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), convertedSuffix)
}

func IsOpus(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".opus" || ext == ".ogg"
}
