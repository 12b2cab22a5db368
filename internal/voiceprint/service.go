package voiceprint

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/foxseedlab/kikitori/internal/audio"
)

type Service struct {
	reader    audio.SampleReader
	mfccCount int
	epochs    int
}

func NewService(reader audio.SampleReader, mfccCount, epochs int) *Service {
	return &Service{reader: reader, mfccCount: mfccCount, epochs: epochs}
}

// Features reads a WAV file and extracts its mean MFCC vector.
func (s *Service) Features(path string) ([]float64, error) {
	samples, rate, err := s.reader.ReadMono(path)
	if err != nil {
		return nil, fmt.Errorf("read samples %s: %w", path, err)
	}
	features, err := ExtractMFCC(samples, rate, s.mfccCount)
	if err != nil {
		return nil, fmt.Errorf("extract mfcc %s: %w", path, err)
	}
	return features, nil
}

// TrainDir trains on every .wav file of dir, labelling each by its filename.
// Unreadable files are skipped and logged.
func (s *Service) TrainDir(dir string) (*Model, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read training dir %s: %w", dir, err)
	}
	var samples []Sample
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
			continue
		}
		label := LabelFromFilename(e.Name())
		if label == "" {
			slog.Warn("skipping training file without speaker name", "file", e.Name())
			continue
		}
		slog.Info("extracting mfcc", "file", e.Name(), "speaker", label)
		features, err := s.Features(filepath.Join(dir, e.Name()))
		if err != nil {
			slog.Warn("skipping training file", "file", e.Name(), "error", err)
			continue
		}
		samples = append(samples, Sample{Label: label, Features: features})
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no usable .wav files in %s: %w", dir, ErrEmptyModel)
	}
	model, err := Train(samples, s.epochs)
	if err != nil {
		return nil, err
	}
	slog.Info("voiceprint model trained", "samples", len(samples), "speakers", len(model.Labels))
	return model, nil
}

func (s *Service) Identify(model *Model, path string) (string, float64, error) {
	features, err := s.Features(path)
	if err != nil {
		return "", 0, err
	}
	return model.Predict(features)
}
