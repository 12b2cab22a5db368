package voiceprint

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	learningRate   = 0.01
	regularization = 0.001
	minStdDev      = 1e-9
)

var ErrEmptyModel = errors.New("voiceprint model has no speakers")

type Sample struct {
	Label    string
	Features []float64
}

// Model is a one-vs-rest linear SVM over standardized MFCC vectors.
type Model struct {
	Labels  []string    `json:"labels"`
	Mean    []float64   `json:"mean"`
	StdDev  []float64   `json:"std_dev"`
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// LabelFromFilename strips the extension and every digit, so "ana2.wav" and
// "ana10.wav" both train the speaker "ana".
func LabelFromFilename(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	label := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, base)
	return strings.TrimRight(label, "_- ")
}

// Train fits one hinge-loss classifier per label with SGD. The sample order
// is shuffled with a fixed seed so training is reproducible.
func Train(samples []Sample, epochs int) (*Model, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyModel
	}
	dim := len(samples[0].Features)
	for _, s := range samples {
		if len(s.Features) != dim {
			return nil, fmt.Errorf("sample %q has %d features, want %d", s.Label, len(s.Features), dim)
		}
	}

	m := &Model{Labels: uniqueLabels(samples)}
	m.Mean, m.StdDev = columnStats(samples, dim)

	xs := make([][]float64, len(samples))
	for i, s := range samples {
		xs[i] = m.standardize(s.Features)
	}

	rng := rand.New(rand.NewPCG(1, 2))
	m.Weights = make([][]float64, len(m.Labels))
	m.Bias = make([]float64, len(m.Labels))
	for c, label := range m.Labels {
		w := make([]float64, dim)
		var b float64
		order := make([]int, len(xs))
		for i := range order {
			order[i] = i
		}
		for e := 0; e < epochs; e++ {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
			for _, i := range order {
				y := -1.0
				if samples[i].Label == label {
					y = 1
				}
				margin := y * (floats.Dot(w, xs[i]) + b)
				floats.Scale(1-learningRate*regularization, w)
				if margin < 1 {
					floats.AddScaled(w, learningRate*y, xs[i])
					b += learningRate * y
				}
			}
		}
		m.Weights[c] = w
		m.Bias[c] = b
	}
	return m, nil
}

// Predict returns the label with the highest decision score.
func (m *Model) Predict(features []float64) (string, float64, error) {
	if len(m.Labels) == 0 {
		return "", 0, ErrEmptyModel
	}
	if len(features) != len(m.Mean) {
		return "", 0, fmt.Errorf("got %d features, model expects %d", len(features), len(m.Mean))
	}
	if len(m.Labels) == 1 {
		return m.Labels[0], 1, nil
	}
	x := m.standardize(features)
	best, bestScore := 0, floats.Dot(m.Weights[0], x)+m.Bias[0]
	for c := 1; c < len(m.Labels); c++ {
		if score := floats.Dot(m.Weights[c], x) + m.Bias[c]; score > bestScore {
			best, bestScore = c, score
		}
	}
	return m.Labels[best], bestScore, nil
}

func (m *Model) standardize(features []float64) []float64 {
	out := make([]float64, len(features))
	for i, v := range features {
		out[i] = (v - m.Mean[i]) / m.StdDev[i]
	}
	return out
}

func (m *Model) Save(path string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal voiceprint model: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write voiceprint model %s: %w", path, err)
	}
	return nil
}

func Load(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voiceprint model %s: %w", path, err)
	}
	var m Model
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode voiceprint model %s: %w", path, err)
	}
	if len(m.Labels) == 0 {
		return nil, ErrEmptyModel
	}
	if len(m.Weights) != len(m.Labels) || len(m.Bias) != len(m.Labels) || len(m.StdDev) != len(m.Mean) {
		return nil, fmt.Errorf("voiceprint model %s is inconsistent", path)
	}
	return &m, nil
}

func uniqueLabels(samples []Sample) []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, s := range samples {
		if _, ok := seen[s.Label]; ok {
			continue
		}
		seen[s.Label] = struct{}{}
		labels = append(labels, s.Label)
	}
	return labels
}

func columnStats(samples []Sample, dim int) (mean, std []float64) {
	mean = make([]float64, dim)
	std = make([]float64, dim)
	col := make([]float64, len(samples))
	for j := 0; j < dim; j++ {
		for i, s := range samples {
			col[i] = s.Features[j]
		}
		mu, sd := stat.PopMeanStdDev(col, nil)
		if sd < minStdDev || len(samples) < 2 {
			sd = 1
		}
		mean[j], std[j] = mu, sd
	}
	return mean, std
}
