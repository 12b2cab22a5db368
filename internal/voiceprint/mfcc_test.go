package voiceprint

import (
	"errors"
	"math"
	"testing"
)

func sine(freq float64, rate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func TestExtractMFCC_Shape(t *testing.T) {
	got, err := ExtractMFCC(sine(440, 16000, 16000), 16000, 13)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 13 {
		t.Fatalf("expected 13 coefficients, got %d", len(got))
	}
	for i, v := range got {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("coefficient %d is not finite: %v", i, v)
		}
	}
}

func TestExtractMFCC_DistinguishesSpectra(t *testing.T) {
	low, err := ExtractMFCC(sine(200, 16000, 8000), 16000, 13)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	high, err := ExtractMFCC(sine(4000, 16000, 8000), 16000, 13)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var dist float64
	for i := range low {
		d := low[i] - high[i]
		dist += d * d
	}
	if dist < 1 {
		t.Fatalf("expected distinct feature vectors, distance %f", dist)
	}
}

func TestExtractMFCC_Deterministic(t *testing.T) {
	samples := sine(440, 8000, 4000)
	a, _ := ExtractMFCC(samples, 8000, 13)
	b, _ := ExtractMFCC(samples, 8000, 13)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("coefficient %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestExtractMFCC_SilenceIsFinite(t *testing.T) {
	got, err := ExtractMFCC(make([]float64, 1600), 16000, 13)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range got {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("expected finite coefficients for silence, got %v", got)
		}
	}
}

func TestExtractMFCC_Errors(t *testing.T) {
	if _, err := ExtractMFCC(make([]float64, 100), 16000, 13); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
	if _, err := ExtractMFCC(make([]float64, 1600), 0, 13); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := ExtractMFCC(make([]float64, 1600), 16000, 30); err == nil {
		t.Fatal("expected error for too many coefficients")
	}
}

func TestDCT2_ConstantInput(t *testing.T) {
	dst := make([]float64, 3)
	dct2(dst, []float64{1, 1, 1, 1})
	if math.Abs(dst[0]-2) > 1e-9 {
		t.Fatalf("unexpected dc coefficient: %f", dst[0])
	}
	if math.Abs(dst[1]) > 1e-9 || math.Abs(dst[2]) > 1e-9 {
		t.Fatalf("expected zero ac coefficients, got %v", dst)
	}
}
